package assembly

import (
	"testing"
)

func TestPlanKeepsClearsAheadOfTexts(t *testing.T) {
	plan := NewPlan(ContractBackground)
	specs := []FieldSpec{
		{PageIndex: 0, MarkerRegion: Rect{100, 100, 160, 111}, InsertAt: Point{120, 112}, FontSize: 10},
		{PageIndex: 0, MarkerRegion: Rect{150, 100, 210, 111}, InsertAt: Point{170, 112}, FontSize: 10},
		{PageIndex: 0, MarkerRegion: Rect{100, 200, 160, 211}, InsertAt: Point{120, 212}, FontSize: 10},
	}
	for i, s := range specs {
		plan.AddClear(s.PageIndex, s.MarkerRegion)
		plan.AddText(s.PageIndex, s.InsertAt, []string{"홍길동", "김철수", "이영희"}[i], s.FontSize)
	}

	pp := plan.Page(0)
	if pp == nil {
		t.Fatal("expected a plan for page 0")
	}
	if len(pp.Clears) != 3 || len(pp.Texts) != 3 {
		t.Fatalf("got %d clears and %d texts, want 3 and 3", len(pp.Clears), len(pp.Texts))
	}
	// The first two marker regions overlap; a renderer interleaving clears
	// and texts would erase the first insertion. The plan keeps them in
	// separate phases so order within each phase is irrelevant.
	if !specs[0].MarkerRegion.Intersects(specs[1].MarkerRegion) {
		t.Fatal("test fixture regions must overlap")
	}
	for i, c := range pp.Clears {
		if c.Region != specs[i].MarkerRegion {
			t.Errorf("clear %d region = %+v, want %+v", i, c.Region, specs[i].MarkerRegion)
		}
		if c.Fill != ContractBackground {
			t.Errorf("clear %d fill = %+v, want contract background", i, c.Fill)
		}
	}
}

func TestPlanPagesSorted(t *testing.T) {
	plan := NewPlan(White)
	for _, idx := range []int{3, 0, 2} {
		plan.AddText(idx, Point{10, 10}, "x", 10)
	}
	got := plan.Pages()
	want := []int{0, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("Pages() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Pages() = %v, want %v", got, want)
		}
	}
}

func TestPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		build   func(*Plan)
		wantErr bool
	}{
		{
			name: "valid",
			build: func(p *Plan) {
				p.AddClear(0, Rect{10, 10, 50, 21})
				p.AddText(0, Point{12, 20}, "값", 10)
			},
		},
		{
			name:    "degenerate clear region",
			build:   func(p *Plan) { p.AddClear(0, Rect{50, 10, 50, 21}) },
			wantErr: true,
		},
		{
			name:    "empty text",
			build:   func(p *Plan) { p.AddText(0, Point{12, 20}, "", 10) },
			wantErr: true,
		},
		{
			name:    "zero font size",
			build:   func(p *Plan) { p.AddText(0, Point{12, 20}, "값", 0) },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlan(White)
			tt.build(p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlanEmpty(t *testing.T) {
	p := NewPlan(White)
	if !p.Empty() {
		t.Fatal("new plan should be empty")
	}
	p.AddText(1, Point{5, 5}, "a", 9)
	if p.Empty() {
		t.Fatal("plan with a text op should not be empty")
	}
}
