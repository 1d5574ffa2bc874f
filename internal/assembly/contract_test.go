package assembly

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeRenderer records the last plan it was handed and returns canned bytes.
type fakeRenderer struct {
	template []byte
	plan     *Plan
	calls    int
}

func (f *fakeRenderer) Render(template []byte, plan *Plan) ([]byte, error) {
	f.template = template
	f.plan = plan
	f.calls++
	return []byte("%PDF-rendered"), nil
}

func writeTemplate(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.7 template"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}
	return path
}

func validContractInput() ContractInput {
	return ContractInput{
		Party:        "손해사정법인 지산",
		Principal:    "김영수",
		NationalID:   "850101-1234567",
		Phone:        "01012345678",
		Address:      "서울특별시 강남구",
		Relationship: "본인",
		FeeRate:      15,
		DraftingDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestContractAssembleStampsEveryRegisteredMarker(t *testing.T) {
	r := &fakeRenderer{}
	a := &ContractAssembler{TemplatePath: writeTemplate(t, "contract.pdf"), Renderer: r}

	out, err := a.Assemble(validContractInput())
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("Assemble returned no document")
	}
	if r.calls != 1 {
		t.Fatalf("renderer called %d times, want 1", r.calls)
	}

	wantOps := 0
	for _, specs := range contractRegistry {
		wantOps += len(specs)
	}
	gotClears, gotTexts := 0, 0
	for _, idx := range r.plan.Pages() {
		pp := r.plan.Page(idx)
		gotClears += len(pp.Clears)
		gotTexts += len(pp.Texts)
	}
	if gotClears != wantOps || gotTexts != wantOps {
		t.Fatalf("plan has %d clears and %d texts, want %d of each", gotClears, gotTexts, wantOps)
	}
}

func TestContractAssembleRepeatsValueAcrossPages(t *testing.T) {
	r := &fakeRenderer{}
	a := &ContractAssembler{TemplatePath: writeTemplate(t, "contract.pdf"), Renderer: r}

	in := validContractInput()
	if _, err := a.Assemble(in); err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	// The principal's name is registered on three pages; each mapped
	// location must receive the same text at its own insertion point.
	for _, spec := range contractRegistry[FieldPrincipal] {
		pp := r.plan.Page(spec.PageIndex)
		if pp == nil {
			t.Fatalf("no plan for page %d", spec.PageIndex)
		}
		found := false
		for _, op := range pp.Texts {
			if op.Text == in.Principal && op.At == spec.InsertAt {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("principal %q not stamped at %+v on page %d", in.Principal, spec.InsertAt, spec.PageIndex)
		}
	}
}

func TestContractAssembleDerivedValues(t *testing.T) {
	r := &fakeRenderer{}
	a := &ContractAssembler{TemplatePath: writeTemplate(t, "contract.pdf"), Renderer: r}

	if _, err := a.Assemble(validContractInput()); err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	texts := map[string]bool{}
	for _, idx := range r.plan.Pages() {
		for _, op := range r.plan.Page(idx).Texts {
			texts[op.Text] = true
		}
	}
	for _, want := range []string{"15", "십오", "3월 5일", "010-1234-5678"} {
		if !texts[want] {
			t.Errorf("derived value %q missing from plan", want)
		}
	}
}

func TestContractAssembleMissingFields(t *testing.T) {
	a := &ContractAssembler{TemplatePath: writeTemplate(t, "contract.pdf"), Renderer: &fakeRenderer{}}

	in := validContractInput()
	in.Principal = "  "
	in.Phone = ""
	_, err := a.Assemble(in)

	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingInputError", err)
	}
	got := map[string]bool{}
	for _, f := range missing.Fields {
		got[f] = true
	}
	if !got[FieldPrincipal] || !got[FieldPhone] {
		t.Errorf("missing fields = %v, want principal and phone", missing.Fields)
	}
}

func TestContractAssembleOptionalFieldsOmitted(t *testing.T) {
	r := &fakeRenderer{}
	a := &ContractAssembler{TemplatePath: writeTemplate(t, "contract.pdf"), Renderer: r}

	// Only the five required fields. Relationship, fee rate and drafting
	// date are left out.
	in := ContractInput{
		Party:      "손해사정법인 지산",
		Principal:  "김영수",
		NationalID: "850101-1234567",
		Phone:      "01012345678",
		Address:    "서울특별시 강남구",
	}
	if _, err := a.Assemble(in); err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	// Every marker region is still blanked so no placeholder text survives,
	// but only the supplied fields get an insertion.
	wantClears := 0
	for _, specs := range contractRegistry {
		wantClears += len(specs)
	}
	wantTexts := 0
	for _, field := range []string{FieldParty, FieldPrincipal, FieldNationalID, FieldPhone, FieldAddress} {
		wantTexts += len(contractRegistry[field])
	}
	gotClears, gotTexts := 0, 0
	for _, idx := range r.plan.Pages() {
		pp := r.plan.Page(idx)
		gotClears += len(pp.Clears)
		gotTexts += len(pp.Texts)
	}
	if gotClears != wantClears {
		t.Errorf("plan has %d clears, want %d", gotClears, wantClears)
	}
	if gotTexts != wantTexts {
		t.Errorf("plan has %d texts, want %d", gotTexts, wantTexts)
	}
	if err := r.plan.Validate(); err != nil {
		t.Errorf("plan failed validation: %v", err)
	}
}

func TestContractAssembleTemplateNotFound(t *testing.T) {
	a := &ContractAssembler{
		TemplatePath: filepath.Join(t.TempDir(), "absent.pdf"),
		Renderer:     &fakeRenderer{},
	}
	_, err := a.Assemble(validContractInput())

	var notFound *TemplateNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want TemplateNotFoundError", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01012345678", "010-1234-5678"},
		{"010-1234-5678", "010-1234-5678"},
		{"010 1234 5678", "010-1234-5678"},
		{"0212345678", "021-234-5678"},
		{"123", "123"},
		{"내선 5번", "내선 5번"},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSinoKorean(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{5, "오"},
		{10, "십"},
		{15, "십오"},
		{20, "이십"},
		{37, "삼십칠"},
		{99, "구십구"},
		{120, "120"},
	}
	for _, tt := range tests {
		if got := SinoKorean(tt.n); got != tt.want {
			t.Errorf("SinoKorean(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
