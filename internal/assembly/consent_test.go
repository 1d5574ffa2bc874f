package assembly

import (
	"errors"
	"testing"
	"time"
	"unicode/utf8"
)

// fakeMeasurer reports half the font size per rune, a stable stand-in for a
// real font face.
type fakeMeasurer struct{}

func (fakeMeasurer) Width(text string, size float64) (float64, error) {
	return float64(utf8.RuneCountInString(text)) * size * 0.5, nil
}

func TestConsentDateRightAlignment(t *testing.T) {
	a := &ConsentAssembler{Measurer: fakeMeasurer{}}
	plan := NewPlan(White)
	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if err := a.addDate(plan, date); err != nil {
		t.Fatalf("addDate returned error: %v", err)
	}

	for pageIdx, anchor := range consentDateAnchors {
		pp := plan.Page(pageIdx)
		if pp == nil {
			t.Fatalf("no date stamps on page %d", pageIdx)
		}
		if len(pp.Texts) != 3 {
			t.Fatalf("page %d has %d date stamps, want 3", pageIdx, len(pp.Texts))
		}
		anchorXs := []float64{anchor.YearX, anchor.MonthX, anchor.DayX}
		wantText := []string{"2026", "8", "30"}
		for i, op := range pp.Texts {
			if op.Text != wantText[i] {
				t.Errorf("page %d stamp %d text = %q, want %q", pageIdx, i, op.Text, wantText[i])
			}
			if op.FontSize != consentDateFontSize {
				t.Errorf("page %d stamp %d size = %g, want %d", pageIdx, i, op.FontSize, consentDateFontSize)
			}
			if op.At.Y != anchor.Y {
				t.Errorf("page %d stamp %d baseline = %g, want %g", pageIdx, i, op.At.Y, anchor.Y)
			}
			// Each numeral's right edge must land rightAlignGap short of
			// its column anchor.
			w, _ := fakeMeasurer{}.Width(op.Text, consentDateFontSize)
			if end := op.At.X + w + rightAlignGap; abs(end-anchorXs[i]) > 0.01 {
				t.Errorf("page %d stamp %d right edge = %g, want %g", pageIdx, i, end, anchorXs[i])
			}
		}
	}
}

func TestConsentFieldValuesNormalizesPhones(t *testing.T) {
	in := validConsentInput()
	in.PatientPhone = "010 9876 5432"

	values, err := in.fieldValues()
	if err != nil {
		t.Fatalf("fieldValues returned error: %v", err)
	}
	if got := values["patientPhone"]; got != "010-9876-5432" {
		t.Errorf("patientPhone = %q, want dashed form", got)
	}
}

func TestConsentFieldValuesMissing(t *testing.T) {
	in := validConsentInput()
	in.ApplicantAddress = ""
	in.PatientBirth = "   "
	in.Relationship = ""

	_, err := in.fieldValues()
	var missing *MissingInputError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingInputError", err)
	}
	got := map[string]bool{}
	for _, f := range missing.Fields {
		got[f] = true
	}
	if !got["applicantAddress"] || !got["patientBirth"] || !got["relationship"] {
		t.Errorf("missing fields = %v", missing.Fields)
	}
}

func TestConsentFieldValuesCoverEveryMarker(t *testing.T) {
	// Every marker baked into the template must have a replacement value,
	// otherwise a resolved marker would be cleared and re-stamped empty.
	values, err := validConsentInput().fieldValues()
	if err != nil {
		t.Fatalf("fieldValues returned error: %v", err)
	}
	for field := range consentMarkers {
		if values[field] == "" {
			t.Errorf("marker field %q has no value", field)
		}
	}
}

func TestConsentFieldValuesApplicantBirthOptional(t *testing.T) {
	in := validConsentInput()
	in.ApplicantBirth = ""

	values, err := in.fieldValues()
	if err != nil {
		t.Fatalf("fieldValues returned error: %v", err)
	}
	if values["applicantBirth"] != "" {
		t.Errorf("applicantBirth = %q, want empty", values["applicantBirth"])
	}
}

func validConsentInput() ConsentInput {
	return ConsentInput{
		PatientName:      "김영수",
		PatientBirth:     "1985-01-01",
		PatientPhone:     "01012345678",
		PatientAddress:   "서울특별시 강남구",
		ApplicantName:    "김민지",
		ApplicantBirth:   "1990-05-12",
		ApplicantPhone:   "01087654321",
		ApplicantAddress: "서울특별시 서초구",
		Relationship:     "배우자",
		Date:             time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
	}
}
