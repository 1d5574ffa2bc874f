package assembly

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ConsentInput carries patient and applicant data for the medical records
// consent form, plus the signing date drawn as separate numerals.
// ApplicantBirth is optional; its marker is left untouched when absent.
type ConsentInput struct {
	PatientName      string
	PatientBirth     string
	PatientPhone     string
	PatientAddress   string
	ApplicantName    string
	ApplicantBirth   string
	ApplicantPhone   string
	ApplicantAddress string
	Relationship     string
	Date             time.Time
}

// ConsentAssembler fills the consent template. Unlike the contract, the
// consent form authors its placeholders as literal Korean marker strings in
// a dedicated style, so their positions are resolved from the page text at
// assembly time instead of from a fixed registry.
type ConsentAssembler struct {
	TemplatePath string
	Renderer     Renderer
	Measurer     WidthMeasurer
	Resolver     Resolver
}

// Descent below the placeholder run's bottom edge for the replacement
// baseline.
const consentBaselineDrop = 1.0

// Assemble locates each marker, blanks it and draws the replacement value,
// then right-aligns the signing-date numerals against their column anchors.
func (a *ConsentAssembler) Assemble(in ConsentInput) ([]byte, error) {
	template, err := os.ReadFile(a.TemplatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateNotFoundError{Path: a.TemplatePath}
		}
		return nil, fmt.Errorf("failed to read consent template: %w", err)
	}

	values, err := in.fieldValues()
	if err != nil {
		return nil, err
	}

	reader, err := OpenTemplate(template)
	if err != nil {
		return nil, fmt.Errorf("failed to parse consent template: %w", err)
	}

	plan := NewPlan(White)
	for pageIdx := 0; pageIdx < reader.NumPage(); pageIdx++ {
		page := reader.Page(pageIdx + 1)
		if page.V.IsNull() {
			continue
		}
		for field, cm := range consentMarkers {
			// Absent optional fields keep their marker untouched.
			if values[field] == "" {
				continue
			}
			matches, err := a.Resolver.FindOnPage(page, cm.Marker, consentStyle)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve marker %q on page %d: %w", cm.Marker, pageIdx, err)
			}
			for _, m := range matches {
				plan.AddClear(pageIdx, m.Region)
				at := Point{X: m.Region.X0, Y: m.Region.Y1 - consentBaselineDrop}
				plan.AddText(pageIdx, at, values[field], cm.FontSize)
			}
		}
	}

	if err := a.addDate(plan, in.Date); err != nil {
		return nil, err
	}

	out, err := a.Renderer.Render(template, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble consent form: %w", err)
	}
	return out, nil
}

// addDate draws year, month and day numerals so each ends rightAlignGap
// short of its column anchor. The form pre-prints the unit suffixes, so
// only the numbers are stamped.
func (a *ConsentAssembler) addDate(plan *Plan, date time.Time) error {
	if date.IsZero() {
		date = time.Now()
	}
	parts := []string{
		fmt.Sprintf("%d", date.Year()),
		fmt.Sprintf("%d", int(date.Month())),
		fmt.Sprintf("%d", date.Day()),
	}
	for pageIdx, anchor := range consentDateAnchors {
		anchorXs := []float64{anchor.YearX, anchor.MonthX, anchor.DayX}
		for i, text := range parts {
			w, err := a.Measurer.Width(text, consentDateFontSize)
			if err != nil {
				return fmt.Errorf("failed to measure date numeral %q: %w", text, err)
			}
			at := Point{X: anchorXs[i] - w - rightAlignGap, Y: anchor.Y}
			plan.AddText(pageIdx, at, text, consentDateFontSize)
		}
	}
	return nil
}

func (in ConsentInput) fieldValues() (map[string]string, error) {
	values := map[string]string{
		"patientName":      in.PatientName,
		"patientBirth":     in.PatientBirth,
		"patientPhone":     NormalizePhone(in.PatientPhone),
		"patientAddress":   in.PatientAddress,
		"applicantName":    in.ApplicantName,
		"applicantBirth":   strings.TrimSpace(in.ApplicantBirth),
		"applicantPhone":   NormalizePhone(in.ApplicantPhone),
		"applicantAddress": in.ApplicantAddress,
		"relationship":     in.Relationship,
	}
	var missing []string
	for field, v := range values {
		if field == "applicantBirth" {
			continue
		}
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingInputError{Fields: missing}
	}
	return values, nil
}
