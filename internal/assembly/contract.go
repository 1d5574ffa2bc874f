package assembly

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ContractInput carries the client data stamped into the engagement
// contract template. Relationship, FeeRate, FeeRateWords and DraftingDate
// are optional; absent fields have their markers blanked without a
// replacement value. FeeRateWords is derived from FeeRate when empty.
type ContractInput struct {
	Party        string
	Principal    string
	NationalID   string
	Phone        string
	Address      string
	Relationship string
	FeeRate      int
	FeeRateWords string
	DraftingDate time.Time
}

// ContractAssembler fills the four-page engagement contract. Marker
// locations are fixed per template revision and come from the registry.
type ContractAssembler struct {
	TemplatePath string
	Renderer     Renderer
}

// Assemble stamps the input over the contract template's markers and
// returns the finished PDF.
func (a *ContractAssembler) Assemble(in ContractInput) ([]byte, error) {
	template, err := os.ReadFile(a.TemplatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateNotFoundError{Path: a.TemplatePath}
		}
		return nil, fmt.Errorf("failed to read contract template: %w", err)
	}

	values, err := in.fieldValues()
	if err != nil {
		return nil, err
	}

	// Every marker region is blanked, supplied or not, so unfilled fields
	// never leak placeholder text into the finished document. Only present
	// values get an insertion.
	plan := NewPlan(ContractBackground)
	for _, specs := range contractRegistry {
		for _, spec := range specs {
			plan.AddClear(spec.PageIndex, spec.MarkerRegion)
		}
	}
	for field, text := range values {
		if text == "" {
			continue
		}
		for _, spec := range contractRegistry[field] {
			plan.AddText(spec.PageIndex, spec.InsertAt, text, spec.FontSize)
		}
	}

	out, err := a.Renderer.Render(template, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble contract: %w", err)
	}
	return out, nil
}

func (in ContractInput) fieldValues() (map[string]string, error) {
	var missing []string
	for name, v := range map[string]string{
		FieldParty:      in.Party,
		FieldPrincipal:  in.Principal,
		FieldNationalID: in.NationalID,
		FieldPhone:      in.Phone,
		FieldAddress:    in.Address,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingInputError{Fields: missing}
	}

	feeRate, words := "", in.FeeRateWords
	if in.FeeRate > 0 {
		feeRate = strconv.Itoa(in.FeeRate)
		if words == "" {
			words = SinoKorean(in.FeeRate)
		}
	}
	date := ""
	if !in.DraftingDate.IsZero() {
		date = FormatKoreanDate(in.DraftingDate)
	}

	return map[string]string{
		FieldParty:        in.Party,
		FieldPrincipal:    in.Principal,
		FieldNationalID:   in.NationalID,
		FieldPhone:        NormalizePhone(in.Phone),
		FieldAddress:      in.Address,
		FieldRelationship: in.Relationship,
		FieldFeeRate:      feeRate,
		FieldFeeRateWords: words,
		FieldDraftingDate: date,
	}, nil
}

// FormatKoreanDate renders a date the way the contract's signature block
// expects it, e.g. "3월 5일".
func FormatKoreanDate(t time.Time) string {
	return fmt.Sprintf("%d월 %d일", int(t.Month()), t.Day())
}

// NormalizePhone reformats a Korean phone number into dashed groups.
// Inputs that do not look like a 10 or 11 digit number pass through as-is.
func NormalizePhone(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch len(d) {
	case 11:
		return d[:3] + "-" + d[3:7] + "-" + d[7:]
	case 10:
		return d[:3] + "-" + d[3:6] + "-" + d[6:]
	default:
		return s
	}
}

var sinoDigits = []string{"영", "일", "이", "삼", "사", "오", "육", "칠", "팔", "구"}

// SinoKorean spells a fee-rate percentage in Sino-Korean numerals,
// e.g. 15 becomes "십오" and 20 becomes "이십".
func SinoKorean(n int) string {
	if n < 0 || n > 99 {
		return strconv.Itoa(n)
	}
	if n < 10 {
		return sinoDigits[n]
	}
	var b strings.Builder
	tens, ones := n/10, n%10
	if tens > 1 {
		b.WriteString(sinoDigits[tens])
	}
	b.WriteString("십")
	if ones > 0 {
		b.WriteString(sinoDigits[ones])
	}
	return b.String()
}
