package assembly

import "strings"

// Static field registries for the two hand-prepared templates. Coordinates
// were measured against the 2026 template revisions; re-measure whenever a
// template file changes.

// Color is an RGB color with components in [0, 1].
type Color struct {
	R float64
	G float64
	B float64
}

var (
	// ContractBackground matches the contract template's cream page color
	// (RGB 251, 245, 231), so cleared marker regions blend in.
	ContractBackground = Color{R: 0.984, G: 0.961, B: 0.906}

	White = Color{R: 1, G: 1, B: 1}
	Black = Color{R: 0, G: 0, B: 0}
)

// FieldSpec binds one marker location inside a template to the point where
// the replacement value is drawn. Immutable after process start.
type FieldSpec struct {
	PageIndex    int
	MarkerRegion Rect
	InsertAt     Point
	FontSize     float64
}

// StyleSignature identifies template-authored placeholder runs by font and
// size. Placeholders are rendered in a font/size combination unused by the
// genuine document text, so exact-text plus style matching avoids collateral
// hits. Versioned per template.
type StyleSignature struct {
	FontContains  string
	Size          float64
	SizeTolerance float64
}

// Matches reports whether a run's font name and size fit the signature.
func (s StyleSignature) Matches(fontName string, fontSize float64) bool {
	if s.FontContains != "" && !containsFold(fontName, s.FontContains) {
		return false
	}
	diff := fontSize - s.Size
	if diff < 0 {
		diff = -diff
	}
	return diff < s.SizeTolerance
}

// Contract template field registry. A logical field may map to several
// marker locations across pages (e.g. the principal's name appears on
// pages 0, 2 and 3). All contract values are drawn at 10pt.
const contractFontSize = 10

var contractRegistry = map[string][]FieldSpec{
	// Page 0: claims-adjustment power of attorney.
	FieldParty: {
		{PageIndex: 0, MarkerRegion: Rect{143.5, 112.5, 213.5, 123.5}, InsertAt: Point{163.5, 124.0}, FontSize: contractFontSize},
		{PageIndex: 1, MarkerRegion: Rect{165.5, 173.0, 235.5, 184.0}, InsertAt: Point{185.5, 185.0}, FontSize: contractFontSize},
	},
	FieldDraftingDate: {
		{PageIndex: 0, MarkerRegion: Rect{428.5, 607.6, 484.5, 618.6}, InsertAt: Point{448.5, 619.0}, FontSize: contractFontSize},
		{PageIndex: 2, MarkerRegion: Rect{415.0, 295.1, 471.0, 306.1}, InsertAt: Point{435.0, 307.0}, FontSize: contractFontSize},
	},
	FieldPrincipal: {
		{PageIndex: 0, MarkerRegion: Rect{197.0, 640.6, 248.3, 651.6}, InsertAt: Point{217.0, 652.0}, FontSize: contractFontSize},
		{PageIndex: 2, MarkerRegion: Rect{199.0, 328.0, 241.0, 339.0}, InsertAt: Point{219.0, 340.0}, FontSize: contractFontSize},
		{PageIndex: 3, MarkerRegion: Rect{207.5, 672.1, 249.5, 683.1}, InsertAt: Point{227.5, 684.0}, FontSize: contractFontSize},
	},
	FieldRelationship: {
		{PageIndex: 0, MarkerRegion: Rect{459.0, 638.0, 487.0, 649.0}, InsertAt: Point{459.0, 650.0}, FontSize: contractFontSize},
		{PageIndex: 2, MarkerRegion: Rect{459.5, 329.1, 487.5, 340.1}, InsertAt: Point{459.5, 341.0}, FontSize: contractFontSize},
		{PageIndex: 3, MarkerRegion: Rect{486.0, 671.6, 514.0, 682.6}, InsertAt: Point{486.0, 683.0}, FontSize: contractFontSize},
	},
	FieldNationalID: {
		{PageIndex: 0, MarkerRegion: Rect{198.0, 667.1, 254.0, 678.1}, InsertAt: Point{218.0, 679.0}, FontSize: contractFontSize},
		{PageIndex: 2, MarkerRegion: Rect{201.0, 360.6, 257.0, 371.6}, InsertAt: Point{221.0, 372.0}, FontSize: contractFontSize},
	},
	FieldPhone: {
		{PageIndex: 0, MarkerRegion: Rect{425.5, 667.1, 467.5, 678.1}, InsertAt: Point{445.5, 679.0}, FontSize: contractFontSize},
		{PageIndex: 2, MarkerRegion: Rect{426.0, 361.1, 468.0, 372.1}, InsertAt: Point{446.0, 373.0}, FontSize: contractFontSize},
	},
	// Page 1: fee agreement.
	FieldFeeRate: {
		{PageIndex: 1, MarkerRegion: Rect{257.5, 466.1, 299.5, 477.1}, InsertAt: Point{277.5, 478.0}, FontSize: contractFontSize},
	},
	FieldFeeRateWords: {
		{PageIndex: 1, MarkerRegion: Rect{358.5, 468.6, 408.5, 479.6}, InsertAt: Point{378.5, 480.0}, FontSize: contractFontSize},
	},
	// Page 2: special terms.
	FieldAddress: {
		{PageIndex: 2, MarkerRegion: Rect{202.5, 391.6, 230.5, 402.6}, InsertAt: Point{222.5, 403.0}, FontSize: contractFontSize},
	},
}

// Logical field names for the contract template.
const (
	FieldParty        = "party"
	FieldPrincipal    = "principal"
	FieldNationalID   = "nationalId"
	FieldPhone        = "phone"
	FieldAddress      = "address"
	FieldRelationship = "relationship"
	FieldFeeRate      = "feeRate"
	FieldFeeRateWords = "feeRateWords"
	FieldDraftingDate = "draftingDate"
)

// consentMarker binds a literal placeholder string baked into the consent
// template to the request field that replaces it. The marker text varies per
// field but every marker shares the template's Gulim 14pt placeholder style,
// so locations are resolved dynamically per page instead of from fixed
// coordinates.
type consentMarker struct {
	Marker   string
	FontSize float64
}

var consentStyle = StyleSignature{FontContains: "Gulim", Size: 14.0, SizeTolerance: 1.0}

var consentMarkers = map[string]consentMarker{
	"patientName":      {Marker: "환자이름", FontSize: 12},
	"patientBirth":     {Marker: "환자생년월일", FontSize: 10},
	"patientPhone":     {Marker: "환자전화번호", FontSize: 12},
	"patientAddress":   {Marker: "환자의주소", FontSize: 10},
	"applicantName":    {Marker: "신청인이름", FontSize: 12},
	"applicantBirth":   {Marker: "신청인생년월일", FontSize: 10},
	"applicantPhone":   {Marker: "신청인전화번호", FontSize: 12},
	"applicantAddress": {Marker: "신청인주소", FontSize: 10},
	"relationship":     {Marker: "관계", FontSize: 12},
}

// dateAnchor holds the right edges of the year/month/day slots at the bottom
// of a consent page. Numerals are right-aligned against these anchors, so the
// insertion x depends on the measured digit width.
type dateAnchor struct {
	YearX  float64
	MonthX float64
	DayX   float64
	Y      float64
}

var consentDateAnchors = map[int]dateAnchor{
	0: {YearX: 449.67, MonthX: 482.67, DayX: 518.67, Y: 681.94},
	1: {YearX: 415.00, MonthX: 469.00, DayX: 518.33, Y: 453.27},
}

const (
	consentDateFontSize = 9
	// Gap between a right-aligned numeral and its anchor.
	rightAlignGap = 1.0
)

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
