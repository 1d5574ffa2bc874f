package models

// These structs define the JSON payloads between the dashboard frontend and
// the server's document and report endpoints.

// ContractRequest is the input for the engagement contract endpoint.
// Relationship, the fee-rate pair and the drafting date may be omitted;
// their markers are blanked without a replacement value.
type ContractRequest struct {
	Party        string `json:"party"`
	Principal    string `json:"principal"`
	NationalID   string `json:"nationalId"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	Relationship string `json:"relationship,omitempty"`
	FeeRate      int    `json:"feeRate,omitempty"`
	FeeRateWords string `json:"feeRateWords,omitempty"`
	// RFC 3339 date; empty omits the drafting date.
	DraftingDate string `json:"draftingDate,omitempty"`
}

// ConsentRequest is the input for the medical records consent endpoint.
type ConsentRequest struct {
	PatientName      string `json:"patientName"`
	PatientBirth     string `json:"patientBirth"`
	PatientPhone     string `json:"patientPhone"`
	PatientAddress   string `json:"patientAddress"`
	ApplicantName    string `json:"applicantName"`
	ApplicantBirth   string `json:"applicantBirth,omitempty"`
	ApplicantPhone   string `json:"applicantPhone"`
	ApplicantAddress string `json:"applicantAddress"`
	Relationship     string `json:"relationship"`
	// RFC 3339 date; empty means today.
	Date string `json:"date,omitempty"`
}

// ReplyRequest carries an adjuster's answer during verification.
type ReplyRequest struct {
	Content string `json:"content"`
}

// RevisionRequest asks for a rework of the completed report.
type RevisionRequest struct {
	Request string `json:"request"`
}

// MessageView is a display-ready transcript entry. Summary marks the long
// opening intake message so the frontend collapses it behind a label
// instead of dumping the full rendered form into the chat history.
type MessageView struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Summary bool   `json:"summary,omitempty"`
}

// SessionResponse is the session state returned by report endpoints. The
// verification hint saves the frontend from re-implementing phrase
// matching.
type SessionResponse struct {
	Session              *ReportSession `json:"session"`
	Messages             []MessageView  `json:"messages"`
	VerificationComplete bool           `json:"verificationComplete"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
