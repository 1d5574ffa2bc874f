package models

import (
	"time"

	"github.com/a01041072831-pixel/Jisan-Platform/internal/transcript"
)

// Phase is the wizard stage a report session is in. Phases only move
// forward; revisions rework the draft without leaving PhaseComplete.
type Phase string

const (
	PhaseIntake       Phase = "intake"
	PhaseVerification Phase = "verification"
	PhaseDrafting     Phase = "drafting"
	PhaseReview       Phase = "review"
	PhaseComplete     Phase = "complete"
)

// InsuranceContract is one policy covering the insured.
type InsuranceContract struct {
	Company      string `json:"company" firestore:"company"`
	Product      string `json:"product" firestore:"product"`
	PolicyNumber string `json:"policyNumber" firestore:"policyNumber"`
	Period       string `json:"period" firestore:"period"`
	Coverage     string `json:"coverage" firestore:"coverage"`
}

// ReportIntake is the structured case data collected before verification.
type ReportIntake struct {
	InsuredName         string              `json:"insuredName" firestore:"insuredName"`
	InsuredBirth        string              `json:"insuredBirth" firestore:"insuredBirth"`
	InsuredAddress      string              `json:"insuredAddress" firestore:"insuredAddress"`
	InsuredPhone        string              `json:"insuredPhone" firestore:"insuredPhone"`
	Contracts           []InsuranceContract `json:"contracts" firestore:"contracts"`
	AccidentDate        string              `json:"accidentDate" firestore:"accidentDate"`
	AccidentPlace       string              `json:"accidentPlace" firestore:"accidentPlace"`
	AccidentDescription string              `json:"accidentDescription" firestore:"accidentDescription"`
	AdditionalInfo      string              `json:"additionalInfo" firestore:"additionalInfo"`
}

// ReportSession is the full state of one wizard run. It is the unit of
// persistence: every mutation saves the whole session.
type ReportSession struct {
	ID            string               `json:"id" firestore:"id"`
	Phase         Phase                `json:"phase" firestore:"phase"`
	Intake        ReportIntake         `json:"intake" firestore:"intake"`
	UploadedTexts []string             `json:"uploadedTexts" firestore:"uploadedTexts"`
	Conversation  []transcript.Message `json:"conversation" firestore:"conversation"`
	Draft         string               `json:"draft" firestore:"draft"`
	Review        string               `json:"review" firestore:"review"`
	CreatedAt     time.Time            `json:"createdAt" firestore:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt" firestore:"updatedAt"`
}
