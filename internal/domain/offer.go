package domain

import (
	"time"

	"github.com/google/uuid"
)

// OfferSummary is what a volunteer's device sees before committing. It is
// privacy-reduced on purpose: distance is rounded and no coordinates or
// patient identity are included until the assignment is committed.
type OfferSummary struct {
	IncidentID uuid.UUID `json:"incident_id"`
	DistanceKM float64   `json:"distance_km"`
	Accuracy   string    `json:"accuracy"` // "precise" | "approximate"
	OfferedAt  time.Time `json:"offered_at"`
	Deadline   time.Time `json:"deadline"`
}

// AssignmentView is revealed to exactly one volunteer, after commit.
type AssignmentView struct {
	IncidentID uuid.UUID `json:"incident_id"`
	PatientID  uuid.UUID `json:"patient_id"`
	Location   Location  `json:"location"`
	AssignedAt time.Time `json:"assigned_at"`
}

type OfferResponse string

const (
	ResponseAccept  OfferResponse = "accept"
	ResponseDecline OfferResponse = "decline"
)
