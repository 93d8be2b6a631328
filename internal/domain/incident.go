package domain

import (
	"time"

	"github.com/google/uuid"
)

type IncidentState string

const (
	IncidentCreated      IncidentState = "created"
	IncidentDispatching  IncidentState = "dispatching"
	IncidentAssigned     IncidentState = "assigned"
	IncidentResolved     IncidentState = "resolved"
	IncidentCancelled    IncidentState = "cancelled"
	IncidentUnassignable IncidentState = "unassignable"
)

// Terminal reports whether no further transitions are allowed from s.
func (s IncidentState) Terminal() bool {
	switch s {
	case IncidentResolved, IncidentCancelled, IncidentUnassignable:
		return true
	}
	return false
}

type OfferOutcome string

const (
	OfferAccepted OfferOutcome = "accepted"
	OfferDeclined OfferOutcome = "declined"
	OfferTimedOut OfferOutcome = "timed_out"
)

// OfferRecord is one entry of an incident's offer history. Entries are
// append-only and non-decreasing in OfferedAt.
type OfferRecord struct {
	VolunteerID uuid.UUID     `json:"volunteer_id"`
	OfferedAt   time.Time     `json:"offered_at"`
	Deadline    time.Time     `json:"deadline"`
	Round       int           `json:"round"`
	Outcome     *OfferOutcome `json:"outcome,omitempty"`
}

// Location of a patient alert, with the GPS accuracy radius the patient
// boundary reported with the fix.
type Location struct {
	Lat       float64 `json:"lat" validate:"lat"`
	Lng       float64 `json:"lng" validate:"lng"`
	AccuracyM float64 `json:"accuracy_m" validate:"omitempty,min=0"`
}

type Incident struct {
	ID                  uuid.UUID     `json:"id"`
	PatientID           uuid.UUID     `json:"patient_id"`
	Location            Location      `json:"location"`
	State               IncidentState `json:"state"`
	AssignedVolunteerID *uuid.UUID    `json:"assigned_volunteer_id,omitempty"`
	AssignedAt          *time.Time    `json:"assigned_at,omitempty"`
	OfferHistory        []OfferRecord `json:"offer_history,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
}

// OfferedInRound reports whether the volunteer already holds an offer-history
// entry for the given dispatch round. One offer per volunteer per round.
func (i *Incident) OfferedInRound(volunteerID uuid.UUID, round int) bool {
	for _, rec := range i.OfferHistory {
		if rec.VolunteerID == volunteerID && rec.Round == round {
			return true
		}
	}
	return false
}
