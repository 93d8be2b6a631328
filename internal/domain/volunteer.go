package domain

import (
	"time"

	"github.com/google/uuid"
)

type VolunteerStatus string

const (
	VolunteerOffline    VolunteerStatus = "offline"
	VolunteerOnlineIdle VolunteerStatus = "online_idle"
	VolunteerOnlineBusy VolunteerStatus = "online_busy"
)

// Position is a volunteer's last known location. UpdatedAt drives the
// freshness filter of the geo index: stale fixes are excluded from ranking.
type Position struct {
	Lat       float64   `json:"lat" validate:"lat"`
	Lng       float64   `json:"lng" validate:"lng"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Volunteer invariant: Status == online_busy ⇔ ActiveIncidentID != nil.
// The registry is the only writer of Status/ActiveIncidentID.
type Volunteer struct {
	ID               uuid.UUID       `json:"id"`
	Status           VolunteerStatus `json:"status"`
	Position         Position        `json:"position"`
	ActiveIncidentID *uuid.UUID      `json:"active_incident_id,omitempty"`
}
