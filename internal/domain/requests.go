package domain

import "github.com/google/uuid"

type SubmitAlertRequest struct {
	PatientID string  `json:"patient_id" validate:"required,uuid"`
	Lat       float64 `json:"lat" validate:"lat"`
	Lng       float64 `json:"lng" validate:"lng"`
	AccuracyM float64 `json:"accuracy_m" validate:"omitempty,min=0"`
}

type SubmitAlertResponse struct {
	IncidentID uuid.UUID `json:"incident_id"`
}

type IncidentStatusResponse struct {
	IncidentID          uuid.UUID     `json:"incident_id"`
	State               IncidentState `json:"state"`
	AssignedVolunteerID *uuid.UUID    `json:"assigned_volunteer_id,omitempty"`
}

type SetStatusRequest struct {
	Online   bool      `json:"online"`
	Position *Position `json:"position" validate:"omitempty"`
}

type PositionPingRequest struct {
	Lat float64 `json:"lat" validate:"lat"`
	Lng float64 `json:"lng" validate:"lng"`
}

type RespondRequest struct {
	IncidentID string        `json:"incident_id" validate:"required,uuid"`
	Response   OfferResponse `json:"response" validate:"required,oneof=accept decline"`
}

type ResolveRequest struct {
	IncidentID string `json:"incident_id" validate:"required,uuid"`
}

type WithdrawRequest struct {
	IncidentID string `json:"incident_id" validate:"required,uuid"`
}
