package model

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"   // awaiting confirmation
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED" // confirmed, not yet seated
	ReservationStatusSeated    ReservationStatus = "SEATED"
	ReservationStatusFinished  ReservationStatus = "FINISHED"
	ReservationStatusNoShow    ReservationStatus = "NO_SHOW"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// ReservationStatuses lists every status in display order.
var ReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusSeated,
	ReservationStatusFinished,
	ReservationStatusNoShow,
	ReservationStatusCancelled,
}

func (s ReservationStatus) Valid() bool {
	for _, known := range ReservationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityStandard   Priority = "STANDARD"
	PriorityVIP        Priority = "VIP"
	PriorityLargeGroup Priority = "LARGE_GROUP"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityStandard, PriorityVIP, PriorityLargeGroup:
		return true
	}
	return false
}

// Rank orders priorities for batch processing: lower goes first.
func (p Priority) Rank() int {
	switch p {
	case PriorityVIP:
		return 0
	case PriorityLargeGroup:
		return 1
	default:
		return 2
	}
}

type ReservationSource string

const (
	SourcePhone       ReservationSource = "phone"
	SourceWeb         ReservationSource = "web"
	SourceWalkIn      ReservationSource = "walkin"
	SourceApp         ReservationSource = "app"
	SourceBatchImport ReservationSource = "batch-import"
)

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// Reservation occupies one table over [StartTime, EndTime).
// EndTime is always StartTime + DurationMinutes.
type Reservation struct {
	ID              string            `json:"id"`
	TableID         string            `json:"table_id"`
	Customer        Customer          `json:"customer"`
	PartySize       int               `json:"party_size"`
	StartTime       time.Time         `json:"start_time"`
	EndTime         time.Time         `json:"end_time"`
	DurationMinutes int               `json:"duration_minutes"`
	Status          ReservationStatus `json:"status"`
	Priority        Priority          `json:"priority"`
	Notes           string            `json:"notes,omitempty"`
	Source          ReservationSource `json:"source,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

type CreateReservationInput struct {
	TableID         string            `json:"table_id"`
	Customer        Customer          `json:"customer"`
	PartySize       int               `json:"party_size"`
	StartTime       time.Time         `json:"start_time"`
	DurationMinutes int               `json:"duration_minutes"`
	Status          ReservationStatus `json:"status,omitempty"`
	Priority        Priority          `json:"priority,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Source          ReservationSource `json:"source,omitempty"`
}

// CustomerPatch carries only the customer fields that should change.
type CustomerPatch struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// UpdateReservationInput is a partial update: nil means "leave unchanged".
type UpdateReservationInput struct {
	ID              string             `json:"id"`
	TableID         *string            `json:"table_id,omitempty"`
	Customer        *CustomerPatch     `json:"customer,omitempty"`
	PartySize       *int               `json:"party_size,omitempty"`
	StartTime       *time.Time         `json:"start_time,omitempty"`
	DurationMinutes *int               `json:"duration_minutes,omitempty"`
	Status          *ReservationStatus `json:"status,omitempty"`
	Priority        *Priority          `json:"priority,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
}
