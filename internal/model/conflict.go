package model

type ConflictReason string

const ConflictReasonOverlap ConflictReason = "overlap"

type ConflictCheck struct {
	HasConflict               bool           `json:"has_conflict"`
	ConflictingReservationIDs []string       `json:"conflicting_reservation_ids"`
	Reason                    ConflictReason `json:"reason,omitempty"`
}
