package model

import "time"

type TableSuggestion struct {
	Table       Table  `json:"table"`
	Score       int    `json:"score"`
	Reason      string `json:"reason"`
	IsAvailable bool   `json:"is_available"`
}

type TimeSlotSuggestion struct {
	StartTime   time.Time         `json:"start_time"`
	Suggestions []TableSuggestion `json:"suggestions"`
}
