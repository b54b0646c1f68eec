package model

import "time"

type TimeSlotCapacity struct {
	Hour             int       `json:"hour"`
	Minute           int       `json:"minute"`
	TotalCapacity    int       `json:"total_capacity"`
	OccupiedSeats    int       `json:"occupied_seats"`
	OccupancyRate    float64   `json:"occupancy_rate"` // 0-100
	ReservationCount int       `json:"reservation_count"`
	Timestamp        time.Time `json:"timestamp"`
}

type SectorMetrics struct {
	SectorID          string  `json:"sector_id"`
	SectorName        string  `json:"sector_name"`
	TotalTables       int     `json:"total_tables"`
	TotalCapacity     int     `json:"total_capacity"`
	TotalReservations int     `json:"total_reservations"`
	OccupiedSeats     int     `json:"occupied_seats"`
	OccupancyRate     float64 `json:"occupancy_rate"`
	AveragePartySize  float64 `json:"average_party_size"`
	RevenueEstimate   float64 `json:"revenue_estimate"`
}

type SectorComparison struct {
	OccupancyDiff    float64 `json:"occupancy_diff"`
	RevenueDiff      float64 `json:"revenue_diff"`
	ReservationsDiff int     `json:"reservations_diff"`
}
