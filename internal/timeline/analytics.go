package timeline

import (
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
)

// Default service window of the timeline grid.
const (
	ServiceStartHour = 11
	ServiceEndHour   = 24
)

const (
	OccupancyFull      = "full"
	OccupancyHigh      = "high"
	OccupancyAvailable = "available"
)

type SectorMetric string

const (
	ByOccupancy    SectorMetric = "occupancy"
	ByRevenue      SectorMetric = "revenue"
	ByReservations SectorMetric = "reservations"
)

// CapacityByTimeSlot reports seat occupancy for every 15 minute slot between
// startHour and endHour on date, plus one trailing slot at midnight for
// reservations that run past the end of service. reservations should already
// be narrowed to the date.
func CapacityByTimeSlot(reservations []model.Reservation, tables []model.Table, date time.Time, loc *time.Location, startHour, endHour int) []model.TimeSlotCapacity {
	totalCapacity := 0
	for _, t := range tables {
		totalCapacity += t.Capacity.Max
	}

	day := StartOfDay(date, loc)
	var slots []model.TimeSlotCapacity
	for hour := startHour; hour < endHour; hour++ {
		for minute := 0; minute < 60; minute += SlotMinutes {
			slotStart := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
			slots = append(slots, slotCapacity(reservations, totalCapacity, slotStart, hour, minute))
		}
	}

	midnight := day.AddDate(0, 0, 1)
	slots = append(slots, slotCapacity(reservations, totalCapacity, midnight, 0, 0))
	return slots
}

func slotCapacity(reservations []model.Reservation, totalCapacity int, slotStart time.Time, hour, minute int) model.TimeSlotCapacity {
	slot := Interval{Start: slotStart, End: slotStart.Add(SlotMinutes * time.Minute)}

	var seats, count int
	for _, r := range reservations {
		if Overlaps(slot, reservationInterval(r)) {
			seats += r.PartySize
			count++
		}
	}

	return model.TimeSlotCapacity{
		Hour:             hour,
		Minute:           minute,
		TotalCapacity:    totalCapacity,
		OccupiedSeats:    seats,
		OccupancyRate:    occupancyRate(seats, totalCapacity),
		ReservationCount: count,
		Timestamp:        slotStart,
	}
}

// OccupancyLevel buckets an occupancy percentage.
func OccupancyLevel(rate float64) string {
	switch {
	case rate >= 90:
		return OccupancyFull
	case rate >= 70:
		return OccupancyHigh
	default:
		return OccupancyAvailable
	}
}

// CalculateSectorMetrics summarizes each sector for date. Occupancy is the
// peak seat count sampled every 15 minutes over the service window, not the
// day's accumulated guests. Revenue is estimated from total guests.
func CalculateSectorMetrics(sectors []model.Sector, tables []model.Table, reservations []model.Reservation, date time.Time, loc *time.Location, avgTicketPerPerson float64) []model.SectorMetrics {
	metrics := make([]model.SectorMetrics, 0, len(sectors))
	day := StartOfDay(date, loc)

	for _, sector := range sectors {
		tableIDs := make(map[string]bool)
		capacity := 0
		for _, t := range tables {
			if t.SectorID == sector.ID {
				tableIDs[t.ID] = true
				capacity += t.Capacity.Max
			}
		}

		var reservationsInSector, guests int
		for _, r := range reservations {
			if tableIDs[r.TableID] {
				reservationsInSector++
				guests += r.PartySize
			}
		}

		peak := peakSeats(tableIDs, reservations, day)

		m := model.SectorMetrics{
			SectorID:          sector.ID,
			SectorName:        sector.Name,
			TotalTables:       len(tableIDs),
			TotalCapacity:     capacity,
			TotalReservations: reservationsInSector,
			OccupiedSeats:     peak,
			OccupancyRate:     occupancyRate(peak, capacity),
			RevenueEstimate:   float64(guests) * avgTicketPerPerson,
		}
		if reservationsInSector > 0 {
			m.AveragePartySize = float64(guests) / float64(reservationsInSector)
		}
		metrics = append(metrics, m)
	}
	return metrics
}

func peakSeats(tableIDs map[string]bool, reservations []model.Reservation, day time.Time) int {
	peak := 0
	for hour := ServiceStartHour; hour < ServiceEndHour; hour++ {
		for minute := 0; minute < 60; minute += SlotMinutes {
			at := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
			seats := 0
			for _, r := range reservations {
				if tableIDs[r.TableID] && !at.Before(r.StartTime) && at.Before(r.EndTime) {
					seats += r.PartySize
				}
			}
			if seats > peak {
				peak = seats
			}
		}
	}
	return peak
}

// CompareSectors returns a minus b for the headline metrics.
func CompareSectors(a, b model.SectorMetrics) model.SectorComparison {
	return model.SectorComparison{
		OccupancyDiff:    a.OccupancyRate - b.OccupancyRate,
		RevenueDiff:      a.RevenueEstimate - b.RevenueEstimate,
		ReservationsDiff: a.TotalReservations - b.TotalReservations,
	}
}

// TopSector picks the best sector by the given metric. The first sector wins
// ties.
func TopSector(metrics []model.SectorMetrics, by SectorMetric) (model.SectorMetrics, bool) {
	if len(metrics) == 0 {
		return model.SectorMetrics{}, false
	}
	top := metrics[0]
	for _, m := range metrics[1:] {
		switch by {
		case ByOccupancy:
			if m.OccupancyRate > top.OccupancyRate {
				top = m
			}
		case ByRevenue:
			if m.RevenueEstimate > top.RevenueEstimate {
				top = m
			}
		case ByReservations:
			if m.TotalReservations > top.TotalReservations {
				top = m
			}
		}
	}
	return top, true
}

func occupancyRate(seats, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	rate := float64(seats) / float64(capacity) * 100
	if rate > 100 {
		return 100
	}
	return rate
}
