package timeline

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
)

var serviceDay = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return serviceDay.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func reservation(id, tableID string, start time.Time, minutes, partySize int) model.Reservation {
	return model.Reservation{
		ID:              id,
		TableID:         tableID,
		Customer:        model.Customer{Name: "Guest " + id, Phone: "+54 9 11 5555 0000"},
		PartySize:       partySize,
		StartTime:       start,
		EndTime:         EndTime(start, minutes),
		DurationMinutes: minutes,
		Status:          model.ReservationStatusConfirmed,
		Priority:        model.PriorityStandard,
		Source:          model.SourcePhone,
	}
}

func table(id, sectorID string, min, max int) model.Table {
	return model.Table{ID: id, SectorID: sectorID, Name: id, Capacity: model.Capacity{Min: min, Max: max}}
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// testBook holds A=[19:00,21:00) and B=[21:30,23:00) on TABLE_M1.
func testBook() Book {
	return NewBook([]model.Reservation{
		reservation("A", "TABLE_M1", at(19, 0), 120, 4),
		reservation("B", "TABLE_M1", at(21, 30), 90, 2),
	}, WithIDGenerator(sequentialIDs("RES")), WithClock(fixedClock(at(12, 0))))
}
