package bookings

import (
	"context"
	"fmt"

	"buslane/internal/seatmap"
)

// RecordSource feeds the occupancy reconciler with the bookings of a schedule
// and their holder names.
type RecordSource struct {
	repo    Repository
	holders HolderDirectory
}

func NewRecordSource(repo Repository, holders HolderDirectory) *RecordSource {
	return &RecordSource{repo: repo, holders: holders}
}

func (rs *RecordSource) RecordsForSchedule(ctx context.Context, scheduleID string) ([]seatmap.BookingRecord, error) {
	bookings, err := rs.repo.ListBySchedule(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	names, err := rs.holders.FullNames(ctx, userIDs(bookings))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve booking holders: %w", err)
	}

	records := make([]seatmap.BookingRecord, 0, len(bookings))
	for i := range bookings {
		records = append(records, bookings[i].Record(names[bookings[i].UserID.String()]))
	}
	return records, nil
}
