package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the indexes and checks the seat guard relies on.
// Seat uniqueness per schedule is enforced by the checkout transaction, which
// locks the schedule row before reading the active bookings.
func MigrateConstraints(db *gorm.DB) error {
	statements := []string{
		// active bookings of a schedule are read on every seat map and checkout
		`CREATE INDEX IF NOT EXISTS idx_bookings_schedule_active
			ON bookings (schedule_id, created_at)
			WHERE status IN ('pending', 'booked')`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_created
			ON bookings (user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_schedules_route_departure
			ON schedules (route_id, departure_time)`,
		`DO $$ BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_buses_total_seats') THEN
				ALTER TABLE buses ADD CONSTRAINT chk_buses_total_seats CHECK (total_seats >= 0);
			END IF;
		END $$`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
