package database

import (
	"buslane/internal/bookings"
	"buslane/internal/buses"
	"buslane/internal/schedules"
	"buslane/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&buses.Bus{},
		&schedules.Route{},
		&schedules.Schedule{},
		&bookings.Booking{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
