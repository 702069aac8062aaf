package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"buslane/internal/bookings"
	"buslane/internal/buses"
	"buslane/internal/schedules"
	"buslane/internal/seatmap"
	"buslane/internal/shared/config"
	"buslane/internal/shared/database"
	"buslane/internal/users"
	"buslane/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixture.yaml
var defaultFixture []byte

type Fixture struct {
	Users     []UserFixture     `yaml:"users"`
	Buses     []BusFixture      `yaml:"buses"`
	Routes    []RouteFixture    `yaml:"routes"`
	Schedules []ScheduleFixture `yaml:"schedules"`
	Bookings  []BookingFixture  `yaml:"bookings"`
}

type UserFixture struct {
	Key      string     `yaml:"key"`
	FullName string     `yaml:"full_name"`
	Email    string     `yaml:"email"`
	Role     users.Role `yaml:"role"`
}

type LayoutFixture struct {
	Rows           int      `yaml:"rows"`
	Columns        int      `yaml:"columns"`
	AisleColumn    int      `yaml:"aisle_column"`
	IncludeBackRow bool     `yaml:"include_back_row"`
	BackRowSeats   int      `yaml:"back_row_seats"`
	Excluded       []string `yaml:"excluded"`
}

type BusFixture struct {
	Key      string         `yaml:"key"`
	Number   string         `yaml:"number"`
	Type     buses.BusType  `yaml:"type"`
	Features []string       `yaml:"features"`
	Layout   *LayoutFixture `yaml:"layout"`
}

type RouteFixture struct {
	Key         string `yaml:"key"`
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
	DistanceKm  int    `yaml:"distance_km"`
}

type ScheduleFixture struct {
	Key       string        `yaml:"key"`
	Route     string        `yaml:"route"`
	Bus       string        `yaml:"bus"`
	DepartsIn time.Duration `yaml:"departs_in"`
	Duration  time.Duration `yaml:"duration"`
	Price     float64       `yaml:"price"`
}

type BookingFixture struct {
	User     string          `yaml:"user"`
	Schedule string          `yaml:"schedule"`
	Seats    []string        `yaml:"seats"`
	Status   bookings.Status `yaml:"status"`
}

type Seeder struct {
	db       *gorm.DB
	password string
	now      time.Time
	log      *logger.Logger

	users     map[string]uuid.UUID
	buses     map[string]*buses.Bus
	routes    map[string]uuid.UUID
	schedules map[string]*schedules.Schedule
}

func main() {
	fixturePath := pflag.StringP("fixture", "f", "", "YAML fixture to load instead of the built-in one")
	password := pflag.String("password", "qwerty", "password set on every seeded user")
	clean := pflag.Bool("clean", true, "truncate tables before seeding")
	dryRun := pflag.Bool("dry-run", false, "validate the fixture without touching the database")
	pflag.Parse()

	log := logger.GetDefault()

	data := defaultFixture
	if *fixturePath != "" {
		var err error
		if data, err = os.ReadFile(*fixturePath); err != nil {
			log.Error("failed to read fixture", "path", *fixturePath, "error", err)
			os.Exit(1)
		}
	}

	fixture, err := parseFixture(data)
	if err != nil {
		log.Error("invalid fixture", "error", err)
		os.Exit(1)
	}
	if *dryRun {
		log.Info("fixture is valid",
			"users", len(fixture.Users), "buses", len(fixture.Buses),
			"schedules", len(fixture.Schedules), "bookings", len(fixture.Bookings))
		return
	}

	db, err := database.InitDB(config.Load())
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	seeder := &Seeder{
		db:        db.GetPostgreSQL(),
		password:  *password,
		now:       time.Now().UTC().Truncate(time.Hour),
		log:       log,
		users:     make(map[string]uuid.UUID),
		buses:     make(map[string]*buses.Bus),
		routes:    make(map[string]uuid.UUID),
		schedules: make(map[string]*schedules.Schedule),
	}

	if *clean {
		if err := seeder.CleanDatabase(); err != nil {
			log.Error("failed to clean database", "error", err)
			os.Exit(1)
		}
	}

	if err := seeder.SeedAll(fixture); err != nil {
		log.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// cached layouts and searches would describe the truncated rows
	if err := db.GetRedisClient().FlushDB(context.Background()).Err(); err != nil {
		log.Warn("failed to clear Redis cache", "error", err)
	}

	log.Info("seeding completed")
}

func parseFixture(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	for _, b := range fixture.Buses {
		if !b.Type.IsValid() {
			return nil, fmt.Errorf("bus %s: invalid type %q", b.Key, b.Type)
		}
		if b.Layout != nil {
			if _, err := b.Layout.inclusion(); err != nil {
				return nil, fmt.Errorf("bus %s: %w", b.Key, err)
			}
		}
	}
	for _, b := range fixture.Bookings {
		if !b.Status.IsValid() {
			return nil, fmt.Errorf("booking for %s: invalid status %q", b.User, b.Status)
		}
	}
	return &fixture, nil
}

// inclusion generates the layout with every seat included except the
// excluded labels.
func (l *LayoutFixture) inclusion() (*seatmap.Inclusion, error) {
	layout, err := seatmap.Generate(seatmap.LayoutSpec{
		Rows:           l.Rows,
		Columns:        l.Columns,
		AisleColumn:    l.AisleColumn,
		IncludeBackRow: l.IncludeBackRow,
		BackRowSeats:   l.BackRowSeats,
	})
	if err != nil {
		return nil, err
	}
	inclusion := seatmap.NewInclusion(layout)
	inclusion.SelectAll()

	total := inclusion.TotalSeats()
	inclusion.OnChange = func(t int) { total = t }
	for _, label := range l.Excluded {
		row, col, ok := layout.Locate(label)
		if !ok {
			return nil, fmt.Errorf("excluded seat %s is not in the layout", label)
		}
		before := total
		if err := inclusion.Set(row, col, false); err != nil {
			return nil, err
		}
		if total == before {
			return nil, fmt.Errorf("excluded seat %s is listed twice", label)
		}
	}
	inclusion.OnChange = nil
	return inclusion, nil
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{"bookings", "schedules", "routes", "buses", "users"}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			s.log.Info("truncating table", "table", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds every section of the fixture in dependency order
func (s *Seeder) SeedAll(fixture *Fixture) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.seedUsers(tx, fixture.Users); err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}
		if err := s.seedBuses(tx, fixture.Buses); err != nil {
			return fmt.Errorf("failed to seed buses: %w", err)
		}
		if err := s.seedRoutes(tx, fixture.Routes); err != nil {
			return fmt.Errorf("failed to seed routes: %w", err)
		}
		if err := s.seedSchedules(tx, fixture.Schedules); err != nil {
			return fmt.Errorf("failed to seed schedules: %w", err)
		}
		if err := s.seedBookings(tx, fixture.Bookings); err != nil {
			return fmt.Errorf("failed to seed bookings: %w", err)
		}
		return nil
	})
}

func (s *Seeder) seedUsers(tx *gorm.DB, fixtures []UserFixture) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	for _, f := range fixtures {
		user := users.User{
			ID:       uuid.New(),
			FullName: f.FullName,
			Email:    strings.ToLower(f.Email),
			Password: string(hashedPassword),
			Role:     f.Role,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", f.Email, err)
		}
		s.users[f.Key] = user.ID
		s.log.Info("created user", "email", user.Email, "role", user.Role)
	}
	return nil
}

func (s *Seeder) seedBuses(tx *gorm.DB, fixtures []BusFixture) error {
	for _, f := range fixtures {
		bus := &buses.Bus{
			ID:       uuid.New(),
			Number:   strings.ToUpper(f.Number),
			Type:     f.Type,
			Features: f.Features,
		}
		if f.Layout != nil {
			inclusion, err := f.Layout.inclusion()
			if err != nil {
				return fmt.Errorf("bus %s: %w", f.Key, err)
			}
			spec := inclusion.Layout().Spec
			bus.Rows = spec.Rows
			bus.Columns = spec.Columns
			bus.AisleColumn = spec.AisleColumn
			bus.IncludeBackRow = spec.IncludeBackRow
			bus.BackRowSeats = spec.BackRowSeats
			bus.SeatLayout = inclusion.Grid()
			bus.TotalSeats = inclusion.TotalSeats()
		}
		if err := tx.Create(bus).Error; err != nil {
			return fmt.Errorf("failed to create bus %s: %w", f.Number, err)
		}
		s.buses[f.Key] = bus
		s.log.Info("created bus", "number", bus.Number, "total_seats", bus.TotalSeats)
	}
	return nil
}

func (s *Seeder) seedRoutes(tx *gorm.DB, fixtures []RouteFixture) error {
	for _, f := range fixtures {
		route := schedules.Route{ID: uuid.New(), Source: f.Source, Destination: f.Destination, DistanceKm: f.DistanceKm}
		if err := tx.Create(&route).Error; err != nil {
			return fmt.Errorf("failed to create route %s: %w", f.Key, err)
		}
		s.routes[f.Key] = route.ID
	}
	return nil
}

func (s *Seeder) seedSchedules(tx *gorm.DB, fixtures []ScheduleFixture) error {
	for _, f := range fixtures {
		routeID, ok := s.routes[f.Route]
		if !ok {
			return fmt.Errorf("schedule %s: unknown route %s", f.Key, f.Route)
		}
		bus, ok := s.buses[f.Bus]
		if !ok || !bus.HasLayout() {
			return fmt.Errorf("schedule %s: bus %s is missing or has no layout", f.Key, f.Bus)
		}

		departure := s.now.Add(f.DepartsIn)
		schedule := &schedules.Schedule{
			ID:            uuid.New(),
			RouteID:       routeID,
			BusID:         bus.ID,
			DepartureTime: departure,
			ArrivalTime:   departure.Add(f.Duration),
			Price:         f.Price,
		}
		if err := tx.Omit("Route").Create(schedule).Error; err != nil {
			return fmt.Errorf("failed to create schedule %s: %w", f.Key, err)
		}
		s.schedules[f.Key] = schedule
		s.log.Info("created schedule", "key", f.Key, "departure", departure)
	}
	return nil
}

func (s *Seeder) seedBookings(tx *gorm.DB, fixtures []BookingFixture) error {
	for i, f := range fixtures {
		userID, ok := s.users[f.User]
		if !ok {
			return fmt.Errorf("booking %d: unknown user %s", i, f.User)
		}
		schedule, ok := s.schedules[f.Schedule]
		if !ok {
			return fmt.Errorf("booking %d: unknown schedule %s", i, f.Schedule)
		}

		booking := bookings.Booking{
			ID:         uuid.New(),
			UserID:     userID,
			ScheduleID: schedule.ID,
			Seats:      f.Seats,
			TotalPrice: float64(len(f.Seats)) * schedule.Price,
			Status:     f.Status,
			BookingRef: fmt.Sprintf("SEED-%s-%03d", s.now.Format("20060102"), i+1),
		}
		if f.Status == bookings.StatusCancelled {
			cancelledAt := s.now
			booking.CancelledAt = &cancelledAt
		}
		if err := tx.Create(&booking).Error; err != nil {
			return fmt.Errorf("failed to create booking %d: %w", i, err)
		}
	}
	s.log.Info("created bookings", "count", len(fixtures))
	return nil
}
