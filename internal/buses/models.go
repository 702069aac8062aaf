package buses

import (
	"time"

	"buslane/internal/seatmap"

	"github.com/google/uuid"
)

type BusType string

const (
	BusTypeSeater      BusType = "SEATER"
	BusTypeSleeper     BusType = "SLEEPER"
	BusTypeSemiSleeper BusType = "SEMI_SLEEPER"
)

func (t BusType) IsValid() bool {
	switch t {
	case BusTypeSeater, BusTypeSleeper, BusTypeSemiSleeper:
		return true
	}
	return false
}

// Bus owns the generator parameters and the persisted inclusion grid. The back
// row is a stored flag and is never inferred from the grid shape.
type Bus struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Number         string          `gorm:"type:varchar(32);uniqueIndex;not null" json:"number"`
	Type           BusType         `gorm:"type:varchar(32);not null" json:"type"`
	Features       []string        `gorm:"type:jsonb;serializer:json" json:"features"`
	Rows           int             `gorm:"not null;default:0" json:"rows"`
	Columns        int             `gorm:"not null;default:0" json:"columns"`
	AisleColumn    int             `gorm:"not null;default:0" json:"aisleColumn"`
	IncludeBackRow bool            `gorm:"not null;default:false" json:"includeBackRow"`
	BackRowSeats   int             `gorm:"not null;default:0" json:"backRowSeats"`
	SeatLayout     seatmap.RawGrid `gorm:"type:jsonb;serializer:json" json:"seatLayout"`
	TotalSeats     int             `gorm:"not null;default:0" json:"totalSeats"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (Bus) TableName() string {
	return "buses"
}

func (b *Bus) HasLayout() bool {
	return b.Rows > 0 && len(b.SeatLayout) > 0
}

func (b *Bus) LayoutSpec() seatmap.LayoutSpec {
	return seatmap.LayoutSpec{
		Rows:           b.Rows,
		Columns:        b.Columns,
		AisleColumn:    b.AisleColumn,
		IncludeBackRow: b.IncludeBackRow,
		BackRowSeats:   b.BackRowSeats,
	}
}

// Inclusion regenerates the layout from the stored spec and applies the stored grid.
func (b *Bus) Inclusion() (*seatmap.Inclusion, error) {
	if !b.HasLayout() {
		return nil, ErrLayoutNotConfigured
	}
	layout, err := seatmap.Generate(b.LayoutSpec())
	if err != nil {
		return nil, err
	}
	return seatmap.InclusionFromGrid(layout, b.SeatLayout)
}

func (b *Bus) applyLayout(spec seatmap.LayoutSpec, inclusion *seatmap.Inclusion) {
	b.Rows = spec.Rows
	b.Columns = spec.Columns
	b.AisleColumn = spec.AisleColumn
	b.IncludeBackRow = spec.IncludeBackRow
	b.BackRowSeats = spec.BackRowSeats
	if !spec.IncludeBackRow {
		b.BackRowSeats = 0
	}
	b.SeatLayout = inclusion.Grid()
	b.TotalSeats = inclusion.TotalSeats()
}
