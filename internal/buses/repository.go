package buses

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, bus *Bus) error
	GetByID(ctx context.Context, id string) (*Bus, error)
	GetByNumber(ctx context.Context, number string) (*Bus, error)
	List(ctx context.Context) ([]Bus, error)
	SaveLayout(ctx context.Context, bus *Bus) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, bus *Bus) error {
	return r.db.WithContext(ctx).Create(bus).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Bus, error) {
	var bus Bus
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&bus).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusNotFound
		}
		return nil, err
	}
	return &bus, nil
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Bus, error) {
	var bus Bus
	err := r.db.WithContext(ctx).Where("number = ?", number).First(&bus).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBusNotFound
		}
		return nil, err
	}
	return &bus, nil
}

func (r *repository) List(ctx context.Context) ([]Bus, error) {
	var buses []Bus
	err := r.db.WithContext(ctx).Order("number ASC").Find(&buses).Error
	return buses, err
}

// SaveLayout writes only the layout columns; Select keeps zero values such as
// include_back_row=false in the update.
func (r *repository) SaveLayout(ctx context.Context, bus *Bus) error {
	result := r.db.WithContext(ctx).Model(bus).
		Select("rows", "columns", "aisle_column", "include_back_row", "back_row_seats", "seat_layout", "total_seats").
		Updates(bus)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBusNotFound
	}
	return nil
}
