package auth

import (
	"context"
	"fmt"
)

// HolderDirectory resolves booking holder names from user ids for the
// occupancy views. It sits here so bookings never imports auth.
type HolderDirectory struct {
	repo Repository
}

func NewHolderDirectory(repo Repository) *HolderDirectory {
	return &HolderDirectory{
		repo: repo,
	}
}

// FullNames maps each known user id to its full name. Unknown ids are absent.
func (d *HolderDirectory) FullNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	found, err := d.repo.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking holders: %w", err)
	}

	names := make(map[string]string, len(found))
	for _, u := range found {
		names[u.ID.String()] = u.FullName
	}
	return names, nil
}
