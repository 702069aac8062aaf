package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// This file centralizes all Redis cache keys and TTL values for buslane
// Pattern: buslane:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG   = 24 * time.Hour // 24 hours - for routes
	TTL_STATIC_MEDIUM = 12 * time.Hour // 12 hours - for bus records
	TTL_STATIC_SHORT  = 6 * time.Hour  // 6 hours - for user profiles
)

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_LONG  = 4 * time.Hour    // 4 hours - for bus layouts
	TTL_SEMI_STATIC_QUICK = 15 * time.Minute // 15 minutes - for schedule listings
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "buslane"
)

// ================== BUSES MODULE ==================

// Bus Cache Keys
const (
	CACHE_KEY_BUS_DETAIL = CACHE_PREFIX + ":buses:detail:uuid:" // + bus-id
	CACHE_KEY_BUS_LAYOUT = CACHE_PREFIX + ":buses:layout:uuid:" // + bus-id
)

// Bus Cache TTLs
const (
	TTL_BUS_DETAIL = TTL_STATIC_MEDIUM    // 12 hours
	TTL_BUS_LAYOUT = TTL_SEMI_STATIC_LONG // 4 hours
)

// ================== SCHEDULES MODULE ==================

// Schedule Cache Keys
const (
	CACHE_KEY_ROUTES_ALL = CACHE_PREFIX + ":routes:list:all"
	// Seat maps are derived from live bookings on every read and are never cached.
	CACHE_KEY_SCHEDULES_SEARCH = CACHE_PREFIX + ":schedules:search" // + :source:X:destination:Y:date:Z
)

// Schedule Cache TTLs
const (
	TTL_ROUTES_ALL       = TTL_STATIC_LONG       // 24 hours
	TTL_SCHEDULES_SEARCH = TTL_SEMI_STATIC_QUICK // 15 minutes
)

// ================== SELECTION MODULE ==================

// Selection session keys; TTL comes from SELECTION_TTL
const (
	CACHE_KEY_SELECTION = CACHE_PREFIX + ":selection:" // + selection-id
)

// ================== AUTH MODULE ==================

// Auth Cache Keys
const (
	CACHE_KEY_USER_PROFILE = CACHE_PREFIX + ":auth:user:profile:uuid:" // + user-id
)

// Auth Cache TTLs
const (
	TTL_USER_PROFILE = TTL_STATIC_SHORT // 6 hours
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_SCHEDULES_SEARCH = CACHE_KEY_SCHEDULES_SEARCH + ":*"
)

// ================== HELPER FUNCTIONS ==================

func BuildBusDetailKey(busID string) string {
	return CACHE_KEY_BUS_DETAIL + busID
}

func BuildBusLayoutKey(busID string) string {
	return CACHE_KEY_BUS_LAYOUT + busID
}

// BuildScheduleSearchKey -> "buslane:schedules:search:source:pune:destination:goa:date:2026-03-14"
func BuildScheduleSearchKey(source, destination, date string) string {
	return fmt.Sprintf("%s:source:%s:destination:%s:date:%s", CACHE_KEY_SCHEDULES_SEARCH, source, destination, date)
}

func BuildSelectionKey(selectionID string) string {
	return CACHE_KEY_SELECTION + selectionID
}

func BuildUserProfileKey(userID string) string {
	return CACHE_KEY_USER_PROFILE + userID
}
