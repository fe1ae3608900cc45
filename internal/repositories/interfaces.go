package repositories

import (
	"time"
)

// ===== SHARED FILTER STRUCTS =====

type MaterialFilters struct {
	Subject   *string    `json:"subject"`
	OwnerID   *uint      `json:"owner_id"`
	Search    *string    `json:"search"` // matches title
	HasFile   *bool      `json:"has_file"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "updated_at", "title", "subject"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string // Search query for name or email
	Role   string // Optional role filter
	Limit  int    // Page size
	Offset int    // Offset for pagination
}

// ===== SHARED STATISTICS STRUCTS =====

type MaterialStats struct {
	TotalMaterials int64 `json:"total_materials"`
	WithFile       int64 `json:"with_file"`
	OwnerCount     int64 `json:"owner_count"`
}
