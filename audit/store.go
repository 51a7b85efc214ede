package audit

import (
	"time"

	"gorm.io/gorm"

	"gestionempresa/database"
)

// Store wraps the query and maintenance side of the audit log. Writes go
// through Recorder; nothing here ever updates an existing entry.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on top of the given database
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// QueryFilters narrows an audit log listing. Zero values mean "no filter".
// StartDate/EndDate are inclusive; EndDate covers the whole calendar day.
// Entries written by the system actor are excluded unless IncludeSystem is set.
type QueryFilters struct {
	UserID        *uint
	Action        string
	Module        string
	TargetType    string
	TargetID      *uint
	Search        string
	StartDate     *time.Time
	EndDate       *time.Time
	IncludeSystem bool
}

// QueryResult is one page of audit entries plus totals
type QueryResult struct {
	Items      []database.AuditLog `json:"items"`
	Total      int64               `json:"total"`
	TotalPages int                 `json:"total_pages"`
}

// CountBucket is one row of a grouped statistic
type CountBucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Statistics aggregates audit activity over a date range
type Statistics struct {
	TotalEvents  int64         `json:"total_events"`
	ByAction     []CountBucket `json:"by_action"`
	ByModule     []CountBucket `json:"by_module"`
	ByTargetType []CountBucket `json:"by_target_type"`
	TopActors    []CountBucket `json:"top_actors"`
	ByDay        []CountBucket `json:"by_day"`
}

// Query returns a filtered, paginated page of audit entries, newest first.
// An empty result set is a valid answer, not an error.
func (s *Store) Query(filters QueryFilters, page, limit int) (*QueryResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	query := s.applyFilters(filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	items := []database.AuditLog{}
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &QueryResult{Items: items, Total: total, TotalPages: totalPages}, nil
}

// GetStatistics aggregates counts by action, module, target type, top 10
// actors and calendar day over the given range.
func (s *Store) GetStatistics(startDate, endDate *time.Time, includeSystem bool) (*Statistics, error) {
	filters := QueryFilters{StartDate: startDate, EndDate: endDate, IncludeSystem: includeSystem}
	stats := &Statistics{}

	if err := s.applyFilters(filters).Count(&stats.TotalEvents).Error; err != nil {
		return nil, err
	}

	groupings := []struct {
		expr  string
		limit int
		dest  *[]CountBucket
	}{
		{"action", 0, &stats.ByAction},
		{"module", 0, &stats.ByModule},
		{"target_type", 0, &stats.ByTargetType},
		{"user_name", 10, &stats.TopActors},
		{"DATE(created_at)", 0, &stats.ByDay},
	}

	for _, g := range groupings {
		query := s.applyFilters(filters).
			Select(g.expr + " AS key, COUNT(*) AS count").
			Group(g.expr).
			Order("count DESC")
		if g.limit > 0 {
			query = query.Limit(g.limit)
		}
		buckets := []CountBucket{}
		if err := query.Scan(&buckets).Error; err != nil {
			return nil, err
		}
		*g.dest = buckets
	}

	return stats, nil
}

// RetentionSweep deletes every entry older than retentionDays and returns the
// number of rows removed.
func (s *Store) RetentionSweep(retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&database.AuditLog{})
	return result.RowsAffected, result.Error
}

// ArchiveSweep removes entries older than archiveDays and returns the number
// of rows removed. No cold-storage copy is made: archival here is permanent
// deletion, so retention must be configured wider than the archive window or
// the retention guarantee collapses into it.
func (s *Store) ArchiveSweep(archiveDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -archiveDays)
	result := s.db.Where("created_at < ?", cutoff).Delete(&database.AuditLog{})
	return result.RowsAffected, result.Error
}

// OptimizeIndexes refreshes planner statistics for the audit table. Purely a
// maintenance call; callers observe no behavior change.
func (s *Store) OptimizeIndexes() error {
	return s.db.Exec("ANALYZE").Error
}

func (s *Store) applyFilters(filters QueryFilters) *gorm.DB {
	query := s.db.Model(&database.AuditLog{})

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Action != "" {
		query = query.Where("action = ?", filters.Action)
	}
	if filters.Module != "" {
		query = query.Where("module = ?", filters.Module)
	}
	if filters.TargetType != "" {
		query = query.Where("target_type = ?", filters.TargetType)
	}
	if filters.TargetID != nil {
		query = query.Where("target_id = ?", *filters.TargetID)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("description LIKE ? OR user_name LIKE ?", pattern, pattern)
	}
	if filters.StartDate != nil {
		query = query.Where("created_at >= ?", startOfDay(*filters.StartDate))
	}
	if filters.EndDate != nil {
		query = query.Where("created_at < ?", startOfDay(*filters.EndDate).AddDate(0, 0, 1))
	}
	if !filters.IncludeSystem {
		query = query.Where("user_name <> ?", database.SystemActorName)
	}

	return query
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
