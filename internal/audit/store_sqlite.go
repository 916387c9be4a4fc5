package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"medvault/internal/platform/sqlite"
	"medvault/pkg/domain"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore persists audit entries in their own database file. Append and
// read are the only statements it knows how to issue.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the audit database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlite.Open(path, schemaSQL)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO audit_entries (
			id, timestamp, action, resource_type, resource_id, pseudonym,
			user_id, user_role, ip_address, user_agent, purpose,
			contains_phi, contains_pii, region, success, error_message, duration_ms
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Timestamp,
		entry.Action.String(),
		entry.ResourceType,
		entry.ResourceID,
		entry.Pseudonym.String(),
		entry.UserID,
		entry.UserRole,
		entry.IPAddress,
		entry.UserAgent,
		entry.Purpose,
		boolToInt(entry.ContainsPHI),
		boolToInt(entry.ContainsPII),
		entry.Region.String(),
		boolToInt(entry.Success),
		entry.ErrorMessage,
		entry.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, filter Filter) ([]*Entry, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filter.Action.String())
	}
	if filter.ResourceID != "" {
		conditions = append(conditions, "resource_id = ?")
		args = append(args, filter.ResourceID)
	}
	if filter.Pseudonym != "" {
		conditions = append(conditions, "pseudonym = ?")
		args = append(args, filter.Pseudonym.String())
	}
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.From != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, *filter.To)
	}

	query := `
		SELECT id, timestamp, action, resource_type, resource_id, pseudonym,
		       user_id, user_role, ip_address, user_agent, purpose,
		       contains_phi, contains_pii, region, success, error_message, duration_ms
		FROM audit_entries
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC LIMIT ?"

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return total, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var (
		entry       Entry
		action      string
		pseudonym   string
		region      string
		containsPHI int
		containsPII int
		success     int
		durationMS  int64
	)
	err := rows.Scan(
		&entry.ID,
		&entry.Timestamp,
		&action,
		&entry.ResourceType,
		&entry.ResourceID,
		&pseudonym,
		&entry.UserID,
		&entry.UserRole,
		&entry.IPAddress,
		&entry.UserAgent,
		&entry.Purpose,
		&containsPHI,
		&containsPII,
		&region,
		&success,
		&entry.ErrorMessage,
		&durationMS,
	)
	if err != nil {
		return nil, fmt.Errorf("scan audit entry: %w", err)
	}
	entry.Action = Action(action)
	entry.Pseudonym = domain.Pseudonym(pseudonym)
	entry.Region = domain.Region(region)
	entry.ContainsPHI = containsPHI != 0
	entry.ContainsPII = containsPII != 0
	entry.Success = success != 0
	entry.Duration = time.Duration(durationMS) * time.Millisecond
	return &entry, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
