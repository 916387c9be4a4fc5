package identity

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"medvault/internal/platform/sqlite"
	"medvault/pkg/domain"
	"medvault/pkg/platform/sentinel"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore persists identity records in their own database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the identity database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlite.Open(path, schemaSQL)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, record *Record) error {
	query := `
		INSERT INTO identities (
			id, pseudonym, first_name, last_name, email, phone,
			address, city, state, zip_code, country, region,
			date_of_birth, ssn, national_id,
			consent_given, consent_date, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Pseudonym.String(),
		record.FirstName,
		record.LastName,
		record.Email,
		record.Phone,
		record.Address,
		record.City,
		record.State,
		record.ZipCode,
		record.Country,
		record.Region.String(),
		record.DateOfBirth,
		record.SSN,
		record.NationalID,
		boolToInt(record.ConsentGiven),
		nullTime(record.ConsentDate),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*Record, error) {
	query := selectColumns + ` FROM identities WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return record, nil
}

// Save updates the mutable fields of an existing record. The pseudonym column
// is not part of the statement, so it cannot change through this path.
func (s *SQLiteStore) Save(ctx context.Context, record *Record) error {
	query := `
		UPDATE identities SET
			first_name = ?, last_name = ?, email = ?, phone = ?,
			address = ?, city = ?, state = ?, zip_code = ?, country = ?,
			region = ?, date_of_birth = ?, ssn = ?, national_id = ?,
			consent_given = ?, consent_date = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		record.FirstName,
		record.LastName,
		record.Email,
		record.Phone,
		record.Address,
		record.City,
		record.State,
		record.ZipCode,
		record.Country,
		record.Region.String(),
		record.DateOfBirth,
		record.SSN,
		record.NationalID,
		boolToInt(record.ConsentGiven),
		nullTime(record.ConsentDate),
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Record, error) {
	query := selectColumns + ` FROM identities ORDER BY created_at ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM identities WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete identity: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete identity: %w", err)
	}
	return affected > 0, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM identities`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return total, nil
}

func (s *SQLiteStore) CountByRegion(ctx context.Context) (map[domain.Region]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT region, COUNT(*) FROM identities GROUP BY region`)
	if err != nil {
		return nil, fmt.Errorf("count identities by region: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Region]int64)
	for rows.Next() {
		var region string
		var count int64
		if err := rows.Scan(&region, &count); err != nil {
			return nil, fmt.Errorf("scan region count: %w", err)
		}
		counts[domain.Region(region)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate region counts: %w", err)
	}
	return counts, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `
	SELECT id, pseudonym, first_name, last_name, email, phone,
	       address, city, state, zip_code, country, region,
	       date_of_birth, ssn, national_id,
	       consent_given, consent_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record       Record
		pseudonym    string
		region       string
		consentGiven int
		consentDate  sql.NullTime
	)
	err := row.Scan(
		&record.ID,
		&pseudonym,
		&record.FirstName,
		&record.LastName,
		&record.Email,
		&record.Phone,
		&record.Address,
		&record.City,
		&record.State,
		&record.ZipCode,
		&record.Country,
		&region,
		&record.DateOfBirth,
		&record.SSN,
		&record.NationalID,
		&consentGiven,
		&consentDate,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Pseudonym = domain.Pseudonym(pseudonym)
	record.Region = domain.Region(region)
	record.ConsentGiven = consentGiven != 0
	if consentDate.Valid {
		record.ConsentDate = consentDate.Time
	}
	return &record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
