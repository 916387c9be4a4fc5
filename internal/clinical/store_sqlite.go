package clinical

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"medvault/internal/platform/sqlite"
	"medvault/pkg/domain"
	"medvault/pkg/platform/sentinel"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore persists clinical records in their own database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the clinical database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sqlite.Open(path, schemaSQL)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, record *Record) error {
	allergies, medications, diagnoses, vitals, err := encodeBlobs(record)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO clinical_records (
			id, pseudonym, blood_type, allergies, medications, diagnoses,
			last_visit_date, next_appointment_date, primary_physician,
			insurance_provider, policy_number, medical_history, vital_signs,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.Pseudonym.String(),
		record.BloodType,
		allergies,
		medications,
		diagnoses,
		record.LastVisitDate,
		record.NextAppointmentDate,
		record.PrimaryPhysician,
		record.InsuranceProvider,
		record.PolicyNumber,
		record.MedicalHistory,
		vitals,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert clinical record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListByPseudonym(ctx context.Context, pseudonym domain.Pseudonym) ([]*Record, error) {
	query := `
		SELECT id, pseudonym, blood_type, allergies, medications, diagnoses,
		       last_visit_date, next_appointment_date, primary_physician,
		       insurance_provider, policy_number, medical_history, vital_signs,
		       created_at, updated_at
		FROM clinical_records
		WHERE pseudonym = ?
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, pseudonym.String())
	if err != nil {
		return nil, fmt.Errorf("query clinical records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clinical records: %w", err)
	}
	return records, nil
}

func (s *SQLiteStore) Save(ctx context.Context, record *Record) error {
	allergies, medications, diagnoses, vitals, err := encodeBlobs(record)
	if err != nil {
		return err
	}
	query := `
		UPDATE clinical_records SET
			blood_type = ?, allergies = ?, medications = ?, diagnoses = ?,
			last_visit_date = ?, next_appointment_date = ?, primary_physician = ?,
			insurance_provider = ?, policy_number = ?, medical_history = ?,
			vital_signs = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		record.BloodType,
		allergies,
		medications,
		diagnoses,
		record.LastVisitDate,
		record.NextAppointmentDate,
		record.PrimaryPhysician,
		record.InsuranceProvider,
		record.PolicyNumber,
		record.MedicalHistory,
		vitals,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update clinical record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update clinical record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clinical_records`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count clinical records: %w", err)
	}
	return total, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeBlobs(record *Record) (allergies, medications, diagnoses, vitals string, err error) {
	enc := func(v any, what string) (string, error) {
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", what, err)
		}
		return string(b), nil
	}
	if allergies, err = enc(emptyIfNil(record.Allergies), "allergies"); err != nil {
		return
	}
	if medications, err = enc(emptyIfNil(record.Medications), "medications"); err != nil {
		return
	}
	if diagnoses, err = enc(emptyIfNil(record.Diagnoses), "diagnoses"); err != nil {
		return
	}
	vitals, err = enc(record.VitalSigns, "vital signs")
	return
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var (
		record    Record
		pseudonym string
		allergies string
		meds      string
		diagnoses string
		vitals    string
	)
	err := rows.Scan(
		&record.ID,
		&pseudonym,
		&record.BloodType,
		&allergies,
		&meds,
		&diagnoses,
		&record.LastVisitDate,
		&record.NextAppointmentDate,
		&record.PrimaryPhysician,
		&record.InsuranceProvider,
		&record.PolicyNumber,
		&record.MedicalHistory,
		&vitals,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan clinical record: %w", err)
	}
	record.Pseudonym = domain.Pseudonym(pseudonym)
	if err := json.Unmarshal([]byte(allergies), &record.Allergies); err != nil {
		return nil, fmt.Errorf("decode allergies: %w", err)
	}
	if err := json.Unmarshal([]byte(meds), &record.Medications); err != nil {
		return nil, fmt.Errorf("decode medications: %w", err)
	}
	if err := json.Unmarshal([]byte(diagnoses), &record.Diagnoses); err != nil {
		return nil, fmt.Errorf("decode diagnoses: %w", err)
	}
	if err := json.Unmarshal([]byte(vitals), &record.VitalSigns); err != nil {
		return nil, fmt.Errorf("decode vital signs: %w", err)
	}
	return &record, nil
}
