package clinical

import (
	"strings"
	"time"

	"medvault/pkg/domain"
	dErrors "medvault/pkg/domain-errors"
)

// Record is the PHI side of a patient, keyed by pseudonym only. The schema
// shape is the privacy control: there is no field that could hold a name,
// contact detail, postal address, or jurisdiction identifier, so PII cannot
// leak into this store without a schema change.
type Record struct {
	ID        string
	Pseudonym domain.Pseudonym

	BloodType   string
	Allergies   []string
	Medications []string
	Diagnoses   []string

	LastVisitDate       string // YYYY-MM-DD
	NextAppointmentDate string // YYYY-MM-DD, empty when none scheduled

	PrimaryPhysician  string
	InsuranceProvider string
	PolicyNumber      string
	MedicalHistory    string

	VitalSigns VitalSigns

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VitalSigns is the bundled measurement set from the most recent visit. It is
// persisted as a single encoded blob, not as columns.
type VitalSigns struct {
	BloodPressure string  `json:"bloodPressure"`
	HeartRate     int     `json:"heartRate"`
	Temperature   float64 `json:"temperature"`
	Weight        float64 `json:"weight"`
	Height        float64 `json:"height"`
}

// Validate enforces required fields before any write reaches the store.
func (r *Record) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "clinical id is required")
	case !r.Pseudonym.IsValid():
		return dErrors.New(dErrors.CodeInvalidInput, "clinical pseudonym is missing or malformed")
	}
	return r.ValidateInput()
}

// ValidateInput checks only the caller-supplied fields, leaving id and
// pseudonym to the write path that assigns them. The gateway runs this before
// touching any store so bad input can never leave a partial create behind.
func (r *Record) ValidateInput() error {
	if strings.TrimSpace(r.BloodType) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "blood type is required")
	}
	return nil
}

// Update carries the mutable subset of a clinical record. The pseudonym is
// deliberately absent so the identity link can never be rewritten.
type Update struct {
	Allergies   *[]string
	Medications *[]string
	Diagnoses   *[]string

	LastVisitDate       *string
	NextAppointmentDate *string

	PrimaryPhysician *string
	MedicalHistory   *string
	VitalSigns       *VitalSigns
}

// Apply copies the set fields onto the record and bumps UpdatedAt.
func (u Update) Apply(r *Record, now time.Time) {
	if u.Allergies != nil {
		r.Allergies = *u.Allergies
	}
	if u.Medications != nil {
		r.Medications = *u.Medications
	}
	if u.Diagnoses != nil {
		r.Diagnoses = *u.Diagnoses
	}
	if u.LastVisitDate != nil {
		r.LastVisitDate = *u.LastVisitDate
	}
	if u.NextAppointmentDate != nil {
		r.NextAppointmentDate = *u.NextAppointmentDate
	}
	if u.PrimaryPhysician != nil {
		r.PrimaryPhysician = *u.PrimaryPhysician
	}
	if u.MedicalHistory != nil {
		r.MedicalHistory = *u.MedicalHistory
	}
	if u.VitalSigns != nil {
		r.VitalSigns = *u.VitalSigns
	}
	r.UpdatedAt = now
}
