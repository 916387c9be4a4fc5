package identity

import (
	"strings"
	"time"

	"medvault/pkg/domain"
	dErrors "medvault/pkg/domain-errors"
)

// Record is the PII side of a patient. It is the only place in the system
// where name, contact, address, and jurisdiction identifiers live; the
// clinical store references it exclusively through the pseudonym.
//
// Invariant: Pseudonym is assigned once at creation and never recomputed
// from PII. Updates must not touch it.
type Record struct {
	ID        string
	Pseudonym domain.Pseudonym

	FirstName string
	LastName  string
	Email     string
	Phone     string

	Address string
	City    string
	State   string
	ZipCode string
	Country string

	Region      domain.Region
	DateOfBirth string // YYYY-MM-DD

	// SSN is populated for US records, NationalID for EU records. Both are
	// optional; a record may carry neither.
	SSN        string
	NationalID string

	ConsentGiven bool
	ConsentDate  time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces required fields before any write reaches the store.
//
// Errors: CodeInvalidInput naming the first missing or malformed field.
func (r *Record) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "identity id is required")
	case !r.Pseudonym.IsValid():
		return dErrors.New(dErrors.CodeInvalidInput, "identity pseudonym is missing or malformed")
	case strings.TrimSpace(r.FirstName) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "first name is required")
	case strings.TrimSpace(r.LastName) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "last name is required")
	case strings.TrimSpace(r.Email) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "email is required")
	case !r.Region.IsValid():
		return dErrors.Newf(dErrors.CodeInvalidInput, "unsupported region %q", r.Region)
	case r.DateOfBirth == "":
		return dErrors.New(dErrors.CodeInvalidInput, "date of birth is required")
	}
	if _, err := time.Parse("2006-01-02", r.DateOfBirth); err != nil {
		return dErrors.Newf(dErrors.CodeInvalidInput, "date of birth %q is not YYYY-MM-DD", r.DateOfBirth)
	}
	return nil
}

// Update carries the mutable subset of an identity record. The pseudonym is
// deliberately absent: there is no way to express a pseudonym change.
type Update struct {
	Email   *string
	Phone   *string
	Address *string
	City    *string
	State   *string
	ZipCode *string
	Country *string

	ConsentGiven *bool
	ConsentDate  *time.Time
}

// Apply copies the set fields onto the record and bumps UpdatedAt.
func (u Update) Apply(r *Record, now time.Time) {
	if u.Email != nil {
		r.Email = *u.Email
	}
	if u.Phone != nil {
		r.Phone = *u.Phone
	}
	if u.Address != nil {
		r.Address = *u.Address
	}
	if u.City != nil {
		r.City = *u.City
	}
	if u.State != nil {
		r.State = *u.State
	}
	if u.ZipCode != nil {
		r.ZipCode = *u.ZipCode
	}
	if u.Country != nil {
		r.Country = *u.Country
	}
	if u.ConsentGiven != nil {
		r.ConsentGiven = *u.ConsentGiven
	}
	if u.ConsentDate != nil {
		r.ConsentDate = *u.ConsentDate
	}
	r.UpdatedAt = now
}

// TouchesConsent reports whether the update changes the consent flag, which
// determines the audit action recorded for it.
func (u Update) TouchesConsent() bool {
	return u.ConsentGiven != nil || u.ConsentDate != nil
}
