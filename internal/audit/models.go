package audit

import (
	"strings"
	"time"

	"medvault/pkg/domain"
	dErrors "medvault/pkg/domain-errors"
)

// Action tags what an audit entry records. The vocabulary is closed:
// RecordAudit rejects anything outside it so the log stays queryable.
type Action string

const (
	ActionAccess        Action = "access"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionErasure       Action = "erasure"
	ActionConsentChange Action = "consent_change"
)

// validActions is the single source of truth for the action vocabulary.
var validActions = map[Action]bool{
	ActionAccess:        true,
	ActionCreate:        true,
	ActionUpdate:        true,
	ActionErasure:       true,
	ActionConsentChange: true,
}

// IsValid checks if the action is part of the closed vocabulary.
func (a Action) IsValid() bool {
	return validActions[a]
}

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}

// ResourceType names which store an entry refers to.
const (
	ResourceIdentity = "identity"
	ResourceClinical = "clinical"
)

// Entry is one immutable access/mutation event. Entries reference a pseudonym
// and a resource id but are never constrained by either store: they must
// survive deletion of the records they describe.
type Entry struct {
	ID        string
	Timestamp time.Time

	Action       Action
	ResourceType string
	ResourceID   string
	Pseudonym    domain.Pseudonym

	UserID    string
	UserRole  string
	IPAddress string
	UserAgent string
	Purpose   string

	ContainsPHI bool
	ContainsPII bool

	Region domain.Region

	Success      bool
	ErrorMessage string

	Duration time.Duration
}

// Validate enforces the attributability contract: who, what, when, where,
// why, and outcome are all mandatory.
func (e *Entry) Validate() error {
	if !e.Action.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "audit action %q is outside the vocabulary", e.Action)
	}
	switch {
	case e.Timestamp.IsZero():
		return dErrors.New(dErrors.CodeInvalidInput, "audit timestamp is required")
	case strings.TrimSpace(e.ResourceType) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "audit resource type is required")
	case strings.TrimSpace(e.ResourceID) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "audit resource id is required")
	case strings.TrimSpace(e.UserID) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "audit user id is required")
	case strings.TrimSpace(e.UserRole) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "audit user role is required")
	case strings.TrimSpace(e.IPAddress) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "audit ip address is required")
	case strings.TrimSpace(e.Purpose) == "":
		return dErrors.New(dErrors.CodeInvalidInput, "audit purpose is required")
	}
	return nil
}

// Filter narrows a query. Zero-valued fields match everything; any
// combination may be set. Results are always ordered by timestamp descending.
type Filter struct {
	Action     Action
	ResourceID string
	Pseudonym  domain.Pseudonym
	UserID     string
	From       *time.Time
	To         *time.Time

	// Limit caps the result set. Zero means the store's default cap.
	Limit int
}

// Matches reports whether the entry passes every set field of the filter.
// Shared by the memory store and tests; the SQLite store expresses the same
// predicate in SQL.
func (f Filter) Matches(e *Entry) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.ResourceID != "" && e.ResourceID != f.ResourceID {
		return false
	}
	if f.Pseudonym != "" && e.Pseudonym != f.Pseudonym {
		return false
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.From != nil && e.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Timestamp.After(*f.To) {
		return false
	}
	return true
}
