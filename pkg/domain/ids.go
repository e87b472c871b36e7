package domain

import (
	"regexp"

	"github.com/google/uuid"

	dErrors "portflow/pkg/domain-errors"
)

// CaseID identifies one clearance case.
type CaseID uuid.UUID

// NewCaseID generates a fresh case identifier.
func NewCaseID() CaseID {
	return CaseID(uuid.New())
}

// ParseCaseID validates and returns a CaseID. IDs must be valid, non-nil UUIDs.
func ParseCaseID(s string) (CaseID, error) {
	if s == "" {
		return CaseID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "case id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return CaseID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "case id must be a valid UUID")
	}
	if u == uuid.Nil {
		return CaseID(uuid.Nil), dErrors.New(dErrors.CodeInvalidInput, "case id must not be the nil UUID")
	}
	return CaseID(u), nil
}

func (id CaseID) String() string {
	return uuid.UUID(id).String()
}

func (id CaseID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// containerIDPattern matches ISO 6346 style owner code plus serial.
var containerIDPattern = regexp.MustCompile(`^[A-Z]{4}\d{7}$`)

// ContainerID is a validated shipping container number (4 letters + 7 digits).
type ContainerID string

// ParseContainerID validates and returns a ContainerID.
func ParseContainerID(s string) (ContainerID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "container id is required")
	}
	if !containerIDPattern.MatchString(s) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "container id format is invalid (expected 4 letters + 7 digits)")
	}
	return ContainerID(s), nil
}

func (c ContainerID) String() string {
	return string(c)
}

func (c ContainerID) IsNil() bool {
	return c == ""
}
