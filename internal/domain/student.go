package domain

import (
	"errors"
	"time"
)

// StudentStatus represents a student's enrollment standing.
type StudentStatus string

// Valid student statuses.
const (
	StudentStatusActive    StudentStatus = "active"
	StudentStatusLeave     StudentStatus = "leave"
	StudentStatusGraduated StudentStatus = "graduated"
	StudentStatusDismissed StudentStatus = "dismissed"
)

// Student-specific validation errors.
var (
	ErrStudentIDEmpty       = errors.New("student ID cannot be empty")
	ErrStudentNameEmpty     = errors.New("student name cannot be empty")
	ErrStudentEmailEmpty    = errors.New("student email cannot be empty")
	ErrStudentProgramEmpty  = errors.New("student program ID cannot be empty")
	ErrStudentCohortInvalid = errors.New("student cohort year must be after 1900")
	ErrStudentStatusInvalid = errors.New("invalid student status")
)

// Student is a mahasiswa identified by an institution-issued ID (NIM).
// CurriculumID is nil until the student's first enrollment; once set it is
// immutable — the store rejects any update that would change it.
type Student struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	ProgramID    string        `json:"program_id"`
	CurriculumID *int64        `json:"curriculum_id,omitempty"`
	CohortYear   int           `json:"cohort_year"`
	Status       StudentStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewStudent creates an active student with no curriculum assigned yet.
// Returns an error if validation fails.
func NewStudent(id, name, email, programID string, cohortYear int) (*Student, error) {
	now := time.Now().UTC()
	s := &Student{
		ID:         id,
		Name:       name,
		Email:      email,
		ProgramID:  programID,
		CohortYear: cohortYear,
		Status:     StudentStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the student's field invariants.
func (s *Student) Validate() error {
	if s.ID == "" {
		return ErrStudentIDEmpty
	}
	if s.Name == "" {
		return ErrStudentNameEmpty
	}
	if s.Email == "" {
		return ErrStudentEmailEmpty
	}
	if s.ProgramID == "" {
		return ErrStudentProgramEmpty
	}
	if s.CohortYear <= 1900 {
		return ErrStudentCohortInvalid
	}
	if !isValidStudentStatus(s.Status) {
		return ErrStudentStatusInvalid
	}
	return nil
}

// IsActive reports whether the student is currently active.
func (s *Student) IsActive() bool {
	return s.Status == StudentStatusActive
}

// UpdateStatus changes the student's standing. Returns an error if the new
// status is invalid.
func (s *Student) UpdateStatus(status StudentStatus) error {
	if !isValidStudentStatus(status) {
		return ErrStudentStatusInvalid
	}
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func isValidStudentStatus(status StudentStatus) bool {
	switch status {
	case StudentStatusActive, StudentStatusLeave,
		StudentStatusGraduated, StudentStatusDismissed:
		return true
	default:
		return false
	}
}
