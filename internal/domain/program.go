package domain

import (
	"errors"
	"time"
)

// DegreeLevel is the academic level a study program awards.
type DegreeLevel string

// Valid degree levels.
const (
	DegreeD3 DegreeLevel = "D3"
	DegreeD4 DegreeLevel = "D4"
	DegreeS1 DegreeLevel = "S1"
	DegreeS2 DegreeLevel = "S2"
	DegreeS3 DegreeLevel = "S3"
)

// Program-specific validation errors.
var (
	ErrProgramIDEmpty      = errors.New("program ID cannot be empty")
	ErrProgramNameEmpty    = errors.New("program name cannot be empty")
	ErrProgramFacultyEmpty = errors.New("program faculty cannot be empty")
	ErrProgramLevelInvalid = errors.New("invalid program degree level")
)

// Program is a study program (prodi), the organizational owner of curricula
// and students.
type Program struct {
	ID            string      `json:"id"`
	Faculty       string      `json:"faculty"`
	Name          string      `json:"name"`
	Level         DegreeLevel `json:"level"`
	Accreditation string      `json:"accreditation,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// NewProgram creates a study program. Returns an error if validation fails.
func NewProgram(id, faculty, name string, level DegreeLevel) (*Program, error) {
	now := time.Now().UTC()
	p := &Program{
		ID:        id,
		Faculty:   faculty,
		Name:      name,
		Level:     level,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the program's field invariants.
func (p *Program) Validate() error {
	if p.ID == "" {
		return ErrProgramIDEmpty
	}
	if p.Faculty == "" {
		return ErrProgramFacultyEmpty
	}
	if p.Name == "" {
		return ErrProgramNameEmpty
	}
	switch p.Level {
	case DegreeD3, DegreeD4, DegreeS1, DegreeS2, DegreeS3:
		return nil
	default:
		return ErrProgramLevelInvalid
	}
}
