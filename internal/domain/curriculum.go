package domain

import (
	"errors"
	"time"
)

// CurriculumStatus represents a curriculum's position in its lifecycle.
type CurriculumStatus string

// Lifecycle states. A curriculum is created in draft and moves forward
// through review and approved before it can serve students. Archived is
// terminal.
const (
	CurriculumStatusDraft    CurriculumStatus = "draft"
	CurriculumStatusReview   CurriculumStatus = "review"
	CurriculumStatusApproved CurriculumStatus = "approved"
	CurriculumStatusActive   CurriculumStatus = "active"
	CurriculumStatusInactive CurriculumStatus = "inactive"
	CurriculumStatusArchived CurriculumStatus = "archived"
)

// Curriculum-specific validation errors.
var (
	ErrCurriculumProgramEmpty  = errors.New("curriculum program ID cannot be empty")
	ErrCurriculumCodeEmpty     = errors.New("curriculum code cannot be empty")
	ErrCurriculumNameEmpty     = errors.New("curriculum name cannot be empty")
	ErrCurriculumYearInvalid   = errors.New("curriculum effective year must be after 1900")
	ErrCurriculumEndYearBefore = errors.New("curriculum end year cannot precede the effective year")
	ErrCurriculumStatusInvalid = errors.New("invalid curriculum status")
)

// Curriculum represents one versioned curriculum of a study program. Multiple
// curricula of the same program may be active in parallel; at most one of
// them is the primary curriculum.
type Curriculum struct {
	ID            int64            `json:"id"`
	ProgramID     string           `json:"program_id"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	EffectiveYear int              `json:"effective_year"`
	EndYear       *int             `json:"end_year,omitempty"`
	Description   string           `json:"description,omitempty"`
	Status        CurriculumStatus `json:"status"`
	IsPrimary     bool             `json:"is_primary"`
	DecreeNumber  string           `json:"decree_number,omitempty"`
	DecreeDate    *time.Time       `json:"decree_date,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewCurriculum creates a curriculum in draft status with the primary flag
// cleared. Returns an error if validation fails.
func NewCurriculum(programID, code, name string, effectiveYear int) (*Curriculum, error) {
	now := time.Now().UTC()
	c := &Curriculum{
		ProgramID:     programID,
		Code:          code,
		Name:          name,
		EffectiveYear: effectiveYear,
		Status:        CurriculumStatusDraft,
		IsPrimary:     false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the curriculum's field invariants.
func (c *Curriculum) Validate() error {
	if c.ProgramID == "" {
		return ErrCurriculumProgramEmpty
	}
	if c.Code == "" {
		return ErrCurriculumCodeEmpty
	}
	if c.Name == "" {
		return ErrCurriculumNameEmpty
	}
	if c.EffectiveYear <= 1900 {
		return ErrCurriculumYearInvalid
	}
	if c.EndYear != nil && *c.EndYear < c.EffectiveYear {
		return ErrCurriculumEndYearBefore
	}
	if !isValidCurriculumStatus(c.Status) {
		return ErrCurriculumStatusInvalid
	}
	return nil
}

// CanBeModified reports whether the curriculum's descriptive fields may still
// change. Only draft and review curricula are editable.
func (c *Curriculum) CanBeModified() bool {
	return c.Status == CurriculumStatusDraft || c.Status == CurriculumStatusReview
}

// SubmitForReview moves the curriculum from draft to review.
func (c *Curriculum) SubmitForReview() error {
	if c.Status != CurriculumStatusDraft {
		return InvalidOperationf(
			"cannot submit curriculum for review: status is %q, must be %q",
			c.Status, CurriculumStatusDraft)
	}
	c.Status = CurriculumStatusReview
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Approve moves the curriculum from review to approved.
func (c *Curriculum) Approve() error {
	if c.Status != CurriculumStatusReview {
		return InvalidOperationf(
			"cannot approve curriculum: status is %q, must be %q",
			c.Status, CurriculumStatusReview)
	}
	c.Status = CurriculumStatusApproved
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Activate moves the curriculum from approved to active and records the
// activation decree. The primary flag itself is set by the store in the same
// transaction so that at most one curriculum per program holds it.
func (c *Curriculum) Activate(decreeNumber string, decreeDate time.Time, setPrimary bool) error {
	if c.Status != CurriculumStatusApproved {
		return InvalidOperationf(
			"cannot activate curriculum: status is %q, must be %q",
			c.Status, CurriculumStatusApproved)
	}
	c.Status = CurriculumStatusActive
	c.DecreeNumber = decreeNumber
	c.DecreeDate = &decreeDate
	c.IsPrimary = setPrimary
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Deactivate moves an active curriculum to inactive and clears the primary
// flag. An inactive curriculum keeps its students but accepts no new ones.
func (c *Curriculum) Deactivate() error {
	if c.Status != CurriculumStatusActive {
		return InvalidOperationf(
			"cannot deactivate curriculum: status is %q, must be %q",
			c.Status, CurriculumStatusActive)
	}
	c.Status = CurriculumStatusInactive
	c.IsPrimary = false
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Archive moves the curriculum to its terminal archived state and clears the
// primary flag. The caller must first verify no active students reference it.
func (c *Curriculum) Archive() error {
	if c.Status == CurriculumStatusArchived {
		return InvalidOperationf("curriculum is already archived")
	}
	c.Status = CurriculumStatusArchived
	c.IsPrimary = false
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// CurriculumStats is the read-only statistics aggregate for a curriculum.
// Used to gate archiving and to surface activation readiness.
type CurriculumStats struct {
	OutcomeCount int `json:"total_outcomes"`
	CourseCount  int `json:"total_courses"`
	StudentCount int `json:"total_students"`
}

// ReadyForActivation reports whether the curriculum has at least one active
// learning outcome and one active course.
func (s CurriculumStats) ReadyForActivation() bool {
	return s.OutcomeCount > 0 && s.CourseCount > 0
}

func isValidCurriculumStatus(status CurriculumStatus) bool {
	switch status {
	case CurriculumStatusDraft, CurriculumStatusReview, CurriculumStatusApproved,
		CurriculumStatusActive, CurriculumStatusInactive, CurriculumStatusArchived:
		return true
	default:
		return false
	}
}
