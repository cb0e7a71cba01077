package domain

import (
	"errors"
	"time"
)

// OutcomeCategory classifies a learning outcome per the national higher
// education standard (SNPT).
type OutcomeCategory string

// The four fixed outcome categories.
const (
	OutcomeCategorySikap              OutcomeCategory = "sikap"
	OutcomeCategoryPengetahuan        OutcomeCategory = "pengetahuan"
	OutcomeCategoryKeterampilanUmum   OutcomeCategory = "keterampilan_umum"
	OutcomeCategoryKeterampilanKhusus OutcomeCategory = "keterampilan_khusus"
)

// OutcomeCategories lists all valid categories in display order.
var OutcomeCategories = []OutcomeCategory{
	OutcomeCategorySikap,
	OutcomeCategoryPengetahuan,
	OutcomeCategoryKeterampilanUmum,
	OutcomeCategoryKeterampilanKhusus,
}

// LearningOutcome-specific validation errors.
var (
	ErrOutcomeCurriculumEmpty  = errors.New("learning outcome curriculum ID cannot be empty")
	ErrOutcomeCodeEmpty        = errors.New("learning outcome code cannot be empty")
	ErrOutcomeDescriptionEmpty = errors.New("learning outcome description cannot be empty")
	ErrOutcomeCategoryInvalid  = errors.New("invalid learning outcome category")
	ErrOutcomeOrderInvalid     = errors.New("learning outcome display order must be at least 1")
)

// LearningOutcome is a program learning outcome (CPL) attached to one
// curriculum. The same code may exist in different curricula with different
// descriptions. Outcomes are soft-deleted only.
type LearningOutcome struct {
	ID           int64           `json:"id"`
	CurriculumID int64           `json:"curriculum_id"`
	Code         string          `json:"code"`
	Description  string          `json:"description"`
	Category     OutcomeCategory `json:"category"`
	DisplayOrder *int            `json:"display_order,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewLearningOutcome creates an active learning outcome. Returns an error if
// validation fails.
func NewLearningOutcome(
	curriculumID int64,
	code, description string,
	category OutcomeCategory,
	displayOrder *int,
) (*LearningOutcome, error) {
	now := time.Now().UTC()
	o := &LearningOutcome{
		CurriculumID: curriculumID,
		Code:         code,
		Description:  description,
		Category:     category,
		DisplayOrder: displayOrder,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks the learning outcome's field invariants.
func (o *LearningOutcome) Validate() error {
	if o.CurriculumID == 0 {
		return ErrOutcomeCurriculumEmpty
	}
	if o.Code == "" {
		return ErrOutcomeCodeEmpty
	}
	if o.Description == "" {
		return ErrOutcomeDescriptionEmpty
	}
	if !isValidOutcomeCategory(o.Category) {
		return ErrOutcomeCategoryInvalid
	}
	if o.DisplayOrder != nil && *o.DisplayOrder < 1 {
		return ErrOutcomeOrderInvalid
	}
	return nil
}

func isValidOutcomeCategory(category OutcomeCategory) bool {
	switch category {
	case OutcomeCategorySikap, OutcomeCategoryPengetahuan,
		OutcomeCategoryKeterampilanUmum, OutcomeCategoryKeterampilanKhusus:
		return true
	default:
		return false
	}
}
