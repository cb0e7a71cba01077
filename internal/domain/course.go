package domain

import (
	"errors"
	"time"
)

// CourseType distinguishes mandatory, elective, and general-education
// courses.
type CourseType string

// Valid course types.
const (
	CourseTypeMandatory        CourseType = "mandatory"
	CourseTypeElective         CourseType = "elective"
	CourseTypeGeneralEducation CourseType = "general_education"
)

// PrerequisiteType distinguishes hard prerequisites from alternatives where
// completing any one of the listed courses suffices.
type PrerequisiteType string

// Valid prerequisite types.
const (
	PrerequisiteTypeMandatory   PrerequisiteType = "mandatory"
	PrerequisiteTypeAlternative PrerequisiteType = "alternative"
)

// Bounds for course placement within a program.
const (
	MinSemester = 1
	MaxSemester = 14
)

// National minimums a complete undergraduate curriculum must satisfy.
const (
	MinTotalCredits   = 144
	CoreSemesterCount = 8
)

// Course-specific validation errors.
var (
	ErrCourseCodeEmpty          = errors.New("course code cannot be empty")
	ErrCourseCurriculumEmpty    = errors.New("course curriculum ID cannot be empty")
	ErrCourseNameEmpty          = errors.New("course name cannot be empty")
	ErrCourseCreditsInvalid     = errors.New("course credits must be positive")
	ErrCourseSemesterInvalid    = errors.New("course semester must be between 1 and 14")
	ErrCourseTypeInvalid        = errors.New("invalid course type")
	ErrPrerequisiteCodeEmpty    = errors.New("prerequisite course code cannot be empty")
	ErrPrerequisiteTypeInvalid  = errors.New("invalid prerequisite type")
	ErrPrerequisiteSelfReferent = errors.New("a course cannot be its own prerequisite")
)

// Course is a mata kuliah within one curriculum. Its identity is the
// composite (code, curriculum ID): the same code may exist in several
// curricula as independent rows. Courses are never hard-deleted.
type Course struct {
	Code         string     `json:"code"`
	CurriculumID int64      `json:"curriculum_id"`
	Name         string     `json:"name"`
	NameEnglish  string     `json:"name_english,omitempty"`
	Credits      int        `json:"credits"`
	Semester     int        `json:"semester"`
	Cluster      string     `json:"cluster,omitempty"`
	Type         CourseType `json:"type"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewCourse creates an active course within a curriculum. Returns an error
// if validation fails.
func NewCourse(
	code string,
	curriculumID int64,
	name string,
	credits, semester int,
	courseType CourseType,
) (*Course, error) {
	now := time.Now().UTC()
	c := &Course{
		Code:         code,
		CurriculumID: curriculumID,
		Name:         name,
		Credits:      credits,
		Semester:     semester,
		Type:         courseType,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the course's field invariants.
func (c *Course) Validate() error {
	if c.Code == "" {
		return ErrCourseCodeEmpty
	}
	if c.CurriculumID == 0 {
		return ErrCourseCurriculumEmpty
	}
	if c.Name == "" {
		return ErrCourseNameEmpty
	}
	if c.Credits <= 0 {
		return ErrCourseCreditsInvalid
	}
	if c.Semester < MinSemester || c.Semester > MaxSemester {
		return ErrCourseSemesterInvalid
	}
	if !isValidCourseType(c.Type) {
		return ErrCourseTypeInvalid
	}
	return nil
}

// Prerequisite requires one course to be completed before another within the
// same curriculum.
type Prerequisite struct {
	ID               int64            `json:"id"`
	CourseCode       string           `json:"course_code"`
	CurriculumID     int64            `json:"curriculum_id"`
	PrerequisiteCode string           `json:"prerequisite_code"`
	Type             PrerequisiteType `json:"type"`
	CreatedAt        time.Time        `json:"created_at"`
}

// NewPrerequisite creates a prerequisite link between two courses of the same
// curriculum. Returns an error if validation fails.
func NewPrerequisite(
	courseCode string,
	curriculumID int64,
	prerequisiteCode string,
	prereqType PrerequisiteType,
) (*Prerequisite, error) {
	p := &Prerequisite{
		CourseCode:       courseCode,
		CurriculumID:     curriculumID,
		PrerequisiteCode: prerequisiteCode,
		Type:             prereqType,
		CreatedAt:        time.Now().UTC(),
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the prerequisite's field invariants.
func (p *Prerequisite) Validate() error {
	if p.CourseCode == "" {
		return ErrCourseCodeEmpty
	}
	if p.CurriculumID == 0 {
		return ErrCourseCurriculumEmpty
	}
	if p.PrerequisiteCode == "" {
		return ErrPrerequisiteCodeEmpty
	}
	if p.PrerequisiteCode == p.CourseCode {
		return ErrPrerequisiteSelfReferent
	}
	if !isValidPrerequisiteType(p.Type) {
		return ErrPrerequisiteTypeInvalid
	}
	return nil
}

// SemesterStats aggregates course count and credit totals for one semester of
// a curriculum.
type SemesterStats struct {
	Semester     int `json:"semester"`
	CourseCount  int `json:"course_count"`
	TotalCredits int `json:"total_credits"`
}

// CompletenessReport summarizes whether a curriculum's course structure meets
// minimum requirements. Errors block activation readiness, warnings do not.
type CompletenessReport struct {
	IsValid        bool     `json:"is_valid"`
	TotalCredits   int      `json:"total_credits"`
	TotalCourses   int      `json:"total_courses"`
	MandatoryCount int      `json:"mandatory_count"`
	ElectiveCount  int      `json:"elective_count"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
}

func isValidCourseType(t CourseType) bool {
	switch t {
	case CourseTypeMandatory, CourseTypeElective, CourseTypeGeneralEducation:
		return true
	default:
		return false
	}
}

func isValidPrerequisiteType(t PrerequisiteType) bool {
	switch t {
	case PrerequisiteTypeMandatory, PrerequisiteTypeAlternative:
		return true
	default:
		return false
	}
}
