package domain

import (
	"errors"
	"time"
)

// EnrollmentStatus represents an enrollment's state within one term.
type EnrollmentStatus string

// Valid enrollment statuses.
const (
	EnrollmentStatusActive  EnrollmentStatus = "active"
	EnrollmentStatusRepeat  EnrollmentStatus = "repeat"
	EnrollmentStatusDropped EnrollmentStatus = "dropped"
	EnrollmentStatusPassed  EnrollmentStatus = "passed"
)

// Enrollment-specific validation errors.
var (
	ErrEnrollmentStudentEmpty  = errors.New("enrollment student ID cannot be empty")
	ErrEnrollmentCourseEmpty   = errors.New("enrollment course code cannot be empty")
	ErrEnrollmentTermEmpty     = errors.New("enrollment term cannot be empty")
	ErrEnrollmentStatusInvalid = errors.New("invalid enrollment status")
	ErrEnrollmentGradeInvalid  = errors.New("enrollment final grade must be between 0 and 100")
)

// Enrollment records a student taking one course of one curriculum in a
// given term. A student may hold at most one enrollment per course per term.
type Enrollment struct {
	ID           int64            `json:"id"`
	StudentID    string           `json:"student_id"`
	CourseCode   string           `json:"course_code"`
	CurriculumID int64            `json:"curriculum_id"`
	Term         string           `json:"term"`
	Status       EnrollmentStatus `json:"status"`
	FinalGrade   *float64         `json:"final_grade,omitempty"`
	LetterGrade  string           `json:"letter_grade,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewEnrollment creates an active enrollment. Returns an error if validation
// fails.
func NewEnrollment(studentID, courseCode string, curriculumID int64, term string) (*Enrollment, error) {
	now := time.Now().UTC()
	e := &Enrollment{
		StudentID:    studentID,
		CourseCode:   courseCode,
		CurriculumID: curriculumID,
		Term:         term,
		Status:       EnrollmentStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the enrollment's field invariants.
func (e *Enrollment) Validate() error {
	if e.StudentID == "" {
		return ErrEnrollmentStudentEmpty
	}
	if e.CourseCode == "" {
		return ErrEnrollmentCourseEmpty
	}
	if e.CurriculumID == 0 {
		return ErrCourseCurriculumEmpty
	}
	if e.Term == "" {
		return ErrEnrollmentTermEmpty
	}
	if !isValidEnrollmentStatus(e.Status) {
		return ErrEnrollmentStatusInvalid
	}
	if e.FinalGrade != nil && (*e.FinalGrade < 0 || *e.FinalGrade > 100) {
		return ErrEnrollmentGradeInvalid
	}
	return nil
}

// Drop marks the enrollment as dropped. Dropping a passed enrollment is not
// allowed.
func (e *Enrollment) Drop() error {
	if e.Status == EnrollmentStatusPassed {
		return InvalidOperationf("cannot drop a passed enrollment")
	}
	e.Status = EnrollmentStatusDropped
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordGrade stores the final numeric and letter grade and marks the
// enrollment passed or repeat based on the passing threshold.
func (e *Enrollment) RecordGrade(finalGrade float64, letterGrade string) error {
	if e.Status == EnrollmentStatusDropped {
		return InvalidOperationf("cannot grade a dropped enrollment")
	}
	if finalGrade < 0 || finalGrade > 100 {
		return ErrEnrollmentGradeInvalid
	}

	e.FinalGrade = &finalGrade
	e.LetterGrade = letterGrade
	if letterGrade == "E" {
		e.Status = EnrollmentStatusRepeat
	} else {
		e.Status = EnrollmentStatusPassed
	}
	e.UpdatedAt = time.Now().UTC()
	return nil
}

func isValidEnrollmentStatus(status EnrollmentStatus) bool {
	switch status {
	case EnrollmentStatusActive, EnrollmentStatusRepeat,
		EnrollmentStatusDropped, EnrollmentStatusPassed:
		return true
	default:
		return false
	}
}
