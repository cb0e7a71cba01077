package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/store"
)

// Hand-written in-memory fakes for the store interfaces. WithTx returns the
// same instance: transaction semantics are covered by the postgres package,
// these fakes only track state and calls.

type fakeCurriculumStore struct {
	curricula      map[int64]*domain.Curriculum
	nextID         int64
	stats          map[int64]*domain.CurriculumStats
	activeStudents map[int64]int
	deleted        []int64
}

func newFakeCurriculumStore() *fakeCurriculumStore {
	return &fakeCurriculumStore{
		curricula:      map[int64]*domain.Curriculum{},
		nextID:         1,
		stats:          map[int64]*domain.CurriculumStats{},
		activeStudents: map[int64]int{},
	}
}

func (f *fakeCurriculumStore) add(c *domain.Curriculum) *domain.Curriculum {
	if c.ID == 0 {
		c.ID = f.nextID
		f.nextID++
	}
	cp := *c
	f.curricula[c.ID] = &cp
	return c
}

func (f *fakeCurriculumStore) Create(_ context.Context, c *domain.Curriculum) error {
	for _, existing := range f.curricula {
		if existing.ProgramID == c.ProgramID && existing.Code == c.Code {
			return fmt.Errorf("%w: curriculum code %q", store.ErrDuplicate, c.Code)
		}
	}
	f.add(c)
	return nil
}

func (f *fakeCurriculumStore) GetByID(_ context.Context, id int64) (*domain.Curriculum, error) {
	c, ok := f.curricula[id]
	if !ok {
		return nil, store.ErrCurriculumNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCurriculumStore) GetByCode(_ context.Context, programID, code string) (*domain.Curriculum, error) {
	for _, c := range f.curricula {
		if c.ProgramID == programID && c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrCurriculumNotFound
}

func (f *fakeCurriculumStore) GetPrimary(_ context.Context, programID string) (*domain.Curriculum, error) {
	for _, c := range f.curricula {
		if c.ProgramID == programID && c.IsPrimary {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrCurriculumNotFound
}

func (f *fakeCurriculumStore) ListByProgram(
	_ context.Context,
	programID string,
	status domain.CurriculumStatus,
) ([]*domain.Curriculum, error) {
	out := []*domain.Curriculum{}
	for _, c := range f.curricula {
		if c.ProgramID == programID && (status == "" || c.Status == status) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCurriculumStore) Update(_ context.Context, c *domain.Curriculum) error {
	if _, ok := f.curricula[c.ID]; !ok {
		return store.ErrCurriculumNotFound
	}
	cp := *c
	f.curricula[c.ID] = &cp
	return nil
}

func (f *fakeCurriculumStore) ActivateExclusive(_ context.Context, id int64, programID string) error {
	found := false
	for _, c := range f.curricula {
		if c.ProgramID != programID {
			continue
		}
		found = true
		c.IsPrimary = c.ID == id
	}
	if !found {
		return store.ErrCurriculumNotFound
	}
	return nil
}

func (f *fakeCurriculumStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.curricula[id]; !ok {
		return store.ErrCurriculumNotFound
	}
	delete(f.curricula, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCurriculumStore) Stats(_ context.Context, id int64) (*domain.CurriculumStats, error) {
	if _, ok := f.curricula[id]; !ok {
		return nil, store.ErrCurriculumNotFound
	}
	if s, ok := f.stats[id]; ok {
		cp := *s
		return &cp, nil
	}
	return &domain.CurriculumStats{}, nil
}

func (f *fakeCurriculumStore) CountActiveStudents(_ context.Context, id int64) (int, error) {
	return f.activeStudents[id], nil
}

func (f *fakeCurriculumStore) WithTx(_ *sql.Tx) store.CurriculumStore { return f }

type fakeProgramStore struct {
	programs map[string]*domain.Program
}

func newFakeProgramStore(programs ...*domain.Program) *fakeProgramStore {
	f := &fakeProgramStore{programs: map[string]*domain.Program{}}
	for _, p := range programs {
		f.programs[p.ID] = p
	}
	return f
}

func (f *fakeProgramStore) Create(_ context.Context, p *domain.Program) error {
	if _, ok := f.programs[p.ID]; ok {
		return fmt.Errorf("%w: program %q", store.ErrDuplicate, p.ID)
	}
	f.programs[p.ID] = p
	return nil
}

func (f *fakeProgramStore) GetByID(_ context.Context, id string) (*domain.Program, error) {
	p, ok := f.programs[id]
	if !ok {
		return nil, store.ErrProgramNotFound
	}
	return p, nil
}

func (f *fakeProgramStore) List(_ context.Context) ([]*domain.Program, error) {
	out := []*domain.Program{}
	for _, p := range f.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProgramStore) Update(_ context.Context, p *domain.Program) error {
	if _, ok := f.programs[p.ID]; !ok {
		return store.ErrProgramNotFound
	}
	f.programs[p.ID] = p
	return nil
}

func (f *fakeProgramStore) WithTx(_ *sql.Tx) store.ProgramStore { return f }

type fakeOutcomeStore struct {
	outcomes map[int64]*domain.LearningOutcome
	nextID   int64
}

func newFakeOutcomeStore() *fakeOutcomeStore {
	return &fakeOutcomeStore{outcomes: map[int64]*domain.LearningOutcome{}, nextID: 1}
}

func (f *fakeOutcomeStore) Create(_ context.Context, o *domain.LearningOutcome) error {
	for _, existing := range f.outcomes {
		if existing.CurriculumID == o.CurriculumID && existing.Code == o.Code {
			return fmt.Errorf("%w: outcome code %q", store.ErrDuplicate, o.Code)
		}
	}
	o.ID = f.nextID
	f.nextID++
	cp := *o
	f.outcomes[o.ID] = &cp
	return nil
}

func (f *fakeOutcomeStore) GetByID(_ context.Context, id int64) (*domain.LearningOutcome, error) {
	o, ok := f.outcomes[id]
	if !ok {
		return nil, store.ErrOutcomeNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOutcomeStore) GetByCode(_ context.Context, curriculumID int64, code string) (*domain.LearningOutcome, error) {
	for _, o := range f.outcomes {
		if o.CurriculumID == curriculumID && o.Code == code {
			cp := *o
			return &cp, nil
		}
	}
	return nil, store.ErrOutcomeNotFound
}

func (f *fakeOutcomeStore) ListByCurriculum(
	_ context.Context,
	curriculumID int64,
	category domain.OutcomeCategory,
) ([]*domain.LearningOutcome, error) {
	out := []*domain.LearningOutcome{}
	for _, o := range f.outcomes {
		if o.CurriculumID == curriculumID && (category == "" || o.Category == category) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeOutcomeStore) CountByCategory(_ context.Context, curriculumID int64) (map[domain.OutcomeCategory]int, error) {
	counts := map[domain.OutcomeCategory]int{}
	for _, category := range domain.OutcomeCategories {
		counts[category] = 0
	}
	for _, o := range f.outcomes {
		if o.CurriculumID == curriculumID && o.IsActive {
			counts[o.Category]++
		}
	}
	return counts, nil
}

func (f *fakeOutcomeStore) MaxDisplayOrder(_ context.Context, curriculumID int64) (int, error) {
	max := 0
	for _, o := range f.outcomes {
		if o.CurriculumID == curriculumID && o.DisplayOrder != nil && *o.DisplayOrder > max {
			max = *o.DisplayOrder
		}
	}
	return max, nil
}

func (f *fakeOutcomeStore) Update(_ context.Context, o *domain.LearningOutcome) error {
	if _, ok := f.outcomes[o.ID]; !ok {
		return store.ErrOutcomeNotFound
	}
	cp := *o
	f.outcomes[o.ID] = &cp
	return nil
}

func (f *fakeOutcomeStore) Deactivate(_ context.Context, id int64) error {
	o, ok := f.outcomes[id]
	if !ok {
		return store.ErrOutcomeNotFound
	}
	o.IsActive = false
	return nil
}

func (f *fakeOutcomeStore) WithTx(_ *sql.Tx) store.OutcomeStore { return f }

type fakeCourseStore struct {
	courses       map[string]*domain.Course
	prerequisites map[int64]*domain.Prerequisite
	nextPrereqID  int64
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{
		courses:       map[string]*domain.Course{},
		prerequisites: map[int64]*domain.Prerequisite{},
		nextPrereqID:  1,
	}
}

func courseKey(code string, curriculumID int64) string {
	return fmt.Sprintf("%s|%d", code, curriculumID)
}

func (f *fakeCourseStore) Create(_ context.Context, c *domain.Course) error {
	key := courseKey(c.Code, c.CurriculumID)
	if _, ok := f.courses[key]; ok {
		return fmt.Errorf("%w: course code %q", store.ErrDuplicate, c.Code)
	}
	cp := *c
	f.courses[key] = &cp
	return nil
}

func (f *fakeCourseStore) Get(_ context.Context, code string, curriculumID int64) (*domain.Course, error) {
	c, ok := f.courses[courseKey(code, curriculumID)]
	if !ok {
		return nil, store.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourseStore) ListByCurriculum(_ context.Context, curriculumID int64, semester int) ([]*domain.Course, error) {
	out := []*domain.Course{}
	for _, c := range f.courses {
		if c.CurriculumID == curriculumID && (semester == 0 || c.Semester == semester) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Semester != out[j].Semester {
			return out[i].Semester < out[j].Semester
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (f *fakeCourseStore) Update(_ context.Context, c *domain.Course) error {
	key := courseKey(c.Code, c.CurriculumID)
	if _, ok := f.courses[key]; !ok {
		return store.ErrCourseNotFound
	}
	cp := *c
	f.courses[key] = &cp
	return nil
}

func (f *fakeCourseStore) Deactivate(_ context.Context, code string, curriculumID int64) error {
	c, ok := f.courses[courseKey(code, curriculumID)]
	if !ok {
		return store.ErrCourseNotFound
	}
	c.IsActive = false
	return nil
}

func (f *fakeCourseStore) Delete(_ context.Context, _ string, _ int64) error {
	return domain.ErrCourseHardDelete
}

func (f *fakeCourseStore) TotalCredits(_ context.Context, curriculumID int64) (int, error) {
	total := 0
	for _, c := range f.courses {
		if c.CurriculumID == curriculumID && c.IsActive {
			total += c.Credits
		}
	}
	return total, nil
}

func (f *fakeCourseStore) SemesterStats(_ context.Context, curriculumID int64) ([]*domain.SemesterStats, error) {
	bySemester := map[int]*domain.SemesterStats{}
	for _, c := range f.courses {
		if c.CurriculumID != curriculumID || !c.IsActive {
			continue
		}
		st, ok := bySemester[c.Semester]
		if !ok {
			st = &domain.SemesterStats{Semester: c.Semester}
			bySemester[c.Semester] = st
		}
		st.CourseCount++
		st.TotalCredits += c.Credits
	}
	out := []*domain.SemesterStats{}
	for _, st := range bySemester {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Semester < out[j].Semester })
	return out, nil
}

func (f *fakeCourseStore) AddPrerequisite(_ context.Context, p *domain.Prerequisite) error {
	for _, existing := range f.prerequisites {
		if existing.CourseCode == p.CourseCode &&
			existing.CurriculumID == p.CurriculumID &&
			existing.PrerequisiteCode == p.PrerequisiteCode {
			return fmt.Errorf("%w: prerequisite %q", store.ErrDuplicate, p.PrerequisiteCode)
		}
	}
	p.ID = f.nextPrereqID
	f.nextPrereqID++
	cp := *p
	f.prerequisites[p.ID] = &cp
	return nil
}

func (f *fakeCourseStore) ListPrerequisites(
	_ context.Context,
	courseCode string,
	curriculumID int64,
) ([]*domain.Prerequisite, error) {
	out := []*domain.Prerequisite{}
	for _, p := range f.prerequisites {
		if p.CourseCode == courseCode && p.CurriculumID == curriculumID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCourseStore) RemovePrerequisite(_ context.Context, id int64) error {
	if _, ok := f.prerequisites[id]; !ok {
		return store.ErrPrerequisiteNotFound
	}
	delete(f.prerequisites, id)
	return nil
}

func (f *fakeCourseStore) WithTx(_ *sql.Tx) store.CourseStore { return f }

type fakeStudentStore struct {
	students map[string]*domain.Student
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{students: map[string]*domain.Student{}}
}

func (f *fakeStudentStore) Create(_ context.Context, s *domain.Student) error {
	if _, ok := f.students[s.ID]; ok {
		return fmt.Errorf("%w: student %q", store.ErrDuplicate, s.ID)
	}
	cp := *s
	f.students[s.ID] = &cp
	return nil
}

func (f *fakeStudentStore) GetByID(_ context.Context, id string) (*domain.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, store.ErrStudentNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStudentStore) ListByProgram(
	_ context.Context,
	programID string,
	cohortYear int,
	status domain.StudentStatus,
) ([]*domain.Student, error) {
	out := []*domain.Student{}
	for _, s := range f.students {
		if s.ProgramID != programID {
			continue
		}
		if cohortYear != 0 && s.CohortYear != cohortYear {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStudentStore) ListByCurriculum(_ context.Context, curriculumID int64) ([]*domain.Student, error) {
	out := []*domain.Student{}
	for _, s := range f.students {
		if s.CurriculumID != nil && *s.CurriculumID == curriculumID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update mirrors the persistent store's curriculum immutability guard so
// service tests observe the same contract.
func (f *fakeStudentStore) Update(_ context.Context, s *domain.Student) error {
	current, ok := f.students[s.ID]
	if !ok {
		return store.ErrStudentNotFound
	}
	if current.CurriculumID != nil {
		if s.CurriculumID == nil || *s.CurriculumID != *current.CurriculumID {
			return fmt.Errorf("%w: student %q is assigned to curriculum %d",
				domain.ErrCurriculumImmutable, s.ID, *current.CurriculumID)
		}
	}
	cp := *s
	f.students[s.ID] = &cp
	return nil
}

func (f *fakeStudentStore) WithTx(_ *sql.Tx) store.StudentStore { return f }

type fakeEnrollmentStore struct {
	enrollments map[int64]*domain.Enrollment
	nextID      int64
}

func newFakeEnrollmentStore() *fakeEnrollmentStore {
	return &fakeEnrollmentStore{enrollments: map[int64]*domain.Enrollment{}, nextID: 1}
}

func (f *fakeEnrollmentStore) Create(_ context.Context, e *domain.Enrollment) error {
	e.ID = f.nextID
	f.nextID++
	cp := *e
	f.enrollments[e.ID] = &cp
	return nil
}

func (f *fakeEnrollmentStore) GetByID(_ context.Context, id int64) (*domain.Enrollment, error) {
	e, ok := f.enrollments[id]
	if !ok {
		return nil, store.ErrEnrollmentNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEnrollmentStore) ListByStudent(_ context.Context, studentID, term string) ([]*domain.Enrollment, error) {
	out := []*domain.Enrollment{}
	for _, e := range f.enrollments {
		if e.StudentID == studentID && (term == "" || e.Term == term) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEnrollmentStore) HasActiveOrPassed(_ context.Context, studentID, courseCode, term string) (bool, error) {
	for _, e := range f.enrollments {
		if e.StudentID == studentID && e.CourseCode == courseCode && e.Term == term &&
			e.Status != domain.EnrollmentStatusDropped {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEnrollmentStore) Update(_ context.Context, e *domain.Enrollment) error {
	if _, ok := f.enrollments[e.ID]; !ok {
		return store.ErrEnrollmentNotFound
	}
	cp := *e
	f.enrollments[e.ID] = &cp
	return nil
}

func (f *fakeEnrollmentStore) WithTx(_ *sql.Tx) store.EnrollmentStore { return f }
