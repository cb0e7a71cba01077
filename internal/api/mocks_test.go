package api

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/service/auth"
	"github.com/akademika/obe-api/internal/store"
)

// mockUserStore is an in-memory UserStore for handler tests.
type mockUserStore struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by email
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*domain.User)}
}

func (s *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return store.ErrEmailExists
	}
	stored := *user
	stored.HashedPassword = "hashed:" + user.Password
	stored.Password = ""
	s.users[user.Email] = &stored
	return nil
}

func (s *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *mockUserStore) Update(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; !ok {
		return store.ErrUserNotFound
	}
	copied := *user
	s.users[user.Email] = &copied
	return nil
}

func (s *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return s }

// mockJWTService returns canned tokens and claims.
type mockJWTService struct {
	Token        string
	RefreshToken string
	Claims       *auth.Claims
	Err          error
	RefreshErr   error
}

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID, role domain.UserRole) (string, error) {
	return m.Token, m.Err
}

func (m *mockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Claims, nil
}

func (m *mockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID, role domain.UserRole) (string, error) {
	return m.RefreshToken, m.Err
}

func (m *mockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.RefreshErr != nil {
		return nil, m.RefreshErr
	}
	return m.Claims, nil
}

// mockPasswordVerifier succeeds or fails unconditionally.
type mockPasswordVerifier struct {
	ShouldSucceed bool
}

func (m *mockPasswordVerifier) Compare(hashedPassword, password string) error {
	if m.ShouldSucceed {
		return nil
	}
	return bcrypt.ErrMismatchedHashAndPassword
}

// fakeCurriculumService implements service.CurriculumService with overridable
// function fields. Unset methods return a nil error and nil result.
type fakeCurriculumService struct {
	createFn     func(ctx context.Context, curriculum *domain.Curriculum) error
	getFn        func(ctx context.Context, id int64) (*domain.Curriculum, error)
	getPrimaryFn func(ctx context.Context, programID string) (*domain.Curriculum, error)
	listFn       func(ctx context.Context, programID string, status domain.CurriculumStatus) ([]*domain.Curriculum, error)
	updateFn     func(ctx context.Context, curriculum *domain.Curriculum) (*domain.Curriculum, error)
	submitFn     func(ctx context.Context, id int64) (*domain.Curriculum, error)
	approveFn    func(ctx context.Context, id int64) (*domain.Curriculum, error)
	activateFn   func(ctx context.Context, id int64, decreeNumber string, decreeDate time.Time, setPrimary bool) (*domain.Curriculum, error)
	deactivateFn func(ctx context.Context, id int64) (*domain.Curriculum, error)
	archiveFn    func(ctx context.Context, id int64) (*domain.Curriculum, error)
	deleteFn     func(ctx context.Context, id int64) error
	statsFn      func(ctx context.Context, id int64) (*domain.CurriculumStats, error)
}

func (f *fakeCurriculumService) Create(ctx context.Context, c *domain.Curriculum) error {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return nil
}

func (f *fakeCurriculumService) Get(ctx context.Context, id int64) (*domain.Curriculum, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeCurriculumService) GetPrimary(ctx context.Context, programID string) (*domain.Curriculum, error) {
	if f.getPrimaryFn != nil {
		return f.getPrimaryFn(ctx, programID)
	}
	return nil, nil
}

func (f *fakeCurriculumService) ListByProgram(
	ctx context.Context,
	programID string,
	status domain.CurriculumStatus,
) ([]*domain.Curriculum, error) {
	if f.listFn != nil {
		return f.listFn(ctx, programID, status)
	}
	return nil, nil
}

func (f *fakeCurriculumService) Update(ctx context.Context, c *domain.Curriculum) (*domain.Curriculum, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, c)
	}
	return c, nil
}

func (f *fakeCurriculumService) SubmitForReview(ctx context.Context, id int64) (*domain.Curriculum, error) {
	if f.submitFn != nil {
		return f.submitFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeCurriculumService) Approve(ctx context.Context, id int64) (*domain.Curriculum, error) {
	if f.approveFn != nil {
		return f.approveFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeCurriculumService) Activate(
	ctx context.Context,
	id int64,
	decreeNumber string,
	decreeDate time.Time,
	setPrimary bool,
) (*domain.Curriculum, error) {
	if f.activateFn != nil {
		return f.activateFn(ctx, id, decreeNumber, decreeDate, setPrimary)
	}
	return nil, nil
}

func (f *fakeCurriculumService) Deactivate(ctx context.Context, id int64) (*domain.Curriculum, error) {
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeCurriculumService) Archive(ctx context.Context, id int64) (*domain.Curriculum, error) {
	if f.archiveFn != nil {
		return f.archiveFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeCurriculumService) Delete(ctx context.Context, id int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeCurriculumService) Stats(ctx context.Context, id int64) (*domain.CurriculumStats, error) {
	if f.statsFn != nil {
		return f.statsFn(ctx, id)
	}
	return nil, nil
}

// fakeCourseService implements service.CourseService with overridable function
// fields. Delete refuses with the hard-delete sentinel unless overridden,
// matching the real service.
type fakeCourseService struct {
	createFn       func(ctx context.Context, course *domain.Course) error
	getFn          func(ctx context.Context, code string, curriculumID int64) (*domain.Course, error)
	listFn         func(ctx context.Context, curriculumID int64, semester int) ([]*domain.Course, error)
	updateFn       func(ctx context.Context, course *domain.Course) (*domain.Course, error)
	deactivateFn   func(ctx context.Context, code string, curriculumID int64) error
	reactivateFn   func(ctx context.Context, code string, curriculumID int64) error
	deleteFn       func(ctx context.Context, code string, curriculumID int64) error
	totalCreditsFn func(ctx context.Context, curriculumID int64) (int, error)
	semesterFn     func(ctx context.Context, curriculumID int64) ([]*domain.SemesterStats, error)
	completeFn     func(ctx context.Context, curriculumID int64) (*domain.CompletenessReport, error)
	addPrereqFn    func(ctx context.Context, prerequisite *domain.Prerequisite) error
	listPrereqFn   func(ctx context.Context, courseCode string, curriculumID int64) ([]*domain.Prerequisite, error)
	removePrereqFn func(ctx context.Context, id int64) error
}

func (f *fakeCourseService) Create(ctx context.Context, c *domain.Course) error {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return nil
}

func (f *fakeCourseService) Get(ctx context.Context, code string, curriculumID int64) (*domain.Course, error) {
	if f.getFn != nil {
		return f.getFn(ctx, code, curriculumID)
	}
	return nil, nil
}

func (f *fakeCourseService) ListByCurriculum(
	ctx context.Context,
	curriculumID int64,
	semester int,
) ([]*domain.Course, error) {
	if f.listFn != nil {
		return f.listFn(ctx, curriculumID, semester)
	}
	return nil, nil
}

func (f *fakeCourseService) Update(ctx context.Context, c *domain.Course) (*domain.Course, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, c)
	}
	return c, nil
}

func (f *fakeCourseService) Deactivate(ctx context.Context, code string, curriculumID int64) error {
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, code, curriculumID)
	}
	return nil
}

func (f *fakeCourseService) Reactivate(ctx context.Context, code string, curriculumID int64) error {
	if f.reactivateFn != nil {
		return f.reactivateFn(ctx, code, curriculumID)
	}
	return nil
}

func (f *fakeCourseService) Delete(ctx context.Context, code string, curriculumID int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, code, curriculumID)
	}
	return domain.ErrCourseHardDelete
}

func (f *fakeCourseService) TotalCredits(ctx context.Context, curriculumID int64) (int, error) {
	if f.totalCreditsFn != nil {
		return f.totalCreditsFn(ctx, curriculumID)
	}
	return 0, nil
}

func (f *fakeCourseService) SemesterStats(
	ctx context.Context,
	curriculumID int64,
) ([]*domain.SemesterStats, error) {
	if f.semesterFn != nil {
		return f.semesterFn(ctx, curriculumID)
	}
	return nil, nil
}

func (f *fakeCourseService) ValidateCompleteness(
	ctx context.Context,
	curriculumID int64,
) (*domain.CompletenessReport, error) {
	if f.completeFn != nil {
		return f.completeFn(ctx, curriculumID)
	}
	return nil, nil
}

func (f *fakeCourseService) AddPrerequisite(ctx context.Context, p *domain.Prerequisite) error {
	if f.addPrereqFn != nil {
		return f.addPrereqFn(ctx, p)
	}
	return nil
}

func (f *fakeCourseService) ListPrerequisites(
	ctx context.Context,
	courseCode string,
	curriculumID int64,
) ([]*domain.Prerequisite, error) {
	if f.listPrereqFn != nil {
		return f.listPrereqFn(ctx, courseCode, curriculumID)
	}
	return nil, nil
}

func (f *fakeCourseService) RemovePrerequisite(ctx context.Context, id int64) error {
	if f.removePrereqFn != nil {
		return f.removePrereqFn(ctx, id)
	}
	return nil
}
