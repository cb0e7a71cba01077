package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akademika/obe-api/internal/api/shared"
	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/store"
)

func newCurriculumRouter(svc *fakeCurriculumService) http.Handler {
	handler := NewCurriculumHandler(svc, slog.Default())

	r := chi.NewRouter()
	r.Post("/curricula", handler.Create)
	r.Get("/curricula/{id}", handler.Get)
	r.Get("/curricula", handler.List)
	r.Put("/curricula/{id}", handler.Update)
	r.Delete("/curricula/{id}", handler.Delete)
	r.Post("/curricula/{id}/submit", handler.SubmitForReview)
	r.Post("/curricula/{id}/approve", handler.Approve)
	r.Post("/curricula/{id}/activate", handler.Activate)
	r.Post("/curricula/{id}/deactivate", handler.Deactivate)
	r.Post("/curricula/{id}/archive", handler.Archive)
	r.Get("/curricula/{id}/stats", handler.Stats)
	r.Get("/programs/{programID}/primary-curriculum", handler.GetPrimary)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestCurriculumCreate(t *testing.T) {
	t.Parallel()

	t.Run("valid curriculum", func(t *testing.T) {
		var created *domain.Curriculum
		svc := &fakeCurriculumService{
			createFn: func(ctx context.Context, c *domain.Curriculum) error {
				c.ID = 42
				created = c
				return nil
			},
		}
		router := newCurriculumRouter(svc)

		payload := map[string]interface{}{
			"program_id":     "TIF",
			"code":           "K2024",
			"name":           "Kurikulum 2024",
			"effective_year": 2024,
		}
		recorder := doRequest(t, router, "POST", "/curricula", payload)

		require.Equal(t, http.StatusCreated, recorder.Code)
		require.NotNil(t, created)
		assert.Equal(t, domain.CurriculumStatusDraft, created.Status)

		var resp domain.Curriculum
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, int64(42), resp.ID)
		assert.Equal(t, "K2024", resp.Code)
	})

	t.Run("duplicate code within program", func(t *testing.T) {
		svc := &fakeCurriculumService{
			createFn: func(ctx context.Context, c *domain.Curriculum) error {
				return domain.NewDuplicateEntityError("curriculum", "code", c.Code)
			},
		}
		router := newCurriculumRouter(svc)

		payload := map[string]interface{}{
			"program_id":     "TIF",
			"code":           "K2024",
			"name":           "Kurikulum 2024",
			"effective_year": 2024,
		}
		recorder := doRequest(t, router, "POST", "/curricula", payload)

		require.Equal(t, http.StatusConflict, recorder.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, domain.CodeDuplicateEntity, resp.Code)
		assert.Contains(t, resp.Error, "K2024")
	})

	t.Run("missing name fails validation", func(t *testing.T) {
		router := newCurriculumRouter(&fakeCurriculumService{})

		payload := map[string]interface{}{
			"program_id":     "TIF",
			"code":           "K2024",
			"effective_year": 2024,
		}
		recorder := doRequest(t, router, "POST", "/curricula", payload)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("effective year before 1901 fails validation", func(t *testing.T) {
		router := newCurriculumRouter(&fakeCurriculumService{})

		payload := map[string]interface{}{
			"program_id":     "TIF",
			"code":           "K2024",
			"name":           "Kurikulum 2024",
			"effective_year": 1850,
		}
		recorder := doRequest(t, router, "POST", "/curricula", payload)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestCurriculumGet(t *testing.T) {
	t.Parallel()

	t.Run("existing curriculum", func(t *testing.T) {
		svc := &fakeCurriculumService{
			getFn: func(ctx context.Context, id int64) (*domain.Curriculum, error) {
				return &domain.Curriculum{ID: id, Code: "K2024", Status: domain.CurriculumStatusActive}, nil
			},
		}
		router := newCurriculumRouter(svc)

		recorder := doRequest(t, router, "GET", "/curricula/42", nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp domain.Curriculum
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, int64(42), resp.ID)
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeCurriculumService{
			getFn: func(ctx context.Context, id int64) (*domain.Curriculum, error) {
				return nil, store.ErrCurriculumNotFound
			},
		}
		router := newCurriculumRouter(svc)

		recorder := doRequest(t, router, "GET", "/curricula/99", nil)
		require.Equal(t, http.StatusNotFound, recorder.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, domain.CodeNotFound, resp.Code)
		assert.Equal(t, "Curriculum not found", resp.Error)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		router := newCurriculumRouter(&fakeCurriculumService{})
		recorder := doRequest(t, router, "GET", "/curricula/abc", nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestCurriculumList(t *testing.T) {
	t.Parallel()

	t.Run("requires program_id", func(t *testing.T) {
		router := newCurriculumRouter(&fakeCurriculumService{})
		recorder := doRequest(t, router, "GET", "/curricula", nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("passes status filter through", func(t *testing.T) {
		var gotProgram string
		var gotStatus domain.CurriculumStatus
		svc := &fakeCurriculumService{
			listFn: func(ctx context.Context, programID string, status domain.CurriculumStatus) ([]*domain.Curriculum, error) {
				gotProgram = programID
				gotStatus = status
				return []*domain.Curriculum{{ID: 1, Code: "K2020"}}, nil
			},
		}
		router := newCurriculumRouter(svc)

		recorder := doRequest(t, router, "GET", "/curricula?program_id=TIF&status=active", nil)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "TIF", gotProgram)
		assert.Equal(t, domain.CurriculumStatusActive, gotStatus)
	})
}

func TestCurriculumActivate(t *testing.T) {
	t.Parallel()

	t.Run("activates with decree", func(t *testing.T) {
		var gotDecree string
		var gotSetPrimary bool
		svc := &fakeCurriculumService{
			activateFn: func(ctx context.Context, id int64, decreeNumber string, decreeDate time.Time, setPrimary bool) (*domain.Curriculum, error) {
				gotDecree = decreeNumber
				gotSetPrimary = setPrimary
				return &domain.Curriculum{
					ID:        id,
					Status:    domain.CurriculumStatusActive,
					IsPrimary: setPrimary,
				}, nil
			},
		}
		router := newCurriculumRouter(svc)

		payload := map[string]interface{}{
			"decree_number": "SK/001/2024",
			"decree_date":   "2024-08-01T00:00:00Z",
			"set_primary":   true,
		}
		recorder := doRequest(t, router, "POST", "/curricula/42/activate", payload)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "SK/001/2024", gotDecree)
		assert.True(t, gotSetPrimary)
	})

	t.Run("missing decree number", func(t *testing.T) {
		router := newCurriculumRouter(&fakeCurriculumService{})

		payload := map[string]interface{}{
			"decree_date": "2024-08-01T00:00:00Z",
		}
		recorder := doRequest(t, router, "POST", "/curricula/42/activate", payload)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("curriculum not approved", func(t *testing.T) {
		svc := &fakeCurriculumService{
			activateFn: func(ctx context.Context, id int64, decreeNumber string, decreeDate time.Time, setPrimary bool) (*domain.Curriculum, error) {
				return nil, domain.InvalidOperationf(
					`cannot activate curriculum: status must be "approved", got "draft"`)
			},
		}
		router := newCurriculumRouter(svc)

		payload := map[string]interface{}{
			"decree_number": "SK/001/2024",
			"decree_date":   "2024-08-01T00:00:00Z",
		}
		recorder := doRequest(t, router, "POST", "/curricula/42/activate", payload)
		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})
}

func TestCurriculumLifecycleTransitions(t *testing.T) {
	t.Parallel()

	t.Run("submit returns updated curriculum", func(t *testing.T) {
		svc := &fakeCurriculumService{
			submitFn: func(ctx context.Context, id int64) (*domain.Curriculum, error) {
				return &domain.Curriculum{ID: id, Status: domain.CurriculumStatusReview}, nil
			},
		}
		router := newCurriculumRouter(svc)

		recorder := doRequest(t, router, "POST", "/curricula/7/submit", nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var resp domain.Curriculum
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, domain.CurriculumStatusReview, resp.Status)
	})

	t.Run("invalid transition maps to 422", func(t *testing.T) {
		svc := &fakeCurriculumService{
			approveFn: func(ctx context.Context, id int64) (*domain.Curriculum, error) {
				return nil, domain.InvalidOperationf("cannot transition from %s to %s",
					domain.CurriculumStatusDraft, domain.CurriculumStatusApproved)
			},
		}
		router := newCurriculumRouter(svc)

		recorder := doRequest(t, router, "POST", "/curricula/7/approve", nil)
		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, domain.CodeInvalidOperation, resp.Code)
		assert.Contains(t, resp.Error, "cannot transition")
	})

	t.Run("archive blocked by active students", func(t *testing.T) {
		svc := &fakeCurriculumService{
			archiveFn: func(ctx context.Context, id int64) (*domain.Curriculum, error) {
				return nil, domain.InvalidOperationf(
					"cannot archive curriculum with %d active students", 17)
			},
		}
		router := newCurriculumRouter(svc)

		recorder := doRequest(t, router, "POST", "/curricula/7/archive", nil)
		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "cannot archive curriculum with 17 active students", resp.Error)
	})
}

func TestCurriculumDelete(t *testing.T) {
	t.Parallel()

	t.Run("draft deletes with no content", func(t *testing.T) {
		svc := &fakeCurriculumService{
			deleteFn: func(ctx context.Context, id int64) error { return nil },
		}
		router := newCurriculumRouter(svc)

		recorder := doRequest(t, router, "DELETE", "/curricula/7", nil)
		assert.Equal(t, http.StatusNoContent, recorder.Code)
	})

	t.Run("non-draft refuses", func(t *testing.T) {
		svc := &fakeCurriculumService{
			deleteFn: func(ctx context.Context, id int64) error {
				return domain.InvalidOperationf("only draft curricula can be deleted")
			},
		}
		router := newCurriculumRouter(svc)

		recorder := doRequest(t, router, "DELETE", "/curricula/7", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})
}

func TestCurriculumGetPrimary(t *testing.T) {
	t.Parallel()

	svc := &fakeCurriculumService{
		getPrimaryFn: func(ctx context.Context, programID string) (*domain.Curriculum, error) {
			if programID != "TIF" {
				return nil, store.ErrCurriculumNotFound
			}
			return &domain.Curriculum{ID: 1, ProgramID: programID, IsPrimary: true}, nil
		},
	}
	router := newCurriculumRouter(svc)

	recorder := doRequest(t, router, "GET", "/programs/TIF/primary-curriculum", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp domain.Curriculum
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.True(t, resp.IsPrimary)

	recorder = doRequest(t, router, "GET", "/programs/SIF/primary-curriculum", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCurriculumStats(t *testing.T) {
	t.Parallel()

	svc := &fakeCurriculumService{
		statsFn: func(ctx context.Context, id int64) (*domain.CurriculumStats, error) {
			return &domain.CurriculumStats{OutcomeCount: 12, CourseCount: 48, StudentCount: 230}, nil
		},
	}
	router := newCurriculumRouter(svc)

	recorder := doRequest(t, router, "GET", "/curricula/42/stats", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var resp domain.CurriculumStats
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, 12, resp.OutcomeCount)
	assert.Equal(t, 48, resp.CourseCount)
	assert.Equal(t, 230, resp.StudentCount)
}
