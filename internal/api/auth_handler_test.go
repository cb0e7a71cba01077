package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akademika/obe-api/internal/domain"
	"github.com/akademika/obe-api/internal/service/auth"
)

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler(recorder, req)
	return recorder
}

func TestRegister(t *testing.T) {
	t.Parallel()

	userStore := newMockUserStore()
	jwtService := &mockJWTService{Token: "test-token", RefreshToken: "test-refresh-token"}
	passwordVerifier := &mockPasswordVerifier{ShouldSucceed: true}

	handler := NewAuthHandler(userStore, jwtService, passwordVerifier)

	tests := []struct {
		name       string
		payload    map[string]interface{}
		wantStatus int
		wantToken  bool
	}{
		{
			name: "valid registration",
			payload: map[string]interface{}{
				"email":    "kaprodi@kampus.ac.id",
				"password": "password1234567",
				"role":     "kaprodi",
			},
			wantStatus: http.StatusCreated,
			wantToken:  true,
		},
		{
			name: "invalid email",
			payload: map[string]interface{}{
				"email":    "not-an-email",
				"password": "password1234567",
				"role":     "kaprodi",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			payload: map[string]interface{}{
				"email":    "dosen@kampus.ac.id",
				"password": "short",
				"role":     "dosen",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "invalid role",
			payload: map[string]interface{}{
				"email":    "rektor@kampus.ac.id",
				"password": "password1234567",
				"role":     "rektor",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing role",
			payload: map[string]interface{}{
				"email":    "dosen2@kampus.ac.id",
				"password": "password1234567",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postJSON(t, handler.Register, "/auth/register", tt.payload)
			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantToken {
				var authResp AuthResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&authResp))
				assert.NotEqual(t, uuid.Nil, authResp.UserID)
				assert.Equal(t, domain.RoleKaprodi, authResp.Role)
				assert.Equal(t, "test-token", authResp.AccessToken)
				assert.Equal(t, "test-refresh-token", authResp.RefreshToken)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	userStore := newMockUserStore()
	jwtService := &mockJWTService{Token: "test-token", RefreshToken: "test-refresh-token"}
	handler := NewAuthHandler(userStore, jwtService, &mockPasswordVerifier{ShouldSucceed: true})

	payload := map[string]interface{}{
		"email":    "kaprodi@kampus.ac.id",
		"password": "password1234567",
		"role":     "kaprodi",
	}

	recorder := postJSON(t, handler.Register, "/auth/register", payload)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = postJSON(t, handler.Register, "/auth/register", payload)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	userStore := newMockUserStore()
	jwtService := &mockJWTService{Token: "test-token", RefreshToken: "test-refresh-token"}

	registered, err := domain.NewUser("admin@kampus.ac.id", "password1234567", domain.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, userStore.Create(context.Background(), registered))

	tests := []struct {
		name          string
		email         string
		password      string
		passwordMatch bool
		wantStatus    int
	}{
		{
			name:          "valid credentials",
			email:         "admin@kampus.ac.id",
			password:      "password1234567",
			passwordMatch: true,
			wantStatus:    http.StatusOK,
		},
		{
			name:          "wrong password",
			email:         "admin@kampus.ac.id",
			password:      "wrong-password12",
			passwordMatch: false,
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "unknown email",
			email:         "nobody@kampus.ac.id",
			password:      "password1234567",
			passwordMatch: true,
			wantStatus:    http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(userStore, jwtService,
				&mockPasswordVerifier{ShouldSucceed: tt.passwordMatch})

			payload := map[string]interface{}{
				"email":    tt.email,
				"password": tt.password,
			}
			recorder := postJSON(t, handler.Login, "/auth/login", payload)
			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				var authResp AuthResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&authResp))
				assert.Equal(t, registered.ID, authResp.UserID)
				assert.Equal(t, domain.RoleAdmin, authResp.Role)
				assert.Equal(t, "test-token", authResp.AccessToken)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name       string
		jwtService *mockJWTService
		wantStatus int
	}{
		{
			name: "valid refresh token",
			jwtService: &mockJWTService{
				Token:        "new-access-token",
				RefreshToken: "new-refresh-token",
				Claims:       &auth.Claims{UserID: userID, Role: domain.RoleKaprodi, TokenType: "refresh"},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "expired refresh token",
			jwtService: &mockJWTService{
				RefreshErr: auth.ErrExpiredRefreshToken,
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "access token presented as refresh token",
			jwtService: &mockJWTService{
				RefreshErr: auth.ErrWrongTokenType,
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewAuthHandler(newMockUserStore(), tt.jwtService,
				&mockPasswordVerifier{ShouldSucceed: true})

			payload := map[string]interface{}{"refresh_token": "some-refresh-token"}
			recorder := postJSON(t, handler.RefreshToken, "/auth/refresh", payload)
			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantStatus == http.StatusOK {
				var resp RefreshTokenResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.Equal(t, "new-access-token", resp.AccessToken)
				assert.Equal(t, "new-refresh-token", resp.RefreshToken)
			}
		})
	}
}
