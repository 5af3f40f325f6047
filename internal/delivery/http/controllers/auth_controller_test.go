package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchday/internal/domain"
)

type fakeAuthService struct {
	user      *domain.User
	signUpErr error
	token     string
	loginErr  error
}

func (f *fakeAuthService) SignUp(ctx context.Context, email, password, name string) (*domain.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return f.user, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func TestAuthController_SignUp(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *fakeAuthService
		wantStatus int
	}{
		{
			name: "success",
			body: `{"email":"alex@example.com","password":"supersecret","name":"Alex"}`,
			svc: &fakeAuthService{user: &domain.User{
				ID: "user-1", Email: "alex@example.com", Name: "Alex",
			}},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing fields",
			body:       `{"email":"alex@example.com"}`,
			svc:        &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate email",
			body:       `{"email":"alex@example.com","password":"supersecret","name":"Alex"}`,
			svc:        &fakeAuthService{signUpErr: domain.ErrDuplicateEmail},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid input from service",
			body:       `{"email":"alex@example.com","password":"supersecret","name":"Alex"}`,
			svc:        &fakeAuthService{signUpErr: domain.ErrInvalidInput},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodPost, "http://test/auth/signup", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.SignUp(rr, req)
			require.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestAuthController_SignUp_DoesNotLeakCredentials(t *testing.T) {
	ctrl := NewAuthController(testLogger(), &fakeAuthService{user: &domain.User{
		ID: "user-1", Email: "alex@example.com", Name: "Alex", PasswordHash: "hash", Salt: "salt",
	}})
	req := httptest.NewRequest(http.MethodPost, "http://test/auth/signup",
		bytes.NewBufferString(`{"email":"alex@example.com","password":"supersecret","name":"Alex"}`))
	rr := httptest.NewRecorder()

	ctrl.SignUp(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "hash")
	assert.NotContains(t, rr.Body.String(), "salt")
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *fakeAuthService
		wantStatus int
		wantToken  string
	}{
		{
			name:       "success",
			body:       `{"email":"alex@example.com","password":"supersecret"}`,
			svc:        &fakeAuthService{token: "jwt-token"},
			wantStatus: http.StatusOK,
			wantToken:  "jwt-token",
		},
		{
			name:       "invalid credentials",
			body:       `{"email":"alex@example.com","password":"wrong"}`,
			svc:        &fakeAuthService{loginErr: assert.AnError},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing password",
			body:       `{"email":"alex@example.com"}`,
			svc:        &fakeAuthService{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewAuthController(testLogger(), tt.svc)
			req := httptest.NewRequest(http.MethodPost, "http://test/auth/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			ctrl.Login(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantToken != "" {
				var envelope struct {
					Data LoginResponse `json:"data"`
				}
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				assert.Equal(t, tt.wantToken, envelope.Data.Token)
			}
		})
	}
}
