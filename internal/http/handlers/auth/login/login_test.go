package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/study-on/course-store/internal/http/response"
	"github.com/study-on/course-store/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, rawPassword string) (*auth.TokenPair, error) {
	args := m.Called(ctx, email, rawPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.TokenPair), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		setupMocks     func(*ServiceMock)
		wantStatusCode int
		wantBody       map[string]any
	}{
		{
			name:        "valid login",
			requestBody: Request{Username: "user@example.com", Password: "password123"},
			setupMocks: func(s *ServiceMock) {
				s.On("Login", mock.Anything, "user@example.com", "password123").
					Return(&auth.TokenPair{AccessToken: "tok", RefreshToken: "ref"}, nil).Once()
			},
			wantStatusCode: http.StatusCreated,
			wantBody: map[string]any{
				"token":         "tok",
				"refresh_token": "ref",
			},
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			setupMocks:     func(*ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantBody: map[string]any{
				"code":    float64(401),
				"message": response.MsgInvalidCredentials,
			},
		},
		{
			name:           "missing password",
			requestBody:    Request{Username: "user@example.com"},
			setupMocks:     func(*ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantBody: map[string]any{
				"code":    float64(401),
				"message": response.MsgInvalidCredentials,
			},
		},
		{
			name:        "wrong credentials",
			requestBody: Request{Username: "user@example.com", Password: "wrong"},
			setupMocks: func(s *ServiceMock) {
				s.On("Login", mock.Anything, "user@example.com", "wrong").
					Return(nil, auth.ErrInvalidCredentials).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantBody: map[string]any{
				"code":    float64(401),
				"message": response.MsgInvalidCredentials,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			tt.setupMocks(serviceMock)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			for k, v := range tt.wantBody {
				assert.Equal(t, v, got[k])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
