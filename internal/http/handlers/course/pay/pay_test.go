package pay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/study-on/course-store/internal/http/middlewarectx"
	"github.com/study-on/course-store/internal/http/response"
	"github.com/study-on/course-store/internal/models"
	"github.com/study-on/course-store/internal/services/payment"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Pay(ctx context.Context, email, courseCode string) (*payment.PayResult, error) {
	args := m.Called(ctx, email, courseCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.PayResult), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(code string, email any) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/courses/"+code+"/pay", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("code", code)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if email != nil {
		ctx = context.WithValue(ctx, middlewarectx.User, email)
	}
	return req.WithContext(ctx)
}

func TestPayHandler_ServeHTTP(t *testing.T) {
	expiry := time.Now().UTC().Add(168 * time.Hour).Truncate(time.Second)

	tests := []struct {
		name           string
		code           string
		email          any
		setupMocks     func(*ServiceMock)
		wantStatusCode int
		checkBody      func(*testing.T, map[string]any)
	}{
		{
			name:  "success - buy course",
			code:  "golang-base",
			email: "user@example.com",
			setupMocks: func(s *ServiceMock) {
				s.On("Pay", mock.Anything, "user@example.com", "golang-base").
					Return(&payment.PayResult{CourseType: models.CourseTypeBuy}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			checkBody: func(t *testing.T, got map[string]any) {
				assert.Equal(t, true, got["success"])
				assert.Equal(t, "buy", got["course_type"])
				assert.NotContains(t, got, "expires_at")
			},
		},
		{
			name:  "success - rent course includes expiry",
			code:  "sql-advanced",
			email: "user@example.com",
			setupMocks: func(s *ServiceMock) {
				s.On("Pay", mock.Anything, "user@example.com", "sql-advanced").
					Return(&payment.PayResult{CourseType: models.CourseTypeRent, ExpiresAt: &expiry}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			checkBody: func(t *testing.T, got map[string]any) {
				assert.Equal(t, true, got["success"])
				assert.Equal(t, "rent", got["course_type"])
				assert.Contains(t, got, "expires_at")
			},
		},
		{
			name:           "no email in context",
			code:           "golang-base",
			email:          nil,
			setupMocks:     func(*ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
			checkBody: func(t *testing.T, got map[string]any) {
				assert.Equal(t, response.MsgInvalidToken, got["message"])
			},
		},
		{
			name:  "course not found",
			code:  "missing",
			email: "user@example.com",
			setupMocks: func(s *ServiceMock) {
				s.On("Pay", mock.Anything, "user@example.com", "missing").
					Return(nil, payment.ErrCourseNotFound).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			checkBody: func(t *testing.T, got map[string]any) {
				assert.Equal(t, response.MsgCourseNotFound, got["message"])
			},
		},
		{
			name:  "free course",
			code:  "intro",
			email: "user@example.com",
			setupMocks: func(s *ServiceMock) {
				s.On("Pay", mock.Anything, "user@example.com", "intro").
					Return(nil, payment.ErrCourseFree).Once()
			},
			wantStatusCode: http.StatusNotAcceptable,
			checkBody: func(t *testing.T, got map[string]any) {
				assert.Equal(t, response.MsgCourseFree, got["message"])
			},
		},
		{
			name:  "already owned",
			code:  "golang-base",
			email: "user@example.com",
			setupMocks: func(s *ServiceMock) {
				s.On("Pay", mock.Anything, "user@example.com", "golang-base").
					Return(nil, payment.ErrAlreadyOwned).Once()
			},
			wantStatusCode: http.StatusNotAcceptable,
			checkBody: func(t *testing.T, got map[string]any) {
				assert.Equal(t, response.MsgAlreadyOwned, got["message"])
			},
		},
		{
			name:  "insufficient funds",
			code:  "golang-base",
			email: "user@example.com",
			setupMocks: func(s *ServiceMock) {
				s.On("Pay", mock.Anything, "user@example.com", "golang-base").
					Return(nil, payment.ErrInsufficientFunds).Once()
			},
			wantStatusCode: http.StatusNotAcceptable,
			checkBody: func(t *testing.T, got map[string]any) {
				assert.Equal(t, response.MsgInsufficientFunds, got["message"])
			},
		},
		{
			name:  "internal error",
			code:  "golang-base",
			email: "user@example.com",
			setupMocks: func(s *ServiceMock) {
				s.On("Pay", mock.Anything, "user@example.com", "golang-base").
					Return(nil, errors.New("db error")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			checkBody: func(t *testing.T, got map[string]any) {
				assert.Equal(t, float64(500), got["code"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			tt.setupMocks(serviceMock)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequest(tt.code, tt.email))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			tt.checkBody(t, got)

			serviceMock.AssertExpectations(t)
		})
	}
}
