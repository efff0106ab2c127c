package read

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/study-on/course-store/internal/http/response"
	"github.com/study-on/course-store/internal/models"
	"github.com/study-on/course-store/internal/services/course"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Get(ctx context.Context, code string) (*models.Course, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func price(v float64) *float64 {
	return &v
}

func newRequest(code string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses/"+code, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("code", code)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestReadHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		code           string
		setupMocks     func(*ServiceMock)
		wantStatusCode int
		wantBody       map[string]any
		wantNoPrice    bool
	}{
		{
			name: "success - paid course",
			code: "golang-base",
			setupMocks: func(s *ServiceMock) {
				s.On("Get", mock.Anything, "golang-base").Return(&models.Course{
					ID: 1, Code: "golang-base", Title: "Основы Go",
					Type: models.CourseTypeBuy, Price: price(99.90),
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantBody: map[string]any{
				"code":  "golang-base",
				"type":  "buy",
				"price": 99.90,
			},
		},
		{
			name: "success - free course without price",
			code: "intro",
			setupMocks: func(s *ServiceMock) {
				s.On("Get", mock.Anything, "intro").Return(&models.Course{
					ID: 2, Code: "intro", Title: "Вводный курс", Type: models.CourseTypeFree,
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantBody: map[string]any{
				"code": "intro",
				"type": "free",
			},
			wantNoPrice: true,
		},
		{
			name: "not found",
			code: "missing",
			setupMocks: func(s *ServiceMock) {
				s.On("Get", mock.Anything, "missing").Return(nil, course.ErrNotFound).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantBody: map[string]any{
				"code":    float64(401),
				"message": response.MsgCourseNotFound,
			},
		},
		{
			name: "internal error",
			code: "golang-base",
			setupMocks: func(s *ServiceMock) {
				s.On("Get", mock.Anything, "golang-base").Return(nil, errors.New("db error")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantBody: map[string]any{
				"code": float64(500),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			tt.setupMocks(serviceMock)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequest(tt.code))

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			for k, v := range tt.wantBody {
				assert.Equal(t, v, got[k])
			}
			if tt.wantNoPrice {
				assert.NotContains(t, got, "price")
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
