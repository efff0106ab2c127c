package list

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/study-on/course-store/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context) ([]*models.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Course), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func price(v float64) *float64 {
	return &v
}

func TestListHandler_ServeHTTP(t *testing.T) {
	t.Run("success - free course has no price field", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		handler := New(newNoopLogger(), serviceMock)

		serviceMock.On("List", mock.Anything).Return([]*models.Course{
			{ID: 1, Code: "golang-base", Title: "Основы Go", Type: models.CourseTypeBuy, Price: price(99.90)},
			{ID: 2, Code: "intro", Title: "Вводный курс", Type: models.CourseTypeFree},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var got []map[string]any
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Len(t, got, 2)
		assert.Equal(t, "golang-base", got[0]["code"])
		assert.Equal(t, 99.90, got[0]["price"])
		assert.Equal(t, "intro", got[1]["code"])
		assert.NotContains(t, got[1], "price")

		serviceMock.AssertExpectations(t)
	})

	t.Run("empty catalog returns empty array", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		handler := New(newNoopLogger(), serviceMock)

		serviceMock.On("List", mock.Anything).Return([]*models.Course{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
		serviceMock.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		serviceMock := new(ServiceMock)
		handler := New(newNoopLogger(), serviceMock)

		serviceMock.On("List", mock.Anything).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		serviceMock.AssertExpectations(t)
	})
}
