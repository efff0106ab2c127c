package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/study-on/course-store/internal/config"
	"github.com/study-on/course-store/internal/lib/jwt"
	"github.com/study-on/course-store/internal/lib/password"
	"github.com/study-on/course-store/internal/models"
	"github.com/study-on/course-store/internal/storage/repository"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) RegisterUser(ctx context.Context, user models.User, deposit float64) (string, error) {
	args := m.Called(ctx, user, deposit)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) CreateRefreshToken(ctx context.Context, token models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) RotateRefreshToken(ctx context.Context, oldToken string, newToken models.RefreshToken) error {
	args := m.Called(ctx, oldToken, newToken)
	return args.Error(0)
}

type MockJWTMaker struct {
	mock.Mock
}

func (m *MockJWTMaker) GenerateToken(email string, roles []string, userUID string) (string, error) {
	args := m.Called(email, roles, userUID)
	return args.String(0), args.Error(1)
}

func (m *MockJWTMaker) ParseToken(tokenStr string) (*jwt.CustomClaims, error) {
	args := m.Called(tokenStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jwt.CustomClaims), args.Error(1)
}

func newService(users *MockUserRepository, tokens *MockRefreshTokenRepository, maker *MockJWTMaker) *AuthService {
	return NewAuthService(users, tokens, maker,
		config.Payments{DepositAmount: 100, RentalPeriod: 168 * time.Hour},
		720*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(*MockUserRepository, *MockRefreshTokenRepository, *MockJWTMaker)
		expectedError error
		checkResult   func(*testing.T, *RegisterResult)
	}{
		{
			name: "success - user created with seed deposit in one call",
			setupMocks: func(u *MockUserRepository, r *MockRefreshTokenRepository, j *MockJWTMaker) {
				u.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "test@example.com" &&
						len(user.Roles) == 1 && user.Roles[0] == models.RoleUser
				}), 100.0).Return("uid123", nil).Once()
				j.On("GenerateToken", "test@example.com", []string{models.RoleUser}, "uid123").
					Return("access-token", nil).Once()
				r.On("CreateRefreshToken", mock.Anything, mock.AnythingOfType("models.RefreshToken")).
					Return(nil).Once()
			},
			checkResult: func(t *testing.T, result *RegisterResult) {
				assert.Equal(t, "access-token", result.Tokens.AccessToken)
				assert.NotEmpty(t, result.Tokens.RefreshToken)
				assert.Equal(t, []string{models.RoleUser}, result.Roles)
				assert.Equal(t, 100.0, result.Balance)
			},
		},
		{
			name: "duplicate email",
			setupMocks: func(u *MockUserRepository, _ *MockRefreshTokenRepository, _ *MockJWTMaker) {
				u.On("RegisterUser", mock.Anything, mock.AnythingOfType("models.User"), 100.0).
					Return("", repository.ErrDuplicate).Once()
			},
			expectedError: ErrUserExists,
		},
		{
			name: "storage error leaves no half-registered user",
			setupMocks: func(u *MockUserRepository, _ *MockRefreshTokenRepository, _ *MockJWTMaker) {
				u.On("RegisterUser", mock.Anything, mock.AnythingOfType("models.User"), 100.0).
					Return("", errors.New("db error")).Once()
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			tokens := new(MockRefreshTokenRepository)
			maker := new(MockJWTMaker)
			service := newService(users, tokens, maker)

			tt.setupMocks(users, tokens, maker)

			result, err := service.Register(context.Background(), "test@example.com", "password123")

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				tt.checkResult(t, result)
			}

			users.AssertExpectations(t)
			tokens.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("password123")
	assert.NoError(t, err)

	user := &models.User{
		UID:          "uid123",
		Email:        "test@example.com",
		PasswordHash: hash,
		Roles:        []string{models.RoleUser},
		Balance:      100,
	}

	tests := []struct {
		name          string
		password      string
		setupMocks    func(*MockUserRepository, *MockRefreshTokenRepository, *MockJWTMaker)
		expectedError error
	}{
		{
			name:     "success",
			password: "password123",
			setupMocks: func(u *MockUserRepository, r *MockRefreshTokenRepository, j *MockJWTMaker) {
				u.On("GetUserByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()
				j.On("GenerateToken", "test@example.com", []string{models.RoleUser}, "uid123").
					Return("access-token", nil).Once()
				r.On("CreateRefreshToken", mock.Anything, mock.AnythingOfType("models.RefreshToken")).
					Return(nil).Once()
			},
		},
		{
			name:     "wrong password",
			password: "wrongpassword",
			setupMocks: func(u *MockUserRepository, _ *MockRefreshTokenRepository, _ *MockJWTMaker) {
				u.On("GetUserByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "unknown user",
			password: "password123",
			setupMocks: func(u *MockUserRepository, _ *MockRefreshTokenRepository, _ *MockJWTMaker) {
				u.On("GetUserByEmail", mock.Anything, "test@example.com").
					Return(nil, repository.ErrNotFound).Once()
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			tokens := new(MockRefreshTokenRepository)
			maker := new(MockJWTMaker)
			service := newService(users, tokens, maker)

			tt.setupMocks(users, tokens, maker)

			result, err := service.Login(context.Background(), "test@example.com", tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "access-token", result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
			}

			users.AssertExpectations(t)
			tokens.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	user := &models.User{
		UID:   "uid123",
		Email: "test@example.com",
		Roles: []string{models.RoleUser},
	}

	tests := []struct {
		name          string
		setupMocks    func(*MockUserRepository, *MockRefreshTokenRepository, *MockJWTMaker)
		expectedError error
	}{
		{
			name: "success - token rotated",
			setupMocks: func(u *MockUserRepository, r *MockRefreshTokenRepository, j *MockJWTMaker) {
				r.On("GetRefreshToken", mock.Anything, "old-token").Return(&models.RefreshToken{
					Token:     "old-token",
					UserUID:   "uid123",
					ExpiresAt: time.Now().Add(time.Hour),
				}, nil).Once()
				u.On("GetUser", mock.Anything, "uid123").Return(user, nil).Once()
				j.On("GenerateToken", "test@example.com", []string{models.RoleUser}, "uid123").
					Return("new-access-token", nil).Once()
				r.On("RotateRefreshToken", mock.Anything, "old-token",
					mock.MatchedBy(func(token models.RefreshToken) bool {
						return token.UserUID == "uid123" && token.Token != "old-token"
					})).Return(nil).Once()
			},
		},
		{
			name: "unknown token",
			setupMocks: func(_ *MockUserRepository, r *MockRefreshTokenRepository, _ *MockJWTMaker) {
				r.On("GetRefreshToken", mock.Anything, "old-token").
					Return(nil, repository.ErrNotFound).Once()
			},
			expectedError: ErrRefreshNotFound,
		},
		{
			name: "expired token",
			setupMocks: func(_ *MockUserRepository, r *MockRefreshTokenRepository, _ *MockJWTMaker) {
				r.On("GetRefreshToken", mock.Anything, "old-token").Return(&models.RefreshToken{
					Token:     "old-token",
					UserUID:   "uid123",
					ExpiresAt: time.Now().Add(-time.Hour),
				}, nil).Once()
			},
			expectedError: ErrRefreshNotFound,
		},
		{
			name: "rotation lost race - token already used",
			setupMocks: func(u *MockUserRepository, r *MockRefreshTokenRepository, j *MockJWTMaker) {
				r.On("GetRefreshToken", mock.Anything, "old-token").Return(&models.RefreshToken{
					Token:     "old-token",
					UserUID:   "uid123",
					ExpiresAt: time.Now().Add(time.Hour),
				}, nil).Once()
				u.On("GetUser", mock.Anything, "uid123").Return(user, nil).Once()
				j.On("GenerateToken", "test@example.com", []string{models.RoleUser}, "uid123").
					Return("new-access-token", nil).Once()
				r.On("RotateRefreshToken", mock.Anything, "old-token",
					mock.AnythingOfType("models.RefreshToken")).
					Return(repository.ErrNotFound).Once()
			},
			expectedError: ErrRefreshNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			tokens := new(MockRefreshTokenRepository)
			maker := new(MockJWTMaker)
			service := newService(users, tokens, maker)

			tt.setupMocks(users, tokens, maker)

			result, err := service.Refresh(context.Background(), "old-token")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "new-access-token", result.AccessToken)
				assert.NotEqual(t, "old-token", result.RefreshToken)
			}

			users.AssertExpectations(t)
			tokens.AssertExpectations(t)
			maker.AssertExpectations(t)
		})
	}
}

func TestAuthService_CurrentUser(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockRefreshTokenRepository)
	maker := new(MockJWTMaker)
	service := newService(users, tokens, maker)

	expected := &models.User{
		UID:     "uid123",
		Email:   "test@example.com",
		Roles:   []string{models.RoleUser},
		Balance: 59.99,
	}
	users.On("GetUserByEmail", mock.Anything, "test@example.com").Return(expected, nil).Once()

	user, err := service.CurrentUser(context.Background(), "test@example.com")

	assert.NoError(t, err)
	assert.Equal(t, expected, user)
	users.AssertExpectations(t)
}
