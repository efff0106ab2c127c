// Package auth содержит бизнес-логику регистрации, аутентификации
// и жизненного цикла токенов: выдачу JWT и ротацию refresh-токенов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/study-on/course-store/internal/config"
	"github.com/study-on/course-store/internal/lib/jwt"
	"github.com/study-on/course-store/internal/lib/password"
	"github.com/study-on/course-store/internal/models"
	"github.com/study-on/course-store/internal/storage/repository"
)

// Бизнес-ошибки аутентификации. Обработчики транслируют их
// в соответствующие HTTP-ответы.
var (
	// ErrUserExists возвращается при регистрации занятого email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials возвращается при любой ошибке входа,
	// не раскрывая, какое из полей оказалось неверным.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshNotFound возвращается для неизвестного или истекшего refresh-токена.
	ErrRefreshNotFound = errors.New("refresh token not found")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя со стартовым депозитом
	// одной транзакцией базы данных и возвращает его UID.
	RegisterUser(ctx context.Context, user models.User, deposit float64) (string, error)
	// GetUserByEmail возвращает пользователя по email или ошибку, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser возвращает пользователя по UID или ошибку, если не найден.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// RefreshTokenRepository описывает контракт для работы с refresh-токенами.
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, token models.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldToken string, newToken models.RefreshToken) error
}

// TokenPair — пара access + refresh токенов, выдаваемая при регистрации,
// входе и обновлении.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterResult — результат успешной регистрации.
type RegisterResult struct {
	Tokens  TokenPair
	Roles   []string
	Balance float64
}

// AuthService отвечает за регистрацию, авторизацию и жизненный цикл токенов.
type AuthService struct {
	users         UserRepository
	refreshTokens RefreshTokenRepository
	jwtMaker      jwt.Maker
	payments      config.Payments
	refreshTTL    time.Duration
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, refreshTokens RefreshTokenRepository,
	jwtMaker jwt.Maker, payments config.Payments, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		jwtMaker:      jwtMaker,
		payments:      payments,
		refreshTTL:    refreshTTL,
	}
}

// Register создает нового пользователя с хэшированием пароля, дефолтной ролью
// ROLE_USER и стартовым депозитом, затем выдает пару токенов. Пользователь
// и депозит сохраняются атомарно: регистрация либо завершается целиком,
// либо не оставляет пользователя с пустым счетом.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string) (*RegisterResult, error) {
	const op = "auth.Register"
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		Roles:        []string{models.RoleUser},
	}
	uid, err := s.users.RegisterUser(ctx, user, s.payments.DepositAmount)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tokens, err := s.issueTokens(ctx, email, user.Roles, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &RegisterResult{
		Tokens:  *tokens,
		Roles:   user.Roles,
		Balance: s.payments.DepositAmount,
	}, nil
}

// Login проверяет пароль пользователя и выдает новую пару токенов.
// Любая ошибка проверки возвращается как ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*TokenPair, error) {
	const op = "auth.Login"
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	tokens, err := s.issueTokens(ctx, user.Email, user.Roles, user.UID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tokens, nil
}

// Refresh обменивает refresh-токен на новую пару токенов.
// Старый токен ротируется атомарно: из двух конкурентных запросов
// с одним токеном успеет только один.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	const op = "auth.Refresh"
	stored, err := s.refreshTokens.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if stored.IsExpired(time.Now()) {
		return nil, ErrRefreshNotFound
	}

	user, err := s.users.GetUser(ctx, stored.UserUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	accessToken, err := s.jwtMaker.GenerateToken(user.Email, user.Roles, user.UID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	newToken := models.RefreshToken{
		Token:     uuid.NewString(),
		UserUID:   user.UID,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err = s.refreshTokens.RotateRefreshToken(ctx, refreshToken, newToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRefreshNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newToken.Token,
	}, nil
}

// CurrentUser возвращает пользователя по email из claims access-токена.
func (s *AuthService) CurrentUser(ctx context.Context, email string) (*models.User, error) {
	const op = "auth.CurrentUser"
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ValidateToken проверяет JWT и возвращает claims, если токен корректен.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}

func (s *AuthService) issueTokens(ctx context.Context, email string, roles []string, uid string) (*TokenPair, error) {
	accessToken, err := s.jwtMaker.GenerateToken(email, roles, uid)
	if err != nil {
		return nil, err
	}
	refreshToken := models.RefreshToken{
		Token:     uuid.NewString(),
		UserUID:   uid,
		ExpiresAt: time.Now().Add(s.refreshTTL),
	}
	if err = s.refreshTokens.CreateRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
	}, nil
}
