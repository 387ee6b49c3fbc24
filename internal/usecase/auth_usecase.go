package usecase

import (
	"context"
	"strings"
	"time"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/logger"
	"go-recruiting-platform/pkg/security"
	"go-recruiting-platform/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const invalidCredentials = "Invalid email or password"

type authUsecase struct {
	userRepo domain.UserRepository
	tokens   domain.TokenService
	hasher   domain.PasswordHasher
	guard    domain.LoginGuard
	validate *validator.Validate
	secLog   *security.SecurityLogger
	now      func() time.Time
}

// NewAuthUsecase wires registration, login and refresh. guard may be nil,
// in which case failed logins are not throttled.
func NewAuthUsecase(userRepo domain.UserRepository, tokens domain.TokenService, hasher domain.PasswordHasher, guard domain.LoginGuard, validate *validator.Validate) domain.AuthUsecase {
	if guard == nil {
		guard = noopGuard{}
	}
	return &authUsecase{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		guard:    guard,
		validate: validate,
		secLog:   security.DefaultLogger(),
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register always creates a candidate; roles are only elevated by claiming a tenant.
func (u *authUsecase) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := validation.Struct(u.validate, input); err != nil {
		return nil, err
	}

	_, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperror.Conflict("User with this email already exists")
	}
	if !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}

	digest, err := u.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := u.now().UTC()
	user := &domain.User{
		ID:             uuid.NewString(),
		Email:          input.Email,
		PasswordDigest: digest,
		Role:           domain.RoleCandidate,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	// The unique email index turns a racing duplicate into Conflict here.
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return u.issue(user)
}

func (u *authUsecase) Login(ctx context.Context, input domain.LoginInput) (*domain.AuthResult, error) {
	if err := validation.Struct(u.validate, input); err != nil {
		return nil, err
	}
	email := normalizeEmail(input.Email)

	blocked, err := u.guard.IsBlocked(ctx, email, input.IP)
	if err != nil {
		logger.Log.WarnContext(ctx, "login guard unavailable", "error", err)
	}
	if blocked {
		u.secLog.LogLoginBlocked(ctx, email, input.IP, input.UserAgent, input.RequestID)
		return nil, apperror.TooManyRequests("Too many failed login attempts. Please try again later.")
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, u.loginFailed(ctx, email, input)
		}
		return nil, err
	}
	if !u.hasher.Compare(input.Password, user.PasswordDigest) {
		return nil, u.loginFailed(ctx, email, input)
	}

	if err := u.guard.ClearAttempts(ctx, email, input.IP); err != nil {
		logger.Log.WarnContext(ctx, "clear login attempts", "error", err)
	}
	u.secLog.LogLoginSuccess(ctx, user.ID, input.IP, input.RequestID)
	return u.issue(user)
}

// loginFailed records the attempt and returns the same error for an unknown
// email and a wrong password.
func (u *authUsecase) loginFailed(ctx context.Context, email string, input domain.LoginInput) error {
	if _, _, err := u.guard.RecordFailedAttempt(ctx, email, input.IP, input.UserAgent, input.RequestID); err != nil {
		logger.Log.WarnContext(ctx, "record failed login", "error", err)
	}
	return apperror.Unauthorized(invalidCredentials)
}

// Refresh reloads the user so the new tokens carry the current role.
func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	identity, ok := u.tokens.VerifyRefresh(refreshToken)
	if !ok {
		u.secLog.LogTokenRefreshFailed(ctx, "invalid_token")
		return nil, apperror.Unauthorized("Invalid refresh token")
	}

	user, err := u.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			u.secLog.LogTokenRefreshFailed(ctx, "user_not_found")
			return nil, apperror.Unauthorized("Invalid refresh token")
		}
		return nil, err
	}
	return u.issue(user)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return u.userRepo.GetByID(ctx, userID)
}

func (u *authUsecase) issue(user *domain.User) (*domain.AuthResult, error) {
	tokens, err := u.tokens.Issue(user.Identity())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.AuthResult{User: user, Tokens: tokens}, nil
}

type noopGuard struct{}

func (noopGuard) IsBlocked(context.Context, string, string) (bool, error) { return false, nil }
func (noopGuard) RecordFailedAttempt(context.Context, string, string, string, string) (bool, int, error) {
	return false, 0, nil
}
func (noopGuard) ClearAttempts(context.Context, string, string) error { return nil }
