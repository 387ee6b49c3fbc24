package domain

import "context"

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenService issues and verifies signed access/refresh tokens.
// Verification fails closed: any problem yields ok == false.
type TokenService interface {
	Issue(identity Identity) (TokenPair, error)
	VerifyAccess(token string) (Identity, bool)
	VerifyRefresh(token string) (Identity, bool)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, digest string) bool
}

// LoginGuard throttles repeated failed logins. Implementations may be a no-op.
type LoginGuard interface {
	IsBlocked(ctx context.Context, email, ip string) (bool, error)
	RecordFailedAttempt(ctx context.Context, email, ip, userAgent, requestID string) (bool, int, error)
	ClearAttempts(ctx context.Context, email, ip string) error
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,max=72"`
	FirstName string `json:"firstName" validate:"required,max=100,valid_name"`
	LastName  string `json:"lastName" validate:"required,max=100,valid_name"`
}

type LoginInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
	RequestID string `json:"-"`
}

type AuthResult struct {
	User   *User
	Tokens TokenPair
}

type AuthUsecase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	GetCurrentUser(ctx context.Context, userID string) (*User, error)
}
