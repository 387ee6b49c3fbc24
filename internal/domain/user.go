package domain

import (
	"context"
	"time"
)

// User is the persisted account. PasswordDigest is stored but must never be
// rendered; delivery code maps users to response DTOs.
type User struct {
	ID             string    `json:"id" bson:"_id"`
	Email          string    `json:"email" bson:"email"`
	PasswordDigest string    `json:"passwordDigest" bson:"passwordDigest"`
	Role           Role      `json:"role" bson:"role"`
	TenantID       *string   `json:"tenantId" bson:"tenantId"`
	FirstName      string    `json:"firstName" bson:"firstName"`
	LastName       string    `json:"lastName" bson:"lastName"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// BelongsTo reports whether the user owns tenantID.
func (u *User) BelongsTo(tenantID string) bool {
	return u.TenantID != nil && *u.TenantID == tenantID
}

// CandidateSummary is the public projection of a user attached to applications and profiles.
type CandidateSummary struct {
	ID        string `json:"id" bson:"_id"`
	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName" bson:"lastName"`
	Email     string `json:"email" bson:"email"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// ClaimTenant sets tenantId and role only while the user has no tenant.
	// It returns false when the user is missing or already owns a tenant.
	ClaimTenant(ctx context.Context, userID, tenantID string, role Role, at time.Time) (bool, error)
	SetRole(ctx context.Context, userID string, role Role, at time.Time) error
	Summaries(ctx context.Context, ids []string) (map[string]CandidateSummary, error)
}
