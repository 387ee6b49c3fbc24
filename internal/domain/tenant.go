package domain

import (
	"context"
	"regexp"
	"time"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidSlug reports whether s is lowercase alphanumerics and hyphens.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

const (
	DefaultPrimaryColor   = "#3b82f6"
	DefaultSecondaryColor = "#1e40af"
)

type Branding struct {
	Logo           string `json:"logo" bson:"logo"`
	PrimaryColor   string `json:"primaryColor" bson:"primaryColor"`
	SecondaryColor string `json:"secondaryColor" bson:"secondaryColor"`
}

type TenantSettings struct {
	AllowPublicProfiles bool `json:"allowPublicProfiles" bson:"allowPublicProfiles"`
	RequireApproval     bool `json:"requireApproval" bson:"requireApproval"`
}

type Tenant struct {
	ID        string         `json:"id" bson:"_id"`
	Name      string         `json:"name" bson:"name"`
	Slug      string         `json:"slug" bson:"slug"`
	Branding  Branding       `json:"branding" bson:"branding"`
	Settings  TenantSettings `json:"settings" bson:"settings"`
	CreatedBy string         `json:"createdBy" bson:"createdBy"`
	CreatedAt time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// TenantSummary is the projection attached to jobs and applications.
type TenantSummary struct {
	ID       string   `json:"id" bson:"_id"`
	Name     string   `json:"name" bson:"name"`
	Slug     string   `json:"slug" bson:"slug"`
	Branding Branding `json:"branding" bson:"branding"`
}

func (t *Tenant) Summary() *TenantSummary {
	return &TenantSummary{ID: t.ID, Name: t.Name, Slug: t.Slug, Branding: t.Branding}
}

type CreateTenantInput struct {
	Name     string         `json:"name" validate:"required,min=2,max=120"`
	Slug     string         `json:"slug" validate:"required,max=63,slug"`
	Branding *BrandingInput `json:"branding" validate:"omitempty"`
	Settings *SettingsInput `json:"settings" validate:"omitempty"`
}

type BrandingInput struct {
	Logo           *string `json:"logo" validate:"omitempty,max=2048"`
	PrimaryColor   *string `json:"primaryColor" validate:"omitempty,hexcolor"`
	SecondaryColor *string `json:"secondaryColor" validate:"omitempty,hexcolor"`
}

type SettingsInput struct {
	AllowPublicProfiles *bool `json:"allowPublicProfiles"`
	RequireApproval     *bool `json:"requireApproval"`
}

// TenantPatch lists the mutable tenant fields; nil means unchanged.
type TenantPatch struct {
	Name     *string        `json:"name" validate:"omitempty,min=2,max=120"`
	Branding *BrandingInput `json:"branding" validate:"omitempty"`
	Settings *SettingsInput `json:"settings" validate:"omitempty"`
}

// TenantClaim is the outcome of claiming tenant ownership: the new tenant and
// tokens reflecting the caller's promoted role.
type TenantClaim struct {
	Tenant *Tenant
	User   *User
	Tokens TokenPair
}

type TenantRepository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context, page Page) ([]Tenant, int64, error)
	Update(ctx context.Context, id string, set map[string]any) error
	Delete(ctx context.Context, id string) error
	Summaries(ctx context.Context, ids []string) (map[string]TenantSummary, error)
}

type TenantUsecase interface {
	ClaimOwnership(ctx context.Context, identity Identity, input CreateTenantInput) (*TenantClaim, error)
	List(ctx context.Context, page Page) ([]Tenant, Pagination, error)
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	Update(ctx context.Context, identity Identity, id string, patch TenantPatch) (*Tenant, error)
}
