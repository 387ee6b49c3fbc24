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

// MembershipChecker decides whether a caller may act inside a tenant.
type MembershipChecker interface {
	RequireMembership(ctx context.Context, identity domain.Identity, tenantID string) error
}

type tenantUsecase struct {
	tenantRepo domain.TenantRepository
	userRepo   domain.UserRepository
	tokens     domain.TokenService
	members    MembershipChecker
	validate   *validator.Validate
	secLog     *security.SecurityLogger
	now        func() time.Time
}

func NewTenantUsecase(tenantRepo domain.TenantRepository, userRepo domain.UserRepository, tokens domain.TokenService, members MembershipChecker, validate *validator.Validate) domain.TenantUsecase {
	return &tenantUsecase{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		tokens:     tokens,
		members:    members,
		validate:   validate,
		secLog:     security.DefaultLogger(),
		now:        time.Now,
	}
}

// ClaimOwnership creates a tenant and makes the caller its owner.
//
// Pre: the caller exists and has no tenant; the slug is well formed and free.
// Post: the tenant exists, user.tenantId points at it, and a non-admin caller
// has become a recruiter. The user update is conditional on tenantId still
// being null; if another claim won the race the new tenant is deleted again
// and Conflict is returned. The returned tokens carry the new role.
func (u *tenantUsecase) ClaimOwnership(ctx context.Context, identity domain.Identity, input domain.CreateTenantInput) (*domain.TenantClaim, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(u.validate, input); err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Unauthorized("User no longer exists")
		}
		return nil, err
	}
	if user.TenantID != nil {
		return nil, apperror.Conflict("You already own a tenant")
	}

	taken, err := u.tenantRepo.SlugExists(ctx, input.Slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict("Tenant slug already exists")
	}

	now := u.now().UTC()
	tenant := &domain.Tenant{
		ID:   uuid.NewString(),
		Name: input.Name,
		Slug: input.Slug,
		Branding: domain.Branding{
			PrimaryColor:   domain.DefaultPrimaryColor,
			SecondaryColor: domain.DefaultSecondaryColor,
		},
		Settings: domain.TenantSettings{
			AllowPublicProfiles: true,
		},
		CreatedBy: user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyBranding(&tenant.Branding, input.Branding)
	applySettings(&tenant.Settings, input.Settings)

	if err := u.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}

	role := domain.RoleRecruiter
	if user.Role == domain.RoleAdmin {
		role = domain.RoleAdmin
	}
	claimed, err := u.userRepo.ClaimTenant(ctx, user.ID, tenant.ID, role, now)
	if err != nil || !claimed {
		if delErr := u.tenantRepo.Delete(ctx, tenant.ID); delErr != nil {
			logger.Log.ErrorContext(ctx, "rollback tenant after failed claim", "tenant_id", tenant.ID, "error", delErr)
		}
		if err != nil {
			return nil, err
		}
		return nil, apperror.Conflict("You already own a tenant")
	}

	user.TenantID = &tenant.ID
	user.Role = role
	user.UpdatedAt = now
	tokens, err := u.tokens.Issue(user.Identity())
	if err != nil {
		return nil, apperror.Internal(err)
	}

	u.secLog.LogTenantClaimed(ctx, user.ID, tenant.ID, tenant.Slug)
	return &domain.TenantClaim{Tenant: tenant, User: user, Tokens: tokens}, nil
}

func (u *tenantUsecase) List(ctx context.Context, page domain.Page) ([]domain.Tenant, domain.Pagination, error) {
	tenants, total, err := u.tenantRepo.List(ctx, page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return tenants, page.Result(total), nil
}

func (u *tenantUsecase) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	return u.tenantRepo.GetByID(ctx, id)
}

func (u *tenantUsecase) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	if !domain.ValidSlug(slug) {
		return nil, apperror.NotFound("Tenant not found")
	}
	return u.tenantRepo.GetBySlug(ctx, slug)
}

// Update applies only the allow-listed fields of patch.
func (u *tenantUsecase) Update(ctx context.Context, identity domain.Identity, id string, patch domain.TenantPatch) (*domain.Tenant, error) {
	if err := validation.Struct(u.validate, patch); err != nil {
		return nil, err
	}
	if _, err := u.tenantRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := u.members.RequireMembership(ctx, identity, id); err != nil {
		return nil, err
	}

	set := tenantPatchSet(patch)
	if len(set) == 0 {
		return nil, apperror.Validation("No updatable fields supplied")
	}
	set["updatedAt"] = u.now().UTC()
	if err := u.tenantRepo.Update(ctx, id, set); err != nil {
		return nil, err
	}
	return u.tenantRepo.GetByID(ctx, id)
}

func tenantPatchSet(patch domain.TenantPatch) map[string]any {
	set := map[string]any{}
	if patch.Name != nil {
		set["name"] = strings.TrimSpace(*patch.Name)
	}
	if b := patch.Branding; b != nil {
		if b.Logo != nil {
			set["branding.logo"] = *b.Logo
		}
		if b.PrimaryColor != nil {
			set["branding.primaryColor"] = *b.PrimaryColor
		}
		if b.SecondaryColor != nil {
			set["branding.secondaryColor"] = *b.SecondaryColor
		}
	}
	if s := patch.Settings; s != nil {
		if s.AllowPublicProfiles != nil {
			set["settings.allowPublicProfiles"] = *s.AllowPublicProfiles
		}
		if s.RequireApproval != nil {
			set["settings.requireApproval"] = *s.RequireApproval
		}
	}
	return set
}

func applyBranding(dst *domain.Branding, in *domain.BrandingInput) {
	if in == nil {
		return
	}
	if in.Logo != nil {
		dst.Logo = *in.Logo
	}
	if in.PrimaryColor != nil {
		dst.PrimaryColor = *in.PrimaryColor
	}
	if in.SecondaryColor != nil {
		dst.SecondaryColor = *in.SecondaryColor
	}
}

func applySettings(dst *domain.TenantSettings, in *domain.SettingsInput) {
	if in == nil {
		return
	}
	if in.AllowPublicProfiles != nil {
		dst.AllowPublicProfiles = *in.AllowPublicProfiles
	}
	if in.RequireApproval != nil {
		dst.RequireApproval = *in.RequireApproval
	}
}
