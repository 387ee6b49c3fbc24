package document

import (
	"context"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/store"
	"go-recruiting-platform/pkg/apperror"
)

const tenantNotFound = "Tenant not found"

type tenantRepo struct {
	store store.Store
}

func NewTenantRepository(s store.Store) domain.TenantRepository {
	return &tenantRepo{store: s}
}

func (r *tenantRepo) Create(ctx context.Context, tenant *domain.Tenant) error {
	err := r.store.InsertOne(ctx, store.Tenants, tenant)
	return translate(err, tenantNotFound, "Tenant slug already exists")
}

func (r *tenantRepo) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := r.store.FindOne(ctx, store.Tenants, store.ByID(id), &tenant); err != nil {
		return nil, translate(err, tenantNotFound, "")
	}
	return &tenant, nil
}

func (r *tenantRepo) GetBySlug(ctx context.Context, slug string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := r.store.FindOne(ctx, store.Tenants, store.Where(store.Eq("slug", slug)), &tenant); err != nil {
		return nil, translate(err, tenantNotFound, "")
	}
	return &tenant, nil
}

func (r *tenantRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	n, err := r.store.CountDocuments(ctx, store.Tenants, store.Where(store.Eq("slug", slug)))
	if err != nil {
		return false, apperror.Internal(err)
	}
	return n > 0, nil
}

func (r *tenantRepo) List(ctx context.Context, page domain.Page) ([]domain.Tenant, int64, error) {
	return findPage[domain.Tenant](ctx, r.store, store.Tenants, store.Filter{}, page,
		store.SortField{Field: "createdAt", Desc: true})
}

func (r *tenantRepo) Update(ctx context.Context, id string, set map[string]any) error {
	matched, err := r.store.UpdateOne(ctx, store.Tenants, store.ByID(id), store.Update{Set: set})
	if err != nil {
		return translate(err, tenantNotFound, "Tenant slug already exists")
	}
	if matched == 0 {
		return apperror.NotFound(tenantNotFound)
	}
	return nil
}

func (r *tenantRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.store.DeleteOne(ctx, store.Tenants, store.ByID(id)); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *tenantRepo) Summaries(ctx context.Context, ids []string) (map[string]domain.TenantSummary, error) {
	return findByIDs(ctx, r.store, store.Tenants, ids, func(s domain.TenantSummary) string { return s.ID })
}
