package document

import (
	"context"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/store"
	"go-recruiting-platform/pkg/apperror"

	"github.com/ecodeclub/ekit/slice"
)

const jobNotFound = "Job not found"

type jobRepo struct {
	store store.Store
}

func NewJobRepository(s store.Store) domain.JobRepository {
	return &jobRepo{store: s}
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	return translate(r.store.InsertOne(ctx, store.Jobs, job), jobNotFound, "Job already exists")
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := r.store.FindOne(ctx, store.Jobs, store.ByID(id), &job); err != nil {
		return nil, translate(err, jobNotFound, "")
	}
	return &job, nil
}

// Find returns jobs newest first.
func (r *jobRepo) Find(ctx context.Context, filter store.Filter, page domain.Page) ([]domain.Job, int64, error) {
	return findPage[domain.Job](ctx, r.store, store.Jobs, filter, page,
		store.SortField{Field: "createdAt", Desc: true})
}

func (r *jobRepo) IDsByTenant(ctx context.Context, tenantID string) ([]string, error) {
	var docs []idOnly
	if err := r.store.Find(ctx, store.Jobs, store.Where(store.Eq("tenantId", tenantID)), store.FindOptions{}, &docs); err != nil {
		return nil, apperror.Internal(err)
	}
	return slice.Map(docs, func(_ int, d idOnly) string { return d.ID }), nil
}

func (r *jobRepo) GetMany(ctx context.Context, ids []string) (map[string]domain.Job, error) {
	return findByIDs(ctx, r.store, store.Jobs, ids, func(j domain.Job) string { return j.ID })
}

func (r *jobRepo) Update(ctx context.Context, id string, set map[string]any) error {
	matched, err := r.store.UpdateOne(ctx, store.Jobs, store.ByID(id), store.Update{Set: set})
	if err != nil {
		return apperror.Internal(err)
	}
	if matched == 0 {
		return apperror.NotFound(jobNotFound)
	}
	return nil
}

func (r *jobRepo) Delete(ctx context.Context, id string) error {
	n, err := r.store.DeleteOne(ctx, store.Jobs, store.ByID(id))
	if err != nil {
		return apperror.Internal(err)
	}
	if n == 0 {
		return apperror.NotFound(jobNotFound)
	}
	return nil
}

// IncrementApplications bumps the running application counter in place.
func (r *jobRepo) IncrementApplications(ctx context.Context, id string) error {
	matched, err := r.store.UpdateOne(ctx, store.Jobs, store.ByID(id),
		store.Update{Inc: map[string]int64{"applicationsCount": 1}})
	if err != nil {
		return apperror.Internal(err)
	}
	if matched == 0 {
		return apperror.NotFound(jobNotFound)
	}
	return nil
}
