package document

import (
	"context"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/store"
	"go-recruiting-platform/pkg/apperror"
)

const applicationNotFound = "Application not found"

type applicationRepo struct {
	store store.Store
}

func NewApplicationRepository(s store.Store) domain.ApplicationRepository {
	return &applicationRepo{store: s}
}

// Create relies on the (jobId, candidateId) unique index, so a racing
// duplicate surfaces as Conflict even after Exists said no.
func (r *applicationRepo) Create(ctx context.Context, application *domain.Application) error {
	err := r.store.InsertOne(ctx, store.Applications, application)
	return translate(err, applicationNotFound, "You have already applied to this job")
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	var application domain.Application
	if err := r.store.FindOne(ctx, store.Applications, store.ByID(id), &application); err != nil {
		return nil, translate(err, applicationNotFound, "")
	}
	return &application, nil
}

func (r *applicationRepo) Exists(ctx context.Context, jobID, candidateID string) (bool, error) {
	n, err := r.store.CountDocuments(ctx, store.Applications,
		store.Where(store.Eq("jobId", jobID), store.Eq("candidateId", candidateID)))
	if err != nil {
		return false, apperror.Internal(err)
	}
	return n > 0, nil
}

// Find returns applications most recent first.
func (r *applicationRepo) Find(ctx context.Context, filter store.Filter, page domain.Page) ([]domain.Application, int64, error) {
	return findPage[domain.Application](ctx, r.store, store.Applications, filter, page,
		store.SortField{Field: "appliedAt", Desc: true})
}

// Update is conditional on the status the caller read, so two reviewers
// racing from the same status cannot both move the application.
func (r *applicationRepo) Update(ctx context.Context, id string, from domain.ApplicationStatus, set map[string]any) error {
	matched, err := r.store.UpdateOne(ctx, store.Applications,
		store.ByID(id).And(store.Eq("status", from)), store.Update{Set: set})
	if err != nil {
		return apperror.Internal(err)
	}
	if matched > 0 {
		return nil
	}
	n, err := r.store.CountDocuments(ctx, store.Applications, store.ByID(id))
	if err != nil {
		return apperror.Internal(err)
	}
	if n == 0 {
		return apperror.NotFound(applicationNotFound)
	}
	return apperror.Conflict("Application was changed by another request")
}
