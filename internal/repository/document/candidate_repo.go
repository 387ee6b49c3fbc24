package document

import (
	"context"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/store"
	"go-recruiting-platform/pkg/apperror"
)

const profileNotFound = "Profile not found"

type candidateRepo struct {
	store store.Store
}

func NewCandidateRepository(s store.Store) domain.CandidateRepository {
	return &candidateRepo{store: s}
}

func (r *candidateRepo) GetByUserID(ctx context.Context, userID string) (*domain.CandidateProfile, error) {
	var profile domain.CandidateProfile
	if err := r.store.FindOne(ctx, store.CandidateProfiles, store.Where(store.Eq("userId", userID)), &profile); err != nil {
		return nil, translate(err, profileNotFound, "")
	}
	return &profile, nil
}

func (r *candidateRepo) Create(ctx context.Context, profile *domain.CandidateProfile) error {
	err := r.store.InsertOne(ctx, store.CandidateProfiles, profile)
	return translate(err, profileNotFound, "Profile already exists")
}

func (r *candidateRepo) Update(ctx context.Context, userID string, set map[string]any) error {
	matched, err := r.store.UpdateOne(ctx, store.CandidateProfiles,
		store.Where(store.Eq("userId", userID)), store.Update{Set: set})
	if err != nil {
		return apperror.Internal(err)
	}
	if matched == 0 {
		return apperror.NotFound(profileNotFound)
	}
	return nil
}

// Find returns profiles most recently updated first.
func (r *candidateRepo) Find(ctx context.Context, filter store.Filter, page domain.Page) ([]domain.CandidateProfile, int64, error) {
	return findPage[domain.CandidateProfile](ctx, r.store, store.CandidateProfiles, filter, page,
		store.SortField{Field: "updatedAt", Desc: true})
}
