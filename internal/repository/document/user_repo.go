package document

import (
	"context"
	"time"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/store"
	"go-recruiting-platform/pkg/apperror"
)

type userRepo struct {
	store store.Store
}

func NewUserRepository(s store.Store) domain.UserRepository {
	return &userRepo{store: s}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	err := r.store.InsertOne(ctx, store.Users, user)
	return translate(err, "User not found", "User with this email already exists")
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.store.FindOne(ctx, store.Users, store.ByID(id), &user); err != nil {
		return nil, translate(err, "User not found", "")
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.store.FindOne(ctx, store.Users, store.Where(store.Eq("email", email)), &user); err != nil {
		return nil, translate(err, "User not found", "")
	}
	return &user, nil
}

// ClaimTenant is a single conditional update, so two concurrent claims by the
// same user cannot both succeed.
func (r *userRepo) ClaimTenant(ctx context.Context, userID, tenantID string, role domain.Role, at time.Time) (bool, error) {
	matched, err := r.store.UpdateOne(ctx, store.Users,
		store.ByID(userID).And(store.IsNull("tenantId")),
		store.Update{Set: map[string]any{
			"tenantId":  tenantID,
			"role":      role,
			"updatedAt": at,
		}})
	if err != nil {
		return false, apperror.Internal(err)
	}
	return matched > 0, nil
}

func (r *userRepo) SetRole(ctx context.Context, userID string, role domain.Role, at time.Time) error {
	matched, err := r.store.UpdateOne(ctx, store.Users, store.ByID(userID),
		store.Update{Set: map[string]any{"role": role, "updatedAt": at}})
	if err != nil {
		return apperror.Internal(err)
	}
	if matched == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

func (r *userRepo) Summaries(ctx context.Context, ids []string) (map[string]domain.CandidateSummary, error) {
	return findByIDs(ctx, r.store, store.Users, ids, func(s domain.CandidateSummary) string { return s.ID })
}
