package usecase

import (
	"context"
	"time"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/scope"
	"go-recruiting-platform/pkg/apperror"
	"go-recruiting-platform/pkg/validation"

	"github.com/ecodeclub/ekit/slice"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type candidateUsecase struct {
	profileRepo domain.CandidateRepository
	userRepo    domain.UserRepository
	validate    *validator.Validate
	now         func() time.Time
}

func NewCandidateUsecase(profileRepo domain.CandidateRepository, userRepo domain.UserRepository, validate *validator.Validate) domain.CandidateUsecase {
	return &candidateUsecase{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		validate:    validate,
		now:         time.Now,
	}
}

// GetOwnProfile returns the caller's profile, or an empty private skeleton
// when nothing has been saved yet.
func (u *candidateUsecase) GetOwnProfile(ctx context.Context, identity domain.Identity) (*domain.CandidateProfile, error) {
	if err := requireCandidate(identity); err != nil {
		return nil, err
	}
	profile, err := u.profileRepo.GetByUserID(ctx, identity.UserID)
	if apperror.Is(err, apperror.KindNotFound) {
		return domain.EmptyProfile(identity.UserID), nil
	}
	return profile, err
}

// UpdateOwnProfile replaces the supplied sections, creating the profile on first write.
func (u *candidateUsecase) UpdateOwnProfile(ctx context.Context, identity domain.Identity, patch domain.ProfilePatch) (*domain.CandidateProfile, error) {
	if err := requireCandidate(identity); err != nil {
		return nil, err
	}
	if err := validation.Struct(u.validate, patch); err != nil {
		return nil, err
	}

	set := profilePatchSet(patch)
	if len(set) == 0 {
		return nil, apperror.Validation("No updatable fields supplied")
	}
	now := u.now().UTC()

	_, err := u.profileRepo.GetByUserID(ctx, identity.UserID)
	switch {
	case apperror.Is(err, apperror.KindNotFound):
		profile := domain.EmptyProfile(identity.UserID)
		profile.ID = uuid.NewString()
		profile.CreatedAt = now
		profile.UpdatedAt = now
		applyProfilePatch(profile, patch)
		err = u.profileRepo.Create(ctx, profile)
		if !apperror.Is(err, apperror.KindConflict) {
			if err != nil {
				return nil, err
			}
			return profile, nil
		}
		// A concurrent first write created it; fall through to the update.
	case err != nil:
		return nil, err
	}

	set["updatedAt"] = now
	if err := u.profileRepo.Update(ctx, identity.UserID, set); err != nil {
		return nil, err
	}
	return u.profileRepo.GetByUserID(ctx, identity.UserID)
}

// ListPublicProfiles searches PUBLIC profiles and attaches each owner's summary.
func (u *candidateUsecase) ListPublicProfiles(ctx context.Context, search domain.ProfileSearch) ([]domain.PublicProfile, domain.Pagination, error) {
	profiles, total, err := u.profileRepo.Find(ctx, scope.PublicProfiles(search), search.Page)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	userIDs := slice.Map(profiles, func(_ int, p domain.CandidateProfile) string { return p.UserID })
	users, err := u.userRepo.Summaries(ctx, userIDs)
	if err != nil {
		return nil, domain.Pagination{}, err
	}

	out := slice.Map(profiles, func(_ int, p domain.CandidateProfile) domain.PublicProfile {
		pp := domain.PublicProfile{CandidateProfile: p}
		if s, ok := users[p.UserID]; ok {
			pp.User = &s
		}
		return pp
	})
	return out, search.Page.Result(total), nil
}

func requireCandidate(identity domain.Identity) error {
	if identity.UserID == "" {
		return apperror.Unauthorized("Authentication required")
	}
	if identity.Role != domain.RoleCandidate {
		return apperror.Forbidden("Only candidates have a profile")
	}
	return nil
}

func profilePatchSet(patch domain.ProfilePatch) map[string]any {
	set := map[string]any{}
	if patch.Visibility != nil {
		set["visibility"] = *patch.Visibility
	}
	s := patch.Sections
	if s == nil {
		return set
	}
	if s.Personal != nil {
		set["sections.personal"] = *s.Personal
	}
	if s.Education != nil {
		set["sections.education"] = nonNil(*s.Education)
	}
	if s.Experience != nil {
		set["sections.experience"] = nonNil(*s.Experience)
	}
	if s.Projects != nil {
		set["sections.projects"] = nonNil(*s.Projects)
	}
	if s.Skills != nil {
		set["sections.skills"] = nonNil(*s.Skills)
	}
	return set
}

func applyProfilePatch(p *domain.CandidateProfile, patch domain.ProfilePatch) {
	if patch.Visibility != nil {
		p.Visibility = *patch.Visibility
	}
	s := patch.Sections
	if s == nil {
		return
	}
	if s.Personal != nil {
		p.Sections.Personal = *s.Personal
	}
	if s.Education != nil {
		p.Sections.Education = nonNil(*s.Education)
	}
	if s.Experience != nil {
		p.Sections.Experience = nonNil(*s.Experience)
	}
	if s.Projects != nil {
		p.Sections.Projects = nonNil(*s.Projects)
	}
	if s.Skills != nil {
		p.Sections.Skills = nonNil(*s.Skills)
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
