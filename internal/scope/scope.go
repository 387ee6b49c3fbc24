// Package scope turns a caller identity and a route tenant into the store
// filter that restricts a query to records the caller may see.
package scope

import (
	"context"
	"strings"

	"go-recruiting-platform/internal/domain"
	"go-recruiting-platform/internal/store"
	"go-recruiting-platform/pkg/apperror"

	"github.com/ecodeclub/ekit/slice"
)

type Kind string

const (
	KindJob                Kind = "job"
	KindTenantApplications Kind = "tenantApplications"
	KindOwnApplications    Kind = "ownApplications"
	KindOwnProfile         Kind = "ownProfile"
)

// Scope is a declarative query: the collection plus the predicate to apply.
type Scope struct {
	Collection string
	Filter     store.Filter
}

type JobIDLister interface {
	IDsByTenant(ctx context.Context, tenantID string) ([]string, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Resolver struct {
	jobs  JobIDLister
	users UserLookup
}

func NewResolver(jobs JobIDLister, users UserLookup) *Resolver {
	return &Resolver{jobs: jobs, users: users}
}

type options struct {
	jobID     string
	jobStatus domain.JobStatus
	appStatus domain.ApplicationStatus
}

type Option func(*options)

// WithJobID narrows tenant applications to one job. A job outside the tenant matches nothing.
func WithJobID(id string) Option {
	return func(o *options) { o.jobID = id }
}

func WithJobStatus(status domain.JobStatus) Option {
	return func(o *options) { o.jobStatus = status }
}

func WithApplicationStatus(status domain.ApplicationStatus) Option {
	return func(o *options) { o.appStatus = status }
}

// ScopeFilter resolves the filter for kind. tenantID is required for the
// tenant kinds and identity for the self-scoped ones.
func (r *Resolver) ScopeFilter(ctx context.Context, kind Kind, tenantID string, identity *domain.Identity, opts ...Option) (Scope, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch kind {
	case KindJob:
		if tenantID == "" {
			return Scope{}, apperror.Validation("tenant id is required")
		}
		filter := store.Where(store.Eq("tenantId", tenantID))
		if o.jobStatus != "" {
			filter = filter.And(store.Eq("status", o.jobStatus))
		}
		return Scope{Collection: store.Jobs, Filter: filter}, nil

	case KindTenantApplications:
		if tenantID == "" {
			return Scope{}, apperror.Validation("tenant id is required")
		}
		ids, err := r.jobs.IDsByTenant(ctx, tenantID)
		if err != nil {
			return Scope{}, err
		}
		if o.jobID != "" {
			ids = slice.FilterMap(ids, func(_ int, id string) (string, bool) {
				return id, id == o.jobID
			})
		}
		return Scope{Collection: store.Applications, Filter: withAppStatus(store.Where(store.In("jobId", ids)), o)}, nil

	case KindOwnApplications:
		if identity == nil || identity.UserID == "" {
			return Scope{}, apperror.Unauthorized("authentication required")
		}
		filter := store.Where(store.Eq("candidateId", identity.UserID))
		if o.jobID != "" {
			filter = filter.And(store.Eq("jobId", o.jobID))
		}
		return Scope{Collection: store.Applications, Filter: withAppStatus(filter, o)}, nil

	case KindOwnProfile:
		if identity == nil || identity.UserID == "" {
			return Scope{}, apperror.Unauthorized("authentication required")
		}
		return Scope{Collection: store.CandidateProfiles, Filter: store.Where(store.Eq("userId", identity.UserID))}, nil
	}

	return Scope{}, apperror.Internal(nil)
}

func withAppStatus(f store.Filter, o options) store.Filter {
	if o.appStatus == "" {
		return f
	}
	return f.And(store.Eq("status", o.appStatus))
}

// RequireMembership allows admins anywhere and recruiters only inside the
// tenant their stored account owns. The user is re-read so a stale token
// cannot widen access.
func (r *Resolver) RequireMembership(ctx context.Context, identity domain.Identity, tenantID string) error {
	if identity.IsAdmin() {
		return nil
	}
	if identity.Role != domain.RoleRecruiter {
		return apperror.Forbidden("you do not have access to this tenant")
	}
	user, err := r.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return apperror.Forbidden("you do not have access to this tenant")
		}
		return err
	}
	if !user.BelongsTo(tenantID) {
		return apperror.Forbidden("you do not have access to this tenant")
	}
	return nil
}

// PublicJobs is the filter behind public job search: active jobs only, with
// free text matched as a case-insensitive substring.
func PublicJobs(search domain.JobSearch) store.Filter {
	filter := store.Where(store.Eq("status", domain.JobStatusActive))
	if skills := cleanList(search.Skills); len(skills) > 0 {
		filter = filter.And(store.HasAny("skills", skills))
	}
	if loc := strings.TrimSpace(search.Location); loc != "" {
		filter = filter.And(store.ContainsFold("location", loc))
	}
	if search.Type != "" {
		filter = filter.And(store.Eq("type", search.Type))
	}
	if search.Remote {
		filter = filter.And(store.Eq("remote", true))
	}
	return filter
}

// PublicProfiles matches profiles their owners marked PUBLIC.
func PublicProfiles(search domain.ProfileSearch) store.Filter {
	filter := store.Where(store.Eq("visibility", domain.VisibilityPublic))
	if skills := cleanList(search.Skills); len(skills) > 0 {
		filter = filter.And(store.HasAnyElem("sections.skills", "name", skills))
	}
	if loc := strings.TrimSpace(search.Location); loc != "" {
		filter = filter.And(store.ContainsFold("sections.personal.location", loc))
	}
	return filter
}

func cleanList(values []string) []string {
	return slice.FilterMap(values, func(_ int, v string) (string, bool) {
		v = strings.TrimSpace(v)
		return v, v != ""
	})
}
