package domain

import (
	"context"
	"time"

	"go-recruiting-platform/internal/store"
)

type ApplicationStatus string

const (
	ApplicationApplied   ApplicationStatus = "applied"
	ApplicationReviewing ApplicationStatus = "reviewing"
	ApplicationInterview ApplicationStatus = "interview"
	ApplicationOffer     ApplicationStatus = "offer"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
)

// applicationTransitions is the pipeline graph. Statuses without an entry are terminal.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationApplied:   {ApplicationReviewing, ApplicationRejected, ApplicationWithdrawn},
	ApplicationReviewing: {ApplicationInterview, ApplicationRejected, ApplicationWithdrawn},
	ApplicationInterview: {ApplicationOffer, ApplicationRejected},
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationApplied, ApplicationReviewing, ApplicationInterview,
		ApplicationOffer, ApplicationRejected, ApplicationWithdrawn:
		return true
	}
	return false
}

func (s ApplicationStatus) Terminal() bool {
	_, ok := applicationTransitions[s]
	return s.Valid() && !ok
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, candidate := range applicationTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Stage is a finer-grained recruiter label with no transition rules.
type Stage string

const (
	StageApplied     Stage = "applied"
	StagePhoneScreen Stage = "phone_screen"
	StageTechnical   Stage = "technical"
	StageOnsite      Stage = "onsite"
	StageFinal       Stage = "final"
	StageOffer       Stage = "offer"
)

// ShareSelection is the candidate's choice of sections to attach to an application.
type ShareSelection struct {
	Personal   bool `json:"personal"`
	Education  bool `json:"education"`
	Experience bool `json:"experience"`
	Projects   bool `json:"projects"`
	Skills     bool `json:"skills"`
}

// ShareSet is the profile snapshot stored on an application. Sections that were
// not selected, or were empty, are absent from the encoded document.
type ShareSet struct {
	Personal   *PersonalInfo `json:"personal,omitempty" bson:"personal,omitempty"`
	Education  []Education   `json:"education,omitempty" bson:"education,omitempty"`
	Experience []Experience  `json:"experience,omitempty" bson:"experience,omitempty"`
	Projects   []Project     `json:"projects,omitempty" bson:"projects,omitempty"`
	Skills     []Skill       `json:"skills,omitempty" bson:"skills,omitempty"`
}

type Application struct {
	ID          string            `json:"id" bson:"_id"`
	JobID       string            `json:"jobId" bson:"jobId"`
	CandidateID string            `json:"candidateId" bson:"candidateId"`
	ShareSet    ShareSet          `json:"shareSet" bson:"shareSet"`
	Status      ApplicationStatus `json:"status" bson:"status"`
	Stage       Stage             `json:"stage" bson:"stage"`
	Notes       string            `json:"notes" bson:"notes"`
	AppliedAt   time.Time         `json:"appliedAt" bson:"appliedAt"`
	UpdatedAt   time.Time         `json:"updatedAt" bson:"updatedAt"`
	ReviewedBy  *string           `json:"reviewedBy" bson:"reviewedBy"`
	ReviewedAt  *time.Time        `json:"reviewedAt" bson:"reviewedAt"`
}

// ApplicationDetail carries the related records; any of them may be nil when
// the relation no longer resolves.
type ApplicationDetail struct {
	Application
	Job       *Job              `json:"job"`
	Tenant    *TenantSummary    `json:"tenant"`
	Candidate *CandidateSummary `json:"candidate"`
}

type ApplyInput struct {
	ShareSet ShareSelection `json:"shareSet"`
}

// ApplicationPatch lists the mutable application fields; nil means unchanged.
type ApplicationPatch struct {
	Status *ApplicationStatus `json:"status" validate:"omitempty,oneof=applied reviewing interview offer rejected withdrawn"`
	Stage  *Stage             `json:"stage" validate:"omitempty,oneof=applied phone_screen technical onsite final offer"`
	Notes  *string            `json:"notes" validate:"omitempty,max=10000"`
}

type ApplicationQuery struct {
	JobID  string
	Status ApplicationStatus
	Page   Page
}

type ApplicationRepository interface {
	Create(ctx context.Context, application *Application) error
	GetByID(ctx context.Context, id string) (*Application, error)
	Exists(ctx context.Context, jobID, candidateID string) (bool, error)
	Find(ctx context.Context, filter store.Filter, page Page) ([]Application, int64, error)
	// Update applies set only while the stored status still equals from.
	Update(ctx context.Context, id string, from ApplicationStatus, set map[string]any) error
}

type ApplicationUsecase interface {
	Apply(ctx context.Context, identity Identity, jobID string, input ApplyInput) (*Application, error)
	ListOwn(ctx context.Context, identity Identity, query ApplicationQuery) ([]ApplicationDetail, Pagination, error)
	ListForTenant(ctx context.Context, identity Identity, tenantID string, query ApplicationQuery) ([]ApplicationDetail, Pagination, error)
	Get(ctx context.Context, identity Identity, id string) (*ApplicationDetail, error)
	Update(ctx context.Context, identity Identity, id string, patch ApplicationPatch) (*Application, error)
}
