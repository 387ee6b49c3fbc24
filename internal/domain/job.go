package domain

import (
	"context"
	"time"

	"go-recruiting-platform/internal/store"
)

type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
)

type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusActive JobStatus = "active"
	JobStatusPaused JobStatus = "paused"
	JobStatusClosed JobStatus = "closed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusDraft, JobStatusActive, JobStatusPaused, JobStatusClosed:
		return true
	}
	return false
}

const DefaultCurrency = "USD"

type SalaryRange struct {
	Min      float64 `json:"min" bson:"min"`
	Max      float64 `json:"max" bson:"max"`
	Currency string  `json:"currency" bson:"currency"`
}

type Job struct {
	ID                string      `json:"id" bson:"_id"`
	TenantID          string      `json:"tenantId" bson:"tenantId"`
	Title             string      `json:"title" bson:"title"`
	Department        string      `json:"department" bson:"department"`
	Location          string      `json:"location" bson:"location"`
	Type              JobType     `json:"type" bson:"type"`
	Remote            bool        `json:"remote" bson:"remote"`
	Skills            []string    `json:"skills" bson:"skills"`
	SalaryRange       SalaryRange `json:"salaryRange" bson:"salaryRange"`
	Description       string      `json:"description" bson:"description"`
	Requirements      string      `json:"requirements" bson:"requirements"`
	Benefits          string      `json:"benefits" bson:"benefits"`
	Status            JobStatus   `json:"status" bson:"status"`
	OpenAt            time.Time   `json:"openAt" bson:"openAt"`
	CloseAt           *time.Time  `json:"closeAt" bson:"closeAt"`
	ApplicationsCount int64       `json:"applicationsCount" bson:"applicationsCount"`
	CreatedBy         string      `json:"createdBy" bson:"createdBy"`
	CreatedAt         time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// JobWithTenant is a job enriched with its tenant summary; Tenant is nil when
// the tenant no longer resolves.
type JobWithTenant struct {
	Job
	Tenant *TenantSummary `json:"tenant"`
}

type SalaryInput struct {
	Min      *float64 `json:"min" validate:"omitempty,gte=0"`
	Max      *float64 `json:"max" validate:"omitempty,gte=0"`
	Currency *string  `json:"currency" validate:"omitempty,len=3,alpha"`
}

type CreateJobInput struct {
	Title        string       `json:"title" validate:"required,max=200"`
	Department   string       `json:"department" validate:"max=120"`
	Location     string       `json:"location" validate:"required,max=200"`
	Type         JobType      `json:"type" validate:"required,oneof=full-time part-time contract internship"`
	Remote       bool         `json:"remote"`
	Skills       []string     `json:"skills" validate:"max=50,dive,required,max=60"`
	SalaryRange  *SalaryInput `json:"salaryRange" validate:"omitempty"`
	Description  string       `json:"description" validate:"required,max=20000"`
	Requirements string       `json:"requirements" validate:"max=20000"`
	Benefits     string       `json:"benefits" validate:"max=20000"`
	Status       JobStatus    `json:"status" validate:"omitempty,oneof=draft active paused closed"`
	CloseAt      *time.Time   `json:"closeAt"`
}

// JobPatch lists the mutable job fields; nil means unchanged.
type JobPatch struct {
	Title        *string      `json:"title" validate:"omitempty,min=1,max=200"`
	Department   *string      `json:"department" validate:"omitempty,max=120"`
	Location     *string      `json:"location" validate:"omitempty,min=1,max=200"`
	Type         *JobType     `json:"type" validate:"omitempty,oneof=full-time part-time contract internship"`
	Remote       *bool        `json:"remote"`
	Skills       *[]string    `json:"skills" validate:"omitempty,max=50,dive,required,max=60"`
	SalaryRange  *SalaryInput `json:"salaryRange" validate:"omitempty"`
	Description  *string      `json:"description" validate:"omitempty,min=1,max=20000"`
	Requirements *string      `json:"requirements" validate:"omitempty,max=20000"`
	Benefits     *string      `json:"benefits" validate:"omitempty,max=20000"`
	Status       *JobStatus   `json:"status" validate:"omitempty,oneof=draft active paused closed"`
	CloseAt      *time.Time   `json:"closeAt"`
}

// JobSearch holds the public search criteria; empty fields are ignored.
type JobSearch struct {
	Skills   []string
	Location string
	Type     JobType
	Remote   bool
	Page     Page
}

type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, id string) (*Job, error)
	Find(ctx context.Context, filter store.Filter, page Page) ([]Job, int64, error)
	IDsByTenant(ctx context.Context, tenantID string) ([]string, error)
	GetMany(ctx context.Context, ids []string) (map[string]Job, error)
	Update(ctx context.Context, id string, set map[string]any) error
	Delete(ctx context.Context, id string) error
	IncrementApplications(ctx context.Context, id string) error
}

type JobUsecase interface {
	Search(ctx context.Context, search JobSearch) ([]JobWithTenant, Pagination, error)
	ListByTenant(ctx context.Context, caller *Identity, tenantID string, status JobStatus, page Page) ([]Job, Pagination, error)
	Get(ctx context.Context, caller *Identity, id string) (*JobWithTenant, error)
	Create(ctx context.Context, identity Identity, tenantID string, input CreateJobInput) (*Job, error)
	Update(ctx context.Context, identity Identity, id string, patch JobPatch) (*Job, error)
	Delete(ctx context.Context, identity Identity, id string) error
}
