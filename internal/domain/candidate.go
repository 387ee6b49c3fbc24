package domain

import (
	"context"
	"time"

	"go-recruiting-platform/internal/store"
)

type Visibility string

const (
	VisibilityPrivate  Visibility = "PRIVATE"
	VisibilitySharable Visibility = "SHARABLE"
	VisibilityPublic   Visibility = "PUBLIC"
)

type PersonalInfo struct {
	FirstName string `json:"firstName,omitempty" bson:"firstName,omitempty" validate:"max=100"`
	LastName  string `json:"lastName,omitempty" bson:"lastName,omitempty" validate:"max=100"`
	Email     string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,valid_phone"`
	Location  string `json:"location,omitempty" bson:"location,omitempty" validate:"max=200"`
	Summary   string `json:"summary,omitempty" bson:"summary,omitempty" validate:"max=5000"`
}

func (p PersonalInfo) IsEmpty() bool {
	return p == PersonalInfo{}
}

type Education struct {
	Institution string `json:"institution" bson:"institution" validate:"required,max=200"`
	Degree      string `json:"degree" bson:"degree" validate:"max=200"`
	Field       string `json:"field" bson:"field" validate:"max=200"`
	StartDate   string `json:"startDate" bson:"startDate" validate:"max=32"`
	EndDate     string `json:"endDate" bson:"endDate" validate:"max=32"`
	GPA         string `json:"gpa" bson:"gpa" validate:"max=16"`
}

type Experience struct {
	Company     string `json:"company" bson:"company" validate:"required,max=200"`
	Position    string `json:"position" bson:"position" validate:"required,max=200"`
	Description string `json:"description" bson:"description" validate:"max=5000"`
	StartDate   string `json:"startDate" bson:"startDate" validate:"max=32"`
	EndDate     string `json:"endDate" bson:"endDate" validate:"max=32"`
	Current     bool   `json:"current" bson:"current"`
}

type Project struct {
	Name         string   `json:"name" bson:"name" validate:"required,max=200"`
	Description  string   `json:"description" bson:"description" validate:"max=5000"`
	Technologies []string `json:"technologies" bson:"technologies" validate:"max=50,dive,max=60"`
	URL          string   `json:"url" bson:"url" validate:"omitempty,url"`
	StartDate    string   `json:"startDate" bson:"startDate" validate:"max=32"`
	EndDate      string   `json:"endDate" bson:"endDate" validate:"max=32"`
}

type Skill struct {
	Name     string `json:"name" bson:"name" validate:"required,max=60"`
	Level    string `json:"level" bson:"level" validate:"max=32"`
	Category string `json:"category" bson:"category" validate:"max=60"`
}

type Sections struct {
	Personal   PersonalInfo `json:"personal" bson:"personal"`
	Education  []Education  `json:"education" bson:"education" validate:"max=50,dive"`
	Experience []Experience `json:"experience" bson:"experience" validate:"max=50,dive"`
	Projects   []Project    `json:"projects" bson:"projects" validate:"max=50,dive"`
	Skills     []Skill      `json:"skills" bson:"skills" validate:"max=100,dive"`
}

type CandidateProfile struct {
	ID         string     `json:"id" bson:"_id"`
	UserID     string     `json:"userId" bson:"userId"`
	Sections   Sections   `json:"sections" bson:"sections"`
	Visibility Visibility `json:"visibility" bson:"visibility"`
	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// EmptyProfile is the skeleton returned before a candidate saves anything.
func EmptyProfile(userID string) *CandidateProfile {
	return &CandidateProfile{
		UserID: userID,
		Sections: Sections{
			Education:  []Education{},
			Experience: []Experience{},
			Projects:   []Project{},
			Skills:     []Skill{},
		},
		Visibility: VisibilityPrivate,
	}
}

// ProfilePatch replaces whole sections; nil means unchanged.
type ProfilePatch struct {
	Sections   *SectionsPatch `json:"sections" validate:"omitempty"`
	Visibility *Visibility    `json:"visibility" validate:"omitempty,oneof=PRIVATE SHARABLE PUBLIC"`
}

type SectionsPatch struct {
	Personal   *PersonalInfo `json:"personal" validate:"omitempty"`
	Education  *[]Education  `json:"education" validate:"omitempty,max=50,dive"`
	Experience *[]Experience `json:"experience" validate:"omitempty,max=50,dive"`
	Projects   *[]Project    `json:"projects" validate:"omitempty,max=50,dive"`
	Skills     *[]Skill      `json:"skills" validate:"omitempty,max=100,dive"`
}

type PublicProfile struct {
	CandidateProfile
	User *CandidateSummary `json:"user"`
}

type ProfileSearch struct {
	Skills   []string
	Location string
	Page     Page
}

type CandidateRepository interface {
	GetByUserID(ctx context.Context, userID string) (*CandidateProfile, error)
	Create(ctx context.Context, profile *CandidateProfile) error
	Update(ctx context.Context, userID string, set map[string]any) error
	Find(ctx context.Context, filter store.Filter, page Page) ([]CandidateProfile, int64, error)
}

type CandidateUsecase interface {
	GetOwnProfile(ctx context.Context, identity Identity) (*CandidateProfile, error)
	UpdateOwnProfile(ctx context.Context, identity Identity, patch ProfilePatch) (*CandidateProfile, error)
	ListPublicProfiles(ctx context.Context, search ProfileSearch) ([]PublicProfile, Pagination, error)
}
