// Package store defines the document store contract shared by the memory,
// postgres and mongo backends.
package store

import (
	"context"
	"errors"
)

var (
	ErrNoDocument = errors.New("store: no document matched")
	ErrDuplicate  = errors.New("store: duplicate key")
	ErrInvalidID  = errors.New("store: document has no id")
)

// Collection names.
const (
	Users             = "users"
	Tenants           = "tenants"
	Jobs              = "jobs"
	CandidateProfiles = "candidateProfiles"
	Applications      = "applications"
)

// IDField is the logical primary key of every document. The mongo backend maps it to _id.
const IDField = "id"

type SortField struct {
	Field string
	Desc  bool
}

type FindOptions struct {
	Sort  []SortField
	Skip  int64
	Limit int64
}

// Update is applied atomically to a single document.
type Update struct {
	Set map[string]any
	Inc map[string]int64
}

func (u Update) empty() bool {
	return len(u.Set) == 0 && len(u.Inc) == 0
}

// Validate checks every path named by the update.
func (u Update) Validate() error {
	if u.empty() {
		return errors.New("store: empty update")
	}
	for field := range u.Set {
		if err := checkField(field); err != nil {
			return err
		}
		if field == IDField {
			return errors.New("store: id is immutable")
		}
	}
	for field := range u.Inc {
		if err := checkField(field); err != nil {
			return err
		}
	}
	return nil
}

// Store is a persistent key-document store with per-document atomicity.
//
// Documents are Go structs whose json tags name the stored fields; every
// document carries a string "id". Find decodes into a pointer to a slice,
// FindOne into a pointer to a struct.
type Store interface {
	Find(ctx context.Context, collection string, filter Filter, opts FindOptions, out any) error
	FindOne(ctx context.Context, collection string, filter Filter, out any) error
	InsertOne(ctx context.Context, collection string, doc any) error
	UpdateOne(ctx context.Context, collection string, filter Filter, update Update) (int64, error)
	DeleteOne(ctx context.Context, collection string, filter Filter) (int64, error)
	CountDocuments(ctx context.Context, collection string, filter Filter) (int64, error)
	Ping(ctx context.Context) error
}

// UniqueIndex is a set of fields whose combined value must be unique within a collection.
type UniqueIndex struct {
	Name       string
	Collection string
	Fields     []string
}

// UniqueIndexes is enforced by every backend.
var UniqueIndexes = []UniqueIndex{
	{Name: "users_email_key", Collection: Users, Fields: []string{"email"}},
	{Name: "tenants_slug_key", Collection: Tenants, Fields: []string{"slug"}},
	{Name: "candidate_profiles_user_id_key", Collection: CandidateProfiles, Fields: []string{"userId"}},
	{Name: "applications_job_candidate_key", Collection: Applications, Fields: []string{"jobId", "candidateId"}},
}

// IndexesFor returns the unique indexes declared on collection.
func IndexesFor(collection string) []UniqueIndex {
	var out []UniqueIndex
	for _, idx := range UniqueIndexes {
		if idx.Collection == collection {
			out = append(out, idx)
		}
	}
	return out
}
