package memory_test

import (
	"context"
	"testing"
	"time"

	"go-recruiting-platform/internal/store"
	"go-recruiting-platform/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type skill struct {
	Name string `json:"name"`
}

type doc struct {
	ID        string    `json:"id"`
	TenantID  *string   `json:"tenantId"`
	Email     string    `json:"email,omitempty"`
	Status    string    `json:"status,omitempty"`
	Location  string    `json:"location,omitempty"`
	Remote    bool      `json:"remote"`
	Tags      []string  `json:"tags,omitempty"`
	Skills    []skill   `json:"skills,omitempty"`
	Count     int64     `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
}

func seed(t *testing.T, s *memory.Store, docs ...doc) {
	t.Helper()
	for _, d := range docs {
		require.NoError(t, s.InsertOne(context.Background(), "things", d))
	}
}

func TestFindFilters(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tenant := "t1"
	seed(t, s,
		doc{ID: "a", Status: "active", Location: "Berlin, DE", Remote: true, Tags: []string{"go", "sql"}, Skills: []skill{{Name: "Go"}}, CreatedAt: base},
		doc{ID: "b", Status: "draft", Location: "Paris", Tags: []string{"js"}, TenantID: &tenant, CreatedAt: base.Add(time.Hour)},
		doc{ID: "c", Status: "active", Location: "berlin", Tags: []string{"rust"}, Skills: []skill{{Name: "Rust"}}, CreatedAt: base.Add(2 * time.Hour)},
	)

	ids := func(filter store.Filter, opts store.FindOptions) []string {
		var out []doc
		require.NoError(t, s.Find(ctx, "things", filter, opts, &out))
		res := make([]string, len(out))
		for i, d := range out {
			res[i] = d.ID
		}
		return res
	}

	t.Run("eq", func(t *testing.T) {
		assert.Equal(t, []string{"a", "c"}, ids(store.Where(store.Eq("status", "active")), store.FindOptions{}))
		assert.Equal(t, []string{"a"}, ids(store.Where(store.Eq("remote", true)), store.FindOptions{}))
	})

	t.Run("in and empty in", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, ids(store.Where(store.In("id", []string{"a", "b", "zzz"})), store.FindOptions{}))
		assert.Empty(t, ids(store.Where(store.In("id", []string{})), store.FindOptions{}))
	})

	t.Run("contains fold treats input as literal text", func(t *testing.T) {
		assert.Equal(t, []string{"a", "c"}, ids(store.Where(store.ContainsFold("location", "BERLIN")), store.FindOptions{}))
		assert.Empty(t, ids(store.Where(store.ContainsFold("location", ".*")), store.FindOptions{}))
	})

	t.Run("has any", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b"}, ids(store.Where(store.HasAny("tags", []string{"js", "go"})), store.FindOptions{}))
		assert.Equal(t, []string{"c"}, ids(store.Where(store.HasAnyElem("skills", "name", []string{"Rust"})), store.FindOptions{}))
	})

	t.Run("is null", func(t *testing.T) {
		assert.Equal(t, []string{"a", "c"}, ids(store.Where(store.IsNull("tenantId")), store.FindOptions{}))
	})

	t.Run("sort skip limit", func(t *testing.T) {
		opts := store.FindOptions{Sort: []store.SortField{{Field: "createdAt", Desc: true}}, Skip: 1, Limit: 1}
		assert.Equal(t, []string{"b"}, ids(store.Filter{}, opts))
	})

	t.Run("invalid field path is rejected", func(t *testing.T) {
		var out []doc
		err := s.Find(ctx, "things", store.Where(store.Eq("status'; drop", "x")), store.FindOptions{}, &out)
		assert.Error(t, err)
	})
}

func TestUniqueIndexes(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	require.NoError(t, s.InsertOne(ctx, store.Users, doc{ID: "u1", Email: "a@x.com"}))
	err := s.InsertOne(ctx, store.Users, doc{ID: "u2", Email: "a@x.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	err = s.InsertOne(ctx, store.Users, doc{ID: "u1", Email: "b@x.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	n, err := s.CountDocuments(ctx, store.Users, store.Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUpdateOne(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seed(t, s, doc{ID: "a", Status: "draft"})

	matched, err := s.UpdateOne(ctx, "things", store.ByID("a"), store.Update{
		Set: map[string]any{"status": "active", "meta.owner": "u1"},
		Inc: map[string]int64{"count": 2},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, matched)

	var got doc
	require.NoError(t, s.FindOne(ctx, "things", store.ByID("a"), &got))
	assert.Equal(t, "active", got.Status)
	assert.EqualValues(t, 2, got.Count)

	n, err := s.CountDocuments(ctx, "things", store.Where(store.Eq("meta.owner", "u1")))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	t.Run("conditional update misses", func(t *testing.T) {
		tenant := "t1"
		seed(t, s, doc{ID: "owned", TenantID: &tenant})
		matched, err := s.UpdateOne(ctx, "things",
			store.ByID("owned").And(store.IsNull("tenantId")),
			store.Update{Set: map[string]any{"tenantId": "t2"}})
		require.NoError(t, err)
		assert.Zero(t, matched)
	})

	t.Run("id is immutable", func(t *testing.T) {
		_, err := s.UpdateOne(ctx, "things", store.ByID("a"), store.Update{Set: map[string]any{"id": "b"}})
		assert.Error(t, err)
	})
}

func TestFindOneAndDelete(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	seed(t, s, doc{ID: "a"})

	var got doc
	assert.ErrorIs(t, s.FindOne(ctx, "things", store.ByID("missing"), &got), store.ErrNoDocument)

	deleted, err := s.DeleteOne(ctx, "things", store.ByID("a"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	assert.ErrorIs(t, s.FindOne(ctx, "things", store.ByID("a"), &got), store.ErrNoDocument)
}
