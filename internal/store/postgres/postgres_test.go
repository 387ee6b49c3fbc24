package postgres

import (
	"context"
	"regexp"
	"testing"

	"go-recruiting-platform/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobDoc struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db), mock
}

func TestFindBuildsParameterisedQuery(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT doc FROM documents WHERE collection = $1 AND (doc #> '{status}') = $2::jsonb ` +
			`AND doc #>> '{location}' ILIKE $3 ESCAPE '\' ` +
			`ORDER BY (doc #>> '{createdAt}')::timestamptz DESC, seq ASC LIMIT $4 OFFSET $5`)).
		WithArgs("jobs", `"active"`, `%50\%\_off%`, int64(10), int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}).
			AddRow([]byte(`{"id":"j1","status":"active"}`)).
			AddRow([]byte(`{"id":"j2","status":"active"}`)))

	var out []jobDoc
	err := s.Find(context.Background(), store.Jobs,
		store.Where(store.Eq("status", "active"), store.ContainsFold("location", "50%_off")),
		store.FindOptions{Sort: []store.SortField{{Field: "createdAt", Desc: true}}, Skip: 20, Limit: 10},
		&out)
	require.NoError(t, err)
	assert.Equal(t, []jobDoc{{ID: "j1", Status: "active"}, {ID: "j2", Status: "active"}}, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindInAndHasAny(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT doc FROM documents WHERE collection = $1 AND id IN ($2, $3) ` +
			`AND ((doc #> '{sections,skills}') @> $4::jsonb OR (doc #> '{sections,skills}') @> $5::jsonb) ORDER BY seq ASC`)).
		WithArgs("candidateProfiles", "p1", "p2", `[{"name":"Go"}]`, `[{"name":"SQL"}]`).
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	var out []jobDoc
	err := s.Find(context.Background(), store.CandidateProfiles,
		store.Where(
			store.In(store.IDField, []string{"p1", "p2"}),
			store.HasAnyElem("sections.skills", "name", []string{"Go", "SQL"}),
		),
		store.FindOptions{}, &out)
	require.NoError(t, err)
	assert.Empty(t, out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmptyInMatchesNothing(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM documents WHERE collection = $1 AND FALSE`)).
		WithArgs("applications").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	n, err := s.CountDocuments(context.Background(), store.Applications,
		store.Where(store.In("jobId", []string{})))
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOneNoRows(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT doc FROM documents WHERE collection = $1 AND id = $2 ORDER BY seq LIMIT 1`)).
		WithArgs("jobs", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"doc"}))

	var out jobDoc
	err := s.FindOne(context.Background(), store.Jobs, store.ByID("missing"), &out)
	assert.ErrorIs(t, err, store.ErrNoDocument)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertOne(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3::jsonb)`)).
			WithArgs("jobs", "j1", `{"id":"j1","status":"draft"}`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, s.InsertOne(context.Background(), store.Jobs, jobDoc{ID: "j1", Status: "draft"}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		s, mock := newMock(t)
		mock.ExpectExec("INSERT INTO documents").
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

		err := s.InsertOne(context.Background(), store.Tenants, jobDoc{ID: "t1"})
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("missing id", func(t *testing.T) {
		s, _ := newMock(t)
		err := s.InsertOne(context.Background(), store.Tenants, jobDoc{})
		assert.ErrorIs(t, err, store.ErrInvalidID)
	})
}

func TestUpdateOneConditional(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE documents SET doc = jsonb_set(jsonb_set(doc, '{role}', $1::jsonb, true), '{tenantId}', $2::jsonb, true), updated_at = now() ` +
			`WHERE collection = $3 AND id = $4 AND COALESCE(doc #> '{tenantId}', 'null'::jsonb) = 'null'::jsonb ` +
			`AND (collection, id) IN (SELECT collection, id FROM documents WHERE collection = $5 AND id = $6 ` +
			`AND COALESCE(doc #> '{tenantId}', 'null'::jsonb) = 'null'::jsonb ORDER BY seq LIMIT 1)`)).
		WithArgs(`"recruiter"`, `"t1"`, "users", "u1", "users", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	matched, err := s.UpdateOne(context.Background(), store.Users,
		store.ByID("u1").And(store.IsNull("tenantId")),
		store.Update{Set: map[string]any{"tenantId": "t1", "role": "recruiter"}})
	require.NoError(t, err)
	assert.Zero(t, matched)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOneIncrement(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE documents SET doc = jsonb_set(doc, '{applicationsCount}', ` +
			`to_jsonb(COALESCE((doc #>> '{applicationsCount}')::numeric, 0) + $1), true), updated_at = now()`)).
		WithArgs(int64(1), "jobs", "j1", "jobs", "j1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	matched, err := s.UpdateOne(context.Background(), store.Jobs, store.ByID("j1"),
		store.Update{Inc: map[string]int64{"applicationsCount": 1}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, matched)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectsUnsafeFieldPaths(t *testing.T) {
	s, _ := newMock(t)
	var out []jobDoc
	err := s.Find(context.Background(), store.Jobs,
		store.Where(store.Eq("status') OR 1=1 --", "x")), store.FindOptions{}, &out)
	assert.Error(t, err)
}
