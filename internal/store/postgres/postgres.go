// Package postgres stores documents as JSONB rows in a single "documents" table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go-recruiting-platform/internal/store"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Find(ctx context.Context, collection string, filter store.Filter, opts store.FindOptions, out any) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	q := &query{}
	where, err := q.where(collection, filter)
	if err != nil {
		return err
	}

	sqlText := "SELECT doc FROM documents WHERE " + where + orderBy(opts.Sort)
	if opts.Limit > 0 {
		sqlText += " LIMIT " + q.bind(opts.Limit)
	}
	if opts.Skip > 0 {
		sqlText += " OFFSET " + q.bind(opts.Skip)
	}

	rows, err := s.db.QueryContext(ctx, sqlText, q.args...)
	if err != nil {
		return fmt.Errorf("postgres: find %s: %w", collection, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("postgres: scan %s: %w", collection, err)
		}
		docs = append(docs, raw)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("postgres: iterate %s: %w", collection, err)
	}
	return store.DecodeMany(docs, out)
}

func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter, out any) error {
	q := &query{}
	where, err := q.where(collection, filter)
	if err != nil {
		return err
	}

	var raw []byte
	err = s.db.QueryRowContext(ctx, "SELECT doc FROM documents WHERE "+where+" ORDER BY seq LIMIT 1", q.args...).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNoDocument
	}
	if err != nil {
		return fmt.Errorf("postgres: find one %s: %w", collection, err)
	}
	return store.DecodeOne(raw, out)
}

func (s *Store) InsertOne(ctx context.Context, collection string, doc any) error {
	raw, id, err := store.Encode(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3::jsonb)`,
		collection, id, string(raw))
	if err != nil {
		return translate(collection, "insert", err)
	}
	return nil
}

func (s *Store) UpdateOne(ctx context.Context, collection string, filter store.Filter, update store.Update) (int64, error) {
	if err := update.Validate(); err != nil {
		return 0, err
	}
	q := &query{}
	set, err := q.setExpr(update)
	if err != nil {
		return 0, err
	}
	target, err := q.single(collection, filter)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, "UPDATE documents SET doc = "+set+", updated_at = now() WHERE "+target, q.args...)
	if err != nil {
		return 0, translate(collection, "update", err)
	}
	return res.RowsAffected()
}

func (s *Store) DeleteOne(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	q := &query{}
	target, err := q.single(collection, filter)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE "+target, q.args...)
	if err != nil {
		return 0, translate(collection, "delete", err)
	}
	return res.RowsAffected()
}

func (s *Store) CountDocuments(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	q := &query{}
	where, err := q.where(collection, filter)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE "+where, q.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count %s: %w", collection, err)
	}
	return n, nil
}

func translate(collection, op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return store.ErrDuplicate
	}
	return fmt.Errorf("postgres: %s %s: %w", op, collection, err)
}

// query accumulates positional arguments while SQL text is assembled.
type query struct {
	args []any
}

func (q *query) bind(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

// single matches exactly the first document selected by filter. The filter is
// repeated on the outer statement so it is re-checked against the locked row.
func (q *query) single(collection string, filter store.Filter) (string, error) {
	outer, err := q.where(collection, filter)
	if err != nil {
		return "", err
	}
	inner, err := q.where(collection, filter)
	if err != nil {
		return "", err
	}
	return outer + " AND (collection, id) IN (SELECT collection, id FROM documents WHERE " + inner + " ORDER BY seq LIMIT 1)", nil
}

func (q *query) where(collection string, filter store.Filter) (string, error) {
	if err := filter.Validate(); err != nil {
		return "", err
	}
	clauses := []string{"collection = " + q.bind(collection)}
	for _, c := range filter.Conditions {
		clause, err := q.condition(c)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, " AND "), nil
}

func (q *query) condition(c store.Condition) (string, error) {
	switch c.Op {
	case store.OpEq:
		if c.Value == nil {
			return isNull(c.Field), nil
		}
		if c.Field == store.IDField {
			return "id = " + q.bind(fmt.Sprint(c.Value)), nil
		}
		v, err := jsonArg(c.Value)
		if err != nil {
			return "", err
		}
		return "(" + jsonPath(c.Field) + ") = " + q.bind(v) + "::jsonb", nil

	case store.OpIn:
		if len(c.Values) == 0 {
			return "FALSE", nil
		}
		placeholders := make([]string, len(c.Values))
		for i, raw := range c.Values {
			if c.Field == store.IDField {
				placeholders[i] = q.bind(fmt.Sprint(raw))
				continue
			}
			v, err := jsonArg(raw)
			if err != nil {
				return "", err
			}
			placeholders[i] = q.bind(v) + "::jsonb"
		}
		lhs := "(" + jsonPath(c.Field) + ")"
		if c.Field == store.IDField {
			lhs = "id"
		}
		return lhs + " IN (" + strings.Join(placeholders, ", ") + ")", nil

	case store.OpIsNull:
		return isNull(c.Field), nil

	case store.OpContainsFold:
		needle, _ := c.Value.(string)
		return textPath(c.Field) + " ILIKE " + q.bind("%"+escapeLike(needle)+"%") + ` ESCAPE '\'`, nil

	case store.OpHasAny:
		if len(c.Values) == 0 {
			return "FALSE", nil
		}
		alts := make([]string, len(c.Values))
		for i, raw := range c.Values {
			var elem any = raw
			if c.Elem != "" {
				elem = nest(store.Path(c.Elem), raw)
			}
			v, err := jsonArg([]any{elem})
			if err != nil {
				return "", err
			}
			alts[i] = "(" + jsonPath(c.Field) + ") @> " + q.bind(v) + "::jsonb"
		}
		return "(" + strings.Join(alts, " OR ") + ")", nil
	}
	return "", fmt.Errorf("postgres: unsupported operator %q", c.Op)
}

func (q *query) setExpr(update store.Update) (string, error) {
	expr := "doc"
	for _, field := range sortedKeys(update.Set) {
		v, err := jsonArg(update.Set[field])
		if err != nil {
			return "", err
		}
		expr = "jsonb_set(" + expr + ", " + pathLiteral(field) + ", " + q.bind(v) + "::jsonb, true)"
	}
	for _, field := range sortedKeys(update.Inc) {
		expr = "jsonb_set(" + expr + ", " + pathLiteral(field) +
			", to_jsonb(COALESCE((" + textPath(field) + ")::numeric, 0) + " + q.bind(update.Inc[field]) + "), true)"
	}
	return expr, nil
}

func orderBy(fields []store.SortField) string {
	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		expr := jsonPath(f.Field)
		if store.IsTimeField(f.Field) {
			expr = "(" + textPath(f.Field) + ")::timestamptz"
		}
		dir := " ASC"
		if f.Desc {
			dir = " DESC"
		}
		parts = append(parts, expr+dir)
	}
	parts = append(parts, "seq ASC")
	return " ORDER BY " + strings.Join(parts, ", ")
}

// pathLiteral renders a validated dotted field as a quoted text[] path literal.
func pathLiteral(field string) string {
	return pq.QuoteLiteral("{" + strings.Join(store.Path(field), ",") + "}")
}

func jsonPath(field string) string {
	return "doc #> " + pathLiteral(field)
}

func textPath(field string) string {
	return "doc #>> " + pathLiteral(field)
}

func isNull(field string) string {
	return "COALESCE(" + jsonPath(field) + ", 'null'::jsonb) = 'null'::jsonb"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func jsonArg(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("postgres: encode argument: %w", err)
	}
	return string(raw), nil
}

// nest wraps v in objects along path: ["a","b"] -> {"a":{"b":v}}.
func nest(path []string, v any) any {
	for i := len(path) - 1; i >= 0; i-- {
		v = map[string]any{path[i]: v}
	}
	return v
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
