// Package memory is an in-process document store used for tests and local runs.
// It honours the same filter semantics and unique indexes as the database backends.
package memory

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go-recruiting-platform/internal/store"
)

type document struct {
	seq  int64
	raw  []byte
	body map[string]any
}

type Store struct {
	mu          sync.RWMutex
	seq         int64
	collections map[string]map[string]*document
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{collections: make(map[string]map[string]*document)}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) Find(ctx context.Context, collection string, filter store.Filter, opts store.FindOptions, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	conds, err := compile(filter)
	if err != nil {
		return err
	}

	s.mu.RLock()
	docs := s.match(collection, conds)
	s.mu.RUnlock()

	sortDocuments(docs, opts.Sort)

	start := opts.Skip
	if start > int64(len(docs)) {
		start = int64(len(docs))
	}
	docs = docs[start:]
	if opts.Limit > 0 && int64(len(docs)) > opts.Limit {
		docs = docs[:opts.Limit]
	}

	raws := make([][]byte, len(docs))
	for i, d := range docs {
		raws[i] = d.raw
	}
	return store.DecodeMany(raws, out)
}

func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conds, err := compile(filter)
	if err != nil {
		return err
	}

	s.mu.RLock()
	doc := s.first(collection, conds)
	s.mu.RUnlock()

	if doc == nil {
		return store.ErrNoDocument
	}
	return store.DecodeOne(doc.raw, out)
}

func (s *Store) InsertOne(ctx context.Context, collection string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, id, err := store.Encode(doc)
	if err != nil {
		return err
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	if coll == nil {
		coll = make(map[string]*document)
		s.collections[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return store.ErrDuplicate
	}
	if violatesUnique(collection, coll, id, body) {
		return store.ErrDuplicate
	}

	s.seq++
	coll[id] = &document{seq: s.seq, raw: raw, body: body}
	return nil
}

func (s *Store) UpdateOne(ctx context.Context, collection string, filter store.Filter, update store.Update) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := update.Validate(); err != nil {
		return 0, err
	}
	conds, err := compile(filter)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.first(collection, conds)
	if doc == nil {
		return 0, nil
	}

	// Work on a fresh copy so a rejected update leaves the document untouched.
	var body map[string]any
	if err := json.Unmarshal(doc.raw, &body); err != nil {
		return 0, err
	}
	for field, value := range update.Set {
		normalized, err := store.Normalize(value)
		if err != nil {
			return 0, err
		}
		setPath(body, store.Path(field), normalized)
	}
	for field, delta := range update.Inc {
		current, _ := lookup(body, store.Path(field))
		n, _ := current.(float64)
		setPath(body, store.Path(field), n+float64(delta))
	}

	id, _ := body[store.IDField].(string)
	if violatesUnique(collection, s.collections[collection], id, body) {
		return 0, store.ErrDuplicate
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	doc.raw = raw
	doc.body = body
	return 1, nil
}

func (s *Store) DeleteOne(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	conds, err := compile(filter)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.first(collection, conds)
	if doc == nil {
		return 0, nil
	}
	id, _ := doc.body[store.IDField].(string)
	delete(s.collections[collection], id)
	return 1, nil
}

func (s *Store) CountDocuments(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	conds, err := compile(filter)
	if err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.match(collection, conds))), nil
}

// match returns matching documents in insertion order. Callers hold the lock.
func (s *Store) match(collection string, conds []compiled) []*document {
	var out []*document
	for _, d := range s.collections[collection] {
		if matchesAll(d.body, conds) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (s *Store) first(collection string, conds []compiled) *document {
	docs := s.match(collection, conds)
	if len(docs) == 0 {
		return nil
	}
	return docs[0]
}

type compiled struct {
	store.Condition
	path   []string
	elem   []string
	value  any
	values []any
}

func compile(filter store.Filter) ([]compiled, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	out := make([]compiled, 0, len(filter.Conditions))
	for _, c := range filter.Conditions {
		cc := compiled{Condition: c, path: store.Path(c.Field)}
		if c.Elem != "" {
			cc.elem = store.Path(c.Elem)
		}
		if c.Value != nil {
			v, err := store.Normalize(c.Value)
			if err != nil {
				return nil, err
			}
			cc.value = v
		}
		for _, raw := range c.Values {
			v, err := store.Normalize(raw)
			if err != nil {
				return nil, err
			}
			cc.values = append(cc.values, v)
		}
		out = append(out, cc)
	}
	return out, nil
}

func matchesAll(body map[string]any, conds []compiled) bool {
	for _, c := range conds {
		if !matches(body, c) {
			return false
		}
	}
	return true
}

func matches(body map[string]any, c compiled) bool {
	got, ok := lookup(body, c.path)
	switch c.Op {
	case store.OpEq:
		if c.value == nil {
			return !ok || got == nil
		}
		return ok && reflect.DeepEqual(got, c.value)
	case store.OpIn:
		return ok && containsValue(c.values, got)
	case store.OpIsNull:
		return !ok || got == nil
	case store.OpContainsFold:
		s, isString := got.(string)
		needle, _ := c.value.(string)
		return isString && strings.Contains(strings.ToLower(s), strings.ToLower(needle))
	case store.OpHasAny:
		items, isArray := got.([]any)
		if !isArray {
			return false
		}
		for _, item := range items {
			if c.elem != nil {
				obj, isObject := item.(map[string]any)
				if !isObject {
					continue
				}
				item, ok = lookup(obj, c.elem)
				if !ok {
					continue
				}
			}
			if containsValue(c.values, item) {
				return true
			}
		}
	}
	return false
}

func containsValue(values []any, v any) bool {
	for _, candidate := range values {
		if reflect.DeepEqual(candidate, v) {
			return true
		}
	}
	return false
}

func lookup(body map[string]any, path []string) (any, bool) {
	var current any = body
	for _, seg := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func setPath(body map[string]any, path []string, value any) {
	current := body
	for _, seg := range path[:len(path)-1] {
		next, ok := current[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[seg] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}

// violatesUnique reports whether body collides with another document on a
// declared unique index. Documents missing an indexed field are not indexed.
func violatesUnique(collection string, coll map[string]*document, id string, body map[string]any) bool {
	for _, idx := range store.IndexesFor(collection) {
		key, ok := indexKey(body, idx)
		if !ok {
			continue
		}
		for otherID, other := range coll {
			if otherID == id {
				continue
			}
			if otherKey, ok := indexKey(other.body, idx); ok && otherKey == key {
				return true
			}
		}
	}
	return false
}

func indexKey(body map[string]any, idx store.UniqueIndex) (string, bool) {
	parts := make([]string, len(idx.Fields))
	for i, f := range idx.Fields {
		v, ok := lookup(body, store.Path(f))
		if !ok || v == nil {
			return "", false
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		parts[i] = string(raw)
	}
	return strings.Join(parts, "\x00"), true
}

func sortDocuments(docs []*document, fields []store.SortField) {
	if len(fields) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range fields {
			a, _ := lookup(docs[i].body, store.Path(f.Field))
			b, _ := lookup(docs[j].body, store.Path(f.Field))
			c := compareValues(a, b, store.IsTimeField(f.Field))
			if c == 0 {
				continue
			}
			if f.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compareValues(a, b any, asTime bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case string:
		bv, _ := b.(string)
		if asTime {
			at, errA := time.Parse(time.RFC3339Nano, av)
			bt, errB := time.Parse(time.RFC3339Nano, bv)
			if errA == nil && errB == nil {
				return at.Compare(bt)
			}
		}
		return strings.Compare(av, bv)
	case float64:
		bv, _ := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv, _ := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	}
	return 0
}
