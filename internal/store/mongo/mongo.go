// Package mongo implements the document store on MongoDB collections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go-recruiting-platform/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Store struct {
	db *mongo.Database
}

var _ store.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// EnsureIndexes creates the declared unique indexes. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, idx := range store.UniqueIndexes {
		keys := bson.D{}
		for _, f := range idx.Fields {
			keys = append(keys, bson.E{Key: fieldName(f), Value: 1})
		}
		model := mongo.IndexModel{
			Keys:    keys,
			Options: options.Index().SetUnique(true).SetName(idx.Name),
		}
		if _, err := s.db.Collection(idx.Collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("mongo: create index %s: %w", idx.Name, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *Store) Find(ctx context.Context, collection string, filter store.Filter, opts store.FindOptions, out any) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	query, err := toBSON(filter)
	if err != nil {
		return err
	}

	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(sortDoc(opts.Sort))
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := s.db.Collection(collection).Find(ctx, query, findOpts)
	if err != nil {
		return fmt.Errorf("mongo: find %s: %w", collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("mongo: decode %s: %w", collection, err)
	}
	return nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter, out any) error {
	query, err := toBSON(filter)
	if err != nil {
		return err
	}
	err = s.db.Collection(collection).FindOne(ctx, query).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNoDocument
	}
	if err != nil {
		return fmt.Errorf("mongo: find one %s: %w", collection, err)
	}
	return nil
}

func (s *Store) InsertOne(ctx context.Context, collection string, doc any) error {
	if _, _, err := store.Encode(doc); err != nil {
		return err
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return translate(collection, "insert", err)
	}
	return nil
}

func (s *Store) UpdateOne(ctx context.Context, collection string, filter store.Filter, update store.Update) (int64, error) {
	if err := update.Validate(); err != nil {
		return 0, err
	}
	query, err := toBSON(filter)
	if err != nil {
		return 0, err
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, query, toUpdate(update))
	if err != nil {
		return 0, translate(collection, "update", err)
	}
	return res.MatchedCount, nil
}

func (s *Store) DeleteOne(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	query, err := toBSON(filter)
	if err != nil {
		return 0, err
	}
	res, err := s.db.Collection(collection).DeleteOne(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("mongo: delete %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

func (s *Store) CountDocuments(ctx context.Context, collection string, filter store.Filter) (int64, error) {
	query, err := toBSON(filter)
	if err != nil {
		return 0, err
	}
	n, err := s.db.Collection(collection).CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("mongo: count %s: %w", collection, err)
	}
	return n, nil
}

func translate(collection, op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return store.ErrDuplicate
	}
	return fmt.Errorf("mongo: %s %s: %w", op, collection, err)
}

// fieldName maps the logical id onto Mongo's primary key.
func fieldName(field string) string {
	if field == store.IDField {
		return "_id"
	}
	return field
}

func toBSON(filter store.Filter) (bson.D, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if len(filter.Conditions) == 0 {
		return bson.D{}, nil
	}
	clauses := bson.A{}
	for _, c := range filter.Conditions {
		clauses = append(clauses, condition(c))
	}
	return bson.D{{Key: "$and", Value: clauses}}, nil
}

func condition(c store.Condition) bson.D {
	field := fieldName(c.Field)
	switch c.Op {
	case store.OpEq:
		return bson.D{{Key: field, Value: c.Value}}
	case store.OpIn:
		return bson.D{{Key: field, Value: bson.D{{Key: "$in", Value: values(c.Values)}}}}
	case store.OpIsNull:
		return bson.D{{Key: field, Value: nil}}
	case store.OpContainsFold:
		needle, _ := c.Value.(string)
		return bson.D{{Key: field, Value: primitive.Regex{Pattern: regexp.QuoteMeta(needle), Options: "i"}}}
	case store.OpHasAny:
		if c.Elem != "" {
			field += "." + c.Elem
		}
		return bson.D{{Key: field, Value: bson.D{{Key: "$in", Value: values(c.Values)}}}}
	}
	// Validate has already rejected unknown operators.
	return bson.D{}
}

func values(vs []any) bson.A {
	out := make(bson.A, len(vs))
	copy(out, vs)
	return out
}

func toUpdate(update store.Update) bson.D {
	doc := bson.D{}
	if len(update.Set) > 0 {
		set := bson.M{}
		for k, v := range update.Set {
			set[fieldName(k)] = v
		}
		doc = append(doc, bson.E{Key: "$set", Value: set})
	}
	if len(update.Inc) > 0 {
		inc := bson.M{}
		for k, v := range update.Inc {
			inc[fieldName(k)] = v
		}
		doc = append(doc, bson.E{Key: "$inc", Value: inc})
	}
	return doc
}

func sortDoc(fields []store.SortField) bson.D {
	doc := bson.D{}
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		doc = append(doc, bson.E{Key: fieldName(f.Field), Value: dir})
	}
	return doc
}
