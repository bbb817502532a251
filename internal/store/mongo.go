package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Dias221467/MemoMe/internal/apperrors"
)

// Bookkeeping fields added to every stored document.
const (
	fieldID        = "_id"
	fieldNamespace = "_ns"
	fieldKey       = "_key"
)

var allCollections = []string{
	UsersCollection,
	CredentialsCollection,
	NotesCollection,
	CareCollection,
	RemindersCollection,
}

// MongoStore maps each Path collection onto a MongoDB collection. Namespaces
// share the collection and are told apart by the _ns field; the document _id
// is "<namespace>|<key>" so keys only need to be unique per namespace.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore wraps an already connected database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// EnsureIndexes creates the namespace index on every collection.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	for _, name := range allCollections {
		_, err := s.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: fieldNamespace, Value: 1}, {Key: fieldKey, Value: 1}},
		})
		if err != nil {
			return apperrors.Unavailable("create index on "+name, err)
		}
	}
	logrus.Info("MongoDB indexes ensured")
	return nil
}

func docID(p Path, key string) string {
	return p.Namespace + "|" + key
}

func (s *MongoStore) coll(p Path) *mongo.Collection {
	return s.db.Collection(p.Collection)
}

func (s *MongoStore) Get(ctx context.Context, p Path, key string) (bson.M, error) {
	var doc bson.M
	err := s.coll(p).FindOne(ctx, bson.M{fieldID: docID(p, key)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s/%s: %w", p, key, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, apperrors.Unavailable("get "+p.String(), err)
	}
	return stripBookkeeping(doc), nil
}

func (s *MongoStore) List(ctx context.Context, p Path) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: fieldKey, Value: 1}})
	cursor, err := s.coll(p).Find(ctx, bson.M{fieldNamespace: p.Namespace}, opts)
	if err != nil {
		return nil, apperrors.Unavailable("list "+p.String(), err)
	}
	defer cursor.Close(ctx)

	var records []Record
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		key, _ := doc[fieldKey].(string)
		records = append(records, Record{Key: key, Data: stripBookkeeping(doc)})
	}
	if err := cursor.Err(); err != nil {
		return nil, apperrors.Unavailable("list "+p.String(), err)
	}
	return records, nil
}

func (s *MongoStore) Count(ctx context.Context, p Path) (int64, error) {
	n, err := s.coll(p).CountDocuments(ctx, bson.M{fieldNamespace: p.Namespace})
	if err != nil {
		return 0, apperrors.Unavailable("count "+p.String(), err)
	}
	return n, nil
}

func (s *MongoStore) Add(ctx context.Context, p Path, doc bson.M) (string, error) {
	key := primitive.NewObjectID().Hex()
	_, err := s.coll(p).InsertOne(ctx, withBookkeeping(p, key, doc))
	if err != nil {
		logrus.WithError(err).WithField("path", p.String()).Error("Failed to insert document")
		return "", apperrors.Unavailable("add "+p.String(), err)
	}
	return key, nil
}

func (s *MongoStore) Set(ctx context.Context, p Path, key string, doc bson.M) error {
	_, err := s.coll(p).ReplaceOne(ctx,
		bson.M{fieldID: docID(p, key)},
		withBookkeeping(p, key, doc),
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		logrus.WithError(err).WithField("path", p.String()).Error("Failed to upsert document")
		return apperrors.Unavailable("set "+p.String(), err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, p Path, key string, doc bson.M) error {
	_, err := s.coll(p).InsertOne(ctx, withBookkeeping(p, key, doc))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("create %s: %w", p.String(), apperrors.ErrAlreadyExists)
	}
	if err != nil {
		logrus.WithError(err).WithField("path", p.String()).Error("Failed to insert document")
		return apperrors.Unavailable("create "+p.String(), err)
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, p Path, key string, fields bson.M) error {
	set := bson.M{}
	for k, v := range fields {
		if k == fieldID || k == fieldNamespace || k == fieldKey {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		return nil
	}

	result, err := s.coll(p).UpdateOne(ctx, bson.M{fieldID: docID(p, key)}, bson.M{"$set": set})
	if err != nil {
		logrus.WithError(err).WithField("path", p.String()).Error("Failed to update document")
		return apperrors.Unavailable("update "+p.String(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", p, key, apperrors.ErrNotFound)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, p Path, key string) error {
	result, err := s.coll(p).DeleteOne(ctx, bson.M{fieldID: docID(p, key)})
	if err != nil {
		logrus.WithError(err).WithField("path", p.String()).Error("Failed to delete document")
		return apperrors.Unavailable("delete "+p.String(), err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%s/%s: %w", p, key, apperrors.ErrNotFound)
	}
	return nil
}

// Watch needs a replica set: change streams are not available on a
// standalone mongod.
func (s *MongoStore) Watch(ctx context.Context, p Path, fn SnapshotFunc) (Subscription, error) {
	watchCtx, cancel := context.WithCancel(ctx)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"documentKey._id": bson.M{"$regex": "^" + regexp.QuoteMeta(p.Namespace) + `\|`},
		}}},
	}
	stream, err := s.coll(p).Watch(watchCtx, pipeline)
	if err != nil {
		cancel()
		return nil, apperrors.Unavailable("watch "+p.String(), err)
	}

	w := newWatcher(p, func() ([]Record, error) { return s.List(watchCtx, p) }, fn)
	w.onCancel = cancel
	w.goTracked(func() {
		defer stream.Close(context.Background())
		for stream.Next(watchCtx) {
			w.notify()
		}
		if err := stream.Err(); err != nil && watchCtx.Err() == nil {
			logrus.WithFields(logrus.Fields{
				"path":  p.String(),
				"error": err,
			}).Error("Change stream terminated")
		}
	})
	w.start()
	return w, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func withBookkeeping(p Path, key string, doc bson.M) bson.M {
	out := make(bson.M, len(doc)+3)
	for k, v := range doc {
		out[k] = v
	}
	out[fieldID] = docID(p, key)
	out[fieldNamespace] = p.Namespace
	out[fieldKey] = key
	return out
}

func stripBookkeeping(doc bson.M) bson.M {
	delete(doc, fieldID)
	delete(doc, fieldNamespace)
	delete(doc, fieldKey)
	return doc
}
