package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoDocID is the fixed _id under which the whole document is stored; the
// collection only ever holds this one entry.
const mongoDocID = "document"

// MongoStore persists the document as a single MongoDB document replaced
// wholesale on every mutation. ReplaceOne is atomic per document, which gives
// the same no-torn-writes guarantee as the file store's rename.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore creates a store over the given collection. Caller owns the
// client lifecycle.
func NewMongoStore(col *mongo.Collection) *MongoStore {
	return &MongoStore{col: col}
}

type mongoEnvelope struct {
	ID  string   `bson:"_id"`
	Doc Document `bson:"doc"`
}

func (m *MongoStore) Load(ctx context.Context) (*Document, error) {
	var env mongoEnvelope
	err := m.col.FindOne(ctx, bson.M{"_id": mongoDocID}).Decode(&env)
	if err == mongo.ErrNoDocuments {
		doc := NewDocument()
		if perr := m.Persist(ctx, doc); perr != nil {
			return nil, perr
		}
		return doc, nil
	}
	if err != nil {
		return nil, unavailable("load document", err)
	}
	env.Doc.Normalize()
	return &env.Doc, nil
}

func (m *MongoStore) Persist(ctx context.Context, doc *Document) error {
	env := mongoEnvelope{ID: mongoDocID, Doc: *doc}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.col.ReplaceOne(ctx, bson.M{"_id": mongoDocID}, env, opts); err != nil {
		return unavailable("persist document", err)
	}
	return nil
}
