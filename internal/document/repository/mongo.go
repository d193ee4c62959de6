package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/docuvault/docuvault/internal/document"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo is the MongoDB-backed document repository. Documents carry a
// UUID string in an "id" field rather than relying on ObjectIDs, which
// keeps identifiers opaque to clients.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// index on "id" for fast lookups (id is unique)
	idxModel := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	_, _ = col.Indexes().CreateOne(context.Background(), idxModel)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, doc *document.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	doc.ID = uuid.NewString()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	_, err := m.col.InsertOne(ctx, doc)
	return err
}

func (m *MongoRepo) FindAll(ctx context.Context) ([]*document.Document, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	var d document.Document
	err := m.col.FindOne(ctx, bson.M{"id": id}).Decode(&d)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) Update(ctx context.Context, id string, patch document.Patch) (*document.Document, error) {
	// the patch rules depend on the document type, so resolve it first
	doc, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPatch(doc, patch)
	doc.UpdatedAt = time.Now().UTC()

	set := bson.M{
		"title":       doc.Title,
		"content":     doc.Content,
		"description": doc.Description,
		"updatedAt":   doc.UpdatedAt,
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return doc, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Search matches the query as a case-insensitive substring across title,
// content, originalName and description. The query is quoted so regex
// metacharacters match literally. A non-empty typeFilter is a hard AND.
func (m *MongoRepo) Search(ctx context.Context, query string, typeFilter document.Type) ([]*document.Document, error) {
	re := bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	filter := bson.M{"$or": bson.A{
		bson.M{"title": re},
		bson.M{"content": re},
		bson.M{"originalName": re},
		bson.M{"description": re},
	}}
	if typeFilter != "" {
		filter["type"] = typeFilter
	}
	return m.find(ctx, filter)
}

func (m *MongoRepo) find(ctx context.Context, filter bson.M) ([]*document.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}
