package document

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/database"
)

// ListFilter narrows a document listing. Zero values mean no filtering
// on that dimension.
type ListFilter struct {
	Status       DocumentStatus
	TypeID       primitive.ObjectID
	DepartmentID primitive.ObjectID
	CategoryID   primitive.ObjectID
	AuthorID     primitive.ObjectID
	Number       string
	Archived     *bool
	Search       string
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *DocumentRecord) error
	FindByID(ctx context.Context, id string) (*DocumentRecord, error)
	FindVersions(ctx context.Context, number string) ([]DocumentRecord, error)
	List(ctx context.Context, filter ListFilter, page, limit int64) ([]DocumentRecord, int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error

	// UpdateStatus moves a document between statuses, but only when it
	// is still in the expected one. Returns false when another writer
	// got there first.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to DocumentStatus, extra map[string]interface{}) (bool, error)

	HasDocumentsOfType(ctx context.Context, typeID string) (bool, error)
	HasSuccessor(ctx context.Context, id primitive.ObjectID) (bool, error)
	FindExpired(ctx context.Context, typeID primitive.ObjectID, decidedBefore time.Time) ([]DocumentRecord, error)
	Archive(ctx context.Context, id primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type DocumentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewDocumentRepository(mongodb *database.MongodbDB) DocumentRepository {
	return &DocumentRepositoryImpl{
		Collection: mongodb.DB.Collection("documents"),
	}
}

func withTenant(ctx context.Context, base bson.M) bson.M {
	tenantID, ok := ctx.Value(common_models.TenantIDKey).(string)
	if ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			base["tenant_id"] = oid
		}
	}
	return base
}

// EnsureIndexes creates the unique (number, version) index. The index is
// partial so drafts that have not been numbered yet do not collide.
func (r *DocumentRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "number", Value: 1}, {Key: "version", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"number": bson.M{"$gt": ""}}),
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "type_id", Value: 1}},
		},
	})
	return err
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *DocumentRecord) error {
	tenantID, ok := ctx.Value(common_models.TenantIDKey).(string)
	if ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			doc.TenantID = oid
		}
	}
	_, err := r.Collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateNumber
	}
	return err
}

func (r *DocumentRepositoryImpl) FindByID(ctx context.Context, id string) (*DocumentRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var doc DocumentRecord
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) FindVersions(ctx context.Context, number string) ([]DocumentRecord, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.Collection.Find(ctx, withTenant(ctx, bson.M{"number": number}), opts)
	if err != nil {
		return nil, err
	}
	var docs []DocumentRecord
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *DocumentRepositoryImpl) List(ctx context.Context, filter ListFilter, page, limit int64) ([]DocumentRecord, int64, error) {
	query := withTenant(ctx, bson.M{})
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if !filter.TypeID.IsZero() {
		query["type_id"] = filter.TypeID
	}
	if !filter.DepartmentID.IsZero() {
		query["department_id"] = filter.DepartmentID
	}
	if !filter.CategoryID.IsZero() {
		query["category_ids"] = filter.CategoryID
	}
	if !filter.AuthorID.IsZero() {
		query["author_id"] = filter.AuthorID
	}
	if filter.Number != "" {
		query["number"] = filter.Number
	}
	if filter.Archived != nil {
		query["archived"] = *filter.Archived
	}
	if filter.Search != "" {
		query["$or"] = []bson.M{
			{"title": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"number": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.M{"updated_at": -1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	var docs []DocumentRecord
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *DocumentRepositoryImpl) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	return err
}

func (r *DocumentRepositoryImpl) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to DocumentStatus, extra map[string]interface{}) (bool, error) {
	set := bson.M{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		set[k] = v
	}
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": set},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, ErrDuplicateNumber
		}
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *DocumentRepositoryImpl) HasDocumentsOfType(ctx context.Context, typeID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(typeID)
	if err != nil {
		return false, err
	}
	count, err := r.Collection.CountDocuments(ctx, bson.M{"type_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DocumentRepositoryImpl) HasSuccessor(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.Collection.CountDocuments(ctx, bson.M{"previous_version_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *DocumentRepositoryImpl) FindExpired(ctx context.Context, typeID primitive.ObjectID, decidedBefore time.Time) ([]DocumentRecord, error) {
	query := bson.M{
		"type_id":    typeID,
		"archived":   false,
		"status":     bson.M{"$in": []DocumentStatus{StatusApproved, StatusRejected}},
		"decided_at": bson.M{"$lt": decidedBefore},
	}
	cursor, err := r.Collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	var docs []DocumentRecord
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *DocumentRepositoryImpl) Archive(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"archived":    true,
		"archived_at": now,
		"updated_at":  now,
	}})
	return err
}
