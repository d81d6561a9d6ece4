package doctype

import (
	"context"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DocumentTypeRepository interface {
	Create(ctx context.Context, dt *DocumentType) error
	FindByID(ctx context.Context, id string) (*DocumentType, error)
	FindByPrefix(ctx context.Context, prefix string) (*DocumentType, error)
	List(ctx context.Context, includeInactive bool) ([]DocumentType, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type DocumentTypeRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewDocumentTypeRepository(mongodb *database.MongodbDB) DocumentTypeRepository {
	return &DocumentTypeRepositoryImpl{
		Collection: mongodb.DB.Collection("document_types"),
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

func (r *DocumentTypeRepositoryImpl) Create(ctx context.Context, dt *DocumentType) error {
	tenantID, ok := ctx.Value(common_models.TenantIDKey).(string)
	if ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			dt.TenantID = oid
		}
	}
	_, err := r.Collection.InsertOne(ctx, dt)
	return err
}

func (r *DocumentTypeRepositoryImpl) FindByID(ctx context.Context, id string) (*DocumentType, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var dt DocumentType
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&dt)
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

func (r *DocumentTypeRepositoryImpl) FindByPrefix(ctx context.Context, prefix string) (*DocumentType, error) {
	var dt DocumentType
	err := r.Collection.FindOne(ctx, withTenant(ctx, bson.M{"prefix": prefix})).Decode(&dt)
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

func (r *DocumentTypeRepositoryImpl) List(ctx context.Context, includeInactive bool) ([]DocumentType, error) {
	query := withTenant(ctx, bson.M{})
	if !includeInactive {
		query["status"] = common_models.StatusActive
	}

	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var types []DocumentType
	if err = cursor.All(ctx, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (r *DocumentTypeRepositoryImpl) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	return err
}

func (r *DocumentTypeRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
