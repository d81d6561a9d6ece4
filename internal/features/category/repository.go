package category

import (
	"context"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CategoryRepository interface {
	Create(ctx context.Context, cat *Category) error
	FindByID(ctx context.Context, id string) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context, includeInactive bool) ([]Category, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type CategoryRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewCategoryRepository(mongodb *database.MongodbDB) CategoryRepository {
	return &CategoryRepositoryImpl{
		Collection: mongodb.DB.Collection("categories"),
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

func (r *CategoryRepositoryImpl) Create(ctx context.Context, cat *Category) error {
	tenantID, ok := ctx.Value(common_models.TenantIDKey).(string)
	if ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			cat.TenantID = oid
		}
	}
	_, err := r.Collection.InsertOne(ctx, cat)
	return err
}

func (r *CategoryRepositoryImpl) FindByID(ctx context.Context, id string) (*Category, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var cat Category
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&cat)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepositoryImpl) FindByName(ctx context.Context, name string) (*Category, error) {
	var cat Category
	err := r.Collection.FindOne(ctx, withTenant(ctx, bson.M{"name": name})).Decode(&cat)
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepositoryImpl) List(ctx context.Context, includeInactive bool) ([]Category, error) {
	query := withTenant(ctx, bson.M{})
	if !includeInactive {
		query["status"] = common_models.StatusActive
	}

	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var cats []Category
	if err = cursor.All(ctx, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *CategoryRepositoryImpl) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	return err
}

func (r *CategoryRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
