package department

import (
	"context"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DepartmentRepository interface {
	Create(ctx context.Context, dept *Department) error
	FindByID(ctx context.Context, id string) (*Department, error)
	FindByShortName(ctx context.Context, shortName string) (*Department, error)
	List(ctx context.Context, includeInactive bool) ([]Department, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type DepartmentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewDepartmentRepository(mongodb *database.MongodbDB) DepartmentRepository {
	return &DepartmentRepositoryImpl{
		Collection: mongodb.DB.Collection("departments"),
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

func (r *DepartmentRepositoryImpl) Create(ctx context.Context, dept *Department) error {
	tenantID, ok := ctx.Value(common_models.TenantIDKey).(string)
	if ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			dept.TenantID = oid
		}
	}
	_, err := r.Collection.InsertOne(ctx, dept)
	return err
}

func (r *DepartmentRepositoryImpl) FindByID(ctx context.Context, id string) (*Department, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var dept Department
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&dept)
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepositoryImpl) FindByShortName(ctx context.Context, shortName string) (*Department, error) {
	var dept Department
	err := r.Collection.FindOne(ctx, withTenant(ctx, bson.M{"short_name": shortName})).Decode(&dept)
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepositoryImpl) List(ctx context.Context, includeInactive bool) ([]Department, error) {
	query := withTenant(ctx, bson.M{})
	if !includeInactive {
		query["status"] = common_models.StatusActive
	}

	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var depts []Department
	if err = cursor.All(ctx, &depts); err != nil {
		return nil, err
	}
	return depts, nil
}

func (r *DepartmentRepositoryImpl) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	return err
}

func (r *DepartmentRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
