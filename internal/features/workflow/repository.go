package workflow

import (
	"context"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WorkflowRepository interface {
	Create(ctx context.Context, wf *WorkflowDefinition) error
	FindByID(ctx context.Context, id string) (*WorkflowDefinition, error)
	FindActiveByType(ctx context.Context, typeID primitive.ObjectID) ([]WorkflowDefinition, error)
	List(ctx context.Context) ([]WorkflowDefinition, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type WorkflowRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewWorkflowRepository(mongodb *database.MongodbDB) WorkflowRepository {
	return &WorkflowRepositoryImpl{
		Collection: mongodb.DB.Collection("workflows"),
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

func (r *WorkflowRepositoryImpl) Create(ctx context.Context, wf *WorkflowDefinition) error {
	tenantID, ok := ctx.Value(common_models.TenantIDKey).(string)
	if ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			wf.TenantID = oid
		}
	}
	_, err := r.Collection.InsertOne(ctx, wf)
	return err
}

func (r *WorkflowRepositoryImpl) FindByID(ctx context.Context, id string) (*WorkflowDefinition, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var wf WorkflowDefinition
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&wf)
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

// FindActiveByType returns active definitions covering the given type,
// oldest first so resolution ties break deterministically.
func (r *WorkflowRepositoryImpl) FindActiveByType(ctx context.Context, typeID primitive.ObjectID) ([]WorkflowDefinition, error) {
	query := withTenant(ctx, bson.M{
		"active":            true,
		"document_type_ids": typeID,
	})
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var wfs []WorkflowDefinition
	if err = cursor.All(ctx, &wfs); err != nil {
		return nil, err
	}
	return wfs, nil
}

func (r *WorkflowRepositoryImpl) List(ctx context.Context) ([]WorkflowDefinition, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.Collection.Find(ctx, withTenant(ctx, bson.M{}), opts)
	if err != nil {
		return nil, err
	}
	var wfs []WorkflowDefinition
	if err = cursor.All(ctx, &wfs); err != nil {
		return nil, err
	}
	return wfs, nil
}

func (r *WorkflowRepositoryImpl) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	return err
}

func (r *WorkflowRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
