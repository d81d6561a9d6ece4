package warehouse

import (
	"context"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ExportLogRepository interface {
	Create(ctx context.Context, log *ExportLog) error
	Update(ctx context.Context, log *ExportLog) error
	List(ctx context.Context, limit int64) ([]ExportLog, error)
}

type ExportLogRepositoryImpl struct {
	collection *mongo.Collection
}

func NewExportLogRepository(mongodb *database.MongodbDB) ExportLogRepository {
	return &ExportLogRepositoryImpl{
		collection: mongodb.DB.Collection("warehouse_export_logs"),
	}
}

func tenantOID(ctx context.Context) primitive.ObjectID {
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			return oid
		}
	}
	return primitive.NilObjectID
}

func (r *ExportLogRepositoryImpl) Create(ctx context.Context, log *ExportLog) error {
	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}
	log.TenantID = tenantOID(ctx)
	_, err := r.collection.InsertOne(ctx, log)
	return err
}

func (r *ExportLogRepositoryImpl) Update(ctx context.Context, log *ExportLog) error {
	_, err := r.collection.UpdateByID(ctx, log.ID, bson.M{"$set": bson.M{
		"end_time":        log.EndTime,
		"status":          log.Status,
		"processed_count": log.ProcessedCount,
		"error":           log.Error,
	}})
	return err
}

func (r *ExportLogRepositoryImpl) List(ctx context.Context, limit int64) ([]ExportLog, error) {
	if limit <= 0 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.M{"start_time": -1}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{"tenant_id": tenantOID(ctx)}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []ExportLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
