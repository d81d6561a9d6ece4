package document

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/database"
)

// CounterRepository hands out monotonically increasing sequence numbers
// per (type prefix, department, year). Each call reserves exactly one
// value, so two concurrent submissions can never see the same number.
type CounterRepository interface {
	Next(ctx context.Context, prefix, deptShortName string, year int) (int64, error)
}

type counterDoc struct {
	Seq int64 `bson:"seq"`
}

type CounterRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewCounterRepository(mongodb *database.MongodbDB) CounterRepository {
	return &CounterRepositoryImpl{
		Collection: mongodb.DB.Collection("document_counters"),
	}
}

func (r *CounterRepositoryImpl) Next(ctx context.Context, prefix, deptShortName string, year int) (int64, error) {
	filter := bson.M{
		"prefix":     prefix,
		"department": deptShortName,
		"year":       year,
	}
	if tenantID, ok := ctx.Value(common_models.TenantIDKey).(string); ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			filter["tenant_id"] = oid
		}
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter counterDoc
	err := r.Collection.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

// FormatNumber renders a document number. The sequence is padded to
// three digits and widens naturally once it passes 999.
func FormatNumber(prefix, deptShortName string, year int, seq int64) string {
	return fmt.Sprintf("%s-%s-%d-%03d", prefix, deptShortName, year, seq)
}
