package dashboard

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/database"
)

type DashboardRepository interface {
	Create(ctx context.Context, dashboard *DashboardConfig) error
	Get(ctx context.Context, id string) (*DashboardConfig, error)
	FindByUserID(ctx context.Context, userID string) ([]DashboardConfig, error)
	Update(ctx context.Context, id string, dashboard *DashboardConfig) error
	Delete(ctx context.Context, id string) error
	GetDefaultByUserID(ctx context.Context, userID string) (*DashboardConfig, error)
	SetDefault(ctx context.Context, userID string, dashboardID string) error
}

// StatsRepository reads aggregate counts straight off the documents and
// approval process collections.
type StatsRepository interface {
	CountDocumentsBy(ctx context.Context, field string) ([]StatusCount, error)
	CountPending(ctx context.Context) (int64, error)
	CountArchived(ctx context.Context) (int64, error)
	CountAwaitingUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type DashboardRepositoryImpl struct {
	collection *mongo.Collection
}

func NewDashboardRepository(db *database.MongodbDB) DashboardRepository {
	return &DashboardRepositoryImpl{
		collection: db.DB.Collection("dashboards"),
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

func (r *DashboardRepositoryImpl) Create(ctx context.Context, dashboard *DashboardConfig) error {
	if dashboard.ID.IsZero() {
		dashboard.ID = primitive.NewObjectID()
	}
	dashboard.TenantID = tenantOID(ctx)
	dashboard.CreatedAt = time.Now()
	dashboard.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, dashboard)
	return err
}

func (r *DashboardRepositoryImpl) Get(ctx context.Context, id string) (*DashboardConfig, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var dashboard DashboardConfig
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&dashboard)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.New("dashboard not found")
		}
		return nil, err
	}
	return &dashboard, nil
}

func (r *DashboardRepositoryImpl) FindByUserID(ctx context.Context, userID string) ([]DashboardConfig, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"$or": []bson.M{
			{"user_id": oid},
			{"is_shared": true},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var dashboards []DashboardConfig
	if err = cursor.All(ctx, &dashboards); err != nil {
		return nil, err
	}

	return dashboards, nil
}

func (r *DashboardRepositoryImpl) Update(ctx context.Context, id string, dashboard *DashboardConfig) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	dashboard.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"name":        dashboard.Name,
			"description": dashboard.Description,
			"is_default":  dashboard.IsDefault,
			"is_shared":   dashboard.IsShared,
			"widgets":     dashboard.Widgets,
			"layout":      dashboard.Layout,
			"updated_at":  dashboard.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return errors.New("dashboard not found")
	}

	return nil
}

func (r *DashboardRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return errors.New("dashboard not found")
	}

	return nil
}

func (r *DashboardRepositoryImpl) GetDefaultByUserID(ctx context.Context, userID string) (*DashboardConfig, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, err
	}

	var dashboard DashboardConfig
	err = r.collection.FindOne(ctx, bson.M{
		"user_id":    oid,
		"is_default": true,
	}).Decode(&dashboard)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &dashboard, nil
}

func (r *DashboardRepositoryImpl) SetDefault(ctx context.Context, userID string, dashboardID string) error {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return err
	}

	dashboardOID, err := primitive.ObjectIDFromHex(dashboardID)
	if err != nil {
		return err
	}

	_, err = r.collection.UpdateMany(ctx,
		bson.M{"user_id": userOID},
		bson.M{"$set": bson.M{"is_default": false}},
	)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": dashboardOID, "user_id": userOID},
		bson.M{"$set": bson.M{"is_default": true}},
	)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return errors.New("dashboard not found or does not belong to user")
	}

	return nil
}

type StatsRepositoryImpl struct {
	documents *mongo.Collection
	processes *mongo.Collection
}

func NewStatsRepository(db *database.MongodbDB) StatsRepository {
	return &StatsRepositoryImpl{
		documents: db.DB.Collection("documents"),
		processes: db.DB.Collection("approval_processes"),
	}
}

func (r *StatsRepositoryImpl) tenantMatch(ctx context.Context) bson.M {
	match := bson.M{}
	if tenant := tenantOID(ctx); !tenant.IsZero() {
		match["tenant_id"] = tenant
	}
	return match
}

func (r *StatsRepositoryImpl) CountDocumentsBy(ctx context.Context, field string) ([]StatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: r.tenantMatch(ctx)}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$toString": "$" + field},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err := r.documents.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var counts []StatusCount
	if err = cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *StatsRepositoryImpl) CountPending(ctx context.Context) (int64, error) {
	match := r.tenantMatch(ctx)
	match["status"] = "pending"
	return r.documents.CountDocuments(ctx, match)
}

func (r *StatsRepositoryImpl) CountArchived(ctx context.Context) (int64, error) {
	match := r.tenantMatch(ctx)
	match["archived"] = true
	return r.documents.CountDocuments(ctx, match)
}

// CountAwaitingUser counts in-progress processes whose gating step names
// the user. Role-based eligibility is resolved at decision time, not
// counted here.
func (r *StatsRepositoryImpl) CountAwaitingUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.processes.CountDocuments(ctx, bson.M{
		"status": "in_progress",
		"steps": bson.M{"$elemMatch": bson.M{
			"status":             "pending",
			"required":           true,
			"required_approvers": userID,
		}},
	})
}
