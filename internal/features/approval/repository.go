package approval

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/database"
)

type ApprovalRepository interface {
	Create(ctx context.Context, process *ApprovalProcess) error
	FindByID(ctx context.Context, id string) (*ApprovalProcess, error)
	FindActiveByDocument(ctx context.Context, documentID primitive.ObjectID) (*ApprovalProcess, error)
	FindByDocument(ctx context.Context, documentID primitive.ObjectID) ([]ApprovalProcess, error)
	FindInProgress(ctx context.Context) ([]ApprovalProcess, error)

	// ApplyDecision persists a recomputed process state, but only if the
	// process is still in progress at the expected step and the step is
	// still pending. Returns false when a concurrent decision won.
	ApplyDecision(ctx context.Context, processID primitive.ObjectID, stepID string, expectedOrder int, update *ApprovalProcess) (bool, error)
}

type ApprovalRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewApprovalRepository(mongodb *database.MongodbDB) ApprovalRepository {
	return &ApprovalRepositoryImpl{
		Collection: mongodb.DB.Collection("approval_processes"),
	}
}

func (r *ApprovalRepositoryImpl) Create(ctx context.Context, process *ApprovalProcess) error {
	tenantID, ok := ctx.Value(common_models.TenantIDKey).(string)
	if ok && tenantID != "" {
		if oid, err := primitive.ObjectIDFromHex(tenantID); err == nil {
			process.TenantID = oid
		}
	}
	_, err := r.Collection.InsertOne(ctx, process)
	return err
}

func (r *ApprovalRepositoryImpl) FindByID(ctx context.Context, id string) (*ApprovalProcess, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var process ApprovalProcess
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&process)
	if err != nil {
		return nil, err
	}
	return &process, nil
}

func (r *ApprovalRepositoryImpl) FindActiveByDocument(ctx context.Context, documentID primitive.ObjectID) (*ApprovalProcess, error) {
	var process ApprovalProcess
	err := r.Collection.FindOne(ctx, bson.M{
		"document_id": documentID,
		"status":      ProcessInProgress,
	}).Decode(&process)
	if err != nil {
		return nil, err
	}
	return &process, nil
}

func (r *ApprovalRepositoryImpl) FindByDocument(ctx context.Context, documentID primitive.ObjectID) ([]ApprovalProcess, error) {
	opts := options.Find().SetSort(bson.M{"started_at": -1})
	cursor, err := r.Collection.Find(ctx, bson.M{"document_id": documentID}, opts)
	if err != nil {
		return nil, err
	}
	var processes []ApprovalProcess
	if err = cursor.All(ctx, &processes); err != nil {
		return nil, err
	}
	return processes, nil
}

func (r *ApprovalRepositoryImpl) FindInProgress(ctx context.Context) ([]ApprovalProcess, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"status": ProcessInProgress})
	if err != nil {
		return nil, err
	}
	var processes []ApprovalProcess
	if err = cursor.All(ctx, &processes); err != nil {
		return nil, err
	}
	return processes, nil
}

func (r *ApprovalRepositoryImpl) ApplyDecision(ctx context.Context, processID primitive.ObjectID, stepID string, expectedOrder int, update *ApprovalProcess) (bool, error) {
	filter := bson.M{
		"_id":           processID,
		"status":        ProcessInProgress,
		"current_order": expectedOrder,
		"steps": bson.M{"$elemMatch": bson.M{
			"id":     stepID,
			"status": StepPending,
		}},
	}
	set := bson.M{
		"steps":         update.Steps,
		"status":        update.Status,
		"current_order": update.CurrentOrder,
	}
	if update.CompletedAt != nil {
		set["completed_at"] = update.CompletedAt
	}

	res, err := r.Collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
