package report

import (
	"context"
	"time"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/database"
	"trackdoc/internal/features/approval"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context) ([]Report, error)
	Update(ctx context.Context, id string, report *Report) error
	Delete(ctx context.Context, id string) error

	RegisterRows(ctx context.Context, filter ReportFilter) ([]RegisterRow, error)
	ProductivityRows(ctx context.Context, filter ReportFilter) ([]ProductivityRow, error)
	CompletedProcesses(ctx context.Context, filter ReportFilter) ([]approval.ApprovalProcess, error)
}

type ReportRepositoryImpl struct {
	Collection *mongo.Collection
	Documents  *mongo.Collection
	Processes  *mongo.Collection
}

func NewReportRepository(mongodb *database.MongodbDB) ReportRepository {
	return &ReportRepositoryImpl{
		Collection: mongodb.DB.Collection("reports"),
		Documents:  mongodb.DB.Collection("documents"),
		Processes:  mongodb.DB.Collection("approval_processes"),
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

func (r *ReportRepositoryImpl) Create(ctx context.Context, report *Report) error {
	report.TenantID = tenantOID(ctx)
	report.CreatedAt = time.Now()
	report.UpdatedAt = report.CreatedAt
	result, err := r.Collection.InsertOne(ctx, report)
	if err != nil {
		return err
	}
	report.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ReportRepositoryImpl) Get(ctx context.Context, id string) (*Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var report Report
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid, "tenant_id": tenantOID(ctx)}).Decode(&report)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepositoryImpl) List(ctx context.Context) ([]Report, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"tenant_id": tenantOID(ctx)},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepositoryImpl) Update(ctx context.Context, id string, report *Report) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	report.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":        report.Name,
			"description": report.Description,
			"report_type": report.ReportType,
			"filter":      report.Filter,
			"updated_at":  report.UpdatedAt,
			"updated_by":  report.UpdatedBy,
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid, "tenant_id": tenantOID(ctx)}, update)
	return err
}

func (r *ReportRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid, "tenant_id": tenantOID(ctx)})
	return err
}

func (f ReportFilter) documentMatch(tenant primitive.ObjectID) bson.M {
	match := bson.M{"tenant_id": tenant}
	if !f.DepartmentID.IsZero() {
		match["department_id"] = f.DepartmentID
	}
	if !f.TypeID.IsZero() {
		match["type_id"] = f.TypeID
	}
	if f.Status != "" {
		match["status"] = f.Status
	}
	if f.From != nil || f.To != nil {
		created := bson.M{}
		if f.From != nil {
			created["$gte"] = *f.From
		}
		if f.To != nil {
			created["$lt"] = *f.To
		}
		match["created_at"] = created
	}
	return match
}

func (r *ReportRepositoryImpl) RegisterRows(ctx context.Context, filter ReportFilter) ([]RegisterRow, error) {
	match := filter.documentMatch(tenantOID(ctx))
	match["number"] = bson.M{"$gt": ""}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from": "document_types", "localField": "type_id",
			"foreignField": "_id", "as": "doc_type",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "departments", "localField": "department_id",
			"foreignField": "_id", "as": "department",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "users", "localField": "author_id",
			"foreignField": "_id", "as": "author",
		}}},
		{{Key: "$project", Value: bson.M{
			"number": 1, "title": 1, "version": 1, "status": 1,
			"created_at": 1, "submitted_at": 1, "decided_at": 1,
			"type_name":       bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$doc_type.name", 0}}, ""}},
			"department_name": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$department.name", 0}}, ""}},
			"author_name":     bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$author.username", 0}}, ""}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "number", Value: 1}, {Key: "version", Value: 1}}}},
	}

	cursor, err := r.Documents.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []RegisterRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepositoryImpl) ProductivityRows(ctx context.Context, filter ReportFilter) ([]ProductivityRow, error) {
	match := filter.documentMatch(tenantOID(ctx))

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"author_id": "$author_id", "department_id": "$department_id"},
			"created": bson.M{"$sum": 1},
			"approved": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", "approved"}}, 1, 0}}},
			"rejected": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$status", "rejected"}}, 1, 0}}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "users", "localField": "_id.author_id",
			"foreignField": "_id", "as": "author",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "departments", "localField": "_id.department_id",
			"foreignField": "_id", "as": "department",
		}}},
		{{Key: "$project", Value: bson.M{
			"created": 1, "approved": 1, "rejected": 1,
			"author_name":     bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$author.username", 0}}, ""}},
			"department_name": bson.M{"$ifNull": bson.A{bson.M{"$arrayElemAt": bson.A{"$department.name", 0}}, ""}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "created", Value: -1}}}},
	}

	cursor, err := r.Documents.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []ProductivityRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepositoryImpl) CompletedProcesses(ctx context.Context, filter ReportFilter) ([]approval.ApprovalProcess, error) {
	match := bson.M{
		"tenant_id": tenantOID(ctx),
		"status":    bson.M{"$in": bson.A{approval.ProcessApproved, approval.ProcessRejected}},
	}
	if filter.From != nil || filter.To != nil {
		completed := bson.M{}
		if filter.From != nil {
			completed["$gte"] = *filter.From
		}
		if filter.To != nil {
			completed["$lt"] = *filter.To
		}
		match["completed_at"] = completed
	}

	cursor, err := r.Processes.Find(ctx, match,
		options.Find().SetSort(bson.D{{Key: "completed_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var processes []approval.ApprovalProcess
	if err := cursor.All(ctx, &processes); err != nil {
		return nil, err
	}
	return processes, nil
}
