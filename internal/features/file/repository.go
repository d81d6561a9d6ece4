package file

import (
	"context"

	common_models "trackdoc/internal/common/models"
	"trackdoc/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type FileRepository interface {
	Save(ctx context.Context, file *File) error
	Get(ctx context.Context, id string) (*File, error)
	FindByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*File, error)
	CountByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id string) error
}

type FileRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewFileRepository(mongodb *database.MongodbDB) FileRepository {
	return &FileRepositoryImpl{
		Collection: mongodb.DB.Collection("files"),
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

func (r *FileRepositoryImpl) Save(ctx context.Context, file *File) error {
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	file.TenantID = tenantOID(ctx)
	_, err := r.Collection.InsertOne(ctx, file)
	return err
}

func (r *FileRepositoryImpl) Get(ctx context.Context, id string) (*File, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var file File
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid, "tenant_id": tenantOID(ctx)}).Decode(&file)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *FileRepositoryImpl) FindByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*File, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"document_id": documentID, "tenant_id": tenantOID(ctx)})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []*File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (r *FileRepositoryImpl) CountByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"document_id": documentID, "tenant_id": tenantOID(ctx)})
}

func (r *FileRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid, "tenant_id": tenantOID(ctx)})
	return err
}
