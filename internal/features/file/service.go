package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	maxFileSizeBytes   = int64(20) << 20
	maxFilesPerDoc     = 20
	defaultStorageType = "local"
)

var allowedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".png": true, ".jpg": true, ".jpeg": true, ".txt": true, ".csv": true,
	".odt": true, ".ods": true,
}

type FileService interface {
	GetFilesByDocument(ctx context.Context, documentID string) ([]*File, error)
	GetFile(ctx context.Context, fileID string) (*File, error)
	DeleteFile(ctx context.Context, fileID string, userID primitive.ObjectID) error
	ValidateUpload(ctx context.Context, documentID string, filename string, fileSize int64) error
	SaveFile(ctx context.Context, file *File) error
}

type FileServiceImpl struct {
	FileRepo FileRepository
}

func NewFileService(fileRepo FileRepository) FileService {
	return &FileServiceImpl{FileRepo: fileRepo}
}

func (s *FileServiceImpl) GetFilesByDocument(ctx context.Context, documentID string) ([]*File, error) {
	oid, err := primitive.ObjectIDFromHex(documentID)
	if err != nil {
		return nil, fmt.Errorf("invalid document id: %w", err)
	}
	return s.FileRepo.FindByDocument(ctx, oid)
}

func (s *FileServiceImpl) GetFile(ctx context.Context, fileID string) (*File, error) {
	return s.FileRepo.Get(ctx, fileID)
}

func (s *FileServiceImpl) SaveFile(ctx context.Context, file *File) error {
	if file.StorageType == "" {
		file.StorageType = defaultStorageType
	}
	return s.FileRepo.Save(ctx, file)
}

func (s *FileServiceImpl) DeleteFile(ctx context.Context, fileID string, userID primitive.ObjectID) error {
	file, err := s.FileRepo.Get(ctx, fileID)
	if err != nil {
		return fmt.Errorf("file not found: %w", err)
	}

	if file.UploadedBy != userID {
		return fmt.Errorf("unauthorized: you can only delete your own files")
	}

	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file from disk: %w", err)
	}

	return s.FileRepo.Delete(ctx, fileID)
}

func (s *FileServiceImpl) ValidateUpload(ctx context.Context, documentID string, filename string, fileSize int64) error {
	if fileSize > maxFileSizeBytes {
		return fmt.Errorf("file too large (max %dMB)", maxFileSizeBytes>>20)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("file type not allowed: %s", ext)
	}

	if documentID != "" {
		oid, err := primitive.ObjectIDFromHex(documentID)
		if err != nil {
			return fmt.Errorf("invalid document id: %w", err)
		}
		count, err := s.FileRepo.CountByDocument(ctx, oid)
		if err != nil {
			return fmt.Errorf("failed to check file count: %w", err)
		}
		if count >= maxFilesPerDoc {
			return fmt.Errorf("maximum files per document reached (%d)", maxFilesPerDoc)
		}
	}

	return nil
}
