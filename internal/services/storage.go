package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/crypto-identifier/internal/models"
)

var (
	ErrEmptyFile    = errors.New("empty file")
	ErrFileTooLarge = errors.New("file too large")
)

// StorageService keeps the bytes of selected ciphertext files on disk until
// the owning session replaces or drops them.
type StorageService interface {
	SaveUpload(file *multipart.FileHeader) (*models.CiphertextFile, error)
	OpenLocal(path string) (*models.CiphertextFile, error)
	ReadFile(file *models.CiphertextFile) ([]byte, error)
	DeleteFile(file *models.CiphertextFile) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) SaveUpload(file *multipart.FileHeader) (*models.CiphertextFile, error) {
	if file.Size == 0 {
		return nil, ErrEmptyFile
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return nil, fmt.Errorf("%w: max %d bytes", ErrFileTooLarge, s.maxFileSize)
	}

	id := uuid.New()
	filePath := filepath.Join(s.uploadPath, fmt.Sprintf("ciphertext_%s.bin", id.String()))

	// Open source file
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &models.CiphertextFile{
		ID:        id,
		Name:      filepath.Base(file.Filename),
		Path:      filePath,
		Size:      written,
		Owned:     true,
		CreatedAt: time.Now(),
	}, nil
}

// OpenLocal wraps a file the caller already has on disk. The store never deletes it.
func (s *storageService) OpenLocal(path string) (*models.CiphertextFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, ErrEmptyFile
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return nil, fmt.Errorf("%w: max %d bytes", ErrFileTooLarge, s.maxFileSize)
	}

	return &models.CiphertextFile{
		ID:        uuid.New(),
		Name:      filepath.Base(path),
		Path:      path,
		Size:      info.Size(),
		CreatedAt: time.Now(),
	}, nil
}

func (s *storageService) ReadFile(file *models.CiphertextFile) ([]byte, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ciphertext: %w", err)
	}
	return data, nil
}

func (s *storageService) DeleteFile(file *models.CiphertextFile) error {
	if file == nil || !file.Owned {
		return nil
	}
	if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
