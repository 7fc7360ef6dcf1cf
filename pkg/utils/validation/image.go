package validation

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrFileSize     = errors.New("file size exceeds limit of 10MB")
	ErrFileType     = errors.New("invalid file type. Allowed types: JPG, PNG, WEBP")
	ErrFileRequired = errors.New("no file provided")
	ErrImportType   = errors.New("invalid file type. Allowed types: CSV, XLSX")
)

const MaxFileSize = 10 * 1024 * 1024 // 10MB

var (
	allowedImageExt = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
	}
	allowedImportExt = map[string]bool{
		".csv":  true,
		".xlsx": true,
	}
)

// ValidateImage mülk fotoğrafının boyut ve uzantısını kontrol eder
func ValidateImage(file *multipart.FileHeader) error {
	return validateFile(file, allowedImageExt, ErrFileType)
}

// ValidateImportFile checks an uploaded spreadsheet before it is parsed.
func ValidateImportFile(file *multipart.FileHeader) error {
	return validateFile(file, allowedImportExt, ErrImportType)
}

func validateFile(file *multipart.FileHeader, allowed map[string]bool, typeErr error) error {
	if file == nil {
		return ErrFileRequired
	}
	if file.Size > MaxFileSize {
		return ErrFileSize
	}
	if !allowed[strings.ToLower(filepath.Ext(file.Filename))] {
		return typeErr
	}
	return nil
}
