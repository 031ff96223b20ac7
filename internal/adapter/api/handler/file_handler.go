package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"giveget/internal/domain/service"
	"giveget/internal/infrastructure/storage"
	"giveget/pkg/errors"
	"giveget/pkg/logger"
	"giveget/pkg/response"
)

var photoFolders = map[string]bool{
	"posts":    true,
	"profiles": true,
}

type FileHandler struct {
	fileService service.FileUploadService
	maxFileSize int64
}

var fileHandler *FileHandler

func NewFileHandler(fileService service.FileUploadService, maxFileSize int64) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		maxFileSize: maxFileSize,
	}
}

func SetupFileHandler(fileService service.FileUploadService, maxFileSize int64) {
	fileHandler = NewFileHandler(fileService, maxFileSize)
}

func GetFileHandler() *FileHandler {
	return fileHandler
}

// UploadPhoto stores an image and returns its URL for use as a post or
// profile photo.
func (h *FileHandler) UploadPhoto(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.Validation("Missing or invalid file", err))
	}

	logger.Debug("Received photo %s, size: %d bytes, type: %s", file.Filename, file.Size, file.Header.Get("Content-Type"))

	if file.Size > h.maxFileSize {
		return response.Error(c, errors.Validation(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", h.maxFileSize/(1024*1024)), nil))
	}

	fileType := file.Header.Get("Content-Type")
	if !storage.IsAllowedImageType(fileType) {
		return response.Error(c, errors.Validation("File type not supported", nil))
	}

	folder := c.FormValue("folder")
	if folder == "" {
		folder = "posts"
	}
	if !photoFolders[folder] {
		return response.Error(c, errors.Validation("folder must be one of: posts profiles", nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.Unknown(err))
	}
	defer src.Close()

	url, err := h.fileService.UploadFile(c.Request().Context(), src, file.Size, fileType, folder)
	if err != nil {
		logger.Error("Photo upload for %s failed: %v", identityFrom(c).UID, err)
		return response.Error(c, errors.RemoteUnavailable("Failed to upload photo", err))
	}

	return response.Created(c, map[string]interface{}{
		"url":    url,
		"folder": folder,
		"size":   file.Size,
	})
}
