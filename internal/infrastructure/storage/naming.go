package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// IsAllowedImageType reports whether a photo of this content type is accepted.
func IsAllowedImageType(fileType string) bool {
	_, ok := allowedImageTypes[fileType]
	return ok
}

// objectName builds public/<folder>/<uuid>-<timestamp><ext>.
func objectName(folder, fileType string) string {
	folder = strings.Trim(folder, "/")
	if !strings.HasPrefix(folder, "public/") {
		folder = "public/" + folder
	}

	ext, ok := allowedImageTypes[fileType]
	if !ok {
		ext = ".bin"
	}

	return fmt.Sprintf("%s/%s-%s%s", folder, uuid.New().String(), time.Now().Format("20060102150405"), ext)
}
