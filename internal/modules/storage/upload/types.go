package upload

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

const (
	TypeImage = "image"
	TypeVideo = "video"
)

var allowedExtensions = map[string]map[string]struct{}{
	TypeImage: set(".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"),
	TypeVideo: set(".mp4", ".webm", ".ogg", ".mov", ".avi"),
}

var (
	ErrInvalidType = errors.New("file_type must be 'image' or 'video'")
	ErrInvalidURL  = errors.New("Invalid file URL")
	ErrTooLarge    = errors.New("File too large")
)

// ExtensionError reports a file name whose extension is not allowed for the
// declared type.
type ExtensionError struct {
	FileType string
}

func (e *ExtensionError) Error() string {
	exts := make([]string, 0, len(allowedExtensions[e.FileType]))
	for ext := range allowedExtensions[e.FileType] {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return fmt.Sprintf("Invalid %s file. Allowed: %s", e.FileType, strings.Join(exts, ", "))
}

// Result is returned after a successful upload.
type Result struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// checkExtension returns the lowercased extension of name when it is allowed
// for fileType.
func checkExtension(fileType, name string) (string, error) {
	allowed, ok := allowedExtensions[fileType]
	if !ok {
		return "", ErrInvalidType
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowed[ext]; !ok {
		return "", &ExtensionError{FileType: fileType}
	}
	return ext, nil
}

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}
