package service

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"quantumvision/internal/errors"
	"quantumvision/internal/model"
)

// FileKind identifies one of the files attached to a submission.
type FileKind string

const (
	FileKindVideo     FileKind = "video"
	FileKindScript    FileKind = "script"
	FileKindThumbnail FileKind = "thumbnail"
)

var allowedExtensions = map[FileKind][]string{
	FileKindVideo:     {".mp4"},
	FileKindScript:    {".pdf"},
	FileKindThumbnail: {".jpg", ".jpeg", ".png"},
}

// HH:MM:SS with hours 0-23, or MM:SS.
var durationRegex = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]:[0-5][0-9]$|^[0-5]?[0-9]:[0-5][0-9]$`)

// SubmissionValidator validates film submission metadata and files.
type SubmissionValidator struct {
	maxFileBytes int64
}

// NewSubmissionValidator creates a validator enforcing maxUploadMB per file.
func NewSubmissionValidator(maxUploadMB int) *SubmissionValidator {
	return &SubmissionValidator{maxFileBytes: int64(maxUploadMB) << 20}
}

// ValidateTitle checks the trimmed title length.
func (v *SubmissionValidator) ValidateTitle(title string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	if n < 2 || n > 100 {
		return fmt.Errorf("%w: title must be between 2 and 100 characters", errors.ErrInvalidSubmission)
	}
	return nil
}

// ValidateDescription checks the description length.
func (v *SubmissionValidator) ValidateDescription(description string) error {
	if utf8.RuneCountInString(strings.TrimSpace(description)) > 500 {
		return fmt.Errorf("%w: description cannot exceed 500 characters", errors.ErrInvalidSubmission)
	}
	return nil
}

// ValidateCategory checks the category against the festival list.
func (v *SubmissionValidator) ValidateCategory(category string) (model.Category, error) {
	c := model.Category(strings.ToLower(strings.TrimSpace(category)))
	if !c.Valid() {
		return "", errors.ErrInvalidCategory
	}
	return c, nil
}

// ValidateDuration checks the HH:MM:SS or MM:SS format.
func (v *SubmissionValidator) ValidateDuration(duration string) error {
	if !durationRegex.MatchString(strings.TrimSpace(duration)) {
		return fmt.Errorf("%w: duration must be HH:MM:SS or MM:SS", errors.ErrInvalidSubmission)
	}
	return nil
}

// ValidateFile checks extension and size and returns the lowercased extension.
func (v *SubmissionValidator) ValidateFile(kind FileKind, filename string, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, candidate := range allowedExtensions[kind] {
		if ext == candidate {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", fmt.Errorf("%w: %s must be one of %s", errors.ErrInvalidSubmission, kind, strings.Join(allowedExtensions[kind], ", "))
	}
	if size <= 0 {
		return "", fmt.Errorf("%w: %s is empty", errors.ErrInvalidSubmission, kind)
	}
	if v.maxFileBytes > 0 && size > v.maxFileBytes {
		return "", fmt.Errorf("%w: %s exceeds %d MB", errors.ErrInvalidSubmission, kind, v.maxFileBytes>>20)
	}
	return ext, nil
}
