package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "quantumvision/internal/errors"
	"quantumvision/internal/model"
)

func TestSubmissionValidator_Duration(t *testing.T) {
	v := NewSubmissionValidator(500)

	for _, ok := range []string{"00:00:01", "9:05:00", "23:59:59", "5:07", "59:59", "00:30"} {
		assert.NoError(t, v.ValidateDuration(ok), ok)
	}
	for _, bad := range []string{"24:00:00", "1:60", "60:00", "12", "aa:bb", "1:2:3", ""} {
		assert.ErrorIs(t, v.ValidateDuration(bad), apperrors.ErrInvalidSubmission, bad)
	}
}

func TestSubmissionValidator_TextFields(t *testing.T) {
	v := NewSubmissionValidator(500)

	assert.NoError(t, v.ValidateTitle("Ok"))
	assert.Error(t, v.ValidateTitle(" x "))
	assert.Error(t, v.ValidateTitle(strings.Repeat("a", 101)))
	assert.NoError(t, v.ValidateTitle(strings.Repeat("é", 100)))

	assert.NoError(t, v.ValidateDescription(""))
	assert.NoError(t, v.ValidateDescription(strings.Repeat("a", 500)))
	assert.Error(t, v.ValidateDescription(strings.Repeat("a", 501)))

	c, err := v.ValidateCategory(" AI-Identity ")
	assert.NoError(t, err)
	assert.Equal(t, model.CategoryAIIdentity, c)
	_, err = v.ValidateCategory("horror")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)
}

func TestSubmissionValidator_File(t *testing.T) {
	v := NewSubmissionValidator(1)

	ext, err := v.ValidateFile(FileKindVideo, "Trailer.MP4", 10)
	assert.NoError(t, err)
	assert.Equal(t, ".mp4", ext)

	ext, err = v.ValidateFile(FileKindThumbnail, "poster.jpeg", 10)
	assert.NoError(t, err)
	assert.Equal(t, ".jpeg", ext)

	_, err = v.ValidateFile(FileKindScript, "script.docx", 10)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSubmission)

	_, err = v.ValidateFile(FileKindVideo, "big.mp4", 2<<20)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSubmission)

	_, err = v.ValidateFile(FileKindVideo, "empty.mp4", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSubmission)
}
