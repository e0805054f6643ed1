package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quantumvision/internal/model"
	"quantumvision/internal/repository"
	"quantumvision/internal/testutil"
)

func newTestStore(t *testing.T) (repository.Store, *gorm.DB) {
	t.Helper()
	gdb := testutil.NewDB(t)
	return repository.NewStore(gdb), gdb
}

func createUser(t *testing.T, gdb *gorm.DB, mutate func(u *model.User)) *model.User {
	t.Helper()
	id := uuid.New()
	user := &model.User{
		ID:           id,
		Username:     "voter-" + id.String()[:8],
		Email:        id.String()[:8] + "@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
		Votes:        10,
		Level:        1,
		Badges:       []model.Badge{},
	}
	if mutate != nil {
		mutate(user)
	}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func createVideo(t *testing.T, gdb *gorm.DB, uploader uuid.UUID, mutate func(v *model.Video)) *model.Video {
	t.Helper()
	video := &model.Video{
		Title:      "Film " + uuid.NewString()[:6],
		Category:   model.CategoryNarrative,
		Duration:   "12:30",
		VideoPath:  "videos/film.mp4",
		ScriptPath: "scripts/film.pdf",
		UploaderID: uploader,
		Status:     model.VideoStatusApproved,
		CreatedAt:  time.Now(),
	}
	if mutate != nil {
		mutate(video)
	}
	require.NoError(t, gdb.Create(video).Error)
	return video
}

func reloadUser(t *testing.T, gdb *gorm.DB, id uuid.UUID) *model.User {
	t.Helper()
	var user model.User
	require.NoError(t, gdb.Where("id = ?", id).First(&user).Error)
	return &user
}

func reloadVideo(t *testing.T, gdb *gorm.DB, id uuid.UUID) *model.Video {
	t.Helper()
	var video model.Video
	require.NoError(t, gdb.Where("id = ?", id).First(&video).Error)
	return &video
}
