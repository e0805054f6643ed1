package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quantumvision/internal/auth"
	apperrors "quantumvision/internal/errors"
	"quantumvision/internal/model"
	"quantumvision/internal/repository"
	"quantumvision/internal/storage"
)

func newTestVideoService(t *testing.T) (VideoService, repository.Store, *gorm.DB, *storage.LocalStorage) {
	t.Helper()
	store, gdb := newTestStore(t)
	files, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)
	return NewVideoService(store, files, nil, NewSubmissionValidator(1)), store, gdb, files
}

func file(name, body string) *FileUpload {
	return &FileUpload{Filename: name, Size: int64(len(body)), Reader: strings.NewReader(body)}
}

func validUpload() UploadInput {
	return UploadInput{
		Title:       "  Neon Requiem ",
		Description: "A city that forgot how to sleep.",
		Category:    "dystopian",
		Duration:    "01:12:09",
		Video:       file("cut.MP4", "frames"),
		Script:      file("script.pdf", "%PDF"),
	}
}

func storedFileExists(files *storage.LocalStorage, rel string) bool {
	_, err := os.Stat(filepath.Join(files.Root(), filepath.FromSlash(rel)))
	return err == nil
}

func TestVideoService_Upload(t *testing.T) {
	svc, _, gdb, files := newTestVideoService(t)
	agent := createUser(t, gdb, func(u *model.User) { u.Role = model.RoleAgent })
	session := &auth.Session{UserID: agent.ID, Role: string(model.RoleAgent)}

	video, err := svc.Upload(context.Background(), session, validUpload())
	require.NoError(t, err)

	assert.Equal(t, "Neon Requiem", video.Title)
	assert.Equal(t, model.CategoryDystopian, video.Category)
	assert.Equal(t, model.VideoStatusPending, video.Status)
	assert.Equal(t, agent.ID, video.UploaderID)
	assert.Equal(t, model.DefaultThumbnail, video.ThumbnailURL)
	assert.True(t, strings.HasPrefix(video.VideoURL, "/uploads/videos/"))
	assert.True(t, strings.HasSuffix(video.VideoURL, ".mp4"))
	assert.True(t, storedFileExists(files, video.VideoPath))
	assert.True(t, storedFileExists(files, video.ScriptPath))

	stored := reloadVideo(t, gdb, video.ID)
	assert.Equal(t, video.VideoPath, stored.VideoPath)
}

func TestVideoService_UploadRejections(t *testing.T) {
	svc, _, gdb, files := newTestVideoService(t)
	agent := createUser(t, gdb, func(u *model.User) { u.Role = model.RoleAgent })
	agentSession := &auth.Session{UserID: agent.ID, Role: string(model.RoleAgent)}

	_, err := svc.Upload(context.Background(), &auth.Session{UserID: agent.ID, Role: string(model.RoleUser)}, validUpload())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	tests := []struct {
		name   string
		mutate func(in *UploadInput)
		want   error
	}{
		{"short title", func(in *UploadInput) { in.Title = "A" }, apperrors.ErrInvalidSubmission},
		{"bad duration", func(in *UploadInput) { in.Duration = "24:00:00" }, apperrors.ErrInvalidSubmission},
		{"unknown category", func(in *UploadInput) { in.Category = "horror" }, apperrors.ErrInvalidCategory},
		{"missing script", func(in *UploadInput) { in.Script = nil }, apperrors.ErrInvalidSubmission},
		{"wrong video type", func(in *UploadInput) { in.Video = file("cut.avi", "x") }, apperrors.ErrInvalidSubmission},
		{"bad thumbnail after saved files", func(in *UploadInput) { in.Thumbnail = file("thumb.gif", "x") }, apperrors.ErrInvalidSubmission},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validUpload()
			tt.mutate(&in)
			_, err := svc.Upload(context.Background(), agentSession, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	var count int64
	require.NoError(t, gdb.Model(&model.Video{}).Count(&count).Error)
	assert.Zero(t, count)

	// Files written before the failing thumbnail are removed again.
	var leftovers []string
	_ = filepath.Walk(files.Root(), func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			leftovers = append(leftovers, path)
		}
		return nil
	})
	assert.Empty(t, leftovers)
}

func TestVideoService_ListPaginatesApprovedOnly(t *testing.T) {
	svc, _, gdb, _ := newTestVideoService(t)
	agent := createUser(t, gdb, nil)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		createVideo(t, gdb, agent.ID, func(v *model.Video) { v.CreatedAt = base.Add(time.Duration(i) * time.Minute) })
	}
	createVideo(t, gdb, agent.ID, func(v *model.Video) { v.Status = model.VideoStatusPending })

	page, err := svc.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.EqualValues(t, 12, page.TotalVideos)
	assert.Len(t, page.Videos, 10)

	page, err = svc.List(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Len(t, page.Videos, 2)

	_, err = svc.ListByCategory(context.Background(), "horror", 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCategory)

	page, err = svc.ListByCategory(context.Background(), "narrative", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
}

func TestVideoService_FeaturedOnePerCategory(t *testing.T) {
	svc, _, gdb, _ := newTestVideoService(t)
	agent := createUser(t, gdb, nil)

	want := make([]uuid.UUID, 0, len(model.Categories))
	for i, category := range model.Categories {
		category := category
		top := createVideo(t, gdb, agent.ID, func(v *model.Video) { v.Category = category; v.Votes = 50 + i })
		createVideo(t, gdb, agent.ID, func(v *model.Video) { v.Category = category; v.Votes = 1 })
		want = append(want, top.ID)
	}

	featured, err := svc.Featured(context.Background())
	require.NoError(t, err)
	require.Len(t, featured, 6)
	for i, v := range featured {
		assert.Equal(t, want[i], v.ID)
		assert.Equal(t, model.Categories[i], v.Category)
	}
}

func TestVideoService_FeaturedBackfills(t *testing.T) {
	svc, _, gdb, _ := newTestVideoService(t)
	agent := createUser(t, gdb, nil)
	now := time.Now()

	narrativeTop := createVideo(t, gdb, agent.ID, func(v *model.Video) { v.Votes = 30 })
	narrativeSecond := createVideo(t, gdb, agent.ID, func(v *model.Video) { v.Votes = 20 })
	narrativeTieNewer := createVideo(t, gdb, agent.ID, func(v *model.Video) { v.Votes = 10; v.CreatedAt = now })
	narrativeTieOlder := createVideo(t, gdb, agent.ID, func(v *model.Video) { v.Votes = 10; v.CreatedAt = now.Add(-time.Hour) })
	animation := createVideo(t, gdb, agent.ID, func(v *model.Video) { v.Category = model.CategoryAnimation; v.Votes = 2 })
	createVideo(t, gdb, agent.ID, func(v *model.Video) { v.Votes = 99; v.Status = model.VideoStatusRejected })

	featured, err := svc.Featured(context.Background())
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(featured))
	for _, v := range featured {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []uuid.UUID{
		narrativeTop.ID,
		animation.ID,
		narrativeSecond.ID,
		narrativeTieNewer.ID,
		narrativeTieOlder.ID,
	}, ids)
}

func TestVideoService_UpdateReplacesFiles(t *testing.T) {
	svc, _, gdb, files := newTestVideoService(t)
	agent := createUser(t, gdb, func(u *model.User) { u.Role = model.RoleAgent })
	session := &auth.Session{UserID: agent.ID, Role: string(model.RoleAgent)}
	video, err := svc.Upload(context.Background(), session, validUpload())
	require.NoError(t, err)
	oldScript := video.ScriptPath

	title := "Neon Requiem (Director's Cut)"
	category := "experimental"
	updated, err := svc.Update(context.Background(), session, video.ID, UpdateInput{
		Title:    &title,
		Category: &category,
		Script:   file("v2.pdf", "%PDF-2"),
	})
	require.NoError(t, err)

	assert.Equal(t, title, updated.Title)
	assert.Equal(t, model.CategoryExperimental, updated.Category)
	assert.NotEqual(t, oldScript, updated.ScriptPath)
	assert.True(t, storedFileExists(files, updated.ScriptPath))
	assert.False(t, storedFileExists(files, oldScript))

	stranger := &auth.Session{UserID: uuid.New(), Role: string(model.RoleAgent)}
	_, err = svc.Update(context.Background(), stranger, video.ID, UpdateInput{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

// racingStore runs onRead once, right after the first video lookup, to model
// writes that land between Update's read and its write.
type racingStore struct {
	repository.Store
	onRead func()
}

func (s *racingStore) Videos() repository.VideoRepository {
	return &racingVideos{VideoRepository: s.Store.Videos(), store: s}
}

type racingVideos struct {
	repository.VideoRepository
	store *racingStore
}

func (r *racingVideos) FindByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	video, err := r.VideoRepository.FindByID(ctx, id)
	if hook := r.store.onRead; hook != nil {
		r.store.onRead = nil
		hook()
	}
	return video, err
}

func TestVideoService_UpdateKeepsConcurrentVotesAndStatus(t *testing.T) {
	store, gdb := newTestStore(t)
	files, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	require.NoError(t, err)

	agent := createUser(t, gdb, func(u *model.User) { u.Role = model.RoleAgent })
	video := createVideo(t, gdb, agent.ID, nil)

	ctx := context.Background()
	racing := &racingStore{Store: store, onRead: func() {
		require.NoError(t, store.Videos().IncrementVotes(ctx, video.ID))
		require.NoError(t, store.Videos().UpdateStatus(ctx, video.ID, model.VideoStatusRejected))
	}}
	svc := NewVideoService(racing, files, nil, NewSubmissionValidator(1))

	title := "Retitled"
	session := &auth.Session{UserID: agent.ID, Role: string(model.RoleAgent)}
	updated, err := svc.Update(ctx, session, video.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, 1, updated.Votes)
	assert.Equal(t, model.VideoStatusRejected, updated.Status)

	stored := reloadVideo(t, gdb, video.ID)
	assert.Equal(t, title, stored.Title)
	assert.Equal(t, 1, stored.Votes)
	assert.Equal(t, model.VideoStatusRejected, stored.Status)
}

func TestVideoService_DeleteRemovesRowLedgerAndFiles(t *testing.T) {
	svc, store, gdb, files := newTestVideoService(t)
	agent := createUser(t, gdb, func(u *model.User) { u.Role = model.RoleAgent })
	session := &auth.Session{UserID: agent.ID, Role: string(model.RoleAgent)}
	video, err := svc.Upload(context.Background(), session, validUpload())
	require.NoError(t, err)
	require.NoError(t, store.Votes().Create(context.Background(), &model.Vote{UserID: agent.ID, VideoID: video.ID, PointsAwarded: 10}))

	err = svc.Delete(context.Background(), &auth.Session{UserID: uuid.New()}, video.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, svc.Delete(context.Background(), session, video.ID))

	_, err = svc.Get(context.Background(), video.ID)
	assert.ErrorIs(t, err, apperrors.ErrVideoNotFound)
	voted, err := store.Votes().Exists(context.Background(), agent.ID, video.ID)
	require.NoError(t, err)
	assert.False(t, voted)
	assert.False(t, storedFileExists(files, video.VideoPath))
}

func TestVideoService_SetStatusAndMine(t *testing.T) {
	svc, _, gdb, _ := newTestVideoService(t)
	agent := createUser(t, gdb, nil)
	video := createVideo(t, gdb, agent.ID, func(v *model.Video) { v.Status = model.VideoStatusPending })

	approved, err := svc.SetStatus(context.Background(), video.ID, model.VideoStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.VideoStatusApproved, approved.Status)

	_, err = svc.SetStatus(context.Background(), video.ID, "published")
	assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)

	_, err = svc.SetStatus(context.Background(), uuid.New(), model.VideoStatusRejected)
	assert.ErrorIs(t, err, apperrors.ErrVideoNotFound)

	mine, err := svc.Mine(context.Background(), agent.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, video.ID, mine[0].ID)
}
