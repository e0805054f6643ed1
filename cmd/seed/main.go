package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"quantumvision/internal/config"
	"quantumvision/internal/db"
	"quantumvision/internal/gamification"
	"quantumvision/internal/logger"
	"quantumvision/internal/model"
	"quantumvision/internal/repository"
)

//go:embed seed.json
var defaultFixture []byte

// Fixture is the seed file layout.
type Fixture struct {
	Users  []SeedUser  `json:"users"`
	Videos []SeedVideo `json:"videos"`
}

// SeedUser describes one account to create or refresh.
type SeedUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Votes     int    `json:"votes"`
	VotesUsed int    `json:"votes_used"`
	Points    int    `json:"points"`
}

// SeedVideo describes one catalogue entry. Uploader is a username from the same fixture.
type SeedVideo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Duration    string `json:"duration"`
	Uploader    string `json:"uploader"`
	Status      string `json:"status"`
	Votes       int    `json:"votes"`
}

// Stats counts what a seed run changed.
type Stats struct {
	UsersCreated  int
	UsersUpdated  int
	VideosCreated int
	VideosUpdated int
}

func main() {
	fixturePath := flag.String("file", "", "seed fixture (defaults to the embedded demo data)")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, "quantumvision-seed")

	data := defaultFixture
	if *fixturePath != "" {
		var err error
		if data, err = os.ReadFile(*fixturePath); err != nil {
			logger.Log.Fatal().Err(err).Str("file", *fixturePath).Msg("read fixture")
		}
	}

	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		logger.Log.Fatal().Err(err).Msg("parse fixture")
	}

	gormDB, err := db.Open(cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("database init")
	}

	stats, err := seed(context.Background(), repository.NewStore(gormDB), fixture)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}

	logger.Log.Info().
		Int("users_created", stats.UsersCreated).
		Int("users_updated", stats.UsersUpdated).
		Int("videos_created", stats.VideosCreated).
		Int("videos_updated", stats.VideosUpdated).
		Msg("seed completed")
}

// seed creates or refreshes every fixture entry in one transaction.
func seed(ctx context.Context, store repository.Store, fixture Fixture) (Stats, error) {
	var stats Stats
	err := store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		stats = Stats{}
		uploaders := make(map[string]*model.User, len(fixture.Users))
		for _, su := range fixture.Users {
			user, created, err := seedUser(ctx, tx.Users(), su)
			if err != nil {
				return err
			}
			if created {
				stats.UsersCreated++
			} else {
				stats.UsersUpdated++
			}
			uploaders[user.Username] = user
		}

		for _, sv := range fixture.Videos {
			uploader, ok := uploaders[sv.Uploader]
			if !ok {
				return fmt.Errorf("video %q: unknown uploader %q", sv.Title, sv.Uploader)
			}
			created, err := seedVideo(ctx, tx.Videos(), uploader, sv)
			if err != nil {
				return err
			}
			if created {
				stats.VideosCreated++
			} else {
				stats.VideosUpdated++
			}
		}
		return nil
	})
	return stats, err
}

func seedUser(ctx context.Context, repo repository.UserRepository, su SeedUser) (*model.User, bool, error) {
	email := strings.ToLower(strings.TrimSpace(su.Email))
	existing, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("error checking user %s: %w", email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password for %s: %w", email, err)
	}

	user := existing
	if user == nil {
		user = &model.User{}
	}
	user.Username = su.Username
	user.Email = email
	user.PasswordHash = string(hash)
	user.Role = model.Role(su.Role)
	user.Votes = su.Votes
	user.VotesUsed = su.VotesUsed
	user.Points = su.Points
	gamification.Settle(user)

	if existing != nil {
		if err := repo.Save(ctx, user); err != nil {
			return nil, false, fmt.Errorf("error updating user %s: %w", email, err)
		}
		return user, false, nil
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("error creating user %s: %w", email, err)
	}
	return user, true, nil
}

func seedVideo(ctx context.Context, repo repository.VideoRepository, uploader *model.User, sv SeedVideo) (bool, error) {
	owned, err := repo.ListByUploader(ctx, uploader.ID)
	if err != nil {
		return false, fmt.Errorf("error listing videos of %s: %w", uploader.Username, err)
	}

	var video *model.Video
	for i := range owned {
		if owned[i].Title == sv.Title {
			video = &owned[i]
			break
		}
	}
	created := video == nil
	if created {
		video = &model.Video{UploaderID: uploader.ID}
	}

	video.Title = sv.Title
	video.Description = sv.Description
	video.Category = model.Category(sv.Category)
	video.Duration = sv.Duration
	video.Status = model.VideoStatus(sv.Status)
	video.Votes = sv.Votes

	if !video.Category.Valid() {
		return false, fmt.Errorf("video %q: invalid category %q", sv.Title, sv.Category)
	}

	if created {
		err = repo.Create(ctx, video)
	} else {
		err = repo.Save(ctx, video)
	}
	if err != nil {
		return false, fmt.Errorf("error saving video %q: %w", sv.Title, err)
	}
	return created, nil
}
