// Command seed fills the store with demo users, groups and posts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/rs/zerolog"

	"github.com/yatube/yatube/internal/core/domain"
	"github.com/yatube/yatube/internal/core/ports"
	"github.com/yatube/yatube/internal/core/service"
	"github.com/yatube/yatube/internal/infrastructure/config"
	"github.com/yatube/yatube/internal/infrastructure/db"
	"github.com/yatube/yatube/internal/infrastructure/queue"
	"github.com/yatube/yatube/pkg/logger"
)

const seedPassword = "password123"

func main() {
	numUsers := flag.Int("users", 10, "Number of authors to create")
	numGroups := flag.Int("groups", 3, "Number of groups to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	workers := flag.Int("workers", 4, "Number of dispatcher workers")
	adminName := flag.String("admin", "admin", "Username of the admin account")
	adminPassword := flag.String("admin-password", "admin12345", "Password of the admin account")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "yatube-seed"})

	store, err := db.Open(ctx, cfg, logger.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("open store")
	}
	defer store.Close(ctx)

	gofakeit.Seed(time.Now().UnixNano())

	auth := service.NewAuthService(store.Users, cfg.JWTSecret, cfg.TokenTTL, logger.Component("auth"))
	groupSvc := service.NewGroupService(store.Groups, logger.Component("groups"))
	authoring := service.NewPostService(store.Posts, store.Groups, nil, nil, logger.Component("authoring"))

	if _, err := ensureUser(ctx, auth, store.Users, ports.RegisterInput{
		Username: *adminName,
		Password: *adminPassword,
		Role:     domain.RoleAdmin,
	}); err != nil {
		log.Fatal().Err(err).Msg("create admin")
	}

	groups := seedGroups(ctx, groupSvc, store.Groups, *numGroups, log)
	authors := seedAuthors(ctx, auth, store.Users, *numUsers, log)
	if len(authors) == 0 {
		log.Fatal().Msg("no authors to write posts")
	}

	d := queue.NewDispatcher(*workers, authoring, logger.Component("dispatcher"))
	d.Start(ctx)

	inputs := make([]ports.CreatePostInput, 0, *numPosts)
	for i := 0; i < *numPosts; i++ {
		in := ports.CreatePostInput{
			Author: authors[gofakeit.Number(0, len(authors)-1)],
			Text:   gofakeit.Paragraph(1, gofakeit.Number(1, 4), 12, "\n"),
		}
		// Roughly a third of the posts stay outside any group.
		if len(groups) > 0 && gofakeit.Number(0, 2) > 0 {
			in.GroupID = groups[gofakeit.Number(0, len(groups)-1)].ID
		}
		inputs = append(inputs, in)
	}
	d.EnqueueBatch(inputs)
	d.Close()
	d.Wait()

	created, failed := d.Stats()
	log.Info().
		Int("groups", len(groups)).
		Int("authors", len(authors)).
		Int64("posts_created", created).
		Int64("posts_failed", failed).
		Str("password", seedPassword).
		Msg("seeding finished")
}

// ensureUser registers in, or returns the existing account with that name.
func ensureUser(ctx context.Context, auth *service.AuthService, users ports.UserRepository, in ports.RegisterInput) (*domain.User, error) {
	u, err := auth.Register(ctx, in)
	if errors.Is(err, domain.ErrUserExists) {
		return users.FindByUsername(ctx, in.Username)
	}
	return u, err
}

func seedGroups(ctx context.Context, svc *service.GroupService, repo ports.GroupRepository, n int, log zerolog.Logger) []*domain.Group {
	for i := 0; i < n; i++ {
		word := strings.ToLower(gofakeit.Word())
		_, err := svc.CreateGroup(ctx, ports.CreateGroupInput{
			Title:       strings.ToUpper(word[:1]) + word[1:],
			Slug:        fmt.Sprintf("%s-%d", word, i+1),
			Description: gofakeit.Sentence(12),
		})
		if err != nil && !errors.Is(err, domain.ErrGroupExists) {
			log.Warn().Err(err).Msg("skip group")
		}
	}

	groups, err := repo.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list groups")
	}
	return groups
}

func seedAuthors(ctx context.Context, auth *service.AuthService, users ports.UserRepository, n int, log zerolog.Logger) []*domain.User {
	out := make([]*domain.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := ensureUser(ctx, auth, users, ports.RegisterInput{
			Username:  fmt.Sprintf("%s%d", strings.ToLower(gofakeit.FirstName()), i+1),
			Email:     gofakeit.Email(),
			Password:  seedPassword,
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
		})
		if err != nil {
			log.Warn().Err(err).Msg("skip author")
			continue
		}
		out = append(out, u)
	}
	return out
}
