// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taibuivan/avatarstudio/internal/avatar"
	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
	"github.com/taibuivan/avatarstudio/internal/platform/migration"
)

// StoreIntegrationSuite runs the Redis and Postgres stores against real servers.
type StoreIntegrationSuite struct {
	suite.Suite

	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pool        *pgxpool.Pool
	redisClient *redis.Client
}

func (s *StoreIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("avatar_test"),
		postgres.WithUsername("avatar"),
		postgres.WithPassword("avatar"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(s.T(), err, "start postgres container")

	dsn, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	result, err := migration.RunUp(dsn, "", logger)
	require.NoError(s.T(), err, "apply migrations")
	require.True(s.T(), result.Applied)

	s.pool, err = pgxpool.New(s.ctx, dsn)
	require.NoError(s.T(), err)

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(s.T(), err, "start redis container")

	redisURL, err := s.rdContainer.ConnectionString(s.ctx)
	require.NoError(s.T(), err)
	options, err := redis.ParseURL(redisURL)
	require.NoError(s.T(), err)
	s.redisClient = redis.NewClient(options)
	require.NoError(s.T(), s.redisClient.Ping(s.ctx).Err())
}

func (s *StoreIntegrationSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
	if s.rdContainer != nil {
		_ = s.rdContainer.Terminate(s.ctx)
	}
}

func (s *StoreIntegrationSuite) SetupTest() {
	require.NoError(s.T(), s.redisClient.FlushDB(s.ctx).Err())
	_, err := s.pool.Exec(s.ctx, "TRUNCATE TABLE users.avatar")
	require.NoError(s.T(), err)
}

func (s *StoreIntegrationSuite) TestRedisSessionStore() {
	exerciseSessionStore(s.T(), avatar.NewRedisSessionStore(s.redisClient))
}

func (s *StoreIntegrationSuite) TestRedisSessionStore_TTL() {
	store := avatar.NewRedisSessionStore(s.redisClient)
	session := newStoredSession("owner-1")
	session.ExpiresAt = time.Now().Add(10 * time.Minute)
	s.Require().NoError(store.Create(s.ctx, session))

	ttl, err := s.redisClient.TTL(s.ctx, "avatar:session:"+session.ID).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 9*time.Minute)
	s.LessOrEqual(ttl, 10*time.Minute)
}

func (s *StoreIntegrationSuite) TestRedisSessionStore_ConcurrentCommit() {
	fixture := newServiceFixtureWith(avatar.NewRedisSessionStore(s.redisClient), avatar.NewAvatarRepository(s.pool))
	owner := "01890000-0000-7000-8000-000000000002"

	opened, err := fixture.service.OpenSession(s.ctx, owner, avatar.ModeSettings, nil)
	s.Require().NoError(err)

	fixture.sessions.loadTogether(2)
	var (
		wg   sync.WaitGroup
		errs [2]error
	)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = fixture.service.Commit(s.ctx, owner, opened.ID)
		}()
	}
	wg.Wait()
	fixture.sessions.afterFind = nil

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		s.True(errors.Is(err, avatar.ErrRevisionConflict), "unexpected error: %v", err)
	}
	s.Equal(1, winners)
	s.Equal(int32(1), fixture.avatars.upserts.Load())

	exists, err := s.redisClient.Exists(s.ctx, "avatar:session:"+opened.ID).Result()
	s.Require().NoError(err)
	s.Zero(exists)
}

func (s *StoreIntegrationSuite) TestRedisSessionStore_StaleClose() {
	store := avatar.NewRedisSessionStore(s.redisClient)
	session := newStoredSession("owner-1")
	s.Require().NoError(store.Create(s.ctx, session))

	stale, err := store.Find(s.ctx, session.ID)
	s.Require().NoError(err)

	// Another writer advances the revision after the stale load.
	s.Require().NoError(store.Save(s.ctx, session))

	err = store.Close(s.ctx, stale)
	s.True(errors.Is(err, avatar.ErrRevisionConflict))

	found, err := store.Find(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), found.Revision)
}

func (s *StoreIntegrationSuite) TestPostgresAvatarRepository() {
	repository := avatar.NewAvatarRepository(s.pool)

	_, err := repository.FindByOwnerID(s.ctx, "01890000-0000-7000-8000-000000000001")
	s.True(apperr.IsNotFound(err))

	first := time.Now().UTC().Truncate(time.Microsecond)
	saved := &avatar.SavedAvatar{
		OwnerID:       "01890000-0000-7000-8000-000000000001",
		Configuration: avatar.DefaultConfiguration(),
		CreatedAt:     first,
		UpdatedAt:     first,
	}
	s.Require().NoError(repository.Upsert(s.ctx, saved))

	second := first.Add(time.Minute)
	updated := avatar.DefaultConfiguration()
	updated.HairColor = "gray"
	resaved := &avatar.SavedAvatar{OwnerID: saved.OwnerID, Configuration: updated, CreatedAt: second, UpdatedAt: second}
	s.Require().NoError(repository.Upsert(s.ctx, resaved))

	s.True(first.Equal(resaved.CreatedAt), "creation time survives the update")
	s.True(second.Equal(resaved.UpdatedAt))

	found, err := repository.FindByOwnerID(s.ctx, saved.OwnerID)
	s.Require().NoError(err)
	s.Equal(updated, found.Configuration)
}

func TestStoreIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	suite.Run(t, new(StoreIntegrationSuite))
}
