//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/imagify/imagify-server/internal/model"
	repo "github.com/imagify/imagify-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "imagify_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/imagify_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	rr := repo.NewRefreshTokenRepository(conn)

	t.Run("user_repository", func(t *testing.T) {
		u := model.NewLocalUser("alice", "Alice@Example.com ", "$2a$12$hash")
		saved, err := ur.Create(ctx, u)
		require.NoError(t, err)
		require.Equal(t, u.ID, saved.ID)
		require.Equal(t, "alice@example.com", saved.Email)

		byEmail, err := ur.GetByEmail(ctx, "  ALICE@example.COM")
		require.NoError(t, err)
		require.Equal(t, u.ID, byEmail.ID)

		byUsername, err := ur.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.ID, byUsername.ID)

		_, err = ur.GetByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, model.ErrNotFound)

		dup := model.NewLocalUser("alice2", "alice@example.com", "$2a$12$hash")
		_, err = ur.Create(ctx, dup)
		require.ErrorIs(t, err, model.ErrDuplicateEmail)

		dupName := model.NewLocalUser("alice", "other@example.com", "$2a$12$hash")
		_, err = ur.Create(ctx, dupName)
		require.ErrorIs(t, err, model.ErrDuplicateUsername)

		code := 123456
		expiry := time.Now().Add(15 * time.Minute)
		saved.VerificationCode = &code
		saved.VerificationExpiresAt = &expiry
		require.NoError(t, ur.Update(ctx, saved))

		reloaded, err := ur.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		require.NotNil(t, reloaded.VerificationCode)
		require.Equal(t, code, *reloaded.VerificationCode)
	})

	t.Run("refresh_token_repository", func(t *testing.T) {
		u := model.NewGoogleUser("bob", "bob@example.com", model.GoogleIdentity{Subject: "google-sub-1"})
		saved, err := ur.Create(ctx, u)
		require.NoError(t, err)
		require.NotNil(t, saved.Google)
		require.Equal(t, "google-sub-1", saved.Google.Subject)

		expiry := time.Now().Add(14 * 24 * time.Hour)
		require.NoError(t, rr.Upsert(ctx, saved.ID, "token-one", expiry))
		require.NoError(t, rr.Upsert(ctx, saved.ID, "token-two", expiry))

		// Rotation in place: the old value is gone and exactly one row remains.
		_, err = rr.GetByToken(ctx, "token-one")
		require.ErrorIs(t, err, model.ErrNotFound)

		rt, err := rr.GetByUser(ctx, saved.ID)
		require.NoError(t, err)
		require.Equal(t, "token-two", rt.Token)

		var count int
		require.NoError(t, conn.QueryRow(ctx, `SELECT COUNT(*) FROM refresh_tokens WHERE user_id = $1`, saved.ID).Scan(&count))
		require.Equal(t, 1, count)

		require.NoError(t, rr.DeleteByToken(ctx, "token-two"))
		_, err = rr.GetByUser(ctx, saved.ID)
		require.ErrorIs(t, err, model.ErrNotFound)

		// Idempotent delete.
		require.NoError(t, rr.DeleteByToken(ctx, "token-two"))
	})

	t.Run("user_delete_cascades", func(t *testing.T) {
		u := model.NewLocalUser("carol", "carol@example.com", "$2a$12$hash")
		saved, err := ur.Create(ctx, u)
		require.NoError(t, err)

		require.NoError(t, rr.Upsert(ctx, saved.ID, "carol-token", time.Now().Add(time.Hour)))
		require.NoError(t, ur.Delete(ctx, saved.ID))

		_, err = rr.GetByUser(ctx, saved.ID)
		require.ErrorIs(t, err, model.ErrNotFound)

		require.ErrorIs(t, ur.Delete(ctx, uuid.New()), model.ErrNotFound)
	})
}
