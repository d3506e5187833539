//go:build integration

package pgstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/specialistvlad/extforge/internal/model"
	"github.com/specialistvlad/extforge/internal/synth"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_DB":       "extforge",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://postgres:password@%s:%s/extforge?sslmode=disable", host, port.Port())

	ran, err := Migrate(url)
	require.NoError(t, err)
	require.True(t, ran, "a fresh database should need migrations")

	store, err := Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_WriteAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	doc := synth.Document{
		Kind:        model.KindRule,
		Name:        "Set Manager",
		LogicalName: "Rule/Set Manager.xml",
		Data:        []byte("<Rule/>"),
	}
	require.NoError(t, store.Write(ctx, doc))

	doc.Data = []byte("<Rule name=\"Set Manager\"/>")
	require.NoError(t, store.Write(ctx, doc), "writing the same definition again upserts")

	got, err := store.Get(ctx, model.KindRule, "Set Manager")
	require.NoError(t, err)
	require.Equal(t, doc, got)

	names, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Rule/Set Manager.xml"}, names)

	_, err = store.Get(ctx, model.KindCustom, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
