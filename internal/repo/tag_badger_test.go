package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pkordes/tagstore/internal/repo"
)

// newBadgerRepo opens a fresh in-memory BadgerDB per test.
func newBadgerRepo(t *testing.T) repo.TagRepo {
	t.Helper()
	db, err := repo.OpenBadger(repo.InMemoryBadgerConfig())
	require.NoError(t, err, "open in-memory badger")
	t.Cleanup(func() { _ = db.Close() })
	return repo.NewBadgerTagRepo(db)
}

func TestBadgerTagRepo(t *testing.T) {
	runTagRepoSuite(t, newBadgerRepo)
}

func TestBadgerTagRepo_EnsureContainerRace(t *testing.T) {
	runEnsureContainerRace(t, newBadgerRepo(t), "Tags")
}

func TestBadgerTagRepo_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := repo.OpenBadger(repo.DefaultBadgerConfig(dir))
	require.NoError(t, err)
	r := repo.NewBadgerTagRepo(db)
	cid := mustContainer(t, r)
	rec := recordFixture(time.Now())
	_, err = r.Insert(ctx, cid, rec)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = repo.OpenBadger(repo.DefaultBadgerConfig(dir))
	require.NoError(t, err)
	defer db.Close()
	r = repo.NewBadgerTagRepo(db)

	again := mustContainer(t, r)
	assert.Equal(t, cid, again, "container id survives a restart")
	got, err := r.Get(ctx, cid, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
}

// TestBadgerDB_CloseStopsGC verifies the value log GC goroutine exits on Close.
func TestBadgerDB_CloseStopsGC(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := repo.DefaultBadgerConfig(t.TempDir())
	cfg.GCInterval = 10 * time.Millisecond
	db, err := repo.OpenBadger(cfg)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond) // let the GC loop tick at least once
	require.NoError(t, db.Close())
}

func TestOpenBadger_PathRequired(t *testing.T) {
	_, err := repo.OpenBadger(repo.BadgerConfig{})

	assert.Error(t, err)
}

func TestBadgerTagRepo_CancelledContext(t *testing.T) {
	r := newBadgerRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.EnsureContainer(ctx, "Tags")

	assert.ErrorIs(t, err, context.Canceled)
}
