package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tagstore/internal/domain"
	"github.com/pkordes/tagstore/internal/repo"
)

// runTagRepoSuite exercises the TagRepo contract. Every engine must pass it.
func runTagRepoSuite(t *testing.T, newRepo func(t *testing.T) repo.TagRepo) {
	t.Run("EnsureContainer_Idempotent", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()

		first, err := r.EnsureContainer(ctx, "Tags")
		require.NoError(t, err)
		second, err := r.EnsureContainer(ctx, "Tags")
		require.NoError(t, err)
		other, err := r.EnsureContainer(ctx, "Other")
		require.NoError(t, err)

		assert.NotEmpty(t, first)
		assert.Equal(t, first, second, "same name must return the same container")
		assert.NotEqual(t, first, other)
	})

	t.Run("Insert_Get", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		cid := mustContainer(t, r)

		rec := recordFixture(time.Now())
		rec.Texts = domain.Slots{"hello", "hallo"}
		_, err := r.Insert(ctx, cid, rec)
		require.NoError(t, err)

		got, err := r.Get(ctx, cid, rec.ID)

		require.NoError(t, err)
		assert.Equal(t, rec.ID, got.ID)
		assert.Equal(t, domain.Slots{"hello", "hallo"}, got.Texts)
		assert.Equal(t, "alice", got.CreatedBy)
		assert.WithinDuration(t, rec.CreatedAt, got.CreatedAt, time.Millisecond)
		assert.Nil(t, got.ValidTo)
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		r := newRepo(t)
		cid := mustContainer(t, r)

		_, err := r.Get(context.Background(), cid, uuid.NewString())

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Get_ScopedToContainer", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		cid := mustContainer(t, r)
		other, err := r.EnsureContainer(ctx, "Elsewhere")
		require.NoError(t, err)

		rec := recordFixture(time.Now())
		_, err = r.Insert(ctx, cid, rec)
		require.NoError(t, err)

		_, err = r.Get(ctx, other, rec.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Insert_Duplicate", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		cid := mustContainer(t, r)

		rec := recordFixture(time.Now())
		_, err := r.Insert(ctx, cid, rec)
		require.NoError(t, err)

		_, err = r.Insert(ctx, cid, rec)

		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})

	t.Run("Mutate_Applies", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		cid := mustContainer(t, r)
		rec := recordFixture(time.Now())
		_, err := r.Insert(ctx, cid, rec)
		require.NoError(t, err)

		got, err := r.Mutate(ctx, cid, rec.ID, func(tr *domain.TagRecord) error {
			tr.Texts.Set(domain.FR, "bonjour")
			tr.ModifiedBy = "bob"
			return nil
		})

		require.NoError(t, err)
		text, ok := got.Texts.Get(domain.FR)
		assert.True(t, ok)
		assert.Equal(t, "bonjour", text)

		stored, err := r.Get(ctx, cid, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, got.Texts, stored.Texts)
		assert.Equal(t, "bob", stored.ModifiedBy)
		assert.Equal(t, "alice", stored.CreatedBy)
	})

	t.Run("Mutate_ErrorRollsBack", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		cid := mustContainer(t, r)
		rec := recordFixture(time.Now())
		rec.Texts = domain.Slots{"hello"}
		_, err := r.Insert(ctx, cid, rec)
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = r.Mutate(ctx, cid, rec.ID, func(tr *domain.TagRecord) error {
			tr.Texts.Set(domain.EN, "changed")
			return boom
		})

		assert.ErrorIs(t, err, boom)
		stored, err := r.Get(ctx, cid, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.Slots{"hello"}, stored.Texts)
	})

	t.Run("Mutate_NotFound", func(t *testing.T) {
		r := newRepo(t)
		cid := mustContainer(t, r)

		_, err := r.Mutate(context.Background(), cid, uuid.NewString(), func(*domain.TagRecord) error {
			t.Fatal("fn must not run for a missing record")
			return nil
		})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Each_OrderOffsetAndVisibility", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		cid := mustContainer(t, r)

		base := time.Now().Add(-time.Hour)
		var ids []string
		for i := range 4 {
			rec := recordFixture(base.Add(time.Duration(i) * time.Minute))
			_, err := r.Insert(ctx, cid, rec)
			require.NoError(t, err)
			ids = append(ids, rec.ID)
		}
		// Soft-delete the second record; give the third a future ValidTo.
		past, future := time.Now().Add(-time.Minute), time.Now().Add(time.Hour)
		_, err := r.Mutate(ctx, cid, ids[1], func(tr *domain.TagRecord) error { tr.ValidTo = &past; return nil })
		require.NoError(t, err)
		_, err = r.Mutate(ctx, cid, ids[2], func(tr *domain.TagRecord) error { tr.ValidTo = &future; return nil })
		require.NoError(t, err)

		assert.Equal(t, []string{ids[0], ids[2], ids[3]}, collectIDs(t, r, cid, 0, -1))
		assert.Equal(t, []string{ids[2], ids[3]}, collectIDs(t, r, cid, 1, -1), "offset counts visible records")
		assert.Equal(t, []string{ids[0], ids[2]}, collectIDs(t, r, cid, 0, 2), "fn returning false stops iteration")
		assert.Empty(t, collectIDs(t, r, cid, 10, -1))
	})

	t.Run("Each_PropagatesError", func(t *testing.T) {
		r := newRepo(t)
		ctx := context.Background()
		cid := mustContainer(t, r)
		_, err := r.Insert(ctx, cid, recordFixture(time.Now()))
		require.NoError(t, err)

		boom := errors.New("boom")
		err = r.Each(ctx, cid, time.Now(), 0, func(domain.TagRecord) (bool, error) { return false, boom })

		assert.ErrorIs(t, err, boom)
	})
}

// runEnsureContainerRace checks that concurrent create-if-absent calls all
// resolve to one container. r must be safe for concurrent use.
func runEnsureContainerRace(t *testing.T, r repo.TagRepo, name string) {
	t.Helper()
	ctx := context.Background()

	const n = 8
	ids := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i], errs[i] = r.EnsureContainer(ctx, name)
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i], "every caller must see the winning container")
	}
}

func mustContainer(t *testing.T, r repo.TagRepo) string {
	t.Helper()
	cid, err := r.EnsureContainer(context.Background(), "Tags")
	require.NoError(t, err)
	return cid
}

func recordFixture(createdAt time.Time) domain.TagRecord {
	createdAt = createdAt.UTC().Truncate(time.Microsecond)
	return domain.TagRecord{
		ID: uuid.NewString(),
		Provenance: domain.Provenance{
			CreatedAt:  createdAt,
			CreatedBy:  "alice",
			ModifiedAt: createdAt,
			ModifiedBy: "alice",
		},
	}
}

// collectIDs returns the ids Each visits; max < 0 means no limit.
func collectIDs(t *testing.T, r repo.TagRepo, cid string, offset, max int) []string {
	t.Helper()
	ids := []string{}
	err := r.Each(context.Background(), cid, time.Now(), offset, func(rec domain.TagRecord) (bool, error) {
		ids = append(ids, rec.ID)
		return max < 0 || len(ids) < max, nil
	})
	require.NoError(t, err)
	return ids
}
