package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/photocontest/internal/adapter/memory"
	"github.com/pscheid92/photocontest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVotingFixture(t *testing.T) (*VoteController, *memory.Store, string) {
	t.Helper()
	store := memory.NewStore(clockwork.NewFakeClock())
	photo, err := store.Create(context.Background(), domain.PhotoDraft{Title: "t", Author: "a", Email: "e", Src: "x.png"})
	require.NoError(t, err)
	return NewVoteController(store, store), store, photo.ID
}

func TestCastVote_DuplicateRejected(t *testing.T) {
	c, store, photoID := newVotingFixture(t)
	ctx := context.Background()

	votes, err := c.CastVote(ctx, "10.0.0.1", photoID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), votes)

	_, err = c.CastVote(ctx, "10.0.0.1", photoID)
	assert.ErrorIs(t, err, domain.ErrDuplicateVote)

	photo, _ := store.GetByID(ctx, photoID)
	assert.Equal(t, int64(1), photo.Votes)
}

func TestCastVote_DistinctIdentities(t *testing.T) {
	c, store, photoID := newVotingFixture(t)
	ctx := context.Background()

	_, err := c.CastVote(ctx, "10.0.0.1", photoID)
	require.NoError(t, err)
	votes, err := c.CastVote(ctx, "10.0.0.2", photoID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), votes)
	photo, _ := store.GetByID(ctx, photoID)
	assert.Equal(t, int64(2), photo.Votes)
}

func TestCastVote_SameIdentityDifferentPhotos(t *testing.T) {
	c, store, first := newVotingFixture(t)
	ctx := context.Background()
	second, _ := store.Create(ctx, domain.PhotoDraft{Title: "u"})

	_, err := c.CastVote(ctx, "10.0.0.1", first)
	require.NoError(t, err)
	_, err = c.CastVote(ctx, "10.0.0.1", second.ID)
	require.NoError(t, err)

	voter, err := store.GetByIdentity(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, voter.VotedPhotoIDs.Contains(first))
	assert.True(t, voter.VotedPhotoIDs.Contains(second.ID))
}

func TestCastVote_EmptyArguments(t *testing.T) {
	c, _, photoID := newVotingFixture(t)

	_, err := c.CastVote(context.Background(), "", photoID)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)

	_, err = c.CastVote(context.Background(), "10.0.0.1", "")
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestCastVote_UnknownPhotoKeepsVoterRecord(t *testing.T) {
	c, store, _ := newVotingFixture(t)
	ctx := context.Background()

	_, err := c.CastVote(ctx, "10.0.0.9", "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrPhotoNotFound)

	voter, err := store.GetByIdentity(ctx, "10.0.0.9")
	require.NoError(t, err, "voter record is created even though the photo is missing")
	assert.True(t, voter.VotedPhotoIDs.Contains("does-not-exist"))

	_, err = c.CastVote(ctx, "10.0.0.9", "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrDuplicateVote, "retry is rejected because the voter entry remains")
}

func TestCastVote_ConcurrentSameIdentity(t *testing.T) {
	c, store, photoID := newVotingFixture(t)
	ctx := context.Background()

	const n = 64
	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() {
			_, err := c.CastVote(ctx, "10.0.0.1", photoID)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrDuplicateVote):
				dup.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(n-1), dup.Load())
	photo, _ := store.GetByID(ctx, photoID)
	assert.Equal(t, int64(1), photo.Votes)
}

func TestCastVote_ConcurrentMixedKeepsTallyConsistent(t *testing.T) {
	c, store, first := newVotingFixture(t)
	ctx := context.Background()
	second, _ := store.Create(ctx, domain.PhotoDraft{Title: "u"})
	photoIDs := []string{first, second.ID}

	var wg sync.WaitGroup
	for i := range 200 {
		identity := fmt.Sprintf("10.0.0.%d", i%17)
		photoID := photoIDs[i%2]
		wg.Go(func() {
			_, _ = c.CastVote(ctx, identity, photoID)
		})
	}
	wg.Wait()

	counts, err := store.CountVotesByPhoto(ctx)
	require.NoError(t, err)
	for _, id := range photoIDs {
		photo, _ := store.GetByID(ctx, id)
		assert.Equal(t, counts[id], photo.Votes, "tally of %s equals its distinct voters", id)
	}
}

func TestCastVote_DuplicateDoesNotIncrement(t *testing.T) {
	photos := &mockPhotoRepo{
		incrementVotesFn: func(context.Context, string) (int64, error) {
			t.Fatal("IncrementVotes must not be called for duplicates")
			return 0, nil
		},
	}
	voters := &mockVoterRepo{
		addVoteFn: func(context.Context, string, string) (bool, error) { return false, nil },
	}

	_, err := NewVoteController(photos, voters).CastVote(context.Background(), "id", "p")
	assert.ErrorIs(t, err, domain.ErrDuplicateVote)
}

func TestCastVote_StorageFailures(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("voter write", func(t *testing.T) {
		voters := &mockVoterRepo{
			addVoteFn: func(context.Context, string, string) (bool, error) { return false, cause },
		}
		_, err := NewVoteController(&mockPhotoRepo{}, voters).CastVote(context.Background(), "id", "p")
		assert.ErrorIs(t, err, domain.ErrStorage)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("counter increment", func(t *testing.T) {
		photos := &mockPhotoRepo{
			incrementVotesFn: func(context.Context, string) (int64, error) { return 0, cause },
		}
		_, err := NewVoteController(photos, &mockVoterRepo{}).CastVote(context.Background(), "id", "p")
		assert.ErrorIs(t, err, domain.ErrStorage)
		assert.Equal(t, domain.ReasonStorageError, domain.ReasonOf(err))
	})
}
