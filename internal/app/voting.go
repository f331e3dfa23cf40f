package app

import (
	"context"

	"github.com/pscheid92/photocontest/internal/domain"
)

// VoteController admits at most one counted vote per (identity, photo) pair.
//
// Both steps are single atomic operations in the repositories; the controller itself holds
// no lock. A vote whose counter increment fails keeps its voter entry, so a retry by the
// same identity is rejected as a duplicate. TallyReconciler repairs the resulting drift.
type VoteController struct {
	photos domain.PhotoRepository
	voters domain.VoterRepository
}

func NewVoteController(photos domain.PhotoRepository, voters domain.VoterRepository) *VoteController {
	return &VoteController{photos: photos, voters: voters}
}

// CastVote records a vote by identity for photoID and returns the photo's new tally.
func (c *VoteController) CastVote(ctx context.Context, identity, photoID string) (int64, error) {
	if identity == "" || photoID == "" {
		return 0, domain.ErrMalformedInput
	}

	added, err := c.voters.AddVote(ctx, identity, photoID)
	if err != nil {
		return 0, storageError("record vote", err)
	}
	if !added {
		return 0, domain.ErrDuplicateVote
	}

	votes, err := c.photos.IncrementVotes(ctx, photoID)
	if err != nil {
		return 0, storageError("increment votes", err)
	}
	return votes, nil
}
