package domain

import (
	"context"
	"slices"
)

// PhotoIDSet is the set of photo IDs a voter has voted for.
type PhotoIDSet map[string]struct{}

// NewPhotoIDSet builds a set from ids, dropping duplicates.
func NewPhotoIDSet(ids ...string) PhotoIDSet {
	s := make(PhotoIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s PhotoIDSet) Contains(photoID string) bool {
	_, ok := s[photoID]
	return ok
}

// Add inserts photoID and reports whether it was absent before.
func (s PhotoIDSet) Add(photoID string) bool {
	if s.Contains(photoID) {
		return false
	}
	s[photoID] = struct{}{}
	return true
}

// Sorted returns the members in lexical order.
func (s PhotoIDSet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Voter is the vote history of one client identity.
type Voter struct {
	Identity      string
	VotedPhotoIDs PhotoIDSet
}

// VoterRepository persists voter records.
//
// AddVote atomically adds photoID to the identity's voted set, creating the voter on first
// use. It returns false, without writing, when photoID is already in the set. Two concurrent
// calls with the same identity and photo ID never both return true.
type VoterRepository interface {
	GetByIdentity(ctx context.Context, identity string) (*Voter, error)
	AddVote(ctx context.Context, identity, photoID string) (bool, error)
	CountVotesByPhoto(ctx context.Context) (map[string]int64, error)
}
