// Package memory provides in-process photo and voter repositories for development and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/photocontest/internal/domain"
)

// Store implements domain.PhotoRepository and domain.VoterRepository. A single mutex
// guards each map operation; nothing blocks while it is held.
type Store struct {
	mu     sync.Mutex
	photos map[string]*domain.Photo
	order  []string
	voters map[string]domain.PhotoIDSet
	clock  clockwork.Clock
}

func NewStore(clock clockwork.Clock) *Store {
	return &Store{
		photos: make(map[string]*domain.Photo),
		voters: make(map[string]domain.PhotoIDSet),
		clock:  clock,
	}
}

func (s *Store) Create(_ context.Context, draft domain.PhotoDraft) (*domain.Photo, error) {
	p := &domain.Photo{
		ID:        uuid.NewString(),
		Title:     draft.Title,
		Author:    draft.Author,
		Email:     draft.Email,
		Src:       draft.Src,
		CreatedAt: s.clock.Now(),
	}

	s.mu.Lock()
	s.photos[p.ID] = p
	s.order = append(s.order, p.ID)
	s.mu.Unlock()

	cp := *p
	return &cp, nil
}

func (s *Store) GetByID(_ context.Context, photoID string) (*domain.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.photos[photoID]
	if !ok {
		return nil, domain.ErrPhotoNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Store) List(_ context.Context) ([]domain.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Photo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.photos[id])
	}
	return out, nil
}

func (s *Store) IncrementVotes(_ context.Context, photoID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.photos[photoID]
	if !ok {
		return 0, domain.ErrPhotoNotFound
	}
	p.Votes++
	return p.Votes, nil
}

func (s *Store) CompareAndSetVotes(_ context.Context, photoID string, old, votes int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.photos[photoID]
	if !ok {
		return false, domain.ErrPhotoNotFound
	}
	if p.Votes != old {
		return false, nil
	}
	p.Votes = votes
	return true, nil
}

func (s *Store) GetByIdentity(_ context.Context, identity string) (*domain.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.voters[identity]
	if !ok {
		return nil, domain.ErrVoterNotFound
	}
	return &domain.Voter{Identity: identity, VotedPhotoIDs: domain.NewPhotoIDSet(set.Sorted()...)}, nil
}

func (s *Store) AddVote(_ context.Context, identity, photoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.voters[identity]
	if !ok {
		set = domain.NewPhotoIDSet()
		s.voters[identity] = set
	}
	return set.Add(photoID), nil
}

func (s *Store) CountVotesByPhoto(_ context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int64)
	for _, set := range s.voters {
		for id := range set {
			counts[id]++
		}
	}
	return counts, nil
}
