package app

import (
	"context"
	"fmt"
	"io"

	"github.com/pscheid92/photocontest/internal/domain"
)

// --- Mock implementations ---

type mockPhotoRepo struct {
	createFn         func(ctx context.Context, draft domain.PhotoDraft) (*domain.Photo, error)
	getByIDFn        func(ctx context.Context, photoID string) (*domain.Photo, error)
	listFn           func(ctx context.Context) ([]domain.Photo, error)
	incrementVotesFn func(ctx context.Context, photoID string) (int64, error)
	casVotesFn       func(ctx context.Context, photoID string, old, votes int64) (bool, error)
}

func (m *mockPhotoRepo) Create(ctx context.Context, draft domain.PhotoDraft) (*domain.Photo, error) {
	if m.createFn != nil {
		return m.createFn(ctx, draft)
	}
	return &domain.Photo{ID: "photo-1", Title: draft.Title, Author: draft.Author, Email: draft.Email, Src: draft.Src}, nil
}

func (m *mockPhotoRepo) GetByID(ctx context.Context, photoID string) (*domain.Photo, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, photoID)
	}
	return nil, domain.ErrPhotoNotFound
}

func (m *mockPhotoRepo) List(ctx context.Context) ([]domain.Photo, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockPhotoRepo) IncrementVotes(ctx context.Context, photoID string) (int64, error) {
	if m.incrementVotesFn != nil {
		return m.incrementVotesFn(ctx, photoID)
	}
	return 0, fmt.Errorf("not implemented")
}

func (m *mockPhotoRepo) CompareAndSetVotes(ctx context.Context, photoID string, old, votes int64) (bool, error) {
	if m.casVotesFn != nil {
		return m.casVotesFn(ctx, photoID, old, votes)
	}
	return true, nil
}

type mockVoterRepo struct {
	getByIdentityFn     func(ctx context.Context, identity string) (*domain.Voter, error)
	addVoteFn           func(ctx context.Context, identity, photoID string) (bool, error)
	countVotesByPhotoFn func(ctx context.Context) (map[string]int64, error)
}

func (m *mockVoterRepo) GetByIdentity(ctx context.Context, identity string) (*domain.Voter, error) {
	if m.getByIdentityFn != nil {
		return m.getByIdentityFn(ctx, identity)
	}
	return nil, domain.ErrVoterNotFound
}

func (m *mockVoterRepo) AddVote(ctx context.Context, identity, photoID string) (bool, error) {
	if m.addVoteFn != nil {
		return m.addVoteFn(ctx, identity, photoID)
	}
	return true, nil
}

func (m *mockVoterRepo) CountVotesByPhoto(ctx context.Context) (map[string]int64, error) {
	if m.countVotesByPhotoFn != nil {
		return m.countVotesByPhotoFn(ctx)
	}
	return map[string]int64{}, nil
}

type mockUploadStore struct {
	saveFn   func(ctx context.Context, ext string, content io.Reader) (string, error)
	removeFn func(ctx context.Context, name string) error
}

func (m *mockUploadStore) Save(ctx context.Context, ext string, content io.Reader) (string, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, ext, content)
	}
	return "stored." + ext, nil
}

func (m *mockUploadStore) Remove(ctx context.Context, name string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, name)
	}
	return nil
}
