package domain

import (
	"context"
	"time"
)

// Photo is a contest entry. Votes is only mutated through PhotoRepository.IncrementVotes
// (vote admission) and PhotoRepository.CompareAndSetVotes (tally reconciliation).
type Photo struct {
	ID        string
	Title     string
	Author    string
	Email     string
	Src       string
	Votes     int64
	CreatedAt time.Time
}

// PhotoDraft is a validated, sanitized photo that has not been stored yet.
type PhotoDraft struct {
	Title  string
	Author string
	Email  string
	Src    string
}

// PhotoRepository persists photo records.
//
// IncrementVotes must be a single atomic read-increment-write: concurrent calls for the
// same photo never lose an increment. It returns ErrPhotoNotFound when the photo is absent.
//
// CompareAndSetVotes replaces the tally with votes only while it still equals old, and
// reports whether it did. A missing photo yields ErrPhotoNotFound.
type PhotoRepository interface {
	Create(ctx context.Context, draft PhotoDraft) (*Photo, error)
	GetByID(ctx context.Context, photoID string) (*Photo, error)
	List(ctx context.Context) ([]Photo, error)
	IncrementVotes(ctx context.Context, photoID string) (int64, error)
	CompareAndSetVotes(ctx context.Context, photoID string, old, votes int64) (bool, error)
}
