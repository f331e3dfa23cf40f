package app

import (
	"context"
	"log/slog"
	"slices"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/photocontest/internal/adapter/metrics"
	"github.com/pscheid92/photocontest/internal/domain"
	"golang.org/x/sync/singleflight"
)

const listPhotosKey = "photos"

// Service is the application layer and the only component that references multiple
// domain components. It orchestrates all use cases.
type Service struct {
	photos      domain.PhotoRepository
	submissions *SubmissionValidator
	votes       *VoteController
	listGroup   singleflight.Group
	clock       clockwork.Clock

	voteMetrics       *metrics.VoteMetrics
	submissionMetrics *metrics.SubmissionMetrics
}

// NewService creates the application layer service. uploads may be nil.
func NewService(photos domain.PhotoRepository, voters domain.VoterRepository, uploads domain.UploadStore, rules domain.SubmissionRules, clock clockwork.Clock) *Service {
	return &Service{
		photos:      photos,
		submissions: NewSubmissionValidator(rules, photos, uploads),
		votes:       NewVoteController(photos, voters),
		clock:       clock,
	}
}

// WithMetrics attaches outcome metrics. Either argument may be nil.
func (s *Service) WithMetrics(votes *metrics.VoteMetrics, submissions *metrics.SubmissionMetrics) *Service {
	s.voteMetrics = votes
	s.submissionMetrics = submissions
	return s
}

// SubmitPhoto validates and stores a new contest entry.
func (s *Service) SubmitPhoto(ctx context.Context, req domain.SubmitPhotoRequest) (*domain.Photo, error) {
	photo, err := s.submissions.Submit(ctx, req)
	reason := domain.ReasonOf(err)
	if s.submissionMetrics != nil {
		s.submissionMetrics.Submissions.WithLabelValues(string(reason)).Inc()
	}
	if err != nil {
		slog.DebugContext(ctx, "Submission rejected", "reason", reason, "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "Photo submitted", "photo_id", photo.ID, "src", photo.Src)
	return photo, nil
}

// ListPhotos returns all photos in creation order. Concurrent calls share one repository read.
func (s *Service) ListPhotos(ctx context.Context) ([]domain.Photo, error) {
	v, err, _ := s.listGroup.Do(listPhotosKey, func() (any, error) {
		return s.photos.List(ctx)
	})
	if err != nil {
		return nil, storageError("list photos", err)
	}
	return slices.Clone(v.([]domain.Photo)), nil
}

// GetPhoto returns a single photo.
func (s *Service) GetPhoto(ctx context.Context, photoID string) (*domain.Photo, error) {
	if photoID == "" {
		return nil, domain.ErrMalformedInput
	}
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, storageError("get photo", err)
	}
	return photo, nil
}

// CastVote admits a vote by identity for photoID and returns the new tally.
func (s *Service) CastVote(ctx context.Context, identity, photoID string) (int64, error) {
	start := s.clock.Now()
	votes, err := s.votes.CastVote(ctx, identity, photoID)
	reason := domain.ReasonOf(err)

	if s.voteMetrics != nil {
		s.voteMetrics.VotesCast.WithLabelValues(string(reason)).Inc()
		s.voteMetrics.AdmissionDuration.Observe(s.clock.Since(start).Seconds())
	}

	switch reason {
	case domain.ReasonNone:
		slog.DebugContext(ctx, "Vote admitted", "photo_id", photoID, "votes", votes)
	case domain.ReasonPhotoNotFound:
		slog.WarnContext(ctx, "Vote recorded for unknown photo", "photo_id", photoID, "identity", identity)
	default:
		slog.DebugContext(ctx, "Vote rejected", "photo_id", photoID, "reason", reason)
	}
	return votes, err
}
