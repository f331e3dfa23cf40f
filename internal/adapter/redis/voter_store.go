package redis

import (
	"context"
	"strings"

	"github.com/pscheid92/photocontest/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	voterKeyPrefix = "voter:"
	scanBatchSize  = 200
)

func voterKey(identity string) string {
	return voterKeyPrefix + identity
}

// VoterStore implements domain.VoterRepository with one Redis set per identity.
// SADD is the atomic conditional write: it reports 1 only for the first add of a member.
type VoterStore struct {
	rdb *goredis.Client
}

func NewVoterStore(rdb *goredis.Client) *VoterStore {
	return &VoterStore{rdb: rdb}
}

// GetByIdentity returns ErrVoterNotFound for identities that never voted; Redis does not
// keep empty sets.
func (s *VoterStore) GetByIdentity(ctx context.Context, identity string) (*domain.Voter, error) {
	ids, err := s.rdb.SMembers(ctx, voterKey(identity)).Result()
	if err != nil {
		return nil, storageErr("failed to read voter", err)
	}
	if len(ids) == 0 {
		return nil, domain.ErrVoterNotFound
	}
	return &domain.Voter{Identity: identity, VotedPhotoIDs: domain.NewPhotoIDSet(ids...)}, nil
}

func (s *VoterStore) AddVote(ctx context.Context, identity, photoID string) (bool, error) {
	added, err := s.rdb.SAdd(ctx, voterKey(identity), photoID).Result()
	if err != nil {
		return false, storageErr("failed to record vote", err)
	}
	return added == 1, nil
}

// CountVotesByPhoto walks all voter sets with SCAN, so it never blocks the server.
func (s *VoterStore) CountVotesByPhoto(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)

	iter := s.rdb.Scan(ctx, 0, voterKeyPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if !strings.HasPrefix(key, voterKeyPrefix) {
			continue
		}
		ids, err := s.rdb.SMembers(ctx, key).Result()
		if err != nil {
			return nil, storageErr("failed to read voter set", err)
		}
		for _, id := range ids {
			counts[id]++
		}
	}
	if err := iter.Err(); err != nil {
		return nil, storageErr("failed to scan voters", err)
	}
	return counts, nil
}
