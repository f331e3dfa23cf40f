package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/photocontest/internal/domain"
)

type VoterRepo struct {
	pool *pgxpool.Pool
}

func NewVoterRepo(pool *pgxpool.Pool) *VoterRepo {
	return &VoterRepo{pool: pool}
}

func (r *VoterRepo) GetByIdentity(ctx context.Context, identity string) (*domain.Voter, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM voters WHERE identity = $1)`, identity).Scan(&exists); err != nil {
		return nil, storageErr("failed to look up voter", err)
	}
	if !exists {
		return nil, domain.ErrVoterNotFound
	}

	rows, err := r.pool.Query(ctx, `SELECT photo_id FROM voter_votes WHERE identity = $1`, identity)
	if err != nil {
		return nil, storageErr("failed to list voter votes", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, storageErr("failed to scan voter votes", err)
	}

	return &domain.Voter{Identity: identity, VotedPhotoIDs: domain.NewPhotoIDSet(ids...)}, nil
}

// AddVote upserts the voter and inserts the (identity, photo) pair in one transaction.
// The primary key on voter_votes makes the insert a conditional write: a concurrent
// duplicate waits for the first to commit and then affects zero rows.
func (r *VoterRepo) AddVote(ctx context.Context, identity, photoID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, storageErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO voters (identity) VALUES ($1) ON CONFLICT (identity) DO NOTHING`, identity); err != nil {
		return false, storageErr("failed to upsert voter", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO voter_votes (identity, photo_id) VALUES ($1, $2) ON CONFLICT (identity, photo_id) DO NOTHING`,
		identity, photoID)
	if err != nil {
		return false, storageErr("failed to record vote", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `UPDATE voters SET updated_at = now() WHERE identity = $1`, identity); err != nil {
		return false, storageErr("failed to touch voter", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, storageErr("failed to commit vote", err)
	}
	return true, nil
}

func (r *VoterRepo) CountVotesByPhoto(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT photo_id, count(*) FROM voter_votes GROUP BY photo_id`)
	if err != nil {
		return nil, storageErr("failed to count votes", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var id string
		var n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, storageErr("failed to scan vote count", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("failed to count votes", err)
	}
	return counts, nil
}
