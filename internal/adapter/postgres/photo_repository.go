package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/photocontest/internal/domain"
)

// photoColumns must match the Scan order in scanPhoto.
const photoColumns = `id::text, title, author, email, src, votes, created_at`

type PhotoRepo struct {
	pool *pgxpool.Pool
}

func NewPhotoRepo(pool *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{pool: pool}
}

func scanPhoto(row pgx.Row) (*domain.Photo, error) {
	var p domain.Photo
	if err := row.Scan(&p.ID, &p.Title, &p.Author, &p.Email, &p.Src, &p.Votes, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// validPhotoID reports whether id can name a row. Anything else cannot exist, so callers
// answer ErrPhotoNotFound without a round-trip.
func validPhotoID(id string) bool {
	return uuid.Validate(id) == nil
}

func (r *PhotoRepo) Create(ctx context.Context, draft domain.PhotoDraft) (*domain.Photo, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO photos (title, author, email, src) VALUES ($1, $2, $3, $4) RETURNING `+photoColumns,
		draft.Title, draft.Author, draft.Email, draft.Src)

	p, err := scanPhoto(row)
	if err != nil {
		return nil, storageErr("failed to insert photo", err)
	}
	return p, nil
}

func (r *PhotoRepo) GetByID(ctx context.Context, photoID string) (*domain.Photo, error) {
	if !validPhotoID(photoID) {
		return nil, domain.ErrPhotoNotFound
	}

	p, err := scanPhoto(r.pool.QueryRow(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1::uuid`, photoID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPhotoNotFound
	}
	if err != nil {
		return nil, storageErr("failed to get photo", err)
	}
	return p, nil
}

func (r *PhotoRepo) List(ctx context.Context) ([]domain.Photo, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+photoColumns+` FROM photos ORDER BY created_at, id`)
	if err != nil {
		return nil, storageErr("failed to list photos", err)
	}

	photos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Photo, error) {
		p, err := scanPhoto(row)
		if err != nil {
			return domain.Photo{}, err
		}
		return *p, nil
	})
	if err != nil {
		return nil, storageErr("failed to scan photos", err)
	}
	return photos, nil
}

// IncrementVotes adds one vote in a single UPDATE, so concurrent increments never interleave.
func (r *PhotoRepo) IncrementVotes(ctx context.Context, photoID string) (int64, error) {
	if !validPhotoID(photoID) {
		return 0, domain.ErrPhotoNotFound
	}

	var votes int64
	err := r.pool.QueryRow(ctx, `UPDATE photos SET votes = votes + 1 WHERE id = $1::uuid RETURNING votes`, photoID).Scan(&votes)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrPhotoNotFound
	}
	if err != nil {
		return 0, storageErr("failed to increment votes", err)
	}
	return votes, nil
}

// CompareAndSetVotes rewrites the tally only if no increment landed since it was read.
func (r *PhotoRepo) CompareAndSetVotes(ctx context.Context, photoID string, old, votes int64) (bool, error) {
	if !validPhotoID(photoID) {
		return false, domain.ErrPhotoNotFound
	}

	tag, err := r.pool.Exec(ctx, `UPDATE photos SET votes = $3 WHERE id = $1::uuid AND votes = $2`, photoID, old, votes)
	if err != nil {
		return false, storageErr("failed to set votes", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM photos WHERE id = $1::uuid)`, photoID).Scan(&exists); err != nil {
		return false, storageErr("failed to check photo", err)
	}
	if !exists {
		return false, domain.ErrPhotoNotFound
	}
	return false, nil
}
