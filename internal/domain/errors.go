package domain

import "errors"

var (
	ErrMalformedInput    = errors.New("wrong input")
	ErrTitleTooLong      = errors.New("title too long")
	ErrAuthorTooLong     = errors.New("author too long")
	ErrUnsupportedFormat = errors.New("wrong file format")
	ErrDuplicateVote     = errors.New("already voted for this photo")
	ErrPhotoNotFound     = errors.New("photo not found")
	ErrVoterNotFound     = errors.New("voter not found")
	ErrStorage           = errors.New("storage failure")
)

// Reason names the kind of a rejection for responses, logs and metric labels.
type Reason string

const (
	ReasonNone              Reason = "ok"
	ReasonMalformedInput    Reason = "malformed_input"
	ReasonTitleTooLong      Reason = "title_too_long"
	ReasonAuthorTooLong     Reason = "author_too_long"
	ReasonUnsupportedFormat Reason = "unsupported_format"
	ReasonDuplicateVote     Reason = "duplicate_vote"
	ReasonPhotoNotFound     Reason = "photo_not_found"
	ReasonStorageError      Reason = "storage_error"
)

// ReasonOf maps err to its rejection kind. Errors outside the taxonomy count as storage errors.
func ReasonOf(err error) Reason {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrMalformedInput):
		return ReasonMalformedInput
	case errors.Is(err, ErrTitleTooLong):
		return ReasonTitleTooLong
	case errors.Is(err, ErrAuthorTooLong):
		return ReasonAuthorTooLong
	case errors.Is(err, ErrUnsupportedFormat):
		return ReasonUnsupportedFormat
	case errors.Is(err, ErrDuplicateVote):
		return ReasonDuplicateVote
	case errors.Is(err, ErrPhotoNotFound):
		return ReasonPhotoNotFound
	default:
		return ReasonStorageError
	}
}
