package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pscheid92/photocontest/internal/domain"
)

// htmlEscaper escapes the five HTML-significant characters. Single quotes become &#39;
// and double quotes &quot;, so stored lengths match what browsers receive.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// SubmissionValidator turns submission requests into stored photos.
type SubmissionValidator struct {
	rules   domain.SubmissionRules
	allowed map[string]struct{}
	photos  domain.PhotoRepository
	uploads domain.UploadStore
}

// NewSubmissionValidator creates a validator. uploads may be nil, in which case only the
// filename of the upload is recorded.
func NewSubmissionValidator(rules domain.SubmissionRules, photos domain.PhotoRepository, uploads domain.UploadStore) *SubmissionValidator {
	allowed := make(map[string]struct{}, len(rules.AllowedExtensions))
	for _, ext := range rules.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &SubmissionValidator{
		rules:   rules,
		allowed: allowed,
		photos:  photos,
		uploads: uploads,
	}
}

// Validate checks and sanitizes req without touching storage. Text fields are escaped
// before their length is measured.
func (v *SubmissionValidator) Validate(req domain.SubmitPhotoRequest) (domain.PhotoDraft, error) {
	if req.Title == "" || req.Author == "" || req.Email == "" || req.File == nil || req.File.Filename == "" {
		return domain.PhotoDraft{}, domain.ErrMalformedInput
	}

	title := escapeHTML(req.Title)
	author := escapeHTML(req.Author)
	email := escapeHTML(req.Email)

	if utf8.RuneCountInString(title) > v.rules.MaxTitleLength {
		return domain.PhotoDraft{}, fmt.Errorf("%w: title exceeds the maximum length of %d characters", domain.ErrTitleTooLong, v.rules.MaxTitleLength)
	}
	if utf8.RuneCountInString(author) > v.rules.MaxAuthorLength {
		return domain.PhotoDraft{}, fmt.Errorf("%w: author exceeds the maximum length of %d characters", domain.ErrAuthorTooLong, v.rules.MaxAuthorLength)
	}

	name := baseName(req.File.Filename)
	if _, ok := v.allowed[strings.ToLower(extension(name))]; !ok {
		return domain.PhotoDraft{}, fmt.Errorf("%w: allowed formats are %s", domain.ErrUnsupportedFormat, strings.Join(v.rules.AllowedExtensions, ", "))
	}

	return domain.PhotoDraft{
		Title:  title,
		Author: author,
		Email:  email,
		Src:    name,
	}, nil
}

// Submit validates req, stores the upload when an upload store is configured, and
// creates the photo record with zero votes.
func (v *SubmissionValidator) Submit(ctx context.Context, req domain.SubmitPhotoRequest) (*domain.Photo, error) {
	draft, err := v.Validate(req)
	if err != nil {
		return nil, err
	}

	stored := ""
	if v.uploads != nil && req.File.Content != nil {
		stored, err = v.uploads.Save(ctx, strings.ToLower(extension(draft.Src)), req.File.Content)
		if err != nil {
			return nil, storageError("save upload", err)
		}
		draft.Src = stored
	}

	photo, err := v.photos.Create(ctx, draft)
	if err != nil {
		if stored != "" {
			if rmErr := v.uploads.Remove(ctx, stored); rmErr != nil {
				slog.WarnContext(ctx, "Failed to remove upload after create failure", "file", stored, "error", rmErr)
			}
		}
		return nil, storageError("create photo", err)
	}
	return photo, nil
}

// baseName strips any directory part from a client supplied filename.
func baseName(name string) string {
	return name[strings.LastIndexAny(name, `/\`)+1:]
}

// extension returns the text after the last dot, or the whole name when it has none.
func extension(name string) string {
	return name[strings.LastIndex(name, ".")+1:]
}

// storageError wraps err as a storage failure unless it already belongs to the domain taxonomy.
func storageError(op string, err error) error {
	if domain.ReasonOf(err) != domain.ReasonStorageError {
		return err
	}
	if errors.Is(err, domain.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
