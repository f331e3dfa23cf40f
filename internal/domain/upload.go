package domain

import (
	"context"
	"io"
)

// Upload is a file received with a submission.
type Upload struct {
	Filename string
	Content  io.Reader
}

// SubmitPhotoRequest carries the already-parsed submission fields.
type SubmitPhotoRequest struct {
	Title  string
	Author string
	Email  string
	File   *Upload
}

// UploadStore keeps the bytes of uploaded images. Save returns the stored file name,
// which keeps the given extension.
type UploadStore interface {
	Save(ctx context.Context, ext string, content io.Reader) (string, error)
	Remove(ctx context.Context, name string) error
}
