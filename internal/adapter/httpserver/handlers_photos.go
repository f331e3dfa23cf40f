package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/photocontest/internal/domain"
)

type photoResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Src       string    `json:"src"`
	Votes     int64     `json:"votes"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPhotoResponse(p domain.Photo) photoResponse {
	return photoResponse{
		ID:        p.ID,
		Title:     p.Title,
		Author:    p.Author,
		Email:     p.Email,
		Src:       p.Src,
		Votes:     p.Votes,
		CreatedAt: p.CreatedAt,
	}
}

type voteResponse struct {
	Message string `json:"message"`
	Votes   int64  `json:"votes"`
}

func (s *Server) handleListPhotos(c echo.Context) error {
	photos, err := s.app.ListPhotos(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]photoResponse, 0, len(photos))
	for _, p := range photos {
		out = append(out, toPhotoResponse(p))
	}
	if err := c.JSON(http.StatusOK, out); err != nil {
		return fmt.Errorf("failed to write photos response: %w", err)
	}
	return nil
}

func (s *Server) handleGetPhoto(c echo.Context) error {
	photo, err := s.app.GetPhoto(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, toPhotoResponse(*photo)); err != nil {
		return fmt.Errorf("failed to write photo response: %w", err)
	}
	return nil
}

// handleSubmitPhoto reads a multipart form with title, author, email and file fields.
// A missing or unreadable file part is passed on as no file.
func (s *Server) handleSubmitPhoto(c echo.Context) error {
	req := domain.SubmitPhotoRequest{
		Title:  c.FormValue("title"),
		Author: c.FormValue("author"),
		Email:  c.FormValue("email"),
	}

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("failed to open uploaded file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.WarnContext(c.Request().Context(), "Failed to close uploaded file", "error", err)
			}
		}()
		req.File = &domain.Upload{Filename: fh.Filename, Content: f}
	}

	photo, err := s.app.SubmitPhoto(c.Request().Context(), req)
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusCreated, toPhotoResponse(*photo)); err != nil {
		return fmt.Errorf("failed to write photo response: %w", err)
	}
	return nil
}

// handleVote counts one vote for the photo by the client's IP address.
func (s *Server) handleVote(c echo.Context) error {
	votes, err := s.app.CastVote(c.Request().Context(), c.RealIP(), c.Param("id"))
	if err != nil {
		return err
	}
	if err := c.JSON(http.StatusOK, voteResponse{Message: "OK", Votes: votes}); err != nil {
		return fmt.Errorf("failed to write vote response: %w", err)
	}
	return nil
}
