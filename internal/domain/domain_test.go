package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Reason
	}{
		{"nil", nil, ReasonNone},
		{"malformed", ErrMalformedInput, ReasonMalformedInput},
		{"wrapped title", fmt.Errorf("%w: title exceeds the maximum length of 25 characters", ErrTitleTooLong), ReasonTitleTooLong},
		{"author", ErrAuthorTooLong, ReasonAuthorTooLong},
		{"format", ErrUnsupportedFormat, ReasonUnsupportedFormat},
		{"duplicate", ErrDuplicateVote, ReasonDuplicateVote},
		{"not found", fmt.Errorf("cast vote: %w", ErrPhotoNotFound), ReasonPhotoNotFound},
		{"storage", ErrStorage, ReasonStorageError},
		{"unknown error counts as storage", errors.New("connection reset"), ReasonStorageError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReasonOf(tt.err))
		})
	}
}

func TestPhotoIDSet_AddReportsNovelty(t *testing.T) {
	s := NewPhotoIDSet()

	assert.True(t, s.Add("p1"))
	assert.False(t, s.Add("p1"))
	assert.True(t, s.Contains("p1"))
	assert.False(t, s.Contains("p2"))
}

func TestNewPhotoIDSet_DropsDuplicatesAndSorts(t *testing.T) {
	s := NewPhotoIDSet("b", "a", "b")

	assert.Len(t, s, 2)
	assert.Equal(t, []string{"a", "b"}, s.Sorted())
}
