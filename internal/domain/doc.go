// Package domain defines the core domain types and interfaces.
//
// This package contains concept-oriented files (photo.go, voter.go, errors.go, submission.go, etc.)
// with shared types and the storage contracts the application layer depends on. No implementation
// code beyond small value helpers - just contracts.
package domain
