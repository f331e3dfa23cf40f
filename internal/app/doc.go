// Package app provides the application service layer.
//
// Orchestrates use cases: photo submission, vote admission, listing and tally reconciliation.
// Sits between HTTP handlers and domain repositories. Depends on domain interfaces, not concrete implementations.
package app
