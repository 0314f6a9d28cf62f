package model

import "errors"

// Error kinds shared across components. Wrap them with fmt.Errorf and %w,
// test for them with errors.Is.
var (
	ErrCollaboratorUnavailable    = errors.New("collaborator unavailable")
	ErrStaleOrMissingSubscription = errors.New("subscription state unavailable")
	ErrForgeFailure               = errors.New("forge failed")
	ErrSubmissionFailure          = errors.New("submission failed")
	ErrSubmissionInFlight         = errors.New("submission already in flight")
	ErrTrainingFailure            = errors.New("training failed")
	ErrNotFound                   = errors.New("not found")
)
