package domain

import "go.trai.ch/zerr"

var (
	// ErrCancelled is returned when a fetch was aborted through its context.
	// It is never surfaced to the user.
	ErrCancelled = zerr.New("request cancelled")

	// ErrLoadFailed is returned when a fetch cycle for a view could not complete.
	ErrLoadFailed = zerr.New("failed to load collection")

	// ErrMutationFailed is returned when a create, update, delete or upload was rejected.
	ErrMutationFailed = zerr.New("mutation failed")

	// ErrValidationRejected is returned when a client-side precondition blocks an action
	// before any network call is made.
	ErrValidationRejected = zerr.New("validation rejected")

	// ErrDeleteNotConfirmed is returned when the confirmation gate declined a delete.
	ErrDeleteNotConfirmed = zerr.New("delete not confirmed")

	// ErrUnknownView is returned when a view name is not present in the catalog.
	ErrUnknownView = zerr.New("unknown view")

	// ErrUnknownFilter is returned when a filter name is not declared by the view.
	ErrUnknownFilter = zerr.New("unknown filter")

	// ErrUnauthorized is returned when the backend rejected the bearer token.
	ErrUnauthorized = zerr.New("unauthorized")

	// ErrNotFound is returned when the backend has no record for the requested id.
	ErrNotFound = zerr.New("resource not found")

	// ErrConflict is returned when the backend refused a mutation because of
	// referential constraints or a duplicate record.
	ErrConflict = zerr.New("resource conflict")

	// ErrUnexpectedResponse is returned when a response body is neither a collection
	// nor an items envelope.
	ErrUnexpectedResponse = zerr.New("unexpected response shape")

	// ErrControllerClosed is returned when an operation is attempted on a torn down controller.
	ErrControllerClosed = zerr.New("controller closed")

	// ErrConfigInvalid is returned when the configuration file fails validation.
	ErrConfigInvalid = zerr.New("invalid configuration")
)
