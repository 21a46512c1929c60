package eventstore

import (
	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
)

var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.NewError(errors.CategoryEventStore, "could not open event store database").Build()

	// ErrInitializeSchemaFailed indicates the events table could not be created.
	ErrInitializeSchemaFailed = errors.NewError(errors.CategoryEventStore, "failed to initialize event store schema").Build()

	// ErrEventAppendFailed indicates recording an event failed.
	ErrEventAppendFailed = errors.NewError(errors.CategoryEventStore, "failed to append event to store").Build()

	// ErrEventQueryFailed indicates reading events back failed.
	ErrEventQueryFailed = errors.NewError(errors.CategoryEventStore, "failed to query events from store").Build()
)

// wrap starts an error for cause carrying the sentinel's category and message.
func wrap(sentinel *errors.ClassifiedError, cause error) *errors.ErrorBuilder {
	return errors.WrapError(cause, sentinel.Category(), sentinel.Message())
}
