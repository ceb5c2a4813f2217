package sqlguard

import "errors"

var (
	// ErrWriteRejected is returned when the statement guard classifies a
	// query as mutating. The rejection happens before any network round
	// trip to the data store.
	ErrWriteRejected = errors.New("write operation rejected")

	// ErrNotFound is returned for any call referencing a connection id
	// that is not in the registry. Stale ids fail closed.
	ErrNotFound = errors.New("connection not found")

	// ErrTimeout is returned when a query exceeds its bounded wait.
	ErrTimeout = errors.New("query timed out")

	// ErrConnect is returned when opening a session fails.
	ErrConnect = errors.New("connection failed")

	// ErrIntegratedAuth is returned when integrated authentication is
	// requested on a platform that cannot provide it.
	ErrIntegratedAuth = errors.New("integrated authentication not available on this platform")
)
