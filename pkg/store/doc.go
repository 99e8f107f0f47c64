// Package store holds the client-side catalogue state: the list of books, a
// loading flag and the last error message.
//
// State changes only through four actions applied by the pure Reduce function.
// Store wraps Reduce with the imperative operations a UI needs (FetchBooks,
// CreateBook, UpdateBook, DeleteBook, ClearError). Each operation is a full
// request/response cycle against the catalogue API; failures end up as a
// human-readable string in State.Error and are never returned to the caller.
//
// Operations on one Store are serialised, so at most one request is in flight
// and Loading is true only while it is. Call Init once after construction to
// perform the initial fetch.
package store
