// Package books is a typed client for the book catalogue REST service.
//
// The service exposes five endpoints: GET /books, GET /books/{id}, POST /books,
// PUT /books/{id} and DELETE /books/{id}. Writes are sent form-urlencoded and
// acknowledged with {"message": "..."}; the created record is not echoed, so
// callers that need it must list again. Failures are reported as
// *NetworkError, *ServerError, *NotFoundError or *ValidationError.
package books
