package api

import (
	"errors"
	"net/http"
)

// Sentinel errors returned by the storage implementations and mapped onto
// the wire taxonomy by the handlers. StorageUnavailable is the only
// transient kind; everything else is a deterministic rejection.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredential  = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("not logged in")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrSelfFollow         = errors.New("cannot follow yourself")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

const kindValidation = "validation_failed"

// errKind resolves an error to its machine-readable kind and HTTP status.
func errKind(err error) (string, int) {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate_email", http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential", http.StatusUnauthorized
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated", http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return "forbidden", http.StatusForbidden
	case errors.Is(err, ErrSelfFollow):
		return "self_follow", http.StatusBadRequest
	case errors.Is(err, ErrStorageUnavailable):
		return "storage_unavailable", http.StatusServiceUnavailable
	default:
		return "internal", http.StatusInternalServerError
	}
}
