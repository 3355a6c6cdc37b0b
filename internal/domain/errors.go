package domain

import "errors"

var (
	// ErrProfileNotFound is returned when no profile exists for the requested user
	ErrProfileNotFound = errors.New("profile not found")

	// ErrOfferNotFound is returned when no offer exists for the requested ID
	ErrOfferNotFound = errors.New("offer not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidStatus is returned when an offer carries an unknown status
	ErrInvalidStatus = errors.New("invalid offer status")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrStoreFailure is returned when the document store cannot serve a request
	ErrStoreFailure = errors.New("document store failure")
)
