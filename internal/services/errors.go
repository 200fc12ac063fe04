package services

import (
	"errors"
	"fmt"
)

// Authentication
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredential  = errors.New("missing token")
	ErrInvalidCredential  = errors.New("invalid token")
	ErrCredentialExpired  = fmt.Errorf("%w: expired", ErrInvalidCredential)
	ErrCredentialRevoked  = fmt.Errorf("%w: revoked", ErrInvalidCredential)
)

// Property lookup
var (
	ErrInvalidCode      = errors.New("invalid property code")
	ErrPropertyNotFound = errors.New("property not found")
)

// Document assembly
var (
	ErrEmptySelection    = errors.New("no images selected")
	ErrSelectionTooLarge = errors.New("too many images selected")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrImageFetchFailed  = errors.New("image fetch failed")
	ErrImageDecodeFailed = errors.New("image decode failed")
)

var ErrStoreUnavailable = errors.New("store unavailable")

// ImageError reports which URL of a selection broke the document.
type ImageError struct {
	URL string
	Err error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

func imageError(url string, kind error, cause error) error {
	if cause == nil {
		return &ImageError{URL: url, Err: kind}
	}
	return &ImageError{URL: url, Err: fmt.Errorf("%w: %w", kind, cause)}
}
