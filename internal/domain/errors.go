package domain

import "errors"

var (
	ErrUnsupportedConversion = errors.New("unsupported conversion type")
	ErrMissingFile           = errors.New("no file uploaded")
	ErrMissingFiles          = errors.New("no files uploaded for batch processing")
	ErrTooManyFiles          = errors.New("too many files uploaded")
	ErrMissingPassword       = errors.New("password is required")
	ErrMissingSplitRanges    = errors.New("split ranges are required")
	ErrInvalidSplitRanges    = errors.New("invalid split ranges")
	ErrInvalidQuality        = errors.New("compression level must be an integer between 1 and 100")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrUnsupportedFile       = errors.New("unsupported file type")
	ErrNoText                = errors.New("no text could be extracted")
	ErrOutputTooLarge        = errors.New("output exceeds allowed size")

	// ErrInvalidAPIKey signals that the provided API key is not known.
	ErrInvalidAPIKey = errors.New("invalid api key")
	// ErrTokenStoreNotReady signals that the token store has not been loaded yet.
	// This can happen during startup when the DB isn't ready.
	ErrTokenStoreNotReady = errors.New("token store not ready")
)

var badInput = []error{
	ErrUnsupportedConversion,
	ErrMissingFile,
	ErrMissingFiles,
	ErrTooManyFiles,
	ErrMissingPassword,
	ErrMissingSplitRanges,
	ErrInvalidSplitRanges,
	ErrInvalidQuality,
	ErrInvalidPassword,
	ErrUnsupportedFile,
	ErrNoText,
}

// IsBadInput reports whether err was caused by the request rather than by a
// failing collaborator.
func IsBadInput(err error) bool {
	for _, target := range badInput {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
