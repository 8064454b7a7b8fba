package consolekit

import "errors"

// Sentinel errors for toolkit operations.
var (
	ErrNoRenderer       = errors.New("consolekit: renderer not registered")
	ErrNoFragment       = errors.New("consolekit: fragment not found")
	ErrNoSchema         = errors.New("consolekit: schema not registered")
	ErrBlankReason      = errors.New("consolekit: approval reason is blank")
	ErrDialogNotOpen    = errors.New("consolekit: approval dialog is not open")
	ErrDecryptFailed    = errors.New("consolekit: state decryption failed")
	ErrSignatureInvalid = errors.New("consolekit: state signature verification failed")
	ErrInvalidFormat    = errors.New("consolekit: invalid state format")
)

// IsNoRenderer checks if err means a renderer name was never registered.
func IsNoRenderer(err error) bool {
	return errors.Is(err, ErrNoRenderer)
}

// IsDecodingError checks if err is a decryption, signature or format error
// from decoding wire state.
func IsDecodingError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) ||
		errors.Is(err, ErrSignatureInvalid) ||
		errors.Is(err, ErrInvalidFormat)
}
