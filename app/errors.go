package app

import "errors"

// Typed errors for the payment layer. The dispatcher resolves all of these
// at its boundary; nothing propagates to callers as an unhandled fault.
// ErrValidation indicates the inbound payment submission is missing
// required fields (token bundle). No network call is attempted. Provider
// rejections are not errors; the dispatcher folds them into the Result.
var ErrValidation = errors.New("payment validation")

// User-facing notice texts queued on the failure paths.
const (
	msgPaymentInvalid = "Payment invalid, please check your card details and try again."
	msgPaymentFailed  = "Payment could not be processed, please try again."
)
