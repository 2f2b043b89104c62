package payments

import "errors"

var (
	// ErrAuthentication means the webhook signature was missing, malformed
	// or did not match the shared secret. Nothing past the verifier may
	// trust such a payload.
	ErrAuthentication = errors.New("webhook signature verification failed")

	// ErrMalformedPayload means the body was not valid JSON or required
	// fields (event id, type, nested object) were absent.
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrDuplicateEvent is returned by the ledger when another writer
	// already recorded the same event id. Benign; mapped to AlreadyHandled.
	ErrDuplicateEvent = errors.New("event already processed")

	// ErrConflict is returned by the store when a concurrent writer
	// advanced the same payment first. The caller re-reads and re-evaluates
	// the terminal guard.
	ErrConflict = errors.New("payment was modified concurrently")
)
