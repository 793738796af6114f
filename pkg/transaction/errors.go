package transaction

import "errors"

var (
	// ErrWrongState is returned when an operation is attempted in a
	// transaction state that does not permit it (e.g. sending a second,
	// different final response from Completed).
	ErrWrongState = errors.New("transaction: operation invalid in current state")
	// ErrNotFinalResponse is not returned by this package's transactions:
	// SendResponse reports a provisional response after a final response
	// already shipped as ErrWrongState.
	ErrNotFinalResponse = errors.New("transaction: expected a final response")
	// ErrUnsupportedAlgorithm is returned for a WWW-Authenticate challenge
	// naming an algorithm other than MD5.
	ErrUnsupportedAlgorithm = errors.New("transaction: unsupported digest algorithm")
	// ErrMissingChallengeField is returned when a Digest challenge is
	// missing realm or nonce.
	ErrMissingChallengeField = errors.New("transaction: digest challenge missing realm or nonce")
)
