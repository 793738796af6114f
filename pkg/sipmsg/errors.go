package sipmsg

import "errors"

var (
	ErrInvalidMessage    = errors.New("sipmsg: invalid message")
	ErrInvalidStartLine  = errors.New("sipmsg: invalid start line")
	ErrInvalidURI        = errors.New("sipmsg: invalid URI")
	ErrInvalidStatusCode = errors.New("sipmsg: invalid status code")
	ErrMissingBranch     = errors.New("sipmsg: missing Via branch parameter")
)
