package storage

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrRemoteStatus   = errors.New("unexpected remote status")
)

// RemoteStatusError reports a remote call answered with an unexpected status.
type RemoteStatusError struct {
	Method string
	URI    string
	Status int
}

func (e *RemoteStatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URI, e.Status)
}

func (e *RemoteStatusError) Unwrap() error {
	return ErrRemoteStatus
}
