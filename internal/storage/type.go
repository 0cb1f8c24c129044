package storage

import "errors"

// Type names the backend that keeps local and sync content types.
type Type string

const (
	PG    Type = "pg"
	InMem Type = "in_mem"
)

var ErrUnsupportedStorage = errors.New("unsupported storage type")

func (t Type) Valid() bool {
	return t == PG || t == InMem
}
