package datastore

import "errors"

var (
	// ErrStoreClosed is returned when writing to a closed store or writer.
	ErrStoreClosed = errors.New("datastore is closed")
	// ErrRunNotFound is returned when a scan run does not exist.
	ErrRunNotFound = errors.New("scan run not found")
)
