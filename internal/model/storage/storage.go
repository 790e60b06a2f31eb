// Package storage backs the stand-in record service with either an
// in-memory map or postgres.
package storage

import "errors"

var ErrNotFound = errors.New("record not found")
