// Package blobstore holds the keyed whole-value storage backends used to
// persist the chunk collection.
package blobstore

import "errors"

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("blob not found")
