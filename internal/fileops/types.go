// Package fileops provides content hashing for scanned files.
package fileops

import "github.com/meigma/pathindex/internal/blobtype"

// Re-export types from blobtype to keep call sites short.
type Digest = blobtype.Digest
