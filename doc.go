//go:generate flatc --go --go-namespace fb -o internal schema/scanlist.fbs

// Package pathindex builds a prefix-searchable index of a directory tree.
//
// [Scan] walks a root directory, digests every regular file, and inserts
// each file's root-relative path into a radix tree with the file's
// canonical absolute path as the value. The finished tree is attached to an
// append-only blob store (see the store package), which holds the index as
// length-prefixed node records addressed by varint offsets.
//
// # Quick Start
//
//	res, err := pathindex.Scan(ctx, "./src")
//	if err != nil {
//	    return err
//	}
//	for e, err := range res.ScanPrefix("cmd/") {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Printf("%s %s\n", e.Key, e.Value)
//	}
//
// A scan also reports size statistics comparing a flat (path, digest) list
// with the store-backed index; see [Stats].
package pathindex
