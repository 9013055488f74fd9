// Package memo memoizes pure, expensive functions on disk.
//
// A result is stored under <dir>/<sha256>_<name>, where the hash covers the
// name and the JSON encoding of the arguments, and the value is gob encoded.
// A missing or unreadable entry is recomputed and rewritten. Entries are never
// invalidated: delete the directory after changing a memoized function.
//
//	c := memo.New(".cache")
//	features := memo.Wrap(c, "features", extract)
//	v, err := features(path)
//
// memo.Transform wraps a batch transform so repeated runs over the same data
// skip the work.
package memo
