// Package pathstore provides an embedded, file-backed JSON document store
// addressed by string paths.
//
// # Overview
//
// A [Store] owns a single JSON tree persisted to one file. Every top-level
// path is declared at construction time with a [Shape]: a Single object, an
// ordered Array, or a string-keyed Dictionary. Operations address a whole
// entry, one array element, or one dictionary value, selected by an optional
// [Locator] built with [Index] or [Key].
//
// # Persistence
//
// The tree is loaded lazily on first access and written back either eagerly
// after every mutation (Options.SaveOnPush) or on an explicit [Store.Save].
// Saves write to a temporary file and atomically rename it over the target, so
// a crash mid-write cannot leave a corrupted document. Reads always operate on
// the in-memory tree, never on the file.
//
// # Concurrency
//
// A Store is not safe for concurrent use. Every operation is synchronous and
// the design provides no internal locking; callers that share a Store across
// goroutines must serialize all calls themselves. One Store instance should
// own its backing file exclusively; coordinating multiple processes on the
// same file is out of scope.
//
// # Values
//
// Values are held in the tree by reference. A value passed to Set, Push or
// Merge must not be mutated by the caller afterwards, and values returned by
// Get alias the tree until the next Reload.
package pathstore
