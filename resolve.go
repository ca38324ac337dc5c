package pathstore

import (
	"strconv"
	"strings"
)

// Shape declares how a top-level path stores its data.
type Shape string

const (
	// ShapeSingle stores one value, typically an object.
	ShapeSingle Shape = "single"
	// ShapeArray stores an ordered list addressed by integer index.
	ShapeArray Shape = "array"
	// ShapeDictionary stores a string-keyed map addressed by key.
	ShapeDictionary Shape = "dictionary"
)

// Valid reports whether s is one of the declared shapes.
func (s Shape) Valid() bool {
	switch s {
	case ShapeSingle, ShapeArray, ShapeDictionary:
		return true
	}
	return false
}

// Locator qualifies an operation on an Array or Dictionary entry. The zero
// value is not meaningful; construct one with Index or Key. An omitted locator
// is expressed by not passing one at all, so Index(0) is always a supplied
// locator and never mistaken for "no locator".
type Locator struct {
	key   string
	index int
	isKey bool
}

// Index addresses one array element. Index(-1) addresses the element that is
// last at the time the operation runs.
func Index(i int) Locator {
	return Locator{index: i}
}

// Key addresses one dictionary value. The key must be simple: it may not
// contain the path separator or bracket characters.
func Key(k string) Locator {
	return Locator{key: k, isKey: true}
}

// appendMarker is the canonical-path suffix that the navigator resolves to
// "insert at the end of the array".
const appendMarker = "[]"

// resolve maps a declared entry plus an optional locator to the canonical
// path understood by the tree navigator. It is a pure function; it never
// touches the document. appendOnOmitted selects the append marker when an
// Array locator is omitted (push semantics) instead of addressing the whole
// entry.
func resolve(base string, sep string, shape Shape, loc *Locator, appendOnOmitted bool) (string, error) {
	switch shape {
	case ShapeSingle:
		// A Single entry has exactly one node; any locator is ignored.
		return base, nil
	case ShapeArray:
		if loc == nil {
			if appendOnOmitted {
				return base + appendMarker, nil
			}
			return base, nil
		}
		if loc.isKey {
			return "", storeErrorf(CodeInvalidLocator, "array entry %q requires an index locator, got key %q", base, loc.key)
		}
		if loc.index < -1 {
			return "", storeErrorf(CodeIndexOutOfRange, "array entry %q: index %d is not addressable", base, loc.index)
		}
		return base + "[" + strconv.Itoa(loc.index) + "]", nil
	case ShapeDictionary:
		if loc == nil {
			return base, nil
		}
		if !loc.isKey {
			return "", storeErrorf(CodeInvalidLocator, "dictionary entry %q requires a key locator, got index %d", base, loc.index)
		}
		key, err := validateKey(loc.key, sep)
		if err != nil {
			return "", err
		}
		return base + sep + key, nil
	}
	return "", storeErrorf(CodeUnknownPath, "entry %q has undeclared shape %q", base, shape)
}

// validateKey enforces the simple-key invariant: a dictionary key must not be
// confusable with a multi-segment path. One trailing separator is tolerated
// and stripped.
func validateKey(key, sep string) (string, error) {
	key = strings.TrimSuffix(key, sep)
	if key == "" {
		return "", storeErrorf(CodeInvalidKey, "dictionary key must not be empty")
	}
	if strings.Contains(key, sep) || strings.ContainsAny(key, "[]") {
		return "", storeErrorf(CodeInvalidKey, "dictionary key %q must not contain %q or bracket characters", key, sep)
	}
	return key, nil
}
