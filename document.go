package pathstore

import (
	"strconv"
	"strings"
)

// segment is one step of a canonical path: either an object key, an explicit
// array index, or the append marker.
type segment struct {
	key       string
	index     int
	isIndex   bool
	appendEnd bool
}

// parsePath splits a canonical path into segments. A token like "users[2]"
// yields a key segment followed by an index segment; "[-1]" addresses the
// current last element and "[]" is the append marker.
func parsePath(path, sep string) ([]segment, error) {
	var segs []segment
	for _, token := range strings.Split(path, sep) {
		if token == "" {
			continue
		}
		open := strings.IndexByte(token, '[')
		if open < 0 {
			if strings.ContainsRune(token, ']') {
				return nil, storeErrorf(CodeInvalidKey, "path segment %q has an unmatched bracket", token)
			}
			segs = append(segs, segment{key: token})
			continue
		}
		if open > 0 {
			segs = append(segs, segment{key: token[:open]})
		}
		rest := token[open:]
		for rest != "" {
			if rest[0] != '[' {
				return nil, storeErrorf(CodeInvalidKey, "path segment %q has trailing characters after index", token)
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, storeErrorf(CodeInvalidKey, "path segment %q has an unmatched bracket", token)
			}
			body := rest[1:end]
			if body == "" {
				segs = append(segs, segment{appendEnd: true})
			} else {
				i, err := strconv.Atoi(body)
				if err != nil {
					return nil, storeErrorf(CodeInvalidKey, "path segment %q has non-integer index %q", token, body)
				}
				segs = append(segs, segment{index: i, isIndex: true})
			}
			rest = rest[end+1:]
		}
	}
	if len(segs) == 0 {
		return nil, storeErrorf(CodeUnknownPath, "path %q resolves to no segments", path)
	}
	return segs, nil
}

// document is the in-memory JSON tree. The root is always an object whose
// keys are the first segments of the declared entry paths.
type document struct {
	root map[string]any
}

func newDocument() *document {
	return &document{root: map[string]any{}}
}

// get walks the canonical path and returns the addressed node. A missing
// intermediate segment yields found=false rather than an error; callers
// decide whether missing data is a failure.
func (d *document) get(path, sep string) (any, bool, error) {
	segs, err := parsePath(path, sep)
	if err != nil {
		return nil, false, err
	}
	cur := any(d.root)
	for _, seg := range segs {
		switch {
		case seg.appendEnd:
			// The append marker never addresses an existing node.
			return nil, false, nil
		case seg.isIndex:
			arr, ok := cur.([]any)
			if !ok {
				return nil, false, nil
			}
			i := seg.index
			if i == -1 {
				i = len(arr) - 1
			}
			if i < 0 || i >= len(arr) {
				return nil, false, nil
			}
			cur = arr[i]
		default:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false, nil
			}
			v, ok := m[seg.key]
			if !ok {
				return nil, false, nil
			}
			cur = v
		}
	}
	return cur, true, nil
}

// exists reports whether the canonical path addresses an existing node.
func (d *document) exists(path, sep string) (bool, error) {
	_, found, err := d.get(path, sep)
	return found, err
}

// set replaces the node at the canonical path, creating intermediate
// containers as needed: objects for key segments, arrays for index segments.
// An existing non-container value in the way is replaced.
func (d *document) set(path, sep string, value any) error {
	segs, err := parsePath(path, sep)
	if err != nil {
		return err
	}
	if segs[0].isIndex || segs[0].appendEnd {
		return storeErrorf(CodeInvalidKey, "path %q must start with an object key", path)
	}
	node, err := setNode(d.root, segs, value)
	if err != nil {
		return err
	}
	d.root = node.(map[string]any)
	return nil
}

// setNode writes value below cur and returns the possibly reallocated cur.
// Array writes accept index -1 (current last element), an existing index, or
// the insertion point len(arr); anything past the end fails rather than
// creating sparse slots.
func setNode(cur any, segs []segment, value any) (any, error) {
	if len(segs) == 0 {
		return value, nil
	}
	seg := segs[0]
	if seg.appendEnd {
		arr, _ := cur.([]any)
		child, err := setNode(nil, segs[1:], value)
		if err != nil {
			return nil, err
		}
		return append(arr, child), nil
	}
	if seg.isIndex {
		arr, _ := cur.([]any)
		i := seg.index
		if i == -1 {
			i = len(arr) - 1
			if i < 0 {
				return nil, storeErrorf(CodeIndexOutOfRange, "index -1 on empty array")
			}
		}
		switch {
		case i < 0 || i > len(arr):
			return nil, storeErrorf(CodeIndexOutOfRange, "index %d is not a valid position in array of length %d", seg.index, len(arr))
		case i == len(arr):
			child, err := setNode(nil, segs[1:], value)
			if err != nil {
				return nil, err
			}
			return append(arr, child), nil
		default:
			child, err := setNode(arr[i], segs[1:], value)
			if err != nil {
				return nil, err
			}
			arr[i] = child
			return arr, nil
		}
	}
	m, ok := cur.(map[string]any)
	if !ok {
		m = map[string]any{}
	}
	child, err := setNode(m[seg.key], segs[1:], value)
	if err != nil {
		return nil, err
	}
	m[seg.key] = child
	return m, nil
}

// merge shallow-combines value into the existing node at the canonical path.
// When both the existing node and value are objects their keys are merged,
// the new value winning per key; otherwise the node is replaced. The node
// must already exist.
func (d *document) merge(path, sep string, value any) error {
	node, found, err := d.get(path, sep)
	if err != nil {
		return err
	}
	if !found {
		return storeErrorf(CodeMergeTargetMissing, "cannot merge into %q: no existing data", path)
	}
	dst, dstOK := node.(map[string]any)
	src, srcOK := value.(map[string]any)
	if dstOK && srcOK {
		for k, v := range src {
			dst[k] = v
		}
		return nil
	}
	return d.set(path, sep, value)
}

// delete removes the node at the canonical path. Deleting a missing node is
// a no-op; the return value reports whether anything was removed.
func (d *document) delete(path, sep string) (bool, error) {
	segs, err := parsePath(path, sep)
	if err != nil {
		return false, err
	}
	node, removed := deleteNode(d.root, segs)
	if removed {
		d.root = node.(map[string]any)
	}
	return removed, nil
}

// deleteNode removes the node addressed by segs below cur and returns the
// possibly reallocated cur.
func deleteNode(cur any, segs []segment) (any, bool) {
	seg := segs[0]
	if seg.appendEnd {
		return cur, false
	}
	if seg.isIndex {
		arr, ok := cur.([]any)
		if !ok {
			return cur, false
		}
		i := seg.index
		if i == -1 {
			i = len(arr) - 1
		}
		if i < 0 || i >= len(arr) {
			return cur, false
		}
		if len(segs) == 1 {
			return append(arr[:i], arr[i+1:]...), true
		}
		child, removed := deleteNode(arr[i], segs[1:])
		if removed {
			arr[i] = child
		}
		return arr, removed
	}
	m, ok := cur.(map[string]any)
	if !ok {
		return cur, false
	}
	if len(segs) == 1 {
		if _, ok := m[seg.key]; !ok {
			return cur, false
		}
		delete(m, seg.key)
		return m, true
	}
	child, removed := deleteNode(m[seg.key], segs[1:])
	if removed {
		m[seg.key] = child
	}
	return m, removed
}
