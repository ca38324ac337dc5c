// Exports a JSON Schema describing a store's declared entries.

package pathstore

import (
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
)

// Schema returns a JSON Schema for the document implied by the store's entry
// declarations: Single entries are objects, Array entries are arrays, and
// Dictionary entries are objects with arbitrary string keys. The schema
// describes the backing file's layout for external tooling; the store itself
// never validates content against it.
func (s *Store) Schema() *jsonschema.Schema {
	root := &jsonschema.Schema{
		Version:    jsonschema.Version,
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	paths := make([]string, 0, len(s.entries))
	for path := range s.entries {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	for _, path := range paths {
		node := root
		segs := splitSegments(path, s.sep)
		for _, seg := range segs[:len(segs)-1] {
			node = childObject(node, seg)
		}
		node.Properties.Set(segs[len(segs)-1], entrySchema(s.entries[path]))
	}
	return root
}

// childObject descends into the named property, creating an object schema
// for it when absent.
func childObject(node *jsonschema.Schema, name string) *jsonschema.Schema {
	if child, ok := node.Properties.Get(name); ok {
		if child.Properties == nil {
			child.Properties = jsonschema.NewProperties()
		}
		return child
	}
	child := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	node.Properties.Set(name, child)
	return child
}

func entrySchema(shape Shape) *jsonschema.Schema {
	switch shape {
	case ShapeArray:
		return &jsonschema.Schema{Type: "array"}
	case ShapeDictionary:
		return &jsonschema.Schema{
			Type:                 "object",
			AdditionalProperties: jsonschema.TrueSchema,
		}
	default:
		return &jsonschema.Schema{Type: "object"}
	}
}

func splitSegments(path, sep string) []string {
	var segs []string
	for _, seg := range strings.Split(path, sep) {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}
