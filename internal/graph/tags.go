package graph

import (
	"sort"
	"strings"
)

// TagModel is the reserved tag key that match predicates use to select by
// model kind. It never appears in a node's stored tag set; user tags must
// not use it.
const TagModel = "_model"

// Tags is a set of key/value labels describing what a node represents, for
// example {process: "Rainfall Runoff", hru: "Forest", catchment: "3"}.
// Together with the model kind, the tag set is the node's identity.
type Tags map[string]string

// Clone returns an independent copy of the tag set. A nil receiver yields
// an empty, non-nil map.
func (t Tags) Clone() Tags {
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Equal reports whether both tag sets hold exactly the same pairs.
func (t Tags) Equal(other Tags) bool {
	if len(t) != len(other) {
		return false
	}
	for k, v := range t {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Merge returns a new tag set holding the union of t and extra. A key
// present in both with different values is reported in the second return
// so callers can reject the conflict.
func (t Tags) Merge(extra Tags) (Tags, string) {
	out := t.Clone()
	for k, v := range extra {
		if existing, ok := out[k]; ok && existing != v {
			return nil, k
		}
		out[k] = v
	}
	return out, ""
}

// String renders the tags sorted by key, e.g. {hru=Forest, process=Routing}.
func (t Tags) String() string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(t[k])
	}
	b.WriteByte('}')
	return b.String()
}

// Canonical returns a collision-free, order-independent encoding of the tag
// set, built from sorted keys with non-printing separators. Equal tag sets
// and only equal tag sets share a canonical form.
func (t Tags) Canonical() string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteByte(0x1f)
		b.WriteString(k)
		b.WriteByte(0x1e)
		b.WriteString(t[k])
	}
	return b.String()
}

// identityKey is the arena's identity index key: the model kind plus the
// canonical tag encoding.
func identityKey(kind string, tags Tags) string {
	return kind + tags.Canonical()
}
