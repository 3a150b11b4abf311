// Package converter transforms Geocat legacy instrument output into
// CF-compliant NetCDF.
package converter

import (
	"sort"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// AttrList is an attribute mapping with deterministic output order.  It
// holds the closed set of value kinds the CDF format can represent
// (strings, signed/unsigned integers, floats and slices of those).  Keys()
// returns the names sorted, which is the order attributes are written in.
// AttrList implements api.AttributeMap so a rewritten list can be handed
// directly to the output writer.
type AttrList struct {
	names  []string // insertion order
	values map[string]any
}

// NewAttrList returns an empty attribute list.
func NewAttrList() *AttrList {
	return &AttrList{values: map[string]any{}}
}

// attrListFromMap snapshots an api.AttributeMap read from a source file.
func attrListFromMap(am api.AttributeMap) *AttrList {
	al := NewAttrList()
	if am == nil {
		return al
	}
	for _, k := range am.Keys() {
		v, has := am.Get(k)
		if !has {
			continue
		}
		al.Set(k, v)
	}
	return al
}

// Set adds or replaces the named attribute.
func (al *AttrList) Set(name string, val any) {
	if _, has := al.values[name]; !has {
		al.names = append(al.names, name)
	}
	al.values[name] = val
}

// Delete removes the named attribute.  Removing a missing name is a no-op.
func (al *AttrList) Delete(name string) {
	if _, has := al.values[name]; !has {
		return
	}
	delete(al.values, name)
	for i, n := range al.names {
		if n == name {
			al.names = append(al.names[:i], al.names[i+1:]...)
			break
		}
	}
}

// Has reports whether the named attribute is present.
func (al *AttrList) Has(name string) bool {
	_, has := al.values[name]
	return has
}

// Len returns the number of attributes.
func (al *AttrList) Len() int {
	return len(al.names)
}

// Clone returns an independent copy.  Slice values are shared; the
// rewriter replaces values wholesale and never mutates them in place.
func (al *AttrList) Clone() *AttrList {
	out := NewAttrList()
	for _, n := range al.names {
		out.Set(n, al.values[n])
	}
	return out
}

// Keys returns the attribute names sorted, the order they are written in.
func (al *AttrList) Keys() []string {
	out := make([]string, len(al.names))
	copy(out, al.names)
	sort.Strings(out)
	return out
}

// Get returns the value for the key.
func (al *AttrList) Get(key string) (val any, has bool) {
	val, has = al.values[key]
	return
}

// GetType returns the CDL type of the attribute value.
func (al *AttrList) GetType(key string) (string, bool) {
	v, has := al.values[key]
	if !has {
		return "", false
	}
	cdl, _ := attrTypes(v)
	return cdl, cdl != ""
}

// GetGoType returns the Go type of the attribute value.
func (al *AttrList) GetGoType(key string) (string, bool) {
	v, has := al.values[key]
	if !has {
		return "", false
	}
	_, goT := attrTypes(v)
	return goT, goT != ""
}

// attrTypes maps an attribute value to its (CDL, Go) type names.  An
// unsupported kind maps to empty strings; the sink skips those with a
// warning rather than failing the file.
func attrTypes(v any) (string, string) {
	switch v.(type) {
	case string:
		return "string", "string"
	case int8, []int8:
		return "byte", "int8"
	case uint8, []uint8:
		return "ubyte", "uint8"
	case int16, []int16:
		return "short", "int16"
	case uint16, []uint16:
		return "ushort", "uint16"
	case int32, []int32:
		return "int", "int32"
	case uint32, []uint32:
		return "uint", "uint32"
	case int64, []int64:
		return "int64", "int64"
	case uint64, []uint64:
		return "uint64", "uint64"
	case float32, []float32:
		return "float", "float32"
	case float64, []float64:
		return "double", "float64"
	}
	return "", ""
}

// attrFloat coerces a scalar numeric attribute value to float64.  Slices
// of length one count as scalars, which is how single-valued attributes
// come back from some readers.
func attrFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int8:
		return float64(t), true
	case uint8:
		return float64(t), true
	case int16:
		return float64(t), true
	case uint16:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case []int8:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	case []uint8:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	case []int16:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	case []uint16:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	case []int32:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	case []uint32:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	case []int64:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	case []uint64:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	case []float32:
		if len(t) == 1 {
			return float64(t[0]), true
		}
	case []float64:
		if len(t) == 1 {
			return t[0], true
		}
	}
	return 0, false
}

// attrInt coerces a scalar numeric attribute value to int64.  Floats only
// qualify when they carry an integral value.
func attrInt(v any) (int64, bool) {
	f, ok := attrFloat(v)
	if !ok {
		return 0, false
	}
	n := int64(f)
	if float64(n) != f {
		return 0, false
	}
	return n, true
}

// attrString coerces an attribute value to a string.
func attrString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
