package converter

// VariableDescriptor is the metadata snapshot of one source variable: its
// name, raw shape, element type in CDL form, and raw attributes.  The
// catalog copy is the source of truth and is never mutated; the rewriter
// works on clones.
type VariableDescriptor struct {
	Name  string
	Shape []int64
	Type  string
	Attrs *AttrList
}

// Clone returns a working copy whose attribute list can be rewritten
// without touching the catalog.
func (vd *VariableDescriptor) Clone() *VariableDescriptor {
	shape := make([]int64, len(vd.Shape))
	copy(shape, vd.Shape)
	attrs := vd.Attrs
	if attrs == nil {
		attrs = NewAttrList()
	}
	return &VariableDescriptor{
		Name:  vd.Name,
		Shape: shape,
		Type:  vd.Type,
		Attrs: attrs.Clone(),
	}
}

// Rank returns the number of axes.
func (vd *VariableDescriptor) Rank() int {
	return len(vd.Shape)
}

// DimensionSpec names a dimension and gives its size.  UnlimitedSize
// marks the record dimension; this converter never emits one, but sources
// may declare one.
type DimensionSpec struct {
	Name string
	Size int64
}

// UnlimitedSize is the sentinel size of an unlimited dimension.
const UnlimitedSize = int64(0)

// ConversionContext is the per-file working state: the rewritten global
// attributes, the working variable copies, and the resolved dimensions.
// It belongs to exactly one conversion run.
type ConversionContext struct {
	GlobalAttrs *AttrList
	Variables   []*VariableDescriptor
	Dimensions  []DimensionSpec
	VarDims     map[string][]string
}
