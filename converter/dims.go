package converter

import (
	"fmt"

	"github.com/batchatco/go-thrower"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrDimensionConflict is returned when a variable's axis size cannot be
// reconciled with an already-established size for the same dimension name.
var ErrDimensionConflict = errors.New("dimension size conflict")

// Resolution is the outcome of dimension resolution for one file: the
// dimension table in registration order and the dimension-name sequence
// for every variable in the catalog.
type Resolution struct {
	Dimensions []DimensionSpec
	VarDims    map[string][]string
}

// dimTable accumulates named dimension sizes during resolution.
type dimTable struct {
	order []string
	sizes map[string]int64
}

func newDimTable() *dimTable {
	return &dimTable{sizes: map[string]int64{}}
}

// register binds name to size.  A rebind with a different size is a
// resolution conflict and is thrown.
func (dt *dimTable) register(varName, dimName string, size int64) {
	cur, has := dt.sizes[dimName]
	if !has {
		dt.sizes[dimName] = size
		dt.order = append(dt.order, dimName)
		return
	}
	if cur != size {
		thrower.Throw(errors.Wrapf(ErrDimensionConflict,
			"variable %q wants %s=%d but %s=%d is already established",
			varName, dimName, size, dimName, cur))
	}
}

func (dt *dimTable) specs() []DimensionSpec {
	out := make([]DimensionSpec, 0, len(dt.order))
	for _, name := range dt.order {
		out = append(out, DimensionSpec{Name: name, Size: dt.sizes[name]})
	}
	return out
}

// ResolveDimensions assigns a dimension-name sequence to every variable
// and builds one coherent table of named dimension sizes.
//
// Variables with exactly two axes and no special-shape rule are regular
// rasters sharing the lines/elements dimensions, whose sizes the first
// regular variable establishes.  A regular variable whose shape disagrees
// is demoted to the irregular pass with a warning, not failed.  Irregular
// variables take their dimension names from the special-rule table, or
// get fresh temp_dim_<n> names when nothing matches.  An irreconcilable
// size for an established dimension name fails the whole file.
func ResolveDimensions(vars []*VariableDescriptor) (res *Resolution, err error) {
	defer thrower.RecoverError(&err)

	table := newDimTable()
	varDims := make(map[string][]string, len(vars))

	// First pass: establish the shared raster shape.
	var irregular []*VariableDescriptor
	established := false
	var linesSize, elemsSize int64
	for _, vd := range vars {
		if _, special := findSpecialRule(vd.Name); special || vd.Rank() != 2 {
			irregular = append(irregular, vd)
			continue
		}
		if !established {
			linesSize, elemsSize = vd.Shape[0], vd.Shape[1]
			established = true
		}
		if vd.Shape[0] != linesSize || vd.Shape[1] != elemsSize {
			logrus.Warnf("variable %q shape (%d, %d) does not match the established raster shape (%d, %d); assigning it separate dimensions",
				vd.Name, vd.Shape[0], vd.Shape[1], linesSize, elemsSize)
			irregular = append(irregular, vd)
			continue
		}
		varDims[vd.Name] = []string{linesDimName, elementsDimName}
	}
	if established {
		table.register("", linesDimName, linesSize)
		table.register("", elementsDimName, elemsSize)
	}

	// Second pass: the deferred variables, in the order they were set aside.
	tempIndex := 0
	for _, vd := range irregular {
		rule, ok := findSpecialRule(vd.Name)
		if !ok {
			// Temp dimension names are numbered across the whole file and
			// never reused, even between variables.
			dims := make([]string, vd.Rank())
			for i := range dims {
				dims[i] = fmt.Sprintf("%s%d", tempDimPrefix, tempIndex)
				tempIndex++
				table.register(vd.Name, dims[i], vd.Shape[i])
			}
			varDims[vd.Name] = dims
			continue
		}
		if len(rule.Dims) != vd.Rank() {
			thrower.Throw(errors.Wrapf(ErrDimensionConflict,
				"variable %q has %d axes but its shape rule declares %d",
				vd.Name, vd.Rank(), len(rule.Dims)))
		}
		dims := make([]string, vd.Rank())
		for i := range rule.Dims {
			size := rule.Shape[i]
			if size == inheritSize {
				size = vd.Shape[i]
			} else if size != vd.Shape[i] {
				thrower.Throw(errors.Wrapf(ErrDimensionConflict,
					"variable %q axis %d has size %d but its shape rule declares %d",
					vd.Name, i, vd.Shape[i], size))
			}
			dims[i] = rule.Dims[i]
			table.register(vd.Name, dims[i], size)
		}
		varDims[vd.Name] = dims
	}

	return &Resolution{Dimensions: table.specs(), VarDims: varDims}, nil
}
