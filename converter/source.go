package converter

import (
	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/pkg/errors"
)

// ErrSourceOpen is returned when an input container cannot be opened or
// its catalog cannot be read.
var ErrSourceOpen = errors.New("cannot open source file")

// Source is the read side of a conversion: the global attributes, the
// variable catalog, and the raw data buffers of one input file.  The
// catalog is snapshotted at open time; Data is read on demand so large
// files stream one variable at a time.
type Source interface {
	Path() string
	GlobalAttrs() *AttrList
	Variables() []*VariableDescriptor
	Data(name string) (any, error)
	Release()
}

// netcdfSource reads legacy containers through the go-native-netcdf
// format sniffer, which handles both classic CDF and HDF5-based files.
type netcdfSource struct {
	path    string
	group   api.Group
	globals *AttrList
	vars    []*VariableDescriptor
}

// OpenSource opens the input container and snapshots its catalog.
func OpenSource(path string) (Source, error) {
	group, err := netcdf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceOpen, "%s: %v", path, err)
	}
	src := &netcdfSource{
		path:    path,
		group:   group,
		globals: attrListFromMap(group.Attributes()),
	}
	for _, name := range group.ListVariables() {
		vg, err := group.GetVarGetter(name)
		if err != nil {
			group.Close()
			return nil, errors.Wrapf(ErrSourceOpen, "%s: variable %q: %v", path, name, err)
		}
		src.vars = append(src.vars, &VariableDescriptor{
			Name:  name,
			Shape: vg.Shape(),
			Type:  vg.Type(),
			Attrs: attrListFromMap(vg.Attributes()),
		})
	}
	return src, nil
}

func (s *netcdfSource) Path() string {
	return s.path
}

func (s *netcdfSource) GlobalAttrs() *AttrList {
	return s.globals
}

func (s *netcdfSource) Variables() []*VariableDescriptor {
	return s.vars
}

// Data returns the variable's raw values, untouched by any masking or
// scaling.
func (s *netcdfSource) Data(name string) (any, error) {
	vg, err := s.group.GetVarGetter(name)
	if err != nil {
		return nil, err
	}
	return vg.Values()
}

func (s *netcdfSource) Release() {
	s.group.Close()
}
