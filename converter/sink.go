package converter

import (
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/evas-ssec/geo-converter/internal"
)

// WriterIdentity is stamped into the output's library-version global,
// replacing whatever the legacy producer wrote there.
const WriterIdentity = "github.com/batchatco/go-native-netcdf (classic CDF writer)"

// ErrSinkCreate is returned when the output container cannot be created
// or any dimension, variable, or attribute cannot be written to it.
var ErrSinkCreate = errors.New("cannot create or write output file")

// Sink is the write side of a conversion.  The fill value travels on its
// own parameter, outside the generic attribute copy, so the writer can
// install it through the format's dedicated fill mechanism.
type Sink interface {
	DeclareDimensions(dims []DimensionSpec) error
	SetGlobalAttrs(attrs *AttrList) error
	WriteVariable(name string, values any, dims []string, fill any, attrs *AttrList) error
	Release() error
}

// SinkOptions control sink behavior.
type SinkOptions struct {
	// DisableAutoScaling guarantees raw values round-trip exactly.  The
	// CDF writer never masks or scales, so this is always honored; it is
	// here so a future sink backed by a scaling-capable library keeps the
	// same contract.
	DisableAutoScaling bool
}

// cdfSink writes classic CDF (NetCDF3) through go-native-netcdf.
type cdfSink struct {
	path string
	w    api.Writer
	dims map[string]int64
}

// CreateSink creates (or truncates) the output file at path.
func CreateSink(path string, opts SinkOptions) (Sink, error) {
	if !opts.DisableAutoScaling {
		logrus.Debugf("sink %s: auto-scaling requested but the CDF writer never scales", path)
	}
	w, err := cdf.OpenWriter(path)
	if err != nil {
		return nil, errors.Wrapf(ErrSinkCreate, "%s: %v", path, err)
	}
	return &cdfSink{path: path, w: w, dims: map[string]int64{}}, nil
}

// DeclareDimensions records the resolved dimension table.  The CDF
// writer registers dimensions as variables arrive; the table is kept so
// an undeclared name surfaces here instead of as a writer error.
func (s *cdfSink) DeclareDimensions(dims []DimensionSpec) error {
	for _, d := range dims {
		s.dims[d.Name] = d.Size
	}
	return nil
}

func (s *cdfSink) SetGlobalAttrs(attrs *AttrList) error {
	if err := s.w.AddAttributes(cleanAttrs(attrs)); err != nil {
		return errors.Wrapf(ErrSinkCreate, "%s: global attributes: %v", s.path, err)
	}
	return nil
}

// WriteVariable writes one variable's raw buffer with its dimension
// names and rewritten attributes.  The fill value, when present, is
// attached through the writer's fill channel (the _FillValue attribute)
// rather than the generic attribute loop.
func (s *cdfSink) WriteVariable(name string, values any, dims []string, fill any, attrs *AttrList) error {
	for _, d := range dims {
		if _, has := s.dims[d]; !has {
			return errors.Wrapf(ErrSinkCreate, "%s: variable %q uses undeclared dimension %q", s.path, name, d)
		}
	}
	out := cleanAttrs(attrs)
	out.Delete(fillValueAttrName)
	if fill != nil {
		out.Set(fillValueAttrName, fill)
	}
	err := s.w.AddVar(internal.CleanName(name), api.Variable{
		Values:     values,
		Dimensions: dims,
		Attributes: out,
	})
	if err != nil {
		return errors.Wrapf(ErrSinkCreate, "%s: variable %q: %v", s.path, name, err)
	}
	return nil
}

func (s *cdfSink) Release() error {
	if err := s.w.Close(); err != nil {
		return errors.Wrapf(ErrSinkCreate, "%s: close: %v", s.path, err)
	}
	return nil
}

// cleanAttrs sanitizes attribute names for the output format and drops
// values the format cannot carry, warning about each.
func cleanAttrs(attrs *AttrList) *AttrList {
	out := NewAttrList()
	if attrs == nil {
		return out
	}
	for _, k := range attrs.Keys() {
		v, _ := attrs.Get(k)
		if cdl, _ := attrTypes(v); cdl == "" {
			logrus.Warnf("dropping attribute %q: unsupported value type %T", k, v)
			continue
		}
		out.Set(internal.CleanName(k), v)
	}
	return out
}
