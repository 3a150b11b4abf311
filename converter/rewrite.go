package converter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/batchatco/go-thrower"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrTimestamp is returned when the legacy Image_Date/Image_Time globals
// cannot be composed into an ISO-8601 timestamp.  Unlike every other
// rewrite rule, this one is mandatory and fails the file.
var ErrTimestamp = errors.New("cannot compose Image_Date_Time")

// enrichState tracks what the rewriter has already done to one variable,
// so later rules do not overwrite earlier ones.
type enrichState struct {
	rangeSetByScaling bool
}

// RewriteMetadata applies the CF-compliance rules to the global and
// per-variable attributes and returns rewritten copies.  The inputs are
// never mutated.  writerIdentity names the output library and replaces
// the legacy library-version global.
func RewriteMetadata(globals *AttrList, vars []*VariableDescriptor, writerIdentity string) (g *AttrList, out []*VariableDescriptor, err error) {
	defer thrower.RecoverError(&err)

	if globals == nil {
		globals = NewAttrList()
	}
	g = rewriteGlobals(globals, writerIdentity)

	out = make([]*VariableDescriptor, 0, len(vars))
	for _, vd := range vars {
		wd := vd.Clone()
		rewriteVariable(wd)
		out = append(out, wd)
	}
	return g, out, nil
}

// rewriteGlobals composes the timestamp and stamps the writer identity.
// Throws ErrTimestamp (wrapped) on malformed date/time globals.
func rewriteGlobals(globals *AttrList, writerIdentity string) *AttrList {
	g := globals.Clone()

	dateVal, hasDate := g.Get(imageDateAttrName)
	timeVal, hasTime := g.Get(imageTimeAttrName)
	if !hasDate || !hasTime {
		thrower.Throw(errors.Wrapf(ErrTimestamp,
			"missing %s or %s global attribute", imageDateAttrName, imageTimeAttrName))
	}
	stamp, err := composeImageDateTime(dateVal, timeVal)
	if err != nil {
		thrower.Throw(err)
	}
	g.Delete(imageDateAttrName)
	g.Delete(imageTimeAttrName)
	g.Set(imageDateTimeAttrName, stamp)

	g.Set(libVersionAttrName, writerIdentity)
	return g
}

// composeImageDateTime converts the legacy Image_Date (years since 1900
// concatenated with day of year, e.g. 115032 = 2015, day 32) and
// Image_Time (HHMMSS, zero padded) into one ISO-8601 UTC timestamp.
func composeImageDateTime(dateVal, timeVal any) (string, error) {
	dateNum, ok := attrNumber(dateVal)
	if !ok {
		return "", errors.Wrapf(ErrTimestamp, "%s value %v is not numeric", imageDateAttrName, dateVal)
	}
	timeNum, ok := attrNumber(timeVal)
	if !ok {
		return "", errors.Wrapf(ErrTimestamp, "%s value %v is not numeric", imageTimeAttrName, timeVal)
	}

	year := 1900 + int(dateNum/1000)
	dayOfYear := int(dateNum % 1000)
	if dateNum < 0 || dayOfYear < 1 {
		return "", errors.Wrapf(ErrTimestamp, "%s value %d has no valid day of year", imageDateAttrName, dateNum)
	}

	if timeNum < 0 || timeNum > 235959 {
		return "", errors.Wrapf(ErrTimestamp, "%s value %d is not HHMMSS", imageTimeAttrName, timeNum)
	}
	hour := int(timeNum / 10000)
	minute := int(timeNum/100) % 100
	second := int(timeNum % 100)
	if minute > 59 || second > 59 {
		return "", errors.Wrapf(ErrTimestamp, "%s value %d is not HHMMSS", imageTimeAttrName, timeNum)
	}

	t := time.Date(year, time.January, 1, hour, minute, second, 0, time.UTC)
	t = t.AddDate(0, 0, dayOfYear-1)
	if t.Year() != year {
		return "", errors.Wrapf(ErrTimestamp, "day of year %d is past the end of %d", dayOfYear, year)
	}
	return t.Format(isoTimeFormat), nil
}

// attrNumber coerces a date/time global to an integer.  The legacy files
// carry these as either ints or decimal strings.
func attrNumber(v any) (int64, bool) {
	if s, ok := v.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return attrInt(v)
}

// rewriteVariable applies the per-variable rules in their fixed order.
// None of them are fatal; a rule that cannot apply skips with a warning.
func rewriteVariable(wd *VariableDescriptor) {
	state := &enrichState{}
	pruneScaling(wd, state)
	warnScalingMethod(wd)
	normalizeUnits(wd)
	remapAttrValues(wd)
	applyLongName(wd)
	applyRangeLimits(wd, state)
	applyFlags(wd, state)

	// Aspirational hooks, not implemented by the legacy converter.
	applyStandardName(wd)
	applyAncillaryVariables(wd)
	remapChannelIndex(wd)
}

// pruneScaling removes redundant identity scaling, or records the valid
// int16 range implied by the fill value when real scaling is present.
func pruneScaling(wd *VariableDescriptor, state *enrichState) {
	scaleVal, hasScale := wd.Attrs.Get(scaleFactorAttrName)
	offsetVal, hasOffset := wd.Attrs.Get(addOffsetAttrName)

	scale, scaleOK := attrFloat(scaleVal)
	offset, offsetOK := attrFloat(offsetVal)
	if hasScale && hasOffset && scaleOK && offsetOK && scale == 1.0 && offset == 0.0 {
		// Identity scaling says nothing; drop all three attributes.
		wd.Attrs.Delete(scaleFactorAttrName)
		wd.Attrs.Delete(addOffsetAttrName)
		wd.Attrs.Delete(scalingMethodAttrName)
		return
	}
	if !hasScale || !hasOffset {
		return
	}

	min, max := shortRangeDefault[0], shortRangeDefault[1]
	if fillVal, has := wd.Attrs.Get(fillValueAttrName); has {
		if fill, ok := attrInt(fillVal); ok {
			if fill <= 0 {
				min = fill + 1
			} else {
				max = fill - 1
			}
		}
	}
	setValidRange(wd.Attrs, min, max)
	state.rangeSetByScaling = true
}

// warnScalingMethod flags scaling methods the converter cannot describe.
// Method 0 is unscaled and 1 is linear; anything else gets a warning and
// the data passes through untouched.
func warnScalingMethod(wd *VariableDescriptor) {
	v, has := wd.Attrs.Get(scalingMethodAttrName)
	if !has {
		return
	}
	if n, ok := attrInt(v); ok && (n == 0 || n == 1) {
		return
	}
	if s, ok := attrString(v); ok && (s == "none" || s == "linear") {
		return
	}
	logrus.Warnf("variable %q uses unsupported scaling method %v; data left as stored", wd.Name, v)
}

// normalizeUnits deletes or rewrites units values that carry no
// information.  A raster variable keeps a dimensionless "1"; anything
// smaller loses the attribute entirely.
func normalizeUnits(wd *VariableDescriptor) {
	v, has := wd.Attrs.Get(unitsAttrName)
	if !has {
		return
	}
	s, ok := attrString(v)
	if !ok || !badUnitsValues[s] {
		return
	}
	if wd.Rank() < 2 {
		wd.Attrs.Delete(unitsAttrName)
	} else {
		wd.Attrs.Set(unitsAttrName, "1")
	}
}

// remapAttrValues replaces attribute values listed in the fixed
// old-to-new conversion table.
func remapAttrValues(wd *VariableDescriptor) {
	for _, k := range wd.Attrs.Keys() {
		v, _ := wd.Attrs.Get(k)
		s, ok := attrString(v)
		if !ok {
			continue
		}
		if mapped, has := convertAttrValues[s]; has {
			wd.Attrs.Set(k, mapped)
		}
	}
}

// applyLongName injects a descriptive long_name when the variable name
// matches the long-name table.  Channel-indexed templates substitute the
// captured channel number and instrument name.
func applyLongName(wd *VariableDescriptor) {
	for _, rule := range longNameRules {
		m := rule.pattern.FindStringSubmatch(wd.Name)
		if m == nil {
			continue
		}
		longName := rule.template
		if rule.channel {
			instrument, channel := m[1], m[2]
			longName = fmt.Sprintf(rule.template, channel, instrument)
		}
		wd.Attrs.Set(longNameAttrName, longName)
		return
	}
}

// applyRangeLimits sets the static valid range for matching variables,
// unless scale pruning already inferred one.
func applyRangeLimits(wd *VariableDescriptor, state *enrichState) {
	if state.rangeSetByScaling {
		return
	}
	for _, rule := range rangeRules {
		if !rule.pattern.MatchString(wd.Name) {
			continue
		}
		setValidRange(wd.Attrs, rule.min, rule.max)
		return
	}
}

// applyFlags sets the categorical flag values and meanings for matching
// variables, unless scale pruning already claimed the range attributes.
// flag_meanings is the CF blank-separated form.
func applyFlags(wd *VariableDescriptor, state *enrichState) {
	if state.rangeSetByScaling {
		return
	}
	for _, rule := range flagRules {
		if !rule.pattern.MatchString(wd.Name) {
			continue
		}
		values := make([]int16, len(rule.values))
		copy(values, rule.values)
		wd.Attrs.Set(flagValuesAttrName, values)
		wd.Attrs.Set(flagMeaningsAttrName, strings.Join(rule.meanings, " "))
		return
	}
}

// setValidRange records the valid range through all three conventional
// attributes.
func setValidRange(attrs *AttrList, min, max int64) {
	attrs.Set(validRangeAttrName, []int16{int16(min), int16(max)})
	attrs.Set(validMinAttrName, int16(min))
	attrs.Set(validMaxAttrName, int16(max))
}

// applyStandardName would inject CF standard_name attributes.  The legacy
// converter never defined the mapping; the hook is here for when it does.
func applyStandardName(*VariableDescriptor) {}

// applyAncillaryVariables would link quality-flag variables to the data
// variables they describe.  Not implemented by the legacy converter.
func applyAncillaryVariables(*VariableDescriptor) {}

// remapChannelIndex would reorder calibration tables to instrument
// channel numbering per the instrument manual.  Not implemented by the
// legacy converter.
func remapChannelIndex(*VariableDescriptor) {}
