package converter

import "regexp"

// Dimension names shared across one output file.
const (
	linesDimName        = "lines"
	elementsDimName     = "elements"
	detectorDimName     = "detector"
	channelIndexDimName = "channel_index"
	qfDepthDimName      = "qf_depth"
	packedBytes1DimName = "bytes_cloud_mask_packed"
	packedBytes2DimName = "bytes_cloud_type_packed"
	tempDimPrefix       = "temp_dim_"
)

// Attribute names touched by the rewriter.
const (
	imageDateAttrName     = "Image_Date"
	imageTimeAttrName     = "Image_Time"
	imageDateTimeAttrName = "Image_Date_Time"
	libVersionAttrName    = "Output_Library_Version"
	fillValueAttrName     = "_FillValue"
	scaleFactorAttrName   = "scale_factor"
	addOffsetAttrName     = "add_offset"
	scalingMethodAttrName = "scaling_method"
	unitsAttrName         = "units"
	longNameAttrName      = "long_name"
	standardNameAttrName  = "standard_name"
	validMinAttrName      = "valid_min"
	validMaxAttrName      = "valid_max"
	validRangeAttrName    = "valid_range"
	ancVarsAttrName       = "ancillary_variables"
	flagValuesAttrName    = "flag_values"
	flagMeaningsAttrName  = "flag_meanings"
)

// isoTimeFormat is the layout for the composed Image_Date_Time value.
const isoTimeFormat = "2006-01-02T15:04:05Z"

// inheritSize in a shape template means the axis keeps its raw size.
const inheritSize = int64(-1)

// SpecialVariableRule pairs a variable-name pattern with the expected
// shape template and dimension names for variables that do not follow the
// common lines/elements raster layout.
type SpecialVariableRule struct {
	Pattern *regexp.Regexp
	Shape   []int64
	Dims    []string
}

// anchored compiles a legacy name pattern so it must cover the whole name.
func anchored(pat string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + pat + `)$`)
}

// specialVariableRules is evaluated in order, first match wins.
var specialVariableRules = []SpecialVariableRule{
	{anchored(`.*?_planck`), []int64{inheritSize, inheritSize}, []string{detectorDimName, channelIndexDimName}},
	{anchored(`calibration_.*?`), []int64{inheritSize, inheritSize}, []string{detectorDimName, channelIndexDimName}},
	{anchored(`.*?_wavenumber`), []int64{inheritSize, inheritSize}, []string{detectorDimName, channelIndexDimName}},
	{anchored(`scan_line_time`), []int64{inheritSize}, []string{linesDimName}},
	{anchored(`.*?_quality_flags1`), []int64{inheritSize, inheritSize, 3}, []string{linesDimName, elementsDimName, qfDepthDimName}},
	{anchored(`.*?_cloud_mask_packed`), []int64{inheritSize, inheritSize, 7}, []string{linesDimName, elementsDimName, packedBytes1DimName}},
	{anchored(`.*?_cloud_type_packed`), []int64{inheritSize, inheritSize, 6}, []string{linesDimName, elementsDimName, packedBytes2DimName}},
}

// findSpecialRule returns the first rule matching the variable name.
func findSpecialRule(name string) (SpecialVariableRule, bool) {
	for _, r := range specialVariableRules {
		if r.Pattern.MatchString(name) {
			return r, true
		}
	}
	return SpecialVariableRule{}, false
}

// badUnitsValues are units strings that carry no information.
var badUnitsValues = map[string]bool{
	"no units": true,
	"none":     true,
}

// convertAttrValues maps malformed attribute values to their corrected
// forms, applied to any attribute whose value matches exactly.
var convertAttrValues = map[string]string{
	"mWm-2sr-1(cm-1)-1": "mW m-2 sr-1 (cm-1)-1",
}

// Channel-indexed variable patterns.  The first capture group is the
// instrument name, the second the channel number.
const (
	chReflPattern = `(.+?)_channel_(\d+?)_reflectance`
	chEmisPattern = `(.+?)_channel_(\d+?)_emissivity`
	chBTPattern   = `(.+?)_channel_(\d+?)_brightness_temperature`
)

// longNameRule supplies a long_name for matching variables.  For
// channel-indexed variables the template takes the channel number and the
// instrument name, in that order.
type longNameRule struct {
	pattern  *regexp.Regexp
	template string
	channel  bool
}

// longNameRules is evaluated in order, first match wins.
var longNameRules = []longNameRule{
	{anchored(`bc1_planck`), "calibration coefficients “a”, for each channel", false},
	{anchored(`bc2_planck`), "calibration coefficients “b”, for each channel", false},
	{anchored(`calibration_offset`), "calibration constant offset", false},
	{anchored(`calibration_slope`), "calibration constant slope", false},
	{anchored(`calibration_slope_degrade`), "calibration constant slope degrade", false},
	{anchored(`calibration_solar_constant`), "calibration constant solar constant", false},
	{anchored(`channel_wavenumber`), "instrument-specific wavenumbers, for each channel", false},
	{anchored(`fk1_planck`), "planck constant 1", false},
	{anchored(`fk2_planck`), "planck constant 2", false},
	{anchored(chReflPattern), "pixel-resolution array of reflectances for channel %s from %s", true},
	{anchored(chEmisPattern), "pixel-resolution array of emissivities for channel %s from %s", true},
	{anchored(chBTPattern), "pixel-resolution array of brightness temperatures for channel %s from %s", true},
	{anchored(`pixel_ecosystem_type`), "pixel-resolution array of ecosystem types, from a static ancillary file.", false},
	{anchored(`pixel_latitude`), "pixel-resolution array of latitudes", false},
	{anchored(`pixel_longitude`), "pixel-resolution array of longitudes", false},
	{anchored(`pixel_relative_azimuth_angle`), "pixel-resolution array of relative azimuth angles", false},
	{anchored(`pixel_satellite_zenith_angle`), "pixel-resolution array of satellite zenith angles", false},
	{anchored(`pixel_solar_zenith_angle`), "pixel-resolution array of solar zenith angles", false},
	{anchored(`pixel_surface_type`), "pixel-resolution array of surface types, from a static ancillary file.", false},
	{anchored(`nwp_x_index`), "the x indices into the NWP data array that correspond with each pixel, or fill values if NWP data was not read in", false},
	{anchored(`nwp_y_index`), "the y indices into the NWP data array that correspond with each pixel, or fill values if NWP data was not read in", false},
}

// Default valid range for short-packed data.
var shortRangeDefault = [2]int64{-32768, 32767}

// rangeRule supplies static valid-range limits for matching variables.
type rangeRule struct {
	pattern  *regexp.Regexp
	min, max int64
}

// rangeRules is evaluated in order, first match wins.
var rangeRules = []rangeRule{
	{anchored(chReflPattern), -32767, 32767},
	{anchored(chBTPattern), -32767, 32767},
	{anchored(`pixel_ecosystem_type`), 0, 100},
	{anchored(`pixel_relative_azimuth_angle`), -32767, 32767},
	{anchored(`pixel_satellite_zenith_angle`), -32767, 32767},
	{anchored(`pixel_solar_zenith_angle`), -32767, 32767},
	{anchored(`pixel_surface_type`), 0, 13},
}

// flagRule supplies categorical flag values and their meanings; the two
// sequences correspond index by index.
type flagRule struct {
	pattern  *regexp.Regexp
	values   []int16
	meanings []string
}

// flagRules is evaluated in order, first match wins.
var flagRules = []flagRule{
	{
		// from table 27 in the Geocat manual
		pattern: anchored(`pixel_ecosystem_type`),
		values: []int16{
			0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
			17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31,
			32, 33, 34, 35, 36, 37, 38, 39, 40, 41, 42, 43, 44, 45, 46,
			47, 48, 49, 50, 51, 52, 53, 54, 55, 56, 57, 58, 59, 60, 61,
			62, 63, 64, 65, 66, 67, 68, 69, 70, 71, 72, 73, 74, 75, 76,
			77, 78, 79, 80, 81, 82, 83, 84, 85, 86, 87, 88, 89, 90, 91,
			92, 93, 94, 95, 96, 100,
		},
		meanings: []string{
			"INTERRUPTED_AREAS_ECO", "URBAN_ECO", "LOW_SPARSE_GRASSLAND_ECO",
			"CONIFEROUS_FOREST_ECO", "DECIDUOUS_CONIFER_FOREST_ECO",
			"DECIDUOUS_BROADLEAF_FOREST1_ECO", "EVERGREEN_BROADLEAF_FORESTS_ECO",
			"TALL_GRASSES_AND_SHRUBS_ECO", "BARE_DESERT_ECO", "UPLAND_TUNDRA_ECO",
			"IRRIGATED_GRASSLAND_ECO", "SEMI_DESERT_ECO", "GLACIER_ICE_ECO",
			"WOODED_WET_SWAMP_ECO", "INLAND_WATER_ECO", "SEA_WATER_ECO",
			"SHRUB_EVERGREEN_ECO", "SHRUB_DECIDUOUS_ECO",
			"MIXED_FOREST_AND_FIELD_ECO", "EVERGREEN_FOREST_AND_FIELDS_ECO",
			"COOL_RAIN_FOREST_ECO", "CONIFER_BOREAL_FOREST_ECO",
			"COOL_CONIFER_FOREST_ECO", "COOL_MIXED_FOREST_ECO",
			"MIXED_FOREST_ECO", "COOL_BROADLEAF_FOREST_ECO",
			"DECIDUOUS_BROADLEAF_FOREST2_ECO", "CONIFER_FOREST_ECO",
			"MONTANE_TROPICAL_FORESTS_ECO", "SEASONAL_TROPICAL_FOREST_ECO",
			"COOL_CROPS_AND_TOWNS_ECO", "CROPS_AND_TOWN_ECO",
			"DRY_TROPICAL_WOODS_ECO", "TROPICAL_RAINFOREST_ECO",
			"TROPICAL_DEGRADED_FOREST_ECO", "CORN_AND_BEANS_CROPLAND_ECO",
			"RICE_PADDY_AND_FIELD_ECO", "HOT_IRRIGATED_CROPLAND_ECO",
			"COOL_IRRIGATED_CROPLAND_ECO", "COLD_IRRIGATED_CROPLAND_ECO",
			"COOL_GRASSES_AND_SHRUBS_ECO", "HOT_AND_MILD_GRASSES_AND_SHRUBS_ECO",
			"COLD_GRASSLAND_ECO", "SAVANNA_ECO", "MIRE_BOG_FEN_ECO",
			"MARSH_WETLAND_ECO", "MEDITERRANEAN_SCRUB_ECO",
			"DRY_WOODY_SCRUB_ECO", "DRY_EVERGREEN_WOODS_ECO",
			"VOLCANIC_ROCK_ECO", "SAND_DESERT_ECO", "SEMI_DESERT_SHRUBS_ECO",
			"SEMI_DESERT_SAGE_ECO", "BARREN_TUNDRA_ECO",
			"COOL_SOUTHERN_HEMISPHERE_MIXED_FORESTS_ECO",
			"COOL_FIELDS_AND_WOODS_ECO", "FOREST_AND_FIELD_ECO",
			"COOL_FOREST_AND_FIELD_ECO", "FIELDS_AND_WOODY_SAVANNA_ECO",
			"SUCCULENT_AND_THORN_SCRUB_ECO", "SMALL_LEAF_MIXED_WOODS_ECO",
			"DECIDUOUS_AND_MIXED_BOREAL_FOREST_ECO", "NARROW_CONIFERS_ECO",
			"WOODED_TUNDRA_ECO", "HEATH_SCRUB_ECO", "COASTAL_WETLAND_NW_ECO",
			"COASTAL_WETLAND_NE_ECO", "COASTAL_WETLAND_SE_ECO",
			"COASTAL_WETLAND_SW_ECO", "POLAR_AND_ALPINE_DESERT_ECO",
			"GLACIER_ROCK_ECO", "SALT_PLAYAS_ECO", "MANGROVE_ECO",
			"WATER_AND_ISLAND_FRINGE_ECO", "LAND_WATER_AND_SHORE_ECO",
			"LAND_AND_WATER_RIVERS_ECO", "CROP_AND_WATER_MIXTURES_ECO",
			"SOUTHERN_HEMISPHERE_CONIFERS_ECO",
			"SOUTHERN_HEMISPHERE_MIXED_FOREST_ECO", "WET_SCLEROPHYLIC_FOREST_ECO",
			"COASTLINE_FRINGE_ECO", "BEACHES_AND_DUNES_ECO",
			"SPARSE_DUNES_AND_RIDGES_ECO", "BARE_COASTAL_DUNES_ECO",
			"RESIDUAL_DUNES_AND_BEACHES_ECO", "COMPOUND_COASTLINES_ECO",
			"ROCKY_CLIFFS_AND_SLOPES_ECO", "SANDY_GRASSLAND_AND_SHRUBS_ECO",
			"BAMBOO_ECO", "MOIST_EUCALYPTUS_ECO", "RAIN_GREEN_TROPICAL_FOREST_ECO",
			"WOODY_SAVANNA_ECO", "BROADLEAF_CROPS_ECO", "GRASS_CROPS_ECO",
			"CROPS_GRASS_SHRUBS_ECO", "EVERGREEN_TREE_CROP_ECO",
			"DECIDUOUS_TREE_CROP_ECO", "NO_DATA_ECO",
		},
	},
	{
		// from table 26 in the Geocat manual
		pattern: anchored(`pixel_surface_type`),
		values:  []int16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13},
		meanings: []string{
			"WATER_SFC", "EVERGREEN_NEEDLE_SFC", "EVERGREEN_BROAD_SFC",
			"DECIDUOUS_NEEDLE_SFC", "DECIDUOUS_BROAD_SFC", "MIXED_FORESTS_SFC",
			"WOODLANDS_SFC", "WOODED_GRASS_SFC", "CLOSED_SHRUBS_SFC",
			"OPEN_SHRUBS_SFC", "GRASSES_SFC", "CROPLANDS_SFC", "BARE_SFC",
			"URBAN_SFC",
		},
	},
}
