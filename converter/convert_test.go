package converter

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
)

// latValues and btValues are the raw buffers of the test scene.
func latValues() [][]float32 {
	out := make([][]float32, 10)
	for i := range out {
		out[i] = make([]float32, 20)
		for j := range out[i] {
			out[i][j] = float32(i)*0.5 - float32(j)*0.25
		}
	}
	return out
}

func btValues() [][]int16 {
	out := make([][]int16, 10)
	for i := range out {
		out[i] = make([]int16, 20)
		for j := range out[i] {
			out[i][j] = int16(i*100 + j)
		}
	}
	return out
}

// writeTestScene writes a legacy-shaped input container with the writer
// library, which the converter's source side can open again.
func writeTestScene(t *testing.T, path string) {
	t.Helper()
	w, err := cdf.OpenWriter(path)
	if err != nil {
		t.Fatal(err)
	}

	globals := NewAttrList()
	globals.Set(imageDateAttrName, int32(115032))
	globals.Set(imageTimeAttrName, int32(83000))
	globals.Set(libVersionAttrName, "HDF4.2r4")
	if err := w.AddAttributes(globals); err != nil {
		t.Fatal(err)
	}

	latAttrs := NewAttrList()
	latAttrs.Set(unitsAttrName, "no units")
	if err := w.AddVar("pixel_latitude", api.Variable{
		Values:     latValues(),
		Dimensions: []string{"fakeDim0", "fakeDim1"},
		Attributes: latAttrs,
	}); err != nil {
		t.Fatal(err)
	}

	btAttrs := NewAttrList()
	btAttrs.Set(scaleFactorAttrName, float64(0.01))
	btAttrs.Set(addOffsetAttrName, float64(0.0))
	btAttrs.Set(fillValueAttrName, int16(-32768))
	btAttrs.Set(unitsAttrName, "kelvin")
	if err := w.AddVar("abi_channel_7_brightness_temperature", api.Variable{
		Values:     btValues(),
		Dimensions: []string{"fakeDim0", "fakeDim1"},
		Attributes: btAttrs,
	}); err != nil {
		t.Fatal(err)
	}

	sltAttrs := NewAttrList()
	sltAttrs.Set(unitsAttrName, "hours")
	if err := w.AddVar("scan_line_time", api.Variable{
		Values:     []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		Dimensions: []string{"fakeDim0"},
		Attributes: sltAttrs,
	}); err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func convertScene(t *testing.T, cfg Config) (Status, string) {
	t.Helper()
	inDir := t.TempDir()
	outDir := t.TempDir()
	inPath := filepath.Join(inDir, "scene.hdf")
	writeTestScene(t, inPath)
	status := New(cfg).ConvertAll(outDir, []string{inPath})
	return status, filepath.Join(outDir, "scene.nc")
}

func TestConvertEndToEnd(t *testing.T) {
	status, outPath := convertScene(t, DefaultConfig())
	if status != StatusOK {
		t.Fatalf("status = %d, want 0", status)
	}

	g, err := netcdf.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	// Global timestamp composed, legacy fields gone, writer identity set.
	globals := g.Attributes()
	if v, _ := globals.Get(imageDateTimeAttrName); v != "2015-02-01T08:30:00Z" {
		t.Errorf("%s = %v", imageDateTimeAttrName, v)
	}
	if _, has := globals.Get(imageDateAttrName); has {
		t.Error("Image_Date survived the conversion")
	}
	if _, has := globals.Get(imageTimeAttrName); has {
		t.Error("Image_Time survived the conversion")
	}
	if v, _ := globals.Get(libVersionAttrName); v != WriterIdentity {
		t.Errorf("%s = %v", libVersionAttrName, v)
	}

	// The raster variables share the lines/elements dimensions and the
	// raw values round-trip exactly.
	lat, err := g.GetVariable("pixel_latitude")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(lat.Dimensions, []string{linesDimName, elementsDimName}) {
		t.Errorf("pixel_latitude dimensions = %v", lat.Dimensions)
	}
	if !reflect.DeepEqual(lat.Values, latValues()) {
		t.Error("pixel_latitude values did not round-trip")
	}
	if v, _ := lat.Attributes.Get(unitsAttrName); v != "1" {
		t.Errorf("pixel_latitude units = %v, want \"1\"", v)
	}
	if v, _ := lat.Attributes.Get(longNameAttrName); v != "pixel-resolution array of latitudes" {
		t.Errorf("pixel_latitude long_name = %v", v)
	}

	bt, err := g.GetVariable("abi_channel_7_brightness_temperature")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(bt.Values, btValues()) {
		t.Error("brightness temperature values did not round-trip")
	}
	wantRange := []int16{-32767, 32767}
	if v, _ := bt.Attributes.Get(validRangeAttrName); !reflect.DeepEqual(v, wantRange) {
		t.Errorf("valid_range = %v, want %v", v, wantRange)
	}
	longName, _ := bt.Attributes.Get(longNameAttrName)
	if longName != "pixel-resolution array of brightness temperatures for channel 7 from abi" {
		t.Errorf("long_name = %v", longName)
	}

	// scan_line_time is on the default deletion list.
	for _, name := range g.ListVariables() {
		if name == "scan_line_time" {
			t.Error("scan_line_time survived the conversion")
		}
	}
}

func TestConvertKeepsScanLineTimeWhenListEmptied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DeleteVariables = nil
	status, outPath := convertScene(t, cfg)
	if status != StatusOK {
		t.Fatalf("status = %d, want 0", status)
	}
	g, err := netcdf.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	slt, err := g.GetVariable("scan_line_time")
	if err != nil {
		t.Fatal(err)
	}
	// The special-shape rule binds its single axis to "lines".
	if !reflect.DeepEqual(slt.Dimensions, []string{linesDimName}) {
		t.Errorf("scan_line_time dimensions = %v, want [lines]", slt.Dimensions)
	}
	// units "hours" is real and must survive untouched.
	if v, _ := slt.Attributes.Get(unitsAttrName); v != "hours" {
		t.Errorf("scan_line_time units = %v", v)
	}
}

func TestConvertNoInputs(t *testing.T) {
	status := New(DefaultConfig()).ConvertAll(t.TempDir(), nil)
	if status != StatusNoInput {
		t.Errorf("status = %d, want %d", status, StatusNoInput)
	}
}

func TestConvertUnreadableInput(t *testing.T) {
	inDir := t.TempDir()
	bad := filepath.Join(inDir, "junk.hdf")
	if err := os.WriteFile(bad, []byte("this is not a container"), 0o644); err != nil {
		t.Fatal(err)
	}
	status := New(DefaultConfig()).ConvertAll(t.TempDir(), []string{bad})
	if status != StatusOpenFailed {
		t.Errorf("status = %d, want %d", status, StatusOpenFailed)
	}
}

func TestConvertMissingTimestampFailsFile(t *testing.T) {
	inDir := t.TempDir()
	inPath := filepath.Join(inDir, "no_date.hdf")
	w, err := cdf.OpenWriter(inPath)
	if err != nil {
		t.Fatal(err)
	}
	attrs := NewAttrList()
	if err := w.AddVar("pixel_latitude", api.Variable{
		Values:     latValues(),
		Dimensions: []string{"fakeDim0", "fakeDim1"},
		Attributes: attrs,
	}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	status := New(DefaultConfig()).ConvertAll(t.TempDir(), []string{inPath})
	if status != StatusRewriteFailed {
		t.Errorf("status = %d, want %d", status, StatusRewriteFailed)
	}
}

func TestConvertExistingOutputPolicies(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	inPath := filepath.Join(inDir, "scene.hdf")
	writeTestScene(t, inPath)

	// First conversion is clean.
	if status := New(DefaultConfig()).ConvertAll(outDir, []string{inPath}); status != StatusOK {
		t.Fatalf("first run status = %d", status)
	}

	// Overwrite policy converts again but reports the collision.
	status := New(DefaultConfig()).ConvertAll(outDir, []string{inPath})
	if status != StatusOutputExists {
		t.Errorf("overwrite run status = %d, want %d", status, StatusOutputExists)
	}
	if g, err := netcdf.Open(filepath.Join(outDir, "scene.nc")); err != nil {
		t.Errorf("overwritten output unreadable: %v", err)
	} else {
		g.Close()
	}

	// Skip policy leaves the file alone and reports the collision.
	cfg := DefaultConfig()
	cfg.ExistingOutput = ExistingSkip
	status = New(cfg).ConvertAll(outDir, []string{inPath})
	if status != StatusOutputExists {
		t.Errorf("skip run status = %d, want %d", status, StatusOutputExists)
	}
}

func TestConvertOutputCollisionWithinBatch(t *testing.T) {
	inDirA := t.TempDir()
	inDirB := t.TempDir()
	outDir := t.TempDir()
	pathA := filepath.Join(inDirA, "scene.hdf")
	pathB := filepath.Join(inDirB, "scene.hdf")
	writeTestScene(t, pathA)
	writeTestScene(t, pathB)

	status := New(DefaultConfig()).ConvertAll(outDir, []string{pathA, pathB})
	if status != StatusOutputExists {
		t.Errorf("status = %d, want %d", status, StatusOutputExists)
	}
	// The first input's output must be intact.
	if g, err := netcdf.Open(filepath.Join(outDir, "scene.nc")); err != nil {
		t.Errorf("first output unreadable: %v", err)
	} else {
		g.Close()
	}
}

func TestConvertBatchIsolation(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	good := filepath.Join(inDir, "good.hdf")
	bad := filepath.Join(inDir, "bad.hdf")
	writeTestScene(t, good)
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	status := New(DefaultConfig()).ConvertAll(outDir, []string{bad, good})
	if status != StatusOpenFailed {
		t.Errorf("status = %d, want %d", status, StatusOpenFailed)
	}
	if _, err := os.Stat(filepath.Join(outDir, "good.nc")); err != nil {
		t.Error("good input was not converted after the bad one failed")
	}
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	mk := func(path string) {
		t.Helper()
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	direct := filepath.Join(dir, "a.hdf")
	nested := filepath.Join(sub, "b.hdf")
	mk(direct)
	mk(nested)
	mk(filepath.Join(dir, "notes.txt"))

	conv := New(DefaultConfig())

	// A directory without --dirs is refused.
	if got := conv.CollectInputs([]string{dir}, false); len(got) != 0 {
		t.Errorf("non-recursive collect found %v", got)
	}
	// With recursion, only the accepted extensions are found.
	got := conv.CollectInputs([]string{dir}, true)
	want := []string{direct, nested}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recursive collect = %v, want %v", got, want)
	}
	// A wrong-extension file named directly is dropped.
	if got := conv.CollectInputs([]string{filepath.Join(dir, "notes.txt")}, false); len(got) != 0 {
		t.Errorf("collect accepted a .txt file: %v", got)
	}
	// A missing path is dropped.
	if got := conv.CollectInputs([]string{filepath.Join(dir, "absent.hdf")}, false); len(got) != 0 {
		t.Errorf("collect accepted a missing file: %v", got)
	}
}

func TestOutputPath(t *testing.T) {
	conv := New(DefaultConfig())
	got := conv.outputPath("/data/out", "/data/in/goes13_2015_032.hdf")
	want := filepath.Join("/data/out", "goes13_2015_032.nc")
	if got != want {
		t.Errorf("outputPath = %q, want %q", got, want)
	}
}

func TestCleanPathAbsolute(t *testing.T) {
	got := CleanPath("some/relative/file.hdf")
	if !filepath.IsAbs(got) {
		t.Errorf("CleanPath returned a relative path %q", got)
	}
}
