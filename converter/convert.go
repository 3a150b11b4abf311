package converter

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Status is the batch outcome, a bitmask combined across all files so one
// exit code can report every kind of trouble the batch hit.
type Status int

const (
	StatusOK                Status = 0
	StatusNoInput           Status = 1
	StatusOpenFailed        Status = 2
	StatusOutputExists      Status = 4
	StatusSinkFailed        Status = 8
	StatusRewriteFailed     Status = 16
	StatusDimensionConflict Status = 32
)

// ExitCode returns the process exit code for this status.
func (s Status) ExitCode() int {
	return int(s)
}

// Converter runs conversions with one fixed configuration.
type Converter struct {
	cfg Config
}

// New returns a Converter for the configuration.  A zero OutSuffix or
// policy falls back to the defaults.
func New(cfg Config) *Converter {
	def := DefaultConfig()
	if cfg.OutSuffix == "" {
		cfg.OutSuffix = def.OutSuffix
	}
	if cfg.ExistingOutput == "" {
		cfg.ExistingOutput = def.ExistingOutput
	}
	return &Converter{cfg: cfg}
}

// ConvertAll converts every input file independently, writing outputs
// into outDir.  No file's failure affects any other file; the returned
// status is the OR of the per-file outcomes.
func (c *Converter) ConvertAll(outDir string, inputs []string) Status {
	if len(inputs) == 0 {
		logrus.Warn("no input files to process")
		return StatusNoInput
	}
	if outDir == "" {
		outDir = "."
	}

	status := StatusOK
	seenOutputs := map[string]string{}
	for _, path := range inputs {
		status |= c.convertOne(outDir, path, seenOutputs)
	}
	return status
}

// convertOne runs the conversion pipeline for a single file.  Every
// failure mode maps to one status bit; the batch always continues.
func (c *Converter) convertOne(outDir, inPath string, seenOutputs map[string]string) Status {
	inPath = CleanPath(inPath)
	logrus.Infof("converting %s", inPath)

	src, err := OpenSource(inPath)
	if err != nil {
		logrus.Warnf("skipping %s: %v", inPath, err)
		return StatusOpenFailed
	}
	defer src.Release()

	vars := c.keptVariables(src.Variables())

	globals, rewritten, err := RewriteMetadata(src.GlobalAttrs(), vars, WriterIdentity)
	if err != nil {
		logrus.Warnf("skipping %s: %v", inPath, err)
		return StatusRewriteFailed
	}

	resolution, err := ResolveDimensions(rewritten)
	if err != nil {
		logrus.Warnf("skipping %s: %v", inPath, err)
		return StatusDimensionConflict
	}

	outPath := c.outputPath(outDir, inPath)
	if prev, collides := seenOutputs[outPath]; collides {
		logrus.Warnf("skipping %s: output %s already produced from %s", inPath, outPath, prev)
		return StatusOutputExists
	}
	seenOutputs[outPath] = inPath

	status := StatusOK
	if _, err := os.Stat(outPath); err == nil {
		if c.cfg.ExistingOutput == ExistingSkip {
			logrus.Warnf("skipping %s: output %s already exists", inPath, outPath)
			return StatusOutputExists
		}
		logrus.Warnf("output %s already exists, overwriting", outPath)
		status |= StatusOutputExists
	}

	sink, err := CreateSink(outPath, SinkOptions{DisableAutoScaling: true})
	if err != nil {
		logrus.Warnf("skipping %s: %v", inPath, err)
		return status | StatusSinkFailed
	}
	writeErr := writeAll(src, sink, globals, rewritten, resolution)
	if err := sink.Release(); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		logrus.Warnf("failed writing %s: %v", outPath, writeErr)
		return status | StatusSinkFailed
	}
	logrus.Infof("wrote %s", outPath)
	return status
}

// keptVariables drops the catalog entries on the deletion list.
func (c *Converter) keptVariables(vars []*VariableDescriptor) []*VariableDescriptor {
	toDelete := c.cfg.deleteSet()
	if len(toDelete) == 0 {
		return vars
	}
	out := make([]*VariableDescriptor, 0, len(vars))
	for _, vd := range vars {
		if toDelete[vd.Name] {
			logrus.Infof("dropping variable %q per the deletion list", vd.Name)
			continue
		}
		out = append(out, vd)
	}
	return out
}

// writeAll streams every variable's raw buffer into the sink with the
// resolved dimension names and rewritten attributes.
func writeAll(src Source, sink Sink, globals *AttrList, vars []*VariableDescriptor, resolution *Resolution) error {
	if err := sink.DeclareDimensions(resolution.Dimensions); err != nil {
		return err
	}
	if err := sink.SetGlobalAttrs(globals); err != nil {
		return err
	}
	for _, wd := range vars {
		data, err := src.Data(wd.Name)
		if err != nil {
			return errors.Wrapf(ErrSinkCreate, "reading %q back from source: %v", wd.Name, err)
		}
		fill, _ := wd.Attrs.Get(fillValueAttrName)
		if err := sink.WriteVariable(wd.Name, data, resolution.VarDims[wd.Name], fill, wd.Attrs); err != nil {
			return err
		}
	}
	return nil
}

// outputPath maps an input path to its output file:
// <outDir>/<input stem><out suffix>.
func (c *Converter) outputPath(outDir, inPath string) string {
	base := filepath.Base(inPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, stem+c.cfg.OutSuffix)
}

// CleanPath returns an absolute form of the path with "~" expanded.
func CleanPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// CollectInputs expands the command-line arguments into the list of input
// files: existing files with an accepted extension, plus, when recurse is
// set, every matching file under the named directories.  Paths that do
// not qualify are warned about and dropped.
func (c *Converter) CollectInputs(paths []string, recurse bool) []string {
	accepted := c.cfg.extensionSet()
	var out []string
	for _, p := range paths {
		p = CleanPath(p)
		info, err := os.Stat(p)
		if err != nil {
			logrus.Warnf("input %s does not exist, not converting", p)
			continue
		}
		if info.IsDir() {
			if !recurse {
				logrus.Warnf("input %s is a directory, not converting (use --dirs to search directories)", p)
				continue
			}
			out = append(out, collectDir(p, accepted)...)
			continue
		}
		if !matchesExtension(p, accepted) {
			logrus.Warnf("input %s does not have an expected input extension, not converting", p)
			continue
		}
		out = append(out, p)
	}
	return out
}

// collectDir gathers matching files beneath dir in sorted walk order.
func collectDir(dir string, accepted map[string]bool) []string {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logrus.Warnf("searching %s: %v", path, err)
			return nil
		}
		if !d.IsDir() && matchesExtension(path, accepted) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		logrus.Warnf("searching %s: %v", dir, err)
	}
	sort.Strings(out)
	return out
}

func matchesExtension(path string, accepted map[string]bool) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return accepted[ext]
}
