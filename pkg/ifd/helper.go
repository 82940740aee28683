package ifd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/linuxboot/gpioxtract/pkg/log"
	"github.com/linuxboot/gpioxtract/pkg/pipeline"
	"github.com/linuxboot/gpioxtract/pkg/platform"
)

// SplitterName is the external descriptor-splitter helper's program name.
const SplitterName = "ifdtool"

// HelperPaths locates external helper binaries on PATH. Tests substitute a
// fake implementation; production code uses LookPath directly.
type HelperPaths interface {
	Lookup(name string) (string, error)
}

type pathLookup struct{}

func (pathLookup) Lookup(name string) (string, error) { return exec.LookPath(name) }

// DefaultHelperPaths resolves helpers from the process's PATH.
var DefaultHelperPaths HelperPaths = pathLookup{}

// Runner executes an external helper and reports its exit status. Splitting
// this from ExtractBIOSRegionViaHelper keeps the subprocess boundary
// mockable for tests, mirroring the source tool's discipline of treating
// the splitter as an opaque helper.
type Runner func(path string, args ...string) error

// DefaultRunner runs the command for real and maps a nonzero exit into
// HelperFailed.
func DefaultRunner(path string, args ...string) error {
	cmd := exec.Command(path, args...)
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return pipeline.HelperFailed{Name: SplitterName, ExitCode: exitErr.ExitCode()}
		}
		return pipeline.HelperFailed{Name: SplitterName, ExitCode: -1}
	}
	return nil
}

// SplitWithHelper invokes the external descriptor splitter on imagePath,
// with the mandatory platform flag, writing region files into workDir. The
// platform flag is part of the contract with this helper, never an
// optional optimization: omitting it yields wrong-content region files of
// the correct size (see pkg/ifd's Parse for the equivalent in-process
// failure mode).
func SplitWithHelper(paths HelperPaths, run Runner, imagePath, platformFlag, workDir string) error {
	path, err := paths.Lookup(SplitterName)
	if err != nil {
		return pipeline.HelperUnavailable{Name: SplitterName}
	}
	log.Warnf("running %s -x -p %s %s (workdir %s)", path, platformFlag, imagePath, workDir)
	return run(path, "-x", "-p", platformFlag, imagePath, "-O", workDir)
}

// biosRegionFilename is the name the splitter writes the BIOS region's
// bytes to, following ifdtool's own "flashregion_<n>_<name>.bin" naming.
const biosRegionFilename = "flashregion_1_bios.bin"

// ExtractBIOSRegionViaHelper is the external-helper Region Extractor path:
// it shells out to the descriptor splitter, trusting its output for the
// BIOS region's byte content, and falls back on this package's in-process
// Parse only to recover the region's absolute offset for downstream
// reporting (the splitter's own output files don't carry that metadata).
// Use this when the real splitter binary is available; ExtractBIOSRegion
// is self-contained and used otherwise. This package's tests exercise
// this path with a fake HelperPaths and Runner, since no test environment
// can assume ifdtool is installed.
func ExtractBIOSRegionViaHelper(image []byte, platformTag, imagePath, workDir string, paths HelperPaths, run Runner) (*BIOSRegion, error) {
	prof, ok := platform.Lookup(platformTag)
	if !ok {
		return nil, pipeline.UnsupportedPlatform{Tag: platformTag}
	}

	if err := SplitWithHelper(paths, run, imagePath, prof.Tag, workDir); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(workDir, biosRegionFilename))
	if err != nil {
		return nil, fmt.Errorf("reading splitter output %q: %w", biosRegionFilename, err)
	}

	desc, err := Parse(image, prof)
	if err != nil {
		return nil, err
	}

	return &BIOSRegion{Offset: desc.BIOS.BaseOffset(), Length: uint64(len(data)), Data: data}, nil
}
