package ifd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/linuxboot/gpioxtract/pkg/platform"
	"github.com/stretchr/testify/require"
)

type fakePaths struct {
	path string
	err  error
}

func (f fakePaths) Lookup(name string) (string, error) { return f.path, f.err }

func TestSplitWithHelperRejectsMissingBinary(t *testing.T) {
	run := func(path string, args ...string) error { t.Fatal("run should not be called"); return nil }
	err := SplitWithHelper(fakePaths{err: os.ErrNotExist}, run, "image.bin", "alderlake", t.TempDir())
	require.Error(t, err)
}

func TestSplitWithHelperPassesPlatformFlag(t *testing.T) {
	var gotArgs []string
	run := func(path string, args ...string) error {
		gotArgs = args
		return nil
	}
	err := SplitWithHelper(fakePaths{path: "/usr/bin/ifdtool"}, run, "image.bin", "alderlake", "/work")
	require.NoError(t, err)
	require.Contains(t, gotArgs, "alderlake")
	require.Contains(t, gotArgs, "-p")
}

func TestExtractBIOSRegionViaHelperReadsSplitterOutput(t *testing.T) {
	prof := platform.AlderLake()
	image := buildDescriptor(prof.PlatformID, true, 0x10, 0x1F)
	workDir := t.TempDir()
	splitBytes := make([]byte, 64)
	for i := range splitBytes {
		splitBytes[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(filepath.Join(workDir, biosRegionFilename), splitBytes, 0o644))

	run := func(path string, args ...string) error { return nil }
	region, err := ExtractBIOSRegionViaHelper(image, "alderlake", "image.bin", workDir, fakePaths{path: "/usr/bin/ifdtool"}, run)
	require.NoError(t, err)
	require.Equal(t, splitBytes, region.Data)
}
