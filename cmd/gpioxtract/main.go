// Copyright 2021 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gpioxtract recovers Intel Alder Lake GPIO pad-configuration tables from a
// UEFI flash image without any vendor-supplied GPIO header.
//
// Synopsis:
//
//	gpioxtract --platform alderlake --input firmware.rom --json report.json
//	gpioxtract --platform alderlake --input firmware.rom --output gpio.h --calibrate-with reference_gpio.h
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jessevdk/go-flags"

	"github.com/linuxboot/gpioxtract/pkg/calibrate"
	"github.com/linuxboot/gpioxtract/pkg/detect"
	"github.com/linuxboot/gpioxtract/pkg/emit"
	"github.com/linuxboot/gpioxtract/pkg/fv"
	"github.com/linuxboot/gpioxtract/pkg/ifd"
	"github.com/linuxboot/gpioxtract/pkg/log"
	"github.com/linuxboot/gpioxtract/pkg/pipeline"
	"github.com/linuxboot/gpioxtract/pkg/platform"
	"github.com/linuxboot/gpioxtract/pkg/reference"
)

type options struct {
	Platform       string `short:"p" long:"platform" description:"target chipset profile" default:"alderlake"`
	Input          string `short:"i" long:"input" description:"path to the UEFI flash image" required:"true"`
	Output         string `short:"o" long:"output" description:"path to write a coreboot-style macro header"`
	JSON           string `long:"json" description:"path to write a structured JSON report"`
	CalibrateWith  string `long:"calibrate-with" description:"path to an existing coreboot GPIO header, used to score candidate tables"`
	UnpackedTree   string `long:"unpacked-tree" description:"path to an already-unpacked UEFI volume tree (UEFIExtract output), used in place of re-running the unpacker"`
	Verbose        bool   `short:"v" long:"verbose" description:"print a summary table of every surviving candidate"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		log.Errorf("%v", err)
		var noPhysical pipeline.NoPhysicalTableFound
		if errors.As(err, &noPhysical) {
			// A calibrated-but-empty result is still a usable report; the
			// pipeline's own exit code stays zero per the component
			// design's "Outputs" contract.
			os.Exit(0)
		}
		os.Exit(1)
	}
}

func run(opts options) error {
	image, err := os.ReadFile(opts.Input)
	if err != nil {
		return fmt.Errorf("reading flash image: %w", err)
	}

	prof, ok := platform.Lookup(opts.Platform)
	if !ok {
		return pipeline.UnsupportedPlatform{Tag: opts.Platform}
	}

	bios, err := ifd.ExtractBIOSRegion(image, opts.Platform)
	if err != nil {
		return fmt.Errorf("region extraction: %w", err)
	}
	log.Warnf("extracted BIOS region: offset 0x%x, length 0x%x", bios.Offset, bios.Length)

	spans := fv.Enumerate(bios.Offset, bios.Data, prof)
	if opts.UnpackedTree != "" {
		spans = append(spans, fv.WalkUnpackedTree(opts.UnpackedTree, prof.ModuleNamePatterns)...)
	}

	candidates := detect.Detect(spans, prof)

	var ref *reference.Header
	if opts.CalibrateWith != "" {
		f, err := os.Open(opts.CalibrateWith)
		if err != nil {
			return fmt.Errorf("opening reference header: %w", err)
		}
		defer f.Close()
		ref, err = reference.Parse(f)
		if err != nil {
			log.Warnf("reference header had unparseable lines: %v", err)
		}
	}

	res := calibrate.Run(candidates, prof, ref)

	if opts.Verbose {
		printSummary(res, len(image), bios.Length)
	}

	if opts.Output != "" {
		if err := writeFile(opts.Output, func(f *os.File) error { return emit.WriteCorebootHeader(f, res) }); err != nil {
			return fmt.Errorf("writing coreboot header: %w", err)
		}
	}
	if opts.JSON != "" {
		if err := writeFile(opts.JSON, func(f *os.File) error { return emit.WriteJSON(f, res) }); err != nil {
			return fmt.Errorf("writing JSON report: %w", err)
		}
	}

	return res.Err
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}

func printSummary(res *calibrate.Result, imageSize int, regionSize uint64) {
	fmt.Printf("flash image: %s, BIOS region: %s\n",
		humanize.Bytes(uint64(imageSize)), humanize.Bytes(regionSize))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Surviving Pad Tables")
	t.AppendHeader(table.Row{"Class", "Offset", "Entry Size", "Entry Count", "Scored", "Score"})
	for class, tab := range res.Winners {
		t.AppendRow([]interface{}{
			class.String(),
			fmt.Sprintf("0x%x", tab.AbsoluteOffset()),
			tab.EntrySize,
			tab.EntryCount(),
			tab.Scored,
			tab.Score,
		})
	}
	t.Render()

	if len(res.Rejections) > 0 {
		r := table.NewWriter()
		r.SetOutputMirror(os.Stdout)
		r.SetTitle("Rejected Candidates")
		r.AppendHeader(table.Row{"Offset", "Entry Size", "Entry Count", "Reason"})
		for _, rej := range res.Rejections {
			r.AppendRow([]interface{}{
				fmt.Sprintf("0x%x", rej.Table.AbsoluteOffset()),
				rej.Table.EntrySize,
				rej.Table.EntryCount(),
				rej.Reason,
			})
		}
		r.Render()
	}
}
