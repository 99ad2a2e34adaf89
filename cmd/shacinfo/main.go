package main

/*------------------------------------------------------------------
 *
 * Name:	shacinfo
 *
 * Purpose:	Inspect .shac containers: header fields, layers, and
 *		whether the file parses cleanly at all.
 *
 *----------------------------------------------------------------*/

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	shac "github.com/doismellburning/shac/src"
)

func main() {
	var showMeta = pflag.BoolP("metadata", "m", false, "Print each layer's full metadata JSON.")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]... <FILE>...\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	var exit = 0
	for _, path := range pflag.Args() {
		if err := dump(path, *showMeta); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			exit = 1
		}
	}
	os.Exit(exit)
}

func dump(path string, showMeta bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	file, err := shac.Parse(data)
	if err != nil {
		return err
	}

	var h = file.Header
	fmt.Printf("%s:\n", path)
	fmt.Printf("  version       %d\n", h.Version)
	fmt.Printf("  order         %d (%d channels)\n", h.Order, h.Channels)
	fmt.Printf("  sample rate   %d Hz\n", h.SampleRate)
	fmt.Printf("  samples       %d (%.3f s)\n", h.Samples, float64(h.Samples)/float64(h.SampleRate))
	fmt.Printf("  normalization %s\n", h.Normalization)
	fmt.Printf("  layers        %d\n", h.LayerCount)
	fmt.Printf("  size          %d bytes (declared content)\n", file.Size())

	for _, layer := range file.Layers {
		var m = layer.Meta
		fmt.Printf("  layer %q: type=%q position=(%g, %g, %g) gain=%g\n",
			layer.ID, m.Type, m.Position.X, m.Position.Y, m.Position.Z, m.Gain)
		if showMeta {
			raw, err := m.MarshalBytes()
			if err != nil {
				return err
			}
			var pretty = new(json.RawMessage)
			*pretty = raw
			indented, err := json.MarshalIndent(pretty, "    ", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("    %s\n", indented)
		}
	}
	return nil
}
