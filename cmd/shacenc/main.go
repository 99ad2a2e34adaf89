package main

/*------------------------------------------------------------------
 *
 * Name:	shacenc
 *
 * Purpose:	Encode a scene of positioned mono WAV sources into a
 *		.shac container.
 *
 * Examples:	shacenc scene.yaml
 *		shacenc -o mix.shac scene.yaml
 *
 *		Source paths inside the scene file are resolved
 *		relative to the scene file's directory.
 *
 *----------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"

	shac "github.com/doismellburning/shac/src"
)

func main() {
	var output = pflag.StringP("output", "o", "", "Output file. Default is a timestamped name in the current directory.")
	var verbose = pflag.BoolP("verbose", "v", false, "Debug logging.")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]... <SCENE FILE>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Encodes the scene's mono sources into one spatial audio container.\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	var log = charmlog.NewWithOptions(os.Stderr, charmlog.Options{Prefix: "shacenc"})
	if *verbose {
		log.SetLevel(charmlog.DebugLevel)
	}
	shac.SetLogger(log)

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}
	var scenePath = pflag.Arg(0)

	f, err := os.Open(scenePath)
	if err != nil {
		log.Fatal("open scene", "err", err)
	}
	scene, err := shac.LoadScene(f)
	f.Close()
	if err != nil {
		log.Fatal("load scene", "err", err)
	}

	// Ctrl-C abandons the encode between layers.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	writer, err := shac.EncodeScene(ctx, scene, filepath.Dir(scenePath))
	if err != nil {
		log.Fatal("encode", "err", err)
	}

	var outPath = *output
	if outPath == "" {
		pattern, err := strftime.New("shac-%Y%m%d-%H%M%S.shac")
		if err != nil {
			log.Fatal("output name pattern", "err", err)
		}
		outPath = pattern.FormatString(time.Now())
	}

	out, err := os.Create(outPath)
	if err != nil {
		log.Fatal("create output", "err", err)
	}
	n, err := writer.WriteTo(out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		log.Fatal("write output", "err", err)
	}
	log.Info("wrote container", "path", outPath, "bytes", n, "layers", writer.LayerCount())
}
