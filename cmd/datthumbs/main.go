// Command datthumbs renders every channel of a .dat file to chNNN.png without
// opening a window.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/edward-ap/datviewer/internal/logging"
	"github.com/edward-ap/datviewer/internal/render"
	"github.com/edward-ap/datviewer/internal/waveform"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		exitErr(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("datthumbs", flag.ContinueOnError)
	gain := fs.Float64("gain", waveform.DefaultGain, "divide the shared range by this factor")
	size := fs.Int("size", render.DefaultSize, "thumbnail edge in pixels")
	kind := fs.String("renderer", render.KindPlot, "rendering backend: plot or chart")
	out := fs.String("out", ".", "output directory")
	trace := fs.Bool("traceLog", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: datthumbs [flags] file.dat")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("exactly one input file is required")
	}
	logging.SetTraceLogEnabled(*trace)
	log, err := logging.New(logging.Options{})
	if err != nil {
		return err
	}
	defer logging.Sync(log)

	r, err := render.NewRenderer(*kind)
	if err != nil {
		return err
	}
	ds, err := waveform.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	traces := ds.Traces()
	scale, err := waveform.SharedScale(traces, *gain)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	edge := render.ClampSize(*size)
	dpi := render.DPIForSamples(ds.Samples())
	for i, tr := range traces {
		img, err := r.Render(tr, scale, dpi)
		if err != nil {
			return fmt.Errorf("render channel %d: %w", i+1, err)
		}
		name := filepath.Join(*out, fmt.Sprintf("ch%03d.png", i+1))
		if err := render.WritePNG(name, render.Thumbnail(img, edge)); err != nil {
			return err
		}
		log.Debug("wrote thumbnail", zap.Int("channel", i+1), zap.String("path", name))
	}
	log.Info("done rendering traces",
		zap.String("file", ds.Source),
		zap.Int("channels", ds.Channels()),
		zap.Int("samples", ds.Samples()),
		zap.Float64("min", scale.Min),
		zap.Float64("max", scale.Max))
	fmt.Fprintf(stdout, "%d thumbnails written to %s\n", len(traces), *out)
	return nil
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
