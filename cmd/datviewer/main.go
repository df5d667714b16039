package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/edward-ap/datviewer/internal/config"
	"github.com/edward-ap/datviewer/internal/logging"
	"github.com/edward-ap/datviewer/internal/viewerapp"
)

func main() {
	trace := flag.Bool("traceLog", false, "enable debug logging")
	logFile := flag.String("logFile", "", "also write JSON logs to this file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [file.dat]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	logging.SetTraceLogEnabled(*trace)

	log, err := logging.New(logging.Options{File: *logFile})
	if err != nil {
		exitErr(err)
	}
	defer logging.Sync(log)

	cfg, err := config.Load()
	if err != nil {
		log.Warn("config load error, using defaults", zap.Error(err))
		cfg = config.Default()
	}

	app, err := viewerapp.NewApp(cfg, log)
	if err != nil {
		exitErr(err)
	}
	if path := flag.Arg(0); path != "" {
		app.OpenFile(path)
	}
	app.Run()
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
