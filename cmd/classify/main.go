// Command classify runs the leaf classifier on a single image file and
// prints the prediction.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Brownie44l1/plantdisease-api/internal/app"
	"github.com/Brownie44l1/plantdisease-api/internal/config"
	"github.com/Brownie44l1/plantdisease-api/internal/logging"
	"github.com/Brownie44l1/plantdisease-api/internal/model"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.json", "path to JSON config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] <image>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.NewLoggerTo(os.Stderr, level)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		return 1
	}
	defer a.Close()
	if a.ModelErr != nil {
		return 1
	}

	path := flag.Arg(0)
	f, err := os.Open(path)
	if err != nil {
		logger.Error("error processing image", "path", path, "error", err)
		return 1
	}
	defer f.Close()

	result, _, err := a.Pipeline.ClassifyReader(f)
	if err != nil {
		logger.Error("error processing image", "path", path, "error", err)
		return 1
	}

	text := model.FormatResult(result)
	logger.Debug("classification result", "path", path, "label", result.Label, "probability", result.Probability)
	fmt.Println(text)
	return 0
}
