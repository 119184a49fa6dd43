// Command extract runs one extraction from the command line and prints the
// resulting product record as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Balaji2327/Devsparks/config"
	"github.com/Balaji2327/Devsparks/extractor"
	"github.com/Balaji2327/Devsparks/internal/types"
)

func main() {
	rawURL := flag.String("url", "", "product page URL to extract")
	mode := flag.String("mode", "auto", "extraction mode: auto, sandbox, html or browser")
	timeout := flag.Duration("timeout", 60*time.Second, "overall extraction deadline")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *rawURL == "" {
		fmt.Fprintln(os.Stderr, "usage: extract -url <product-url> [-mode auto|sandbox|html|browser]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	controller := extractor.NewController(cfg, logger)
	record, err := controller.Extract(ctx, types.ExtractionRequest{
		URL:  *rawURL,
		Mode: types.Mode(*mode),
	})
	if err != nil {
		logger.Fatalf("extraction: %v", err)
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		logger.Fatalf("encode: %v", err)
	}
	fmt.Println(string(out))
}
