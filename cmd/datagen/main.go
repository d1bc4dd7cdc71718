// Command datagen writes a synthetic vehicle reliability dataset to CSV and
// can optionally replay its complaint rows onto the ingest subject.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/RelioAI/relio-mvp/engine/dataset"
	"github.com/RelioAI/relio-mvp/engine/ingest"
	"github.com/RelioAI/relio-mvp/pkg/natsutil"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	var (
		out     = flag.String("out", "data/vehicle_reliability.csv", "output CSV path")
		n       = flag.Int("n", 600, "number of rows")
		seed    = flag.Int64("seed", 42, "generator seed")
		publish = flag.Bool("publish", false, "also publish complaint rows to the ingest subject")
		natsURL = flag.String("nats", nats.DefaultURL, "NATS server URL (with -publish)")
	)
	flag.Parse()

	records := dataset.Generate(*n, *seed)
	if err := dataset.Write(*out, records); err != nil {
		logger.Error("write dataset", "path", *out, "err", err)
		os.Exit(1)
	}
	logger.Info("dataset written", "path", *out, "rows", len(records))

	if !*publish {
		return
	}

	nc, err := nats.Connect(*natsURL, nats.Name("relio-datagen"))
	if err != nil {
		logger.Error("nats connect", "url", *natsURL, "err", err)
		os.Exit(1)
	}
	defer nc.Drain()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	table := &dataset.Table{Records: records}
	published := 0
	for _, c := range table.Complaints() {
		c.Source = "synthetic"
		if err := natsutil.Publish(ctx, nc, ingest.IngestSubject, c); err != nil {
			logger.Error("publish complaint", "err", err)
			os.Exit(1)
		}
		published++
	}
	logger.Info("complaints published", "subject", ingest.IngestSubject, "count", published)
}
