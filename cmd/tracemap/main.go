package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jengzang/tracemap-backend-go/internal/app"
	"github.com/jengzang/tracemap-backend-go/internal/config"
	"github.com/jengzang/tracemap-backend-go/internal/database"
	"github.com/jengzang/tracemap-backend-go/internal/render"
	"github.com/jengzang/tracemap-backend-go/internal/report"
	"github.com/jengzang/tracemap-backend-go/internal/service"
)

func main() {
	cfg := config.Load()

	targets := flag.String("targets", cfg.TargetsFile, "file with one target per line")
	dir := flag.String("dir", cfg.DataDir, "directory holding output_<target>.csv files")
	url := flag.String("url", cfg.SourceURL, "base URL to fetch route files from instead of -dir")
	dedup := flag.String("dedup", cfg.SegmentDedup, "segment de-duplication scope: route or global")
	dbPath := flag.String("db", database.MemoryPath, "sqlite database to record runs in")
	quiet := flag.Bool("q", false, "suppress progress logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [target ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *quiet {
		log.SetOutput(io.Discard)
	}

	cfg.TargetsFile = *targets
	cfg.DataDir = *dir
	cfg.SourceURL = *url
	cfg.SegmentDedup = *dedup
	cfg.DBPath = *dbPath
	cfg.CacheTTL = 0

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	svc, err := app.NewGlobeService(cfg, db, render.NewRecorder(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := svc.ProcessBatch(ctx, flag.Args())
	if errors.Is(err, service.ErrNoTargets) {
		fmt.Fprintln(os.Stderr, "no targets given")
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(report.Batch(summary, cfg.SegmentDedup))

	if summary.Parsed == 0 {
		os.Exit(1)
	}
}
