package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"

	"insider_filings/pkg/core/alerts"
	"insider_filings/pkg/core/announce"
	"insider_filings/pkg/core/company"
	"insider_filings/pkg/core/config"
	"insider_filings/pkg/core/marketref"
	"insider_filings/pkg/core/pipeline"
	"insider_filings/pkg/core/report"
	"insider_filings/pkg/core/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	var (
		configPath = flag.String("config", "config.yaml", "path to the YAML config file")
		inputDir   = flag.String("input", "data/filings", "directory of filing text dumps")
		listing    = flag.String("listing", "", "optional saved announcement listing HTML")
		watch      = flag.Bool("watch", false, "keep running and process new files as they land")
		dryRun     = flag.Bool("dry-run", false, "skip database writes")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dir, err := company.Load(cfg.Paths.CompanyMap)
	if err != nil {
		log.Fatalf("company snapshot: %v", err)
	}

	o := pipeline.New(cfg, dir)

	if prices, err := marketref.Load(cfg.Paths.LatestPrices); err != nil {
		log.Printf("Warning: price snapshot unavailable: %v", err)
	} else {
		o.Prices = prices
	}

	idx, err := announce.LoadIndex(cfg.Paths.AnnounceMeta)
	if err != nil {
		log.Fatalf("announcement metadata: %v", err)
	}
	if *listing != "" {
		f, err := os.Open(*listing)
		if err != nil {
			log.Fatalf("listing: %v", err)
		}
		metas, err := announce.ParseListing(f)
		f.Close()
		if err != nil {
			log.Fatalf("listing: %v", err)
		}
		idx.Add(metas...)
	}
	o.Announce = idx

	ctx := context.Background()
	if !*dryRun {
		if err := store.InitDB(ctx, cfg.Database.URL); err != nil {
			log.Fatalf("database: %v", err)
		}
		defer store.Close()
		o.Sink = store.NewFilingRepo()
	}

	docs, err := loadDocuments(*inputDir)
	if err != nil {
		log.Fatalf("input: %v", err)
	}

	res := o.Run(ctx, docs)
	finishRun(ctx, cfg, o, res, *dryRun)

	if *watch {
		if err := watchDirectory(ctx, cfg, o, *inputDir, *dryRun); err != nil {
			log.Fatalf("watch: %v", err)
		}
	}
}

// finishRun writes the alert artifacts and the run report, and mirrors
// alerts to the database.
func finishRun(ctx context.Context, cfg config.Config, o *pipeline.Orchestrator, res *pipeline.Result, dryRun bool) {
	if err := o.Alerts.WriteArtifacts(cfg.Paths.AlertsDir); err != nil {
		log.Printf("Warning: alert artifacts: %v", err)
	}

	_, notInserted := o.Alerts.Buckets()
	summary := report.Build(res.Records, notInserted, time.Now())
	if err := summary.WriteArtifacts(cfg.Paths.ReportDir); err != nil {
		log.Printf("Warning: run report: %v", err)
	}

	if !dryRun {
		repo := store.NewFilingRepo()
		if err := repo.InsertAlerts(ctx, o.Alerts.All()); err != nil {
			log.Printf("Warning: alert persistence: %v", err)
		}
	}
}

// loadDocuments reads every .txt dump in dir.
func loadDocuments(dir string) ([]pipeline.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var docs []pipeline.Document
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Printf("Warning: skipping %s: %v", e.Name(), err)
			continue
		}
		docs = append(docs, pipeline.Document{Filename: e.Name(), Text: string(data)})
	}
	log.Printf("[Parse] loaded %d document(s) from %s", len(docs), dir)
	return docs, nil
}

// watchDirectory processes new text dumps as they appear. Each new file runs
// as its own single-document batch with fresh alerts.
func watchDirectory(ctx context.Context, cfg config.Config, o *pipeline.Orchestrator, dir string, dryRun bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	log.Printf("[Parse] watching %s", dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(strings.ToLower(event.Name), ".txt") {
				continue
			}
			data, err := os.ReadFile(event.Name)
			if err != nil {
				log.Printf("Warning: %s: %v", event.Name, err)
				continue
			}
			o.Alerts = alerts.NewManager()
			res := o.Run(ctx, []pipeline.Document{{
				Filename: filepath.Base(event.Name),
				Text:     string(data),
			}})
			finishRun(ctx, cfg, o, res, dryRun)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Warning: watcher: %v", err)
		}
	}
}
