package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"go-jobharvest/internal/config"
	"go-jobharvest/internal/dedup"
	"go-jobharvest/internal/models"
	"go-jobharvest/internal/reporter"
	"go-jobharvest/internal/scraper"
	"go-jobharvest/internal/scraper/generic"
	"go-jobharvest/internal/scraper/google"
	"go-jobharvest/internal/scraper/meta"
)

func main() {
	configPath := flag.String("config", "configs/companies.yaml", "path to the companies configuration file")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	flag.Parse()

	//load settings
	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("❌ Failed to load settings: %v", err)
	}
	log.Printf("🔧 Settings loaded. Engine: %s, headless: %v", settings.BrowserEngine, settings.Headless)

	//build factory over the companies file
	factory, err := scraper.NewFactory(*configPath, settings, scraper.WithResolver(defaultResolver))
	if err != nil {
		log.Fatalf("❌ Failed to load companies config: %v", err)
	}

	//init telegram reporter if configured
	var tg *reporter.TelegramReporter
	if settings.TelegramToken != "" && settings.TelegramChatID != 0 {
		tg, err = reporter.NewTelegramReporter(settings.TelegramToken, settings.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram reporter unavailable: %v", err)
		} else {
			log.Println("🤖 Telegram reporter initialized.")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("🚀 Starting job harvest...")

	companies := factory.Available(false)
	log.Printf("🏭 Companies to scrape: %v", companies)

	type runResult struct {
		company string
		jobs    []models.Job
		stats   models.BatchStats
	}

	var (
		mu      sync.Mutex
		results []runResult
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, settings.MaxConcurrentScrapers)

	for _, key := range companies {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			s, err := factory.Create(key)
			if err != nil {
				log.Printf("❌ %s: %v", key, err)
				return
			}

			//init failure skips this company, the batch goes on
			if err := s.Initialize(ctx); err != nil {
				log.Printf("❌ %s: browser init failed, skipping: %v", key, err)
				return
			}
			defer s.Cleanup()

			jobs, err := s.Run(ctx)
			if err != nil {
				log.Printf("❌ %s: %v", key, err)
				return
			}

			stats := s.Stats()
			log.Printf("✅ %s finished. Found %d, processed %d, errors %d",
				key, stats.JobsFound, stats.JobsProcessed, len(stats.Errors))

			mu.Lock()
			results = append(results, runResult{company: key, jobs: jobs, stats: stats})
			mu.Unlock()
		}(key)
	}
	wg.Wait()

	var allJobs []models.Job
	for _, r := range results {
		allJobs = append(allJobs, r.jobs...)
	}
	log.Printf("📦 Total records collected: %d", len(allJobs))

	//cross-run dedup
	cache := dedup.NewSeenCache(settings.CachePath)
	newJobs := cache.FilterNew(allJobs)
	log.Printf("🔍 Deduplication: %d total -> %d new", len(allJobs), len(newJobs))

	saveJobs(settings.ResultsPath, newJobs)

	if tg != nil {
		for _, r := range results {
			if err := tg.SendRunSummary(r.company, r.stats); err != nil {
				log.Printf("⚠️ Failed to send summary to Telegram: %v", err)
			}
		}
		for _, job := range newJobs {
			if err := tg.SendJob(job); err != nil {
				log.Printf("⚠️ Failed to send job to Telegram: %v", err)
			}
			//1 second delay to avoid 429
			time.Sleep(1 * time.Second)
		}
	}

	log.Println("🏁 Harvest finished.")
}

// defaultResolver is the convention-based lookup handed to the factory:
// scraper_class (or the module hint) names the extractor constructor.
func defaultResolver(class, module string) (scraper.Constructor, error) {
	switch strings.ToLower(class) {
	case "metaextractor":
		return meta.New, nil
	case "googleextractor":
		return google.New, nil
	case "genericextractor":
		return generic.New, nil
	}
	switch strings.ToLower(module) {
	case "meta":
		return meta.New, nil
	case "google":
		return google.New, nil
	case "generic":
		return generic.New, nil
	}
	return nil, fmt.Errorf("no extractor for class %q (module %q)", class, module)
}

func saveJobs(dir string, jobs []models.Job) {
	if len(jobs) == 0 {
		log.Println("ℹ️ No new records to save.")
		return
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("⚠️ Failed to create results directory: %v", err)
		return
	}

	filename := fmt.Sprintf("jobs-%s.json", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		log.Printf("⚠️ Failed to marshal records: %v", err)
		return
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		log.Printf("⚠️ Failed to write results file: %v", err)
		return
	}

	log.Printf("📁 Results saved to %s", filePath)
}
