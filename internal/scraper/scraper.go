// Shared scraper lifecycle and per-listing processing template.
// Per-employer extractors only supply the raw listing extraction step.

package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/playwright-community/playwright-go"
	"golang.org/x/time/rate"

	"go-jobharvest/internal/browser"
	"go-jobharvest/internal/categorize"
	"go-jobharvest/internal/config"
	"go-jobharvest/internal/models"
	"go-jobharvest/internal/normalize"
)

// RawListing is one uncleaned posting as pulled off a careers page. Expected
// keys: title, description, location; optional: department, url, posted_date
// and anything extractor-specific.
type RawListing map[string]string

// Extractor is the single extension point every employer implementation must
// satisfy. All other scraping behavior is shared.
type Extractor interface {
	//Key is the employer key this extractor serves
	Key() string

	//ExtractListings pulls raw postings from the already-navigated page
	ExtractListings(ctx context.Context, page playwright.Page) ([]RawListing, error)
}

// State tracks the scraper lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateRunning
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// pageDriver is the slice of playwright.Page the shared template touches.
type pageDriver interface {
	Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error)
	WaitForLoadState(options ...playwright.PageWaitForLoadStateOptions) error
}

// Scraper drives one employer's run: initialize acquires the browser session,
// Run executes the extraction and normalization template, Cleanup releases
// the session. One instance per run; not safe for concurrent use.
type Scraper struct {
	extractor   Extractor
	company     *config.CompanyConfig
	global      *config.GlobalConfig
	settings    *config.Settings
	categorizer *categorize.Categorizer
	limiter     *rate.Limiter
	rateLimit   float64

	session *browser.Session
	page    playwright.Page
	driver  pageDriver

	state  State
	stats  models.BatchStats
	logger *slog.Logger

	//seam for tests, defaults to browser.NewSession
	newSession func(browser.Options) (*browser.Session, error)
}

// New builds a scraper bound to its merged configuration. The global config
// is shared read-only across instances.
func New(extractor Extractor, company *config.CompanyConfig, global *config.GlobalConfig, settings *config.Settings) *Scraper {
	s := &Scraper{
		extractor:   extractor,
		company:     company,
		global:      global,
		settings:    settings,
		categorizer: categorize.New(global),
		rateLimit:   global.RateLimitFor(company),
		state:       StateUninitialized,
		logger:      slog.Default().With("company", company.Name),
		newSession:  browser.NewSession,
	}
	if s.rateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(s.rateLimit), 1)
	}
	return s
}

// Company returns the employer key this scraper is bound to.
func (s *Scraper) Company() string {
	return s.company.Name
}

// State returns the current lifecycle state.
func (s *Scraper) State() State {
	return s.state
}

// Stats returns a snapshot of the current run's counters.
func (s *Scraper) Stats() models.BatchStats {
	snap := s.stats
	snap.Errors = append([]string(nil), s.stats.Errors...)
	return snap
}

// Initialize acquires the browser session. A failure is reported as an error
// and moves the scraper to Failed so a caller orchestrating many employers
// can skip this one and continue.
func (s *Scraper) Initialize(ctx context.Context) error {
	if s.state != StateUninitialized {
		return fmt.Errorf("initialize %s: state is %s, want %s", s.company.Name, s.state, StateUninitialized)
	}
	if err := ctx.Err(); err != nil {
		s.state = StateFailed
		return err
	}

	session, err := s.newSession(browser.Options{
		Engine:         s.settings.BrowserEngine,
		Headless:       s.settings.Headless,
		WindowWidth:    s.settings.WindowWidth,
		WindowHeight:   s.settings.WindowHeight,
		UserAgent:      s.pickUserAgent(),
		ExecutablePath: s.binaryPath(),
		TimeoutMs:      s.settings.BrowserTimeout * 1000,
	})
	if err != nil {
		s.logger.Error("failed to initialize browser session", "error", err)
		s.state = StateFailed
		return fmt.Errorf("initialize %s: %w", s.company.Name, err)
	}

	s.session = session
	s.page = session.Page()
	s.driver = s.page
	s.state = StateReady
	s.logger.Info("scraper initialized", "engine", s.settings.BrowserEngine)
	return nil
}

// Run navigates to the careers page, invokes the extraction hook and pushes
// every raw listing through the normalization pipeline. Failures on a single
// listing are recorded in the stats and never abort the batch. Cancellation
// closes the scraper and returns whatever was already produced.
func (s *Scraper) Run(ctx context.Context) ([]models.Job, error) {
	if s.state != StateReady {
		return nil, fmt.Errorf("run %s: state is %s, want %s", s.company.Name, s.state, StateReady)
	}
	s.state = StateRunning
	s.stats.Reset()

	var jobs []models.Job

	s.navigate()

	if ctx.Err() != nil {
		s.Cleanup()
		return jobs, nil
	}

	raw, err := s.extractor.ExtractListings(ctx, s.page)
	if err != nil {
		s.logger.Error("extraction failed", "error", err)
		s.stats.RecordError(fmt.Sprintf("extract listings: %v", err))
	}
	s.stats.JobsFound = len(raw)

	seen := mapset.NewThreadUnsafeSet[string]()
	for _, listing := range raw {
		//politeness delay between listings; the wait is cancellable
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				s.Cleanup()
				return jobs, nil
			}
		} else if ctx.Err() != nil {
			s.Cleanup()
			return jobs, nil
		}

		job, err := s.processListing(listing)
		if err != nil {
			s.logger.Error("failed to process listing", "error", err)
			s.stats.RecordError(err.Error())
			continue
		}
		if job == nil {
			continue
		}
		if job.URL != "" && !seen.Add(job.URL) {
			continue
		}

		jobs = append(jobs, *job)
		s.stats.JobsProcessed++
	}

	s.logger.Info("run finished",
		"found", s.stats.JobsFound,
		"processed", s.stats.JobsProcessed,
		"errors", len(s.stats.Errors))

	s.state = StateReady
	return jobs, nil
}

// Cleanup releases the browser session. Valid from any state, tolerant of an
// already-dead or never-created session; it logs but never fails.
func (s *Scraper) Cleanup() {
	if s.session != nil {
		if err := s.session.Close(); err != nil {
			s.logger.Error("error during cleanup", "error", err)
		}
		s.session = nil
	}
	s.page = nil
	s.driver = nil
	s.state = StateClosed
}

// navigate opens the careers URL and waits for readiness. A slow page is a
// warning, not a failure: dynamic content may still be partially present.
func (s *Scraper) navigate() {
	if s.driver == nil {
		return
	}
	timeout := playwright.Float(s.settings.BrowserTimeout * 1000)
	if _, err := s.driver.Goto(s.company.CareersURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   timeout,
	}); err != nil {
		s.logger.Warn("navigation failed", "url", s.company.CareersURL, "error", err)
		s.stats.RecordError(fmt.Sprintf("navigate %s: %v", s.company.CareersURL, err))
		return
	}
	if err := s.driver.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateLoad,
		Timeout: timeout,
	}); err != nil {
		s.logger.Warn("page load timeout, continuing", "error", err)
	}
}

// processListing turns one raw listing into a canonical record. Returns
// (nil, nil) when required fields are missing after cleanup; such listings
// are dropped and only counted as found.
func (s *Scraper) processListing(listing RawListing) (job *models.Job, err error) {
	defer func() {
		if r := recover(); r != nil {
			job = nil
			err = fmt.Errorf("process listing: %v", r)
		}
	}()

	title := normalize.CleanText(listing["title"])
	description := normalize.CleanText(listing["description"])
	location := normalize.CleanText(listing["location"])
	department := normalize.CleanText(listing["department"])

	if title == "" || description == "" || location == "" {
		s.logger.Debug("dropping listing with missing required fields", "title", title)
		return nil, nil
	}

	result := s.categorizer.Categorize(title, description, department)
	s.stats.JobsCategorized++

	job = &models.Job{
		ID:              models.NewJobID(),
		Title:           title,
		Company:         s.company.Name,
		Location:        location,
		Description:     description,
		Department:      department,
		Category:        result.Category,
		JobType:         normalize.InferJobType(title, description),
		ExperienceLevel: normalize.InferExperienceLevel(title, description),
		WorkplaceType:   normalize.InferWorkplaceType(location, description),
		PostedDate:      normalize.ParseDate(listing["posted_date"]),
		URL:             normalize.AbsoluteURL(s.company.CareersURL, listing["url"]),
		Metadata:        extraFields(listing),
	}
	return job, nil
}

// pickUserAgent returns a user agent from the configured pool, randomly when
// rotation is enabled, falling back to the settings default.
func (s *Scraper) pickUserAgent() string {
	pool := s.global.UserAgents
	if len(pool) == 0 {
		return s.settings.UserAgent
	}
	if s.global.UserAgentRotation && len(pool) > 1 {
		return pool[rand.Intn(len(pool))]
	}
	return pool[0]
}

func (s *Scraper) binaryPath() string {
	if s.settings.BrowserEngine == config.EngineFirefox {
		return s.settings.FirefoxPath
	}
	return s.settings.ChromiumPath
}

var consumedKeys = map[string]bool{
	"title":       true,
	"description": true,
	"location":    true,
	"department":  true,
	"url":         true,
	"posted_date": true,
}

// extraFields keeps extractor-specific keys (salary, team, ...) as metadata.
func extraFields(listing RawListing) map[string]string {
	var extras map[string]string
	for k, v := range listing {
		if consumedKeys[k] || v == "" {
			continue
		}
		if extras == nil {
			extras = map[string]string{}
		}
		extras[k] = v
	}
	return extras
}
