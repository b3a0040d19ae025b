package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobharvest/internal/browser"
	"go-jobharvest/internal/config"
	"go-jobharvest/internal/models"
)

type fakeExtractor struct {
	listings []RawListing
	err      error
	calls    int
}

func (f *fakeExtractor) Key() string { return "acme" }

func (f *fakeExtractor) ExtractListings(context.Context, playwright.Page) ([]RawListing, error) {
	f.calls++
	return f.listings, f.err
}

type fakeDriver struct {
	gotoCalls int
}

func (d *fakeDriver) Goto(string, ...playwright.PageGotoOptions) (playwright.Response, error) {
	d.gotoCalls++
	return nil, nil
}

func (d *fakeDriver) WaitForLoadState(...playwright.PageWaitForLoadStateOptions) error {
	return nil
}

func testGlobal() *config.GlobalConfig {
	return &config.GlobalConfig{
		Categories: []config.CategoryConfig{
			{ID: "technology", Keywords: []string{"software", "engineer"}, Departments: []string{"engineering"}},
		},
		Rules: config.DefaultRules(),
	}
}

// newReadyScraper wires a scraper straight into Ready with a fake page so the
// template can run without a browser.
func newReadyScraper(t *testing.T, fx Extractor, rateLimit float64) *Scraper {
	t.Helper()
	company := &config.CompanyConfig{
		Name:       "acme",
		CareersURL: "https://acme.example/careers/",
		RateLimit:  &rateLimit,
	}
	s := New(fx, company, testGlobal(), testSettings())
	s.state = StateReady
	s.driver = &fakeDriver{}
	return s
}

func validListing(url string) RawListing {
	return RawListing{
		"title":       "Software Engineer",
		"description": "Build <b>backend</b> services in Go.",
		"location":    "Remote - US",
		"url":         url,
		"posted_date": "3 days ago",
		"salary":      "$100k",
	}
}

func TestRunCountsFoundAndProcessed(t *testing.T) {
	fx := &fakeExtractor{listings: []RawListing{
		validListing("/jobs/1"),
		{"title": "Engineer", "description": "No location on this one."},
		validListing("/jobs/2"),
	}}
	s := newReadyScraper(t, fx, 0)

	jobs, err := s.Run(context.Background())
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 3, stats.JobsFound)
	assert.Equal(t, 2, stats.JobsProcessed)
	assert.Equal(t, 2, stats.JobsCategorized)
	assert.Empty(t, stats.Errors)
	require.Len(t, jobs, 2)
	assert.Equal(t, StateReady, s.State())
}

func TestRunProducesWellFormedRecords(t *testing.T) {
	fx := &fakeExtractor{listings: []RawListing{validListing("/jobs/42")}}
	s := newReadyScraper(t, fx, 0)

	jobs, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "acme", job.Company)
	assert.Equal(t, "Software Engineer", job.Title)
	assert.Equal(t, "Build backend services in Go.", job.Description)
	assert.Equal(t, "https://acme.example/jobs/42", job.URL)
	assert.Equal(t, "technology", job.Category)
	assert.Equal(t, models.JobTypeFullTime, job.JobType)
	assert.Equal(t, models.ExperienceUnknown, job.ExperienceLevel)
	assert.Equal(t, models.WorkplaceRemote, job.WorkplaceType)
	require.NotNil(t, job.PostedDate)
	assert.Equal(t, "$100k", job.Metadata["salary"])
}

func TestRunDeduplicatesRepeatedURLs(t *testing.T) {
	fx := &fakeExtractor{listings: []RawListing{
		validListing("/jobs/1"),
		validListing("/jobs/1"),
	}}
	s := newReadyScraper(t, fx, 0)

	jobs, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, jobs, 1)
	assert.Equal(t, 2, s.Stats().JobsFound)
	assert.Equal(t, 1, s.Stats().JobsProcessed)
}

func TestRunRecordsExtractionErrorAndKeepsPartialResults(t *testing.T) {
	fx := &fakeExtractor{
		listings: []RawListing{validListing("/jobs/1")},
		err:      assert.AnError,
	}
	s := newReadyScraper(t, fx, 0)

	jobs, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, jobs, 1)
	require.Len(t, s.Stats().Errors, 1)
	assert.Contains(t, s.Stats().Errors[0], "extract listings")
	assert.Equal(t, StateReady, s.State())
}

func TestRunAppliesPolitenessDelay(t *testing.T) {
	const n = 6
	const rateLimit = 50.0 //items per second

	listings := make([]RawListing, 0, n)
	for i := 0; i < n; i++ {
		listings = append(listings, validListing(""))
	}
	s := newReadyScraper(t, &fakeExtractor{listings: listings}, rateLimit)

	start := time.Now()
	jobs, err := s.Run(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Len(t, jobs, n)
	//total wall time must be at least (N-1)/R
	assert.GreaterOrEqual(t, elapsed, (n-1)*time.Second/time.Duration(rateLimit))
}

func TestRunSkipsDelayWhenRateLimitZero(t *testing.T) {
	listings := make([]RawListing, 0, 50)
	for i := 0; i < 50; i++ {
		listings = append(listings, validListing(""))
	}
	s := newReadyScraper(t, &fakeExtractor{listings: listings}, 0)

	start := time.Now()
	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRunCancelledBeforeExtractionReturnsNothing(t *testing.T) {
	fx := &fakeExtractor{listings: []RawListing{validListing("/jobs/1")}}
	s := newReadyScraper(t, fx, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs, err := s.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
	assert.Equal(t, 0, fx.calls)
	assert.Equal(t, StateClosed, s.State())
}

func TestRunCancelledMidBatchReturnsPartialResults(t *testing.T) {
	fx := &fakeExtractor{listings: []RawListing{
		validListing("/jobs/1"),
		validListing("/jobs/2"),
		validListing("/jobs/3"),
	}}
	s := newReadyScraper(t, fx, 5) //200ms between items

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	jobs, err := s.Run(ctx)
	require.NoError(t, err)
	//the first item fits inside the timeout, the rest are cut off
	assert.Len(t, jobs, 1)
	assert.Equal(t, StateClosed, s.State())
}

func TestRunRequiresReadyState(t *testing.T) {
	s := New(&fakeExtractor{}, &config.CompanyConfig{Name: "acme", CareersURL: "https://acme.example"}, testGlobal(), testSettings())

	_, err := s.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateUninitialized, s.State())
}

func TestInitializeFailureMovesToFailed(t *testing.T) {
	s := New(&fakeExtractor{}, &config.CompanyConfig{Name: "acme", CareersURL: "https://acme.example"}, testGlobal(), testSettings())
	s.newSession = func(browser.Options) (*browser.Session, error) {
		return nil, assert.AnError
	}

	err := s.Initialize(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateFailed, s.State())
}

func TestInitializeSuccessMovesToReady(t *testing.T) {
	s := New(&fakeExtractor{}, &config.CompanyConfig{Name: "acme", CareersURL: "https://acme.example"}, testGlobal(), testSettings())
	var gotOpts browser.Options
	s.newSession = func(opts browser.Options) (*browser.Session, error) {
		gotOpts = opts
		return &browser.Session{}, nil
	}

	require.NoError(t, s.Initialize(context.Background()))
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, config.EngineChromium, gotOpts.Engine)
	assert.Equal(t, "test-agent", gotOpts.UserAgent)

	//a second initialize is a state error
	assert.Error(t, s.Initialize(context.Background()))
}

func TestCleanupIsIdempotent(t *testing.T) {
	s := newReadyScraper(t, &fakeExtractor{}, 0)

	s.Cleanup()
	assert.Equal(t, StateClosed, s.State())
	s.Cleanup()
	assert.Equal(t, StateClosed, s.State())
}

func TestUserAgentSelection(t *testing.T) {
	company := &config.CompanyConfig{Name: "acme", CareersURL: "https://acme.example"}

	t.Run("empty pool falls back to settings", func(t *testing.T) {
		s := New(&fakeExtractor{}, company, testGlobal(), testSettings())
		assert.Equal(t, "test-agent", s.pickUserAgent())
	})

	t.Run("no rotation takes first entry", func(t *testing.T) {
		global := testGlobal()
		global.UserAgents = []string{"ua-one", "ua-two"}
		s := New(&fakeExtractor{}, company, global, testSettings())
		assert.Equal(t, "ua-one", s.pickUserAgent())
	})

	t.Run("rotation stays inside pool", func(t *testing.T) {
		global := testGlobal()
		global.UserAgents = []string{"ua-one", "ua-two"}
		global.UserAgentRotation = true
		s := New(&fakeExtractor{}, company, global, testSettings())
		for i := 0; i < 20; i++ {
			assert.Contains(t, global.UserAgents, s.pickUserAgent())
		}
	})
}
