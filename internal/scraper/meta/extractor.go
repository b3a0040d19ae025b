package meta

import (
	"context"
	"log/slog"
	"strings"

	"github.com/playwright-community/playwright-go"

	"go-jobharvest/internal/config"
	"go-jobharvest/internal/scraper"
)

// Default selectors for the Meta careers search page. Any of these can be
// overridden per deployment through the company's selectors block.
var defaultSelectors = map[string]string{
	"job_card":    "div[role='listitem']",
	"title":       "a div[dir='auto']:first-of-type",
	"location":    "span[dir='auto']",
	"department":  "div[data-testid='job-team']",
	"url":         "a",
	"description": "div[data-testid='job-summary']",
}

type Extractor struct {
	company *config.CompanyConfig
	logger  *slog.Logger
}

func New(company *config.CompanyConfig, _ *config.GlobalConfig) (scraper.Extractor, error) {
	return &Extractor{
		company: company,
		logger:  slog.Default().With("company", company.Name, "extractor", "meta"),
	}, nil
}

func (e *Extractor) Key() string {
	return e.company.Name
}

func (e *Extractor) selector(key string) string {
	if sel := e.company.Selectors[key]; sel != "" {
		return sel
	}
	return defaultSelectors[key]
}

func (e *Extractor) ExtractListings(ctx context.Context, page playwright.Page) ([]scraper.RawListing, error) {
	//search results render lazily; wait for the first card
	if _, err := page.WaitForSelector(e.selector("job_card"), playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		e.logger.Warn("no job cards appeared", "error", err)
	}

	cards, err := page.Locator(e.selector("job_card")).All()
	if err != nil {
		return nil, err
	}
	e.logger.Debug("found job cards", "count", len(cards))

	var listings []scraper.RawListing
	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return listings, err
		}

		titleEl := card.Locator(e.selector("title")).First()
		title, _ := titleEl.TextContent(playwright.LocatorTextContentOptions{
			Timeout: playwright.Float(500),
		})
		if strings.TrimSpace(title) == "" {
			continue
		}

		href, _ := card.Locator(e.selector("url")).First().GetAttribute("href")

		location, _ := card.Locator(e.selector("location")).First().TextContent(playwright.LocatorTextContentOptions{
			Timeout: playwright.Float(500),
		})
		department, _ := card.Locator(e.selector("department")).First().TextContent(playwright.LocatorTextContentOptions{
			Timeout: playwright.Float(500),
		})
		description, _ := card.Locator(e.selector("description")).First().TextContent(playwright.LocatorTextContentOptions{
			Timeout: playwright.Float(500),
		})

		listings = append(listings, scraper.RawListing{
			"title":       title,
			"location":    location,
			"department":  department,
			"description": description,
			"url":         href,
		})
	}

	return listings, nil
}
