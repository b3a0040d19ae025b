// Selector-driven extractor. Any employer whose careers page can be described
// with CSS selectors in its config block works without new code.

package generic

import (
	"context"
	"errors"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"go-jobharvest/internal/config"
	"go-jobharvest/internal/scraper"
)

// Selector keys read from the company config.
const (
	selJobCard    = "job_card"
	selTitle      = "title"
	selLocation   = "location"
	selDesc       = "description"
	selDepartment = "department"
	selURL        = "url"
	selPostedDate = "posted_date"
	selNextPage   = "next_page"
)

type Extractor struct {
	company *config.CompanyConfig
	global  *config.GlobalConfig
	logger  *slog.Logger
}

func New(company *config.CompanyConfig, global *config.GlobalConfig) (scraper.Extractor, error) {
	if company.Selectors[selJobCard] == "" {
		return nil, errors.New("generic extractor requires a job_card selector")
	}
	if company.Selectors[selTitle] == "" {
		return nil, errors.New("generic extractor requires a title selector")
	}
	return &Extractor{
		company: company,
		global:  global,
		logger:  slog.Default().With("company", company.Name, "extractor", "generic"),
	}, nil
}

func (e *Extractor) Key() string {
	return e.company.Name
}

func (e *Extractor) ExtractListings(ctx context.Context, page playwright.Page) ([]scraper.RawListing, error) {
	var listings []scraper.RawListing
	maxPages := e.global.MaxPagesFor(e.company)

	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return listings, err
		}

		cards, err := page.Locator(e.company.Selectors[selJobCard]).All()
		if err != nil {
			return listings, err
		}
		e.logger.Debug("found job cards", "page", pageNum, "count", len(cards))

		for _, card := range cards {
			listings = append(listings, e.extractCard(card))
		}

		if maxPages > 0 && pageNum >= maxPages {
			break
		}
		if !e.gotoNextPage(page) {
			break
		}
	}

	return listings, nil
}

func (e *Extractor) extractCard(card playwright.Locator) scraper.RawListing {
	listing := scraper.RawListing{
		"title":       e.textOf(card, selTitle),
		"location":    e.textOf(card, selLocation),
		"description": e.textOf(card, selDesc),
		"department":  e.textOf(card, selDepartment),
		"posted_date": e.textOf(card, selPostedDate),
	}

	if sel := e.company.Selectors[selURL]; sel != "" {
		if href, err := card.Locator(sel).First().GetAttribute("href"); err == nil {
			listing["url"] = href
		}
	}
	return listing
}

func (e *Extractor) textOf(card playwright.Locator, key string) string {
	sel := e.company.Selectors[key]
	if sel == "" {
		return ""
	}
	text, err := card.Locator(sel).First().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(500),
	})
	if err != nil {
		return ""
	}
	return text
}

// gotoNextPage follows the configured pagination control, if any.
func (e *Extractor) gotoNextPage(page playwright.Page) bool {
	sel := e.company.Selectors[selNextPage]
	if sel == "" {
		return false
	}
	next := page.Locator(sel).First()
	if visible, _ := next.IsVisible(); !visible {
		return false
	}
	if err := next.Click(); err != nil {
		e.logger.Warn("failed to open next page", "error", err)
		return false
	}
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: playwright.Float(10000),
	}); err != nil {
		e.logger.Warn("next page load timeout, continuing", "error", err)
	}
	return true
}
