package google

import (
	"context"
	"log/slog"
	"strings"

	"github.com/playwright-community/playwright-go"

	"go-jobharvest/internal/config"
	"go-jobharvest/internal/scraper"
)

var defaultSelectors = map[string]string{
	"job_card":    "li.lLd3Je",
	"title":       "h3.QJPWVe",
	"location":    "span.r0wTof",
	"department":  "span.RP7SMd",
	"description": "div.Xsxa1e",
	"url":         "a[jsname]",
	"learn_more":  "a[aria-label^='Learn more']",
}

type Extractor struct {
	company *config.CompanyConfig
	logger  *slog.Logger
}

func New(company *config.CompanyConfig, _ *config.GlobalConfig) (scraper.Extractor, error) {
	return &Extractor{
		company: company,
		logger:  slog.Default().With("company", company.Name, "extractor", "google"),
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
		listing := e.extractCard(card)
		if strings.TrimSpace(listing["title"]) == "" {
			continue
		}
		listings = append(listings, listing)
	}

	return listings, nil
}

func (e *Extractor) extractCard(card playwright.Locator) scraper.RawListing {
	text := func(key string) string {
		v, err := card.Locator(e.selector(key)).First().TextContent(playwright.LocatorTextContentOptions{
			Timeout: playwright.Float(500),
		})
		if err != nil {
			return ""
		}
		return v
	}

	href, _ := card.Locator(e.selector("url")).First().GetAttribute("href")
	if href == "" {
		//results sometimes expose the link only on the learn-more anchor
		href, _ = card.Locator(e.selector("learn_more")).First().GetAttribute("href")
	}

	return scraper.RawListing{
		"title":       text("title"),
		"location":    text("location"),
		"department":  text("department"),
		"description": text("description"),
		"url":         href,
	}
}
