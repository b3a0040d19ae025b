// Factory resolving employer keys to scraper instances from the loaded
// companies configuration.

package scraper

import (
	"errors"
	"fmt"
	"strings"

	"go-jobharvest/internal/config"
)

var (
	//ErrUnknownCompany means the key is not present in the configuration
	ErrUnknownCompany = errors.New("unknown company")
	//ErrCompanyDisabled means the company is disabled in the configuration
	ErrCompanyDisabled = errors.New("company disabled")
	//ErrMisconfigured means resolution hints are missing or do not resolve
	ErrMisconfigured = errors.New("scraper misconfigured")
)

// Constructor builds the employer-specific extractor for a company.
type Constructor func(company *config.CompanyConfig, global *config.GlobalConfig) (Extractor, error)

// Resolver maps the configured class/module hints to a constructor. It is the
// convention-based fallback consulted when no explicit registration exists.
type Resolver func(class, module string) (Constructor, error)

// Factory instantiates scrapers from the companies configuration. The
// configuration is loaded once at construction and never re-read.
type Factory struct {
	file     *config.File
	settings *config.Settings
	registry map[string]Constructor
	resolver Resolver
	resolved map[string]Constructor //convention lookups, cached per key
}

// Option configures a Factory.
type Option func(*Factory)

// WithResolver installs the convention-based constructor lookup.
func WithResolver(r Resolver) Option {
	return func(f *Factory) { f.resolver = r }
}

// NewFactory loads the companies file from path and builds a factory over it.
func NewFactory(path string, settings *config.Settings, opts ...Option) (*Factory, error) {
	file, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFactoryFromFile(file, settings, opts...), nil
}

// NewFactoryFromFile builds a factory over an already-parsed configuration.
func NewFactoryFromFile(file *config.File, settings *config.Settings, opts ...Option) *Factory {
	f := &Factory{
		file:     file,
		settings: settings,
		registry: map[string]Constructor{},
		resolved: map[string]Constructor{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Global exposes the shared read-only global configuration.
func (f *Factory) Global() *config.GlobalConfig {
	return &f.file.Global
}

// Available returns employer keys in configuration order. Disabled companies
// are filtered out unless includeDisabled is set.
func (f *Factory) Available(includeDisabled bool) []string {
	return f.file.CompanyKeys(includeDisabled)
}

// Register installs an explicit constructor for a company key. Explicit
// registrations take precedence over convention-based resolution.
func (f *Factory) Register(key string, ctor Constructor) error {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if _, ok := f.file.Company(normalized); !ok {
		return fmt.Errorf("register %q: %w", key, ErrUnknownCompany)
	}
	if ctor == nil {
		return fmt.Errorf("register %q: %w: nil constructor", key, ErrMisconfigured)
	}
	f.registry[normalized] = ctor
	return nil
}

// Create resolves and instantiates the scraper for a company key. The
// scraper is bound to a deep copy of the company block so runs can never
// mutate the loaded configuration.
func (f *Factory) Create(key string) (*Scraper, error) {
	normalized := strings.ToLower(strings.TrimSpace(key))

	companyCfg, ok := f.file.Company(normalized)
	if !ok {
		return nil, fmt.Errorf("create %q: %w", key, ErrUnknownCompany)
	}
	if !companyCfg.IsEnabled() {
		return nil, fmt.Errorf("create %q: %w", key, ErrCompanyDisabled)
	}

	ctor, err := f.constructorFor(normalized, companyCfg)
	if err != nil {
		return nil, err
	}

	bound := companyCfg.Clone()
	extractor, err := ctor(bound, &f.file.Global)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w: %v", key, ErrMisconfigured, err)
	}
	if extractor == nil {
		return nil, fmt.Errorf("create %q: %w: constructor returned no extractor", key, ErrMisconfigured)
	}

	return New(extractor, bound, &f.file.Global, f.settings), nil
}

// constructorFor checks the explicit registry first, then the cached
// convention lookups, then asks the resolver.
func (f *Factory) constructorFor(key string, companyCfg *config.CompanyConfig) (Constructor, error) {
	if ctor, ok := f.registry[key]; ok {
		return ctor, nil
	}
	if ctor, ok := f.resolved[key]; ok {
		return ctor, nil
	}

	if companyCfg.ScraperClass == "" {
		return nil, fmt.Errorf("create %q: %w: scraper_class not specified", key, ErrMisconfigured)
	}
	if f.resolver == nil {
		return nil, fmt.Errorf("create %q: %w: no resolver configured", key, ErrMisconfigured)
	}

	ctor, err := f.resolver(companyCfg.ScraperClass, companyCfg.Module)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w: %v", key, ErrMisconfigured, err)
	}
	if ctor == nil {
		return nil, fmt.Errorf("create %q: %w: resolver returned no constructor", key, ErrMisconfigured)
	}

	f.resolved[key] = ctor
	return ctor, nil
}
