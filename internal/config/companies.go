package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CompanyConfig is the per-employer block of the companies file. One instance
// per employer, immutable after load; Factory hands scrapers a Clone.
type CompanyConfig struct {
	Name          string            `yaml:"name"`
	DisplayName   string            `yaml:"display_name"`
	CareersURL    string            `yaml:"careers_url"`
	Selectors     map[string]string `yaml:"selectors"`
	SearchParams  map[string]string `yaml:"search_params"`
	RequestConfig map[string]string `yaml:"request_config"`
	RateLimit     *float64          `yaml:"rate_limit"` //requests per second
	MaxPages      *int              `yaml:"max_pages"`
	Enabled       *bool             `yaml:"enabled"`
	ScraperClass  string            `yaml:"scraper_class"`
	Module        string            `yaml:"module"`
}

// IsEnabled treats an absent enabled flag as enabled.
func (c *CompanyConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Clone returns a deep copy so a scraper can never mutate the loaded config.
func (c *CompanyConfig) Clone() *CompanyConfig {
	out := *c
	out.Selectors = copyStringMap(c.Selectors)
	out.SearchParams = copyStringMap(c.SearchParams)
	out.RequestConfig = copyStringMap(c.RequestConfig)
	if c.RateLimit != nil {
		v := *c.RateLimit
		out.RateLimit = &v
	}
	if c.MaxPages != nil {
		v := *c.MaxPages
		out.MaxPages = &v
	}
	if c.Enabled != nil {
		v := *c.Enabled
		out.Enabled = &v
	}
	return &out
}

// CategoryConfig is one entry of job_categories, in declaration order.
type CategoryConfig struct {
	ID          string   `yaml:"-"`
	Keywords    []string `yaml:"keywords"`
	Departments []string `yaml:"departments"`
}

// Rules are the categorization weights and thresholds.
type Rules struct {
	TitleWeight            float64 `yaml:"title_weight"`
	DepartmentWeight       float64 `yaml:"department_weight"`
	DescriptionWeight      float64 `yaml:"description_weight"`
	ExactMatchBonus        float64 `yaml:"exact_match_bonus"`
	MinConfidenceThreshold float64 `yaml:"min_confidence_threshold"`
}

// DefaultRules mirrors the defaults applied when categorization_rules is
// missing or partial.
func DefaultRules() Rules {
	return Rules{
		TitleWeight:            0.6,
		DepartmentWeight:       0.3,
		DescriptionWeight:      0.1,
		ExactMatchBonus:        2.0,
		MinConfidenceThreshold: 0.3,
	}
}

// GlobalConfig is everything in the companies file outside the companies map.
// Shared read-only across all scraper instances.
type GlobalConfig struct {
	Categories        []CategoryConfig
	Rules             Rules
	UserAgents        []string
	UserAgentRotation bool
	DefaultRateLimit  float64
	DefaultMaxPages   int
}

// RateLimitFor resolves the effective rate limit for a company.
func (g *GlobalConfig) RateLimitFor(c *CompanyConfig) float64 {
	if c.RateLimit != nil {
		return *c.RateLimit
	}
	return g.DefaultRateLimit
}

// MaxPagesFor resolves the effective page cap for a company.
func (g *GlobalConfig) MaxPagesFor(c *CompanyConfig) int {
	if c.MaxPages != nil {
		return *c.MaxPages
	}
	return g.DefaultMaxPages
}

// Clone deep-copies the global config for a scraper instance.
func (g *GlobalConfig) Clone() *GlobalConfig {
	out := *g
	out.Categories = make([]CategoryConfig, len(g.Categories))
	for i, cat := range g.Categories {
		out.Categories[i] = CategoryConfig{
			ID:          cat.ID,
			Keywords:    append([]string(nil), cat.Keywords...),
			Departments: append([]string(nil), cat.Departments...),
		}
	}
	out.UserAgents = append([]string(nil), g.UserAgents...)
	return &out
}

// File is the parsed companies configuration. Company keys and category ids
// keep their declaration order; map iteration would break the deterministic
// tie-breaks downstream.
type File struct {
	keys      []string
	companies map[string]*CompanyConfig
	Global    GlobalConfig
}

// LoadFile parses the companies YAML file once. Company keys are normalized
// to lower case.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read companies config: %w", err)
	}
	return Parse(data)
}

// Parse decodes the companies configuration from raw YAML.
func Parse(data []byte) (*File, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse companies config: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("companies config: top level must be a mapping")
	}
	root := doc.Content[0]

	f := &File{
		companies: map[string]*CompanyConfig{},
		Global: GlobalConfig{
			Rules:            DefaultRules(),
			DefaultRateLimit: 2,
			DefaultMaxPages:  5,
		},
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "companies":
			if err := f.decodeCompanies(val); err != nil {
				return nil, err
			}
		case "job_categories":
			if err := f.decodeCategories(val); err != nil {
				return nil, err
			}
		case "categorization_rules":
			if err := val.Decode(&f.Global.Rules); err != nil {
				return nil, fmt.Errorf("categorization_rules: %w", err)
			}
		case "user_agents":
			if err := val.Decode(&f.Global.UserAgents); err != nil {
				return nil, fmt.Errorf("user_agents: %w", err)
			}
		case "user_agent_rotation":
			if err := val.Decode(&f.Global.UserAgentRotation); err != nil {
				return nil, fmt.Errorf("user_agent_rotation: %w", err)
			}
		case "default_rate_limit":
			if err := val.Decode(&f.Global.DefaultRateLimit); err != nil {
				return nil, fmt.Errorf("default_rate_limit: %w", err)
			}
		case "default_max_pages":
			if err := val.Decode(&f.Global.DefaultMaxPages); err != nil {
				return nil, fmt.Errorf("default_max_pages: %w", err)
			}
		}
	}

	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) decodeCompanies(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("companies: must be a mapping of employer key to config")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := strings.ToLower(strings.TrimSpace(node.Content[i].Value))
		if key == "" {
			return fmt.Errorf("companies: empty employer key")
		}
		if _, exists := f.companies[key]; exists {
			return fmt.Errorf("companies: duplicate employer key %q", key)
		}
		cfg := &CompanyConfig{}
		if err := node.Content[i+1].Decode(cfg); err != nil {
			return fmt.Errorf("companies.%s: %w", key, err)
		}
		if cfg.Name == "" {
			cfg.Name = key
		}
		if cfg.DisplayName == "" {
			cfg.DisplayName = cfg.Name
		}
		f.keys = append(f.keys, key)
		f.companies[key] = cfg
	}
	return nil
}

func (f *File) decodeCategories(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("job_categories: must be a mapping of category id to config")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		cat := CategoryConfig{ID: strings.ToLower(strings.TrimSpace(node.Content[i].Value))}
		if cat.ID == "" {
			return fmt.Errorf("job_categories: empty category id")
		}
		if err := node.Content[i+1].Decode(&cat); err != nil {
			return fmt.Errorf("job_categories.%s: %w", cat.ID, err)
		}
		f.Global.Categories = append(f.Global.Categories, cat)
	}
	return nil
}

func (f *File) validate() error {
	for _, key := range f.keys {
		cfg := f.companies[key]
		if cfg.CareersURL == "" {
			return fmt.Errorf("companies.%s: careers_url is required", key)
		}
		if cfg.RateLimit != nil && *cfg.RateLimit < 0 {
			return fmt.Errorf("companies.%s: rate_limit must be >= 0", key)
		}
	}
	if f.Global.DefaultRateLimit < 0 {
		return fmt.Errorf("default_rate_limit must be >= 0")
	}
	return nil
}

// CompanyKeys returns employer keys in declaration order, filtered by the
// enabled flag unless includeDisabled is set.
func (f *File) CompanyKeys(includeDisabled bool) []string {
	out := make([]string, 0, len(f.keys))
	for _, key := range f.keys {
		if includeDisabled || f.companies[key].IsEnabled() {
			out = append(out, key)
		}
	}
	return out
}

// Company looks up an employer block case-insensitively.
func (f *File) Company(key string) (*CompanyConfig, bool) {
	cfg, ok := f.companies[strings.ToLower(strings.TrimSpace(key))]
	return cfg, ok
}

func copyStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
