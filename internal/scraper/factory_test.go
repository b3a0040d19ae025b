package scraper

import (
	"context"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-jobharvest/internal/config"
)

const factoryYAML = `
companies:
  meta:
    careers_url: https://example.com/meta
    scraper_class: MetaExtractor
  google:
    careers_url: https://example.com/google
    scraper_class: GoogleExtractor
  netflix:
    careers_url: https://example.com/netflix
    scraper_class: GenericExtractor
    enabled: false
  broken:
    careers_url: https://example.com/broken
job_categories:
  technology:
    keywords: [engineer]
    departments: [engineering]
`

type stubExtractor struct {
	key     string
	company *config.CompanyConfig
}

func (s *stubExtractor) Key() string { return s.key }

func (s *stubExtractor) ExtractListings(context.Context, playwright.Page) ([]RawListing, error) {
	return nil, nil
}

func testSettings() *config.Settings {
	return &config.Settings{
		BrowserEngine:  config.EngineChromium,
		Headless:       true,
		BrowserTimeout: 1,
		UserAgent:      "test-agent",
	}
}

func newTestFactory(t *testing.T, opts ...Option) *Factory {
	t.Helper()
	file, err := config.Parse([]byte(factoryYAML))
	require.NoError(t, err)
	return NewFactoryFromFile(file, testSettings(), opts...)
}

func stubConstructor(captured **config.CompanyConfig) Constructor {
	return func(company *config.CompanyConfig, _ *config.GlobalConfig) (Extractor, error) {
		if captured != nil {
			*captured = company
		}
		return &stubExtractor{key: company.Name, company: company}, nil
	}
}

func TestAvailableFiltersDisabled(t *testing.T) {
	f := newTestFactory(t)

	enabled := f.Available(false)
	all := f.Available(true)

	assert.Equal(t, []string{"meta", "google", "broken"}, enabled)
	assert.Equal(t, []string{"meta", "google", "netflix", "broken"}, all)
	//the including call is a strict superset
	assert.Subset(t, all, enabled)
	assert.Greater(t, len(all), len(enabled))
}

func TestCreateUnknownCompany(t *testing.T) {
	f := newTestFactory(t)

	_, err := f.Create("does-not-exist")
	assert.ErrorIs(t, err, ErrUnknownCompany)
}

func TestCreateDisabledCompanyNeverConstructs(t *testing.T) {
	constructed := false
	f := newTestFactory(t, WithResolver(func(class, module string) (Constructor, error) {
		return func(company *config.CompanyConfig, _ *config.GlobalConfig) (Extractor, error) {
			constructed = true
			return &stubExtractor{key: company.Name}, nil
		}, nil
	}))

	_, err := f.Create("netflix")
	assert.ErrorIs(t, err, ErrCompanyDisabled)
	assert.False(t, constructed)
}

func TestCreateMisconfigured(t *testing.T) {
	t.Run("missing scraper_class", func(t *testing.T) {
		f := newTestFactory(t, WithResolver(func(string, string) (Constructor, error) {
			return stubConstructor(nil), nil
		}))
		_, err := f.Create("broken")
		assert.ErrorIs(t, err, ErrMisconfigured)
	})

	t.Run("no resolver", func(t *testing.T) {
		f := newTestFactory(t)
		_, err := f.Create("meta")
		assert.ErrorIs(t, err, ErrMisconfigured)
	})

	t.Run("resolver rejects class", func(t *testing.T) {
		f := newTestFactory(t, WithResolver(func(class, module string) (Constructor, error) {
			return nil, assert.AnError
		}))
		_, err := f.Create("meta")
		assert.ErrorIs(t, err, ErrMisconfigured)
	})

	t.Run("constructor returns nil extractor", func(t *testing.T) {
		f := newTestFactory(t, WithResolver(func(string, string) (Constructor, error) {
			return func(*config.CompanyConfig, *config.GlobalConfig) (Extractor, error) {
				return nil, nil
			}, nil
		}))
		_, err := f.Create("meta")
		assert.ErrorIs(t, err, ErrMisconfigured)
	})
}

func TestCreateBindsDeepCopiedConfig(t *testing.T) {
	var first, second *config.CompanyConfig
	f := newTestFactory(t)
	require.NoError(t, f.Register("meta", stubConstructor(&first)))

	_, err := f.Create("meta")
	require.NoError(t, err)

	require.NoError(t, f.Register("meta", stubConstructor(&second)))
	_, err = f.Create("Meta") //case-insensitive
	require.NoError(t, err)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.CareersURL, second.CareersURL)
}

func TestRegisterUnknownCompanyFails(t *testing.T) {
	f := newTestFactory(t)
	err := f.Register("nobody", stubConstructor(nil))
	assert.ErrorIs(t, err, ErrUnknownCompany)
}

func TestExplicitRegistrationBeatsResolver(t *testing.T) {
	resolverCalled := false
	f := newTestFactory(t, WithResolver(func(class, module string) (Constructor, error) {
		resolverCalled = true
		return stubConstructor(nil), nil
	}))

	registeredCalled := false
	require.NoError(t, f.Register("meta", func(company *config.CompanyConfig, _ *config.GlobalConfig) (Extractor, error) {
		registeredCalled = true
		return &stubExtractor{key: company.Name}, nil
	}))

	_, err := f.Create("meta")
	require.NoError(t, err)
	assert.True(t, registeredCalled)
	assert.False(t, resolverCalled)
}

func TestResolverResultIsCached(t *testing.T) {
	calls := 0
	f := newTestFactory(t, WithResolver(func(class, module string) (Constructor, error) {
		calls++
		return stubConstructor(nil), nil
	}))

	_, err := f.Create("meta")
	require.NoError(t, err)
	_, err = f.Create("meta")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}
