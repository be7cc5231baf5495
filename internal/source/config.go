package source

import (
	"github.com/JonMunkholm/prayerboard/internal/config"
)

// Names given to the candidates built from environment settings.
const (
	PrimaryName  = "primary"
	FallbackName = "fallback"
)

// FromConfig builds the ordered candidate list.
//
// A sources file, when configured, replaces the URL pair entirely. Otherwise
// the primary endpoint (with the shared secret, if any) comes first and the
// fallback second. An empty result is not an error here; the Fetcher reports
// it as ErrConfiguration on every fetch.
func FromConfig(cfg *config.SourceConfig) ([]Candidate, error) {
	if cfg.File != "" {
		candidates, err := LoadCandidatesFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for i := range candidates {
			if candidates[i].Secret != "" && candidates[i].SecretParam == "" {
				candidates[i].SecretParam = cfg.SecretParam
			}
		}
		return candidates, nil
	}

	var candidates []Candidate
	if cfg.URL != "" {
		candidates = append(candidates, Candidate{
			Name:        PrimaryName,
			URL:         cfg.URL,
			Secret:      cfg.Secret,
			SecretParam: cfg.SecretParam,
		})
	}
	if cfg.FallbackURL != "" {
		candidates = append(candidates, Candidate{
			Name: FallbackName,
			URL:  cfg.FallbackURL,
		})
	}
	return candidates, nil
}

// NewFetcherFromConfig is FromConfig followed by NewFetcher with the
// configured timeout and body limit.
func NewFetcherFromConfig(cfg *config.SourceConfig) (*Fetcher, error) {
	candidates, err := FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewFetcher(candidates, Options{
		Timeout:      cfg.HTTPTimeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}), nil
}
