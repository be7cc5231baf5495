package source

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSecretParam is the query parameter the Apps Script endpoint reads the
// shared secret from.
const DefaultSecretParam = "secret"

// CacheBustParam carries a per-request timestamp so browser, proxy and sheet
// export caches never serve a stale body.
const CacheBustParam = "t"

// Candidate is one place the schedule CSV can be fetched from.
type Candidate struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Secret      string `yaml:"secret"`
	SecretParam string `yaml:"secret_param"`
}

// RequestURL builds the URL for one attempt, adding the secret (if any) and a
// cache-busting timestamp.
func (c Candidate) RequestURL(now time.Time) (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("parse url: %q is not absolute", c.URL)
	}

	q := u.Query()
	if c.Secret != "" {
		param := c.SecretParam
		if param == "" {
			param = DefaultSecretParam
		}
		q.Set(param, c.Secret)
	}
	q.Set(CacheBustParam, strconv.FormatInt(now.UnixMilli(), 10))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// String hides the secret.
func (c Candidate) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, redactURL(c.URL))
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid url]"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}

// candidatesFile is the YAML layout of SOURCE_FILE.
type candidatesFile struct {
	Sources []Candidate `yaml:"sources"`
}

// LoadCandidatesFile reads an ordered candidate list from a YAML file:
//
//	sources:
//	  - name: secure
//	    url: https://script.google.com/macros/s/.../exec
//	    secret: ${SOURCE_SECRET}
//	  - name: published
//	    url: https://docs.google.com/spreadsheets/d/e/.../pub?output=csv
//
// Environment references in the file are expanded.
func LoadCandidatesFile(path string) ([]Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	var f candidatesFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}

	out := make([]Candidate, 0, len(f.Sources))
	for i, c := range f.Sources {
		c.URL = strings.TrimSpace(c.URL)
		if c.URL == "" {
			return nil, fmt.Errorf("sources file %s: entry %d has no url", path, i)
		}
		if c.Name == "" {
			c.Name = fmt.Sprintf("source-%d", i+1)
		}
		out = append(out, c)
	}
	return out, nil
}
