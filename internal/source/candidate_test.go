package source

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidate_RequestURL(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	t.Run("secret and cache buster", func(t *testing.T) {
		c := Candidate{Name: "secure", URL: "https://script.example.com/exec?mode=csv", Secret: "s3cr3t"}
		raw, err := c.RequestURL(now)
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, "csv", q.Get("mode"))
		assert.Equal(t, "s3cr3t", q.Get("secret"))
		assert.Equal(t, "1700000000123", q.Get("t"))
	})

	t.Run("custom secret param", func(t *testing.T) {
		c := Candidate{URL: "https://x.example.com/", Secret: "k", SecretParam: "key"}
		raw, err := c.RequestURL(now)
		require.NoError(t, err)
		u, _ := url.Parse(raw)
		assert.Equal(t, "k", u.Query().Get("key"))
		assert.Empty(t, u.Query().Get("secret"))
	})

	t.Run("no secret", func(t *testing.T) {
		c := Candidate{URL: "https://docs.example.com/pub?output=csv"}
		raw, err := c.RequestURL(now)
		require.NoError(t, err)
		u, _ := url.Parse(raw)
		_, hasSecret := u.Query()["secret"]
		assert.False(t, hasSecret)
		assert.Equal(t, "csv", u.Query().Get("output"))
		assert.Equal(t, "1700000000123", u.Query().Get("t"))
	})

	t.Run("relative url rejected", func(t *testing.T) {
		_, err := Candidate{URL: "/exec"}.RequestURL(now)
		assert.Error(t, err)
	})
}

func TestCandidate_StringHidesSecret(t *testing.T) {
	c := Candidate{Name: "secure", URL: "https://user:pw@x.example.com/exec?secret=abc", Secret: "abc"}
	s := c.String()
	assert.NotContains(t, s, "abc")
	assert.NotContains(t, s, "pw")
	assert.Contains(t, s, "x.example.com/exec")
}

func TestLoadCandidatesFile(t *testing.T) {
	t.Setenv("TEST_SOURCE_SECRET", "from-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	content := strings.Join([]string{
		"sources:",
		"  - name: secure",
		"    url: https://script.example.com/exec",
		"    secret: ${TEST_SOURCE_SECRET}",
		"  - url: https://docs.example.com/pub?output=csv",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	got, err := LoadCandidatesFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Candidate{Name: "secure", URL: "https://script.example.com/exec", Secret: "from-env"}, got[0])
	assert.Equal(t, "source-2", got[1].Name)
}

func TestLoadCandidatesFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCandidatesFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	noURL := filepath.Join(dir, "nourl.yaml")
	require.NoError(t, os.WriteFile(noURL, []byte("sources:\n  - name: a\n"), 0o600))
	_, err = LoadCandidatesFile(noURL)
	assert.ErrorContains(t, err, "has no url")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("sources: [\n"), 0o600))
	_, err = LoadCandidatesFile(bad)
	assert.Error(t, err)
}
