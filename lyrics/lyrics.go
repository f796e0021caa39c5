package lyrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/chauveaul/playbot/logger"
)

// Result represents the result of a lyrics search
type Result struct {
	PlainLyrics  string
	SyncedLyrics string // LRC format with timestamps
	Source       string // Which provider returned the lyrics
	Found        bool
}

// Provider is one lyrics source. Not found is reported as a Result with
// Found false and a nil error; errors are reserved for transport failures.
type Provider interface {
	GetLyrics(ctx context.Context, trackName, artistName string) (Result, error)
	Name() string
}

// Options configures NewClient.
type Options struct {
	Providers   []string // tried in order: "lrclib", "genius"
	Timeout     time.Duration
	LRCLIBURL   string
	GeniusURL   string
	GeniusToken string
}

// Client tries each provider in order until one finds lyrics.
type Client struct {
	providers []Provider
}

// NewClient builds the provider chain. Genius is skipped without a token.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}

	c := &Client{}
	for _, name := range opts.Providers {
		switch strings.ToLower(name) {
		case "lrclib":
			c.providers = append(c.providers, NewLRCLIB(httpClient, opts.LRCLIBURL))
		case "genius":
			if opts.GeniusToken == "" {
				logger.Debugf("[lyrics] genius disabled: no access token configured")
				continue
			}
			c.providers = append(c.providers, NewGenius(httpClient, opts.GeniusURL, opts.GeniusToken))
		default:
			logger.Warnf("[lyrics] unknown provider %q ignored", name)
		}
	}
	return c
}

// NewClientWithProviders is used when the chain is assembled by hand.
func NewClientWithProviders(providers ...Provider) *Client {
	return &Client{providers: providers}
}

// Find tries each provider in order. It returns Found false with a nil error
// when every provider answered but none had lyrics, and an error when no
// provider found lyrics and at least one failed.
func (c *Client) Find(ctx context.Context, trackName, artistName string) (Result, error) {
	var errs []error

	for _, provider := range c.providers {
		result, err := provider.GetLyrics(ctx, trackName, artistName)
		if err != nil {
			logger.Warnf("[lyrics] %s failed for %q by %q: %v", provider.Name(), trackName, artistName, err)
			errs = append(errs, fmt.Errorf("%s: %w", provider.Name(), err))
			continue
		}
		if result.Found {
			result.Source = provider.Name()
			return result, nil
		}
		logger.Debugf("[lyrics] %s has no lyrics for %q by %q", provider.Name(), trackName, artistName)
	}

	if len(errs) > 0 {
		return Result{}, fmt.Errorf("no lyrics found from any provider: %w", errors.Join(errs...))
	}
	return Result{}, nil
}

// FindLyrics adapts Find to the plain text lookup used by the resolver.
func (c *Client) FindLyrics(ctx context.Context, title, artist string) (string, bool, error) {
	result, err := c.Find(ctx, title, artist)
	if err != nil || !result.Found {
		return "", false, err
	}
	if result.PlainLyrics != "" {
		return result.PlainLyrics, true, nil
	}
	return stripTimestamps(result.SyncedLyrics), true, nil
}

// featuringRe matches a "feat." / "ft." / "featuring" credit as a whole word.
var featuringRe = regexp.MustCompile(`(?i)\s(?:feat\.?|ft\.|featuring)(?:\s|$)`)

// cleanSearchQuery removes extra information from track/artist names
func cleanSearchQuery(query string) string {
	query = strings.TrimSpace(query)

	// Remove featuring info
	if loc := featuringRe.FindStringIndex(query); loc != nil {
		query = query[:loc[0]]
	}

	// Remove parenthetical info (Remastered, Live, etc.)
	if idx := strings.Index(query, "("); idx > 0 {
		query = query[:idx]
	}

	// Remove bracketed info
	if idx := strings.Index(query, "["); idx > 0 {
		query = query[:idx]
	}

	// " - Remastered 2009" style suffixes
	if idx := strings.Index(query, " - "); idx > 0 {
		query = query[:idx]
	}

	return strings.TrimSpace(query)
}

// stripTimestamps turns LRC lines like "[01:02.03] text" into plain text.
func stripTimestamps(synced string) string {
	lines := strings.Split(synced, "\n")
	for i, line := range lines {
		for strings.HasPrefix(line, "[") {
			end := strings.Index(line, "]")
			if end < 0 {
				break
			}
			line = line[end+1:]
		}
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
