package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const defaultGeniusURL = "https://api.genius.com"

// GeniusProvider searches the Genius API and scrapes the song page, since
// the API itself does not serve lyrics text.
type GeniusProvider struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewGenius returns a provider authenticated with an API access token.
func NewGenius(client *http.Client, baseURL, token string) *GeniusProvider {
	if baseURL == "" {
		baseURL = defaultGeniusURL
	}
	return &GeniusProvider{client: client, baseURL: strings.TrimRight(baseURL, "/"), token: token}
}

func (p *GeniusProvider) Name() string {
	return "Genius"
}

type geniusSearchResponse struct {
	Response struct {
		Hits []struct {
			Type   string `json:"type"`
			Result struct {
				ID            int    `json:"id"`
				Title         string `json:"title"`
				URL           string `json:"url"`
				PrimaryArtist struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

func (p *GeniusProvider) GetLyrics(ctx context.Context, trackName, artistName string) (Result, error) {
	artist := cleanSearchQuery(artistName)
	query := strings.TrimSpace(artist + " " + cleanSearchQuery(trackName))

	pageURL, err := p.search(ctx, query, artist)
	if err != nil || pageURL == "" {
		return Result{}, err
	}

	text, err := p.scrape(ctx, pageURL)
	if err != nil {
		return Result{}, err
	}
	if text == "" {
		return Result{}, nil
	}
	return Result{PlainLyrics: text, Found: true}, nil
}

// search returns the page URL of the best hit, preferring one whose primary
// artist matches.
func (p *GeniusProvider) search(ctx context.Context, query, artist string) (string, error) {
	reqURL := p.baseURL + "/search?" + url.Values{"q": {query}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("build Genius search: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Genius search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Genius search returned status %d", resp.StatusCode)
	}

	var body geniusSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to parse Genius search response: %w", err)
	}

	first := ""
	for _, hit := range body.Response.Hits {
		if hit.Type != "song" || hit.Result.URL == "" {
			continue
		}
		if first == "" {
			first = hit.Result.URL
		}
		if strings.Contains(strings.ToLower(hit.Result.PrimaryArtist.Name), strings.ToLower(artist)) {
			return hit.Result.URL, nil
		}
	}
	return first, nil
}

func (p *GeniusProvider) scrape(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build Genius page request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Genius page request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Genius page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse Genius page: %w", err)
	}
	return extractLyrics(doc), nil
}

// extractLyrics joins every lyrics container, turning <br> into newlines.
func extractLyrics(doc *goquery.Document) string {
	var parts []string
	doc.Find(`div[data-lyrics-container="true"]`).Each(func(_ int, s *goquery.Selection) {
		s.Find("br").Each(func(_ int, br *goquery.Selection) {
			br.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
		})
		s.Find(`[data-exclude-from-selection="true"]`).Remove()
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}
