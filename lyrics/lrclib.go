package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const defaultLRCLIBURL = "https://lrclib.net/api/get"

// LRCLIB Provider Implementation
type LRCLIBProvider struct {
	client  *http.Client
	baseURL string
}

// NewLRCLIB returns a provider for the LRCLIB get endpoint.
func NewLRCLIB(client *http.Client, baseURL string) *LRCLIBProvider {
	if baseURL == "" {
		baseURL = defaultLRCLIBURL
	}
	return &LRCLIBProvider{client: client, baseURL: baseURL}
}

func (p *LRCLIBProvider) Name() string {
	return "LRCLIB"
}

type lrclibResponse struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

func (p *LRCLIBProvider) GetLyrics(ctx context.Context, trackName, artistName string) (Result, error) {
	params := url.Values{}
	params.Add("artist_name", cleanSearchQuery(artistName))
	params.Add("track_name", cleanSearchQuery(trackName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("build LRCLIB request: %w", err)
	}
	req.Header.Set("User-Agent", "playbot (https://github.com/chauveaul/playbot)")

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("LRCLIB request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Result{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("LRCLIB returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read LRCLIB response: %w", err)
	}

	var lrcResp lrclibResponse
	if err := json.Unmarshal(body, &lrcResp); err != nil {
		return Result{}, fmt.Errorf("failed to parse LRCLIB response: %w", err)
	}

	if lrcResp.Instrumental {
		return Result{PlainLyrics: "[Instrumental]", Found: true}, nil
	}
	if lrcResp.PlainLyrics == "" && lrcResp.SyncedLyrics == "" {
		return Result{}, nil
	}

	return Result{
		PlainLyrics:  lrcResp.PlainLyrics,
		SyncedLyrics: lrcResp.SyncedLyrics,
		Found:        true,
	}, nil
}
