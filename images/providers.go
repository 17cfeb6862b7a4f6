package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
)

// SearchProvider turns a text query into candidate image URLs. Providers
// requiring credentials report Available() == false when they are missing
// and are skipped silently.
type SearchProvider interface {
	Name() string
	Available() bool
	Search(ctx context.Context, query string) ([]string, error)
}

func get(ctx context.Context, client *http.Client, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}

// --- DuckDuckGo ---

// duckDuckGo scrapes DuckDuckGo image search. It needs no credentials: a
// token (vqd) is pulled from the HTML search page, then the JSON image
// endpoint is queried with it.
type duckDuckGo struct {
	client  *http.Client
	baseURL string
}

// NewDuckDuckGo creates the keyless image search provider.
func NewDuckDuckGo(client *http.Client) SearchProvider {
	return &duckDuckGo{client: client, baseURL: "https://duckduckgo.com"}
}

func (d *duckDuckGo) Name() string    { return "duckduckgo" }
func (d *duckDuckGo) Available() bool { return true }

var vqdPattern = regexp.MustCompile(`vqd=['"]?([\d-]+)`)

func (d *duckDuckGo) Search(ctx context.Context, query string) ([]string, error) {
	page, err := get(ctx, d.client, d.baseURL+"/?q="+url.QueryEscape(query)+"&iax=images&ia=images", nil)
	if err != nil {
		return nil, fmt.Errorf("images: duckduckgo token page: %w", err)
	}
	m := vqdPattern.FindSubmatch(page)
	if m == nil {
		return nil, fmt.Errorf("images: duckduckgo token not found")
	}

	q := url.Values{}
	q.Set("l", "us-en")
	q.Set("o", "json")
	q.Set("q", query)
	q.Set("vqd", string(m[1]))
	q.Set("f", ",,,")
	q.Set("p", "1")
	body, err := get(ctx, d.client, d.baseURL+"/i.js?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("images: duckduckgo search: %w", err)
	}

	var resp struct {
		Results []struct {
			Image string `json:"image"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("images: decoding duckduckgo response: %w", err)
	}
	urls := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Image != "" {
			urls = append(urls, r.Image)
		}
	}
	return urls, nil
}

// --- Unsplash ---

// unsplash queries the Unsplash photo API for landscape results. Requires
// an access key (UNSPLASH_API_KEY).
type unsplash struct {
	client  *http.Client
	key     string
	baseURL string
}

// NewUnsplash creates the stock photo provider.
func NewUnsplash(key string, client *http.Client) SearchProvider {
	return &unsplash{client: client, key: key, baseURL: "https://api.unsplash.com"}
}

func (u *unsplash) Name() string    { return "unsplash" }
func (u *unsplash) Available() bool { return u.key != "" }

func (u *unsplash) Search(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", "10")
	q.Set("orientation", "landscape")
	header := http.Header{"Authorization": {"Client-ID " + u.key}}
	body, err := get(ctx, u.client, u.baseURL+"/search/photos?"+q.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("images: unsplash search: %w", err)
	}

	var resp struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("images: decoding unsplash response: %w", err)
	}
	urls := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.URLs.Regular != "" {
			urls = append(urls, r.URLs.Regular)
		}
	}
	return urls, nil
}

// --- Google Custom Search ---

// googleCSE queries the Google Custom Search JSON API for photo-type
// images. Requires an API key (GOOGLE_API_KEY) and engine id (GOOGLE_CX).
type googleCSE struct {
	client  *http.Client
	key, cx string
	baseURL string
}

// NewGoogleCSE creates the web image search provider.
func NewGoogleCSE(key, cx string, client *http.Client) SearchProvider {
	return &googleCSE{client: client, key: key, cx: cx, baseURL: "https://www.googleapis.com"}
}

func (g *googleCSE) Name() string    { return "google" }
func (g *googleCSE) Available() bool { return g.key != "" && g.cx != "" }

func (g *googleCSE) Search(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("key", g.key)
	q.Set("cx", g.cx)
	q.Set("q", query)
	q.Set("searchType", "image")
	q.Set("imgType", "photo")
	q.Set("imgSize", "large")
	q.Set("safe", "active")
	q.Set("num", "10")
	body, err := get(ctx, g.client, g.baseURL+"/customsearch/v1?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("images: google search: %w", err)
	}

	var resp struct {
		Items []struct {
			Link string `json:"link"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("images: decoding google response: %w", err)
	}
	urls := make([]string, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.Link != "" {
			urls = append(urls, it.Link)
		}
	}
	return urls, nil
}
