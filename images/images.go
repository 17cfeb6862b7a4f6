// Package images finds, downloads and validates photos for picture
// placeholders. Search is best-effort across several providers with query
// rewriting; exhaustion yields ErrNoImage, never a panic or abort.
package images

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"time"
)

// ErrNoImage indicates every provider, query variant and candidate URL was
// exhausted without a usable image.
var ErrNoImage = errors.New("images: no image found")

// Result describes a validated, locally saved image.
type Result struct {
	LocalPath   string
	SourceURL   string
	Width       int
	Height      int
	AspectRatio float64 // height / width
}

// Fetcher runs the acquisition pipeline: query expansion, provider
// fallback, candidate shuffling and per-candidate validation.
type Fetcher struct {
	providers   []SearchProvider
	client      *http.Client
	rng         *rand.Rand
	maxAttempts int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithProviders replaces the default provider chain.
func WithProviders(ps ...SearchProvider) Option {
	return func(f *Fetcher) { f.providers = ps }
}

// WithHTTPClient replaces the HTTP client used for search and download.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithRand replaces the candidate-shuffle source, for deterministic tests.
func WithRand(r *rand.Rand) Option {
	return func(f *Fetcher) { f.rng = r }
}

// WithMaxAttempts bounds validated-download attempts per query variant.
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// NewFetcher builds a Fetcher. Without options the chain is DuckDuckGo,
// then Unsplash (UNSPLASH_API_KEY), then Google Custom Search
// (GOOGLE_API_KEY + GOOGLE_CX); keyless providers are skipped.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: downloadTimeout},
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		maxAttempts: 6,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.providers == nil {
		f.providers = []SearchProvider{
			NewDuckDuckGo(f.client),
			NewUnsplash(os.Getenv("UNSPLASH_API_KEY"), f.client),
			NewGoogleCSE(os.Getenv("GOOGLE_API_KEY"), os.Getenv("GOOGLE_CX"), f.client),
		}
	}
	return f
}

// Fetch returns the first image that survives validation, trying the
// literal query first and then its expansion variants.
func (f *Fetcher) Fetch(ctx context.Context, query, saveDir string) (*Result, error) {
	if err := os.MkdirAll(saveDir, 0o750); err != nil {
		return nil, fmt.Errorf("images: creating save dir: %w", err)
	}

	queries := append([]string{query}, ExpandQuery(query)...)
	for _, q := range queries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		urls := f.search(ctx, q)
		if len(urls) == 0 {
			continue
		}
		f.rng.Shuffle(len(urls), func(i, j int) { urls[i], urls[j] = urls[j], urls[i] })

		attempts := f.maxAttempts
		if len(urls) < attempts {
			attempts = len(urls)
		}
		for _, u := range urls[:attempts] {
			res, err := f.download(ctx, u, q, saveDir)
			if err != nil {
				slog.Debug("image candidate rejected", "url", u, "query", q, "error", err)
				continue
			}
			slog.Info("image acquired", "query", q, "url", u, "path", res.LocalPath)
			return res, nil
		}
	}
	return nil, ErrNoImage
}

// search asks providers in order and short-circuits on the first that
// returns at least one URL.
func (f *Fetcher) search(ctx context.Context, query string) []string {
	for _, p := range f.providers {
		if !p.Available() {
			continue
		}
		urls, err := p.Search(ctx, query)
		if err != nil {
			slog.Debug("image provider failed", "provider", p.Name(), "query", query, "error", err)
			continue
		}
		if len(urls) > 0 {
			return urls
		}
	}
	return nil
}
