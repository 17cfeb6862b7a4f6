// Package genslides turns documents into themed PowerPoint presentations:
// a parsed document is summarized into a JSON slide outline by an LLM, and
// the outline is rendered onto a template deck with text styling and web
// image acquisition.
package genslides

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/genslides/genslides/images"
	"github.com/genslides/genslides/llm"
	"github.com/genslides/genslides/outline"
	"github.com/genslides/genslides/parser"
	"github.com/genslides/genslides/pptx"
	"github.com/genslides/genslides/render"
	"github.com/genslides/genslides/store"
)

// Engine is the main entry point for presentation generation.
type Engine interface {
	// Generate parses the document, obtains a slide outline (cached by
	// content hash and model) and renders it to outPath.
	Generate(ctx context.Context, docPath, outPath string, opts ...GenerateOption) (*Result, error)

	// GenerateFromJSON renders a previously produced outline, skipping
	// parsing and the LLM.
	GenerateFromJSON(ctx context.Context, rawJSON, outPath string, opts ...GenerateOption) (*Result, error)

	// Outline returns the document's outline JSON without rendering.
	Outline(ctx context.Context, docPath string, opts ...GenerateOption) (string, error)

	// ListDocuments returns all processed documents.
	ListDocuments(ctx context.Context) ([]store.Document, error)

	// Store returns the underlying store for diagnostic access.
	Store() *store.Store

	// Close cleanly shuts down the engine.
	Close() error
}

// Result reports the outcome of a generation run.
type Result struct {
	OutputPath  string         `json:"output_path"`
	DocumentID  int64          `json:"document_id,omitempty"`
	OutlineJSON string         `json:"outline_json"`
	FromCache   bool           `json:"from_cache"`
	Report      *render.Report `json:"report"`
}

// GenerateOption configures a generation run.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	forceRegenerate bool
	templatePath    string
	theme           string
}

// WithForceRegenerate bypasses the outline cache and asks the LLM again.
func WithForceRegenerate() GenerateOption {
	return func(o *generateOptions) { o.forceRegenerate = true }
}

// WithTemplate renders onto the given .pptx template instead of the theme's.
func WithTemplate(path string) GenerateOption {
	return func(o *generateOptions) { o.templatePath = path }
}

// WithTheme selects a configured theme for this run.
func WithTheme(name string) GenerateOption {
	return func(o *generateOptions) { o.theme = name }
}

// engine is the concrete implementation of Engine.
type engine struct {
	cfg      Config
	store    *store.Store
	chatLLM  llm.Provider
	parsers  *parser.Registry
	producer outline.Producer
	fetcher  render.ImageFetcher
}

// EngineOption customizes engine construction.
type EngineOption func(*engine)

// WithChatProvider replaces the provider built from the LLM config, for
// custom clients.
func WithChatProvider(p llm.Provider) EngineOption {
	return func(e *engine) { e.chatLLM = p }
}

// WithImageFetcher replaces the default web image pipeline.
func WithImageFetcher(f render.ImageFetcher) EngineOption {
	return func(e *engine) { e.fetcher = f }
}

// New creates a GenSlides engine with the given configuration.
func New(cfg Config, opts ...EngineOption) (Engine, error) {
	dbPath := cfg.resolveDBPath()

	// Apply defaults for zero values
	if cfg.MaxDocumentChars == 0 {
		cfg.MaxDocumentChars = 24000
	}
	if cfg.ImageDir == "" {
		cfg.ImageDir = "images"
	}
	if cfg.Render.DefaultBodyFontSizePt == 0 {
		cfg.Render = render.DefaultConfig()
	}

	s, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	e := &engine{
		cfg:     cfg,
		store:   s,
		parsers: parser.NewRegistry(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.chatLLM == nil {
		e.chatLLM, err = llm.NewProvider(cfg.LLM)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating chat provider: %w", err)
		}
	}
	e.producer = &chatProducer{provider: e.chatLLM, model: cfg.LLM.Model}
	if e.fetcher == nil {
		e.fetcher = &cachingFetcher{store: s, inner: images.NewFetcher()}
	}
	return e, nil
}

// Generate runs the full pipeline: parse, outline, render.
func (e *engine) Generate(ctx context.Context, docPath, outPath string, opts ...GenerateOption) (*Result, error) {
	options := &generateOptions{}
	for _, o := range opts {
		o(options)
	}

	raw, docID, fromCache, err := e.outlineFor(ctx, docPath, options)
	if err != nil {
		return nil, err
	}

	rep, err := e.renderJSON(ctx, raw, outPath, options)
	if err != nil {
		e.store.UpdateDocumentStatus(ctx, docID, "error")
		return nil, err
	}

	e.store.UpdateDocumentStatus(ctx, docID, "ready")
	return &Result{
		OutputPath:  outPath,
		DocumentID:  docID,
		OutlineJSON: raw,
		FromCache:   fromCache,
		Report:      rep,
	}, nil
}

// GenerateFromJSON renders raw outline JSON without touching the document
// pipeline or the cache.
func (e *engine) GenerateFromJSON(ctx context.Context, rawJSON, outPath string, opts ...GenerateOption) (*Result, error) {
	options := &generateOptions{}
	for _, o := range opts {
		o(options)
	}

	rep, err := e.renderJSON(ctx, rawJSON, outPath, options)
	if err != nil {
		return nil, err
	}
	return &Result{OutputPath: outPath, OutlineJSON: rawJSON, Report: rep}, nil
}

// Outline returns the document's outline JSON, producing and caching it on
// a miss.
func (e *engine) Outline(ctx context.Context, docPath string, opts ...GenerateOption) (string, error) {
	options := &generateOptions{}
	for _, o := range opts {
		o(options)
	}
	raw, docID, _, err := e.outlineFor(ctx, docPath, options)
	if err != nil {
		return "", err
	}
	e.store.UpdateDocumentStatus(ctx, docID, "ready")
	return raw, nil
}

// outlineFor resolves the document's outline: cache lookup keyed by content
// hash and model, then parse + LLM on a miss.
func (e *engine) outlineFor(ctx context.Context, docPath string, options *generateOptions) (raw string, docID int64, fromCache bool, err error) {
	absPath, err := filepath.Abs(docPath)
	if err != nil {
		return "", 0, false, fmt.Errorf("resolving path: %w", err)
	}

	hash, err := fileHash(absPath)
	if err != nil {
		return "", 0, false, fmt.Errorf("hashing file: %w", err)
	}

	filename := filepath.Base(absPath)
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(absPath), "."))
	docID, err = e.store.UpsertDocument(ctx, store.Document{
		Path:        absPath,
		Filename:    filename,
		Format:      format,
		ContentHash: hash,
		Status:      "processing",
	})
	if err != nil {
		return "", 0, false, fmt.Errorf("upserting document: %w", err)
	}

	if !options.forceRegenerate {
		cached, err := e.store.GetOutline(ctx, hash, e.cfg.LLM.Model)
		if err == nil {
			slog.Info("outline cache hit", "file", filename, "model", e.cfg.LLM.Model)
			return cached.OutlineJSON, docID, true, nil
		}
	}

	p, err := e.parsers.ForPath(absPath)
	if err != nil {
		e.store.UpdateDocumentStatus(ctx, docID, "error")
		return "", 0, false, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	slog.Info("parsing document", "file", filename, "format", format, "doc_id", docID)
	parseStart := time.Now()
	parsed, err := p.Parse(ctx, absPath)
	if err != nil {
		e.store.UpdateDocumentStatus(ctx, docID, "error")
		return "", 0, false, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	slog.Info("parsing complete",
		"file", filename, "method", parsed.Method,
		"sections", len(parsed.Sections), "elapsed", time.Since(parseStart).Round(time.Millisecond))

	text := truncateForPrompt(parsed.Text(), e.cfg.MaxDocumentChars)

	slog.Info("producing outline", "file", filename, "model", e.cfg.LLM.Model, "chars", len(text))
	produceStart := time.Now()
	raw, err = e.producer.Produce(ctx, text)
	if err != nil {
		e.store.UpdateDocumentStatus(ctx, docID, "error")
		return "", 0, false, fmt.Errorf("%w: %v", ErrOutlineFailed, err)
	}

	// Validate before caching so a garbage completion is not served from
	// the cache on the next run.
	if _, perr := outline.Parse(raw); perr != nil {
		e.store.UpdateDocumentStatus(ctx, docID, "error")
		return "", 0, false, fmt.Errorf("%w: %v", ErrOutlineFailed, perr)
	}
	slog.Info("outline produced",
		"file", filename, "elapsed", time.Since(produceStart).Round(time.Millisecond))

	if err := e.store.SaveOutline(ctx, hash, e.cfg.LLM.Model, raw); err != nil {
		slog.Warn("caching outline failed", "file", filename, "error", err)
	}
	return raw, docID, false, nil
}

// renderJSON parses outline JSON and renders it onto the selected template.
func (e *engine) renderJSON(ctx context.Context, raw, outPath string, options *generateOptions) (*render.Report, error) {
	o, err := outline.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutlineFailed, err)
	}

	theme, ok := e.cfg.theme(options.theme)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTheme, options.theme)
	}

	templatePath := options.templatePath
	if templatePath == "" {
		templatePath = theme.TemplatePath
	}

	var doc *pptx.Document
	if templatePath != "" {
		doc, err = pptx.OpenTemplate(templatePath)
	} else {
		doc, err = pptx.New()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	rcfg := e.cfg.Render
	if len(theme.LayoutMapping) > 0 {
		mapping := make(map[string]int, len(rcfg.LayoutMapping)+len(theme.LayoutMapping))
		for k, v := range rcfg.LayoutMapping {
			mapping[k] = v
		}
		for k, v := range theme.LayoutMapping {
			mapping[k] = v
		}
		rcfg.LayoutMapping = mapping
	}
	if theme.BackgroundColorRGB != "" {
		rcfg.MasterBackgroundColorRGB = theme.BackgroundColorRGB
	}

	renderer := render.New(rcfg,
		render.WithImageDir(e.cfg.ImageDir),
		render.WithImageFetcher(e.fetcher))

	rep, err := renderer.Render(ctx, o, doc, outPath)
	if err != nil {
		return rep, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return rep, nil
}

// ListDocuments returns all processed documents.
func (e *engine) ListDocuments(ctx context.Context) ([]store.Document, error) {
	return e.store.ListDocuments(ctx)
}

// Store returns the underlying store for diagnostic access.
func (e *engine) Store() *store.Store {
	return e.store
}

// Close shuts down the engine.
func (e *engine) Close() error {
	return e.store.Close()
}

// cachingFetcher fronts the web image pipeline with the store's image cache.
// A cached entry is only served while its file still exists on disk.
type cachingFetcher struct {
	store *store.Store
	inner render.ImageFetcher
}

func (f *cachingFetcher) Fetch(ctx context.Context, query, saveDir string) (*images.Result, error) {
	if cached, err := f.store.GetImageByQuery(ctx, query); err == nil {
		if _, statErr := os.Stat(cached.LocalPath); statErr == nil {
			slog.Debug("image cache hit", "query", query, "path", cached.LocalPath)
			return &images.Result{
				LocalPath: cached.LocalPath,
				SourceURL: cached.SourceURL,
				Width:     cached.Width,
				Height:    cached.Height,
			}, nil
		}
	}

	res, err := f.inner.Fetch(ctx, query, saveDir)
	if err != nil {
		return nil, err
	}
	if _, serr := f.store.SaveImage(ctx, store.Image{
		Query:     query,
		SourceURL: res.SourceURL,
		LocalPath: res.LocalPath,
		Width:     res.Width,
		Height:    res.Height,
	}); serr != nil {
		slog.Warn("caching image failed", "query", query, "error", serr)
	}
	return res, nil
}

// truncateForPrompt truncates text to limit chars on a word boundary.
func truncateForPrompt(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := strings.LastIndex(text[:limit], " ")
	if cut <= 0 {
		cut = limit
	}
	return text[:cut]
}

// fileHash computes the SHA-256 hash of a file's content.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
