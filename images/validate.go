package images

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

	downloadTimeout  = 15 * time.Second
	maxDownloadBytes = 20 << 20

	minWidth  = 800
	minHeight = 600
	minAspect = 0.5 // height / width
	maxAspect = 2.0
)

// download fetches one candidate URL, validates it and persists it under
// saveDir. Validation failures come back as errors so the caller can move
// on to the next candidate.
func (f *Fetcher) download(ctx context.Context, rawURL, query, saveDir string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("not a decodable image: %w", err)
	}
	if cfg.Width < minWidth || cfg.Height < minHeight {
		return nil, fmt.Errorf("too small: %dx%d", cfg.Width, cfg.Height)
	}
	aspect := float64(cfg.Height) / float64(cfg.Width)
	if aspect < minAspect || aspect > maxAspect {
		return nil, fmt.Errorf("aspect ratio %.2f outside [%.1f, %.1f]", aspect, minAspect, maxAspect)
	}

	ext := extForFormat(format)
	path := filepath.Join(saveDir, imageFilename(query, rawURL, ext))

	if format == "webp" {
		// PowerPoint does not take webp; re-encode as JPEG.
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding webp: %w", err)
		}
		out, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("creating image file: %w", err)
		}
		if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 90}); err != nil {
			out.Close()
			os.Remove(path)
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
		if err := out.Close(); err != nil {
			return nil, err
		}
	} else {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("saving image: %w", err)
		}
	}

	return &Result{
		LocalPath:   path,
		SourceURL:   rawURL,
		Width:       cfg.Width,
		Height:      cfg.Height,
		AspectRatio: aspect,
	}, nil
}

func extForFormat(format string) string {
	switch format {
	case "jpeg":
		return "jpg"
	case "webp":
		return "jpg" // saved as JPEG
	case "png", "gif", "bmp":
		return format
	default:
		return "img"
	}
}

// imageFilename builds a collision-resistant name: a sanitized query prefix
// plus a short hash of the source URL. Re-running the same query against
// the same URL overwrites deterministically; different URLs never collide.
func imageFilename(query, sourceURL, ext string) string {
	sum := sha1.Sum([]byte(sourceURL))
	return sanitizeQuery(query) + "_" + hex.EncodeToString(sum[:])[:8] + "." + ext
}

func sanitizeQuery(query string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(query)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
		if b.Len() >= 50 {
			break
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}
