package genslides

import (
	"os"
	"path/filepath"

	"github.com/genslides/genslides/llm"
	"github.com/genslides/genslides/render"
)

// Config holds all configuration for the GenSlides engine.
type Config struct {
	// DBPath is the full path to the SQLite cache database file.
	// If empty, defaults to ~/.genslides/<DBName>.db
	DBPath string `json:"db_path" yaml:"db_path"`

	// DBName is the name for the database (used when DBPath is empty).
	// Defaults to "genslides".
	DBName string `json:"db_name" yaml:"db_name"`

	// StorageDir controls where the database is created when DBPath
	// is not explicitly set. Options: "home" (default) uses ~/.genslides/,
	// "local" uses the current working directory.
	StorageDir string `json:"storage_dir" yaml:"storage_dir"`

	// LLM is the chat provider that produces slide outlines.
	LLM llm.Config `json:"llm" yaml:"llm"`

	// Render holds the typography and layout options.
	Render render.Config `json:"render" yaml:"render"`

	// ImageDir is where downloaded slide images are saved.
	ImageDir string `json:"image_dir" yaml:"image_dir"`

	// Themes maps theme names to template configurations. CurrentTheme
	// selects one; an empty value renders onto the built-in deck.
	Themes       map[string]Theme `json:"themes" yaml:"themes"`
	CurrentTheme string           `json:"current_theme" yaml:"current_theme"`

	// MaxDocumentChars caps the document text sent to the outline model.
	MaxDocumentChars int `json:"max_document_chars" yaml:"max_document_chars"`
}

// Theme is a named presentation template with its layout mapping.
type Theme struct {
	// TemplatePath points to a .pptx whose layouts are rendered onto.
	// Empty means the built-in deck.
	TemplatePath string `json:"template_path" yaml:"template_path"`

	// LayoutMapping maps slide kind names to layout indices in the
	// template, overriding the identity mapping.
	LayoutMapping map[string]int `json:"layout_mapping" yaml:"layout_mapping"`

	// BackgroundColorRGB overrides the master background.
	BackgroundColorRGB string `json:"background_color_rgb" yaml:"background_color_rgb"`
}

// DefaultConfig returns a Config with sensible defaults for local inference.
// The cache database is stored in ~/.genslides/genslides.db by default.
func DefaultConfig() Config {
	return Config{
		DBName:     "genslides",
		StorageDir: "home",
		LLM: llm.Config{
			Provider: "ollama",
			Model:    "llama3.1:8b",
			BaseURL:  "http://localhost:11434",
		},
		Render:           render.DefaultConfig(),
		ImageDir:         "images",
		MaxDocumentChars: 24000,
	}
}

// resolveDBPath computes the final database path from config fields.
func (c *Config) resolveDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}

	name := c.DBName
	if name == "" {
		name = "genslides"
	}

	switch c.StorageDir {
	case "local", "cwd":
		return name + ".db"
	default: // "home" or empty
		home, err := os.UserHomeDir()
		if err != nil {
			return name + ".db" // fallback to cwd
		}
		dir := filepath.Join(home, ".genslides")
		return filepath.Join(dir, name+".db")
	}
}

// theme resolves a theme by name, the configured current theme when name is
// empty. An empty result with ok=true means "use the built-in deck".
func (c *Config) theme(name string) (Theme, bool) {
	if name == "" {
		name = c.CurrentTheme
	}
	if name == "" {
		return Theme{}, true
	}
	t, ok := c.Themes[name]
	return t, ok
}
