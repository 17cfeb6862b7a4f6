// Command genslides turns a document into a themed PowerPoint presentation.
//
//	genslides -out talk.pptx paper.pdf
//	genslides -config genslides.yaml -theme corporate report.pdf
//	genslides -from-json outline.json -out talk.pptx
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/genslides/genslides"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (YAML or JSON)")
	out := flag.String("out", "", "Output .pptx path (default: input name with .pptx)")
	template := flag.String("template", "", "Render onto this .pptx template")
	theme := flag.String("theme", "", "Use a configured theme")
	fromJSON := flag.String("from-json", "", "Render this outline JSON file instead of a document")
	force := flag.Bool("force", false, "Bypass the outline cache")
	outlineOnly := flag.Bool("outline-only", false, "Print the outline JSON and exit without rendering")
	list := flag.Bool("list", false, "List processed documents and exit")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	// Structured JSON logging.
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	applyEnv(&cfg)

	engine, err := genslides.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	ctx := context.Background()

	if *list {
		docs, err := engine.ListDocuments(ctx)
		if err != nil {
			slog.Error("listing documents", "error", err)
			os.Exit(1)
		}
		for _, d := range docs {
			fmt.Printf("%d\t%s\t%s\t%s\n", d.ID, d.Status, d.UpdatedAt, d.Path)
		}
		return
	}

	var opts []genslides.GenerateOption
	if *force {
		opts = append(opts, genslides.WithForceRegenerate())
	}
	if *template != "" {
		opts = append(opts, genslides.WithTemplate(*template))
	}
	if *theme != "" {
		opts = append(opts, genslides.WithTheme(*theme))
	}

	if *fromJSON != "" {
		raw, err := os.ReadFile(*fromJSON)
		if err != nil {
			slog.Error("reading outline file", "error", err)
			os.Exit(1)
		}
		outPath := outputPath(*out, *fromJSON)
		res, err := engine.GenerateFromJSON(ctx, string(raw), outPath, opts...)
		if err != nil {
			slog.Error("generating presentation", "error", err)
			os.Exit(1)
		}
		printResult(res)
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: genslides [flags] <document>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	docPath := flag.Arg(0)

	if *outlineOnly {
		raw, err := engine.Outline(ctx, docPath, opts...)
		if err != nil {
			slog.Error("producing outline", "error", err)
			os.Exit(1)
		}
		fmt.Println(raw)
		return
	}

	res, err := engine.Generate(ctx, docPath, outputPath(*out, docPath), opts...)
	if err != nil {
		slog.Error("generating presentation", "error", err)
		os.Exit(1)
	}
	printResult(res)
}

// loadConfig reads the config file, YAML or JSON by extension. An empty
// path yields the defaults.
func loadConfig(path string) (genslides.Config, error) {
	cfg := genslides.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	return cfg, err
}

// applyEnv overrides config fields from environment variables.
func applyEnv(cfg *genslides.Config) {
	if v := os.Getenv("GENSLIDES_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("GENSLIDES_IMAGE_DIR"); v != "" {
		cfg.ImageDir = v
	}
	if v := os.Getenv("GENSLIDES_THEME"); v != "" {
		cfg.CurrentTheme = v
	}
	if v := os.Getenv("GENSLIDES_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("GENSLIDES_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("GENSLIDES_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("GENSLIDES_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}

	// Fallback: check well-known provider env vars for API keys.
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "groq":
			cfg.LLM.APIKey = os.Getenv("GROQ_API_KEY")
		case "openrouter":
			cfg.LLM.APIKey = os.Getenv("OPENROUTER_API_KEY")
		}
	}
}

// outputPath derives the .pptx path when -out is not given.
func outputPath(out, input string) string {
	if out != "" {
		return out
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return base + ".pptx"
}

func printResult(res *genslides.Result) {
	fmt.Printf("wrote %s (%d slides", res.OutputPath, res.Report.SlideCount)
	if res.Report.ImagesSaved > 0 {
		fmt.Printf(", %d images", res.Report.ImagesSaved)
	}
	if res.FromCache {
		fmt.Print(", outline from cache")
	}
	fmt.Println(")")
	for _, s := range res.Report.Slides {
		if s.Skipped {
			fmt.Printf("  entry %d skipped: %s\n", s.OutlineIndex, s.Reason)
		}
	}
}
