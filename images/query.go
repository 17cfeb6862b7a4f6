package images

import "strings"

// Query expansion. When the literal query finds nothing usable, these
// alternatives are tried in order: synonym substitutions, imagery-oriented
// suffixes, then progressively shorter variants.

const maxAlternatives = 5

// thesaurus maps common presentation-domain words to substitutable synonyms.
var thesaurus = map[string][]string{
	"picture":      {"photo", "image"},
	"business":     {"corporate", "commerce"},
	"technology":   {"tech", "innovation"},
	"growth":       {"expansion", "increase"},
	"data":         {"information", "statistics"},
	"people":       {"team", "group"},
	"health":       {"medical", "wellness"},
	"energy":       {"power", "electricity"},
	"education":    {"learning", "school"},
	"finance":      {"financial", "money"},
	"science":      {"research", "laboratory"},
	"nature":       {"landscape", "outdoors"},
	"city":         {"urban", "skyline"},
	"car":          {"automobile", "vehicle"},
	"computer":     {"laptop", "workstation"},
	"network":      {"connectivity", "infrastructure"},
	"security":     {"protection", "safety"},
	"environment":  {"ecology", "climate"},
	"architecture": {"building", "structure"},
	"agriculture":  {"farming", "crops"},
}

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "in": true, "on": true,
	"for": true, "with": true, "and": true, "or": true, "to": true, "at": true,
	"by": true, "from": true, "about": true, "showing": true, "depicting": true,
}

// ExpandQuery returns up to 5 alternative queries for the given one,
// deduplicated and excluding the original (which callers try first).
func ExpandQuery(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var alts []string
	alts = append(alts, synonymVariants(query)...)
	alts = append(alts, suffixVariants(query)...)
	alts = append(alts, shorterVariants(query)...)

	seen := map[string]bool{strings.ToLower(query): true}
	out := make([]string, 0, maxAlternatives)
	for _, alt := range alts {
		alt = strings.TrimSpace(alt)
		key := strings.ToLower(alt)
		if alt == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, alt)
		if len(out) == maxAlternatives {
			break
		}
	}
	return out
}

// synonymVariants substitutes one word at a time from the thesaurus.
func synonymVariants(query string) []string {
	words := strings.Fields(query)
	var out []string
	for i, w := range words {
		syns, ok := thesaurus[strings.ToLower(w)]
		if !ok {
			continue
		}
		for _, syn := range syns {
			variant := make([]string, len(words))
			copy(variant, words)
			variant[i] = syn
			out = append(out, strings.Join(variant, " "))
		}
	}
	return out
}

func suffixVariants(query string) []string {
	lower := strings.ToLower(query)
	var out []string

	hasImagery := strings.Contains(lower, "picture") ||
		strings.Contains(lower, "image") ||
		strings.Contains(lower, "photo")
	if !hasImagery {
		for _, suffix := range []string{"picture", "image", "photo"} {
			out = append(out, query+" "+suffix)
		}
	}

	if strings.Contains(lower, "diagram") {
		for _, repl := range []string{"illustration", "schematic", "visual"} {
			out = append(out, replaceWord(query, "diagram", repl))
		}
	}
	if strings.Contains(lower, "chart") || strings.Contains(lower, "graph") {
		for _, repl := range []string{"visualization", "data visualization", "infographic"} {
			out = append(out, replaceWord(replaceWord(query, "chart", repl), "graph", repl))
		}
	}
	return out
}

// replaceWord replaces whole-word occurrences of old, case-insensitively.
func replaceWord(query, old, repl string) string {
	words := strings.Fields(query)
	for i, w := range words {
		if strings.EqualFold(w, old) {
			words[i] = repl
		}
	}
	return strings.Join(words, " ")
}

func shorterVariants(query string) []string {
	words := strings.Fields(query)
	var out []string

	// Stopword removal.
	var kept []string
	for _, w := range words {
		if !stopwords[strings.ToLower(w)] {
			kept = append(kept, w)
		}
	}
	if len(kept) > 0 && len(kept) < len(words) {
		out = append(out, strings.Join(kept, " "))
	}

	if len(words) >= 4 {
		half := len(words) / 2
		out = append(out, strings.Join(words[:half], " "))
		out = append(out, strings.Join(words[half:], " "))
	}
	if len(words) >= 6 {
		// Middle window.
		lo := len(words)/2 - 1
		out = append(out, strings.Join(words[lo:lo+3], " "))
	}
	if len(words) > 3 {
		out = append(out, strings.Join(words[:3], " "))
	}
	return out
}
