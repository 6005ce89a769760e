// Package pipeline turns noisy model completions into validated payloads:
// Normalize isolates a JSON object, Validate checks it against a closed
// schema set and Run drives both with a bounded retry budget.
package pipeline

import (
	"regexp"
	"strings"

	"github.com/davidbz/pressroom/internal/domain"
)

// reasoningTags are the tag names models use to wrap chain-of-thought output.
var reasoningTags = []string{"think", "thinking", "reason", "reasoning"}

//nolint:gochecknoglobals // compiled once, read-only
var (
	leadingOpenTag   = regexp.MustCompile(`(?i)^<(think|thinking)\b[^>]*>`)
	closedBlocks     = compileClosedBlocks()
	closingTags      = compileClosingTags()
	unclosedOpenTag  = regexp.MustCompile(`(?is)<(?:think|thinking)\b[^>]*>.*`)
	anyTag           = regexp.MustCompile(`<[^>]*>`)
	fencedBlock      = regexp.MustCompile("(?s)```.*?```")
	whitespaceRun    = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]+`)
	errNoJSONObject  = &domain.ExtractionError{Reason: "no JSON object found"}
	errInvalidObject = &domain.ExtractionError{Reason: "invalid JSON structure"}
)

func compileClosedBlocks() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(reasoningTags))
	for _, tag := range reasoningTags {
		out = append(out, regexp.MustCompile(`(?is)<`+tag+`\b[^>]*>.*?</`+tag+`\s*>`))
	}
	return out
}

func compileClosingTags() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(reasoningTags))
	for _, tag := range reasoningTags {
		out[tag] = regexp.MustCompile(`(?i)</` + tag + `\s*>`)
	}
	return out
}

// Normalize extracts a single JSON object from a raw completion.
// Reasoning blocks, markup, fenced code blocks (contents included) and
// surrounding prose are discarded. An unclosed think or thinking tag drops
// everything after it; other stray tags are removed like any markup.
func Normalize(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", &domain.ExtractionError{Reason: "empty response"}
	}

	// Truncated reasoning stream: the closing tag never arrived.
	if m := leadingOpenTag.FindStringSubmatch(cleaned); m != nil {
		if !closingTags[strings.ToLower(m[1])].MatchString(cleaned) {
			if i := strings.IndexByte(cleaned, '{'); i > 0 {
				cleaned = cleaned[i:]
			}
		}
	}

	for _, block := range closedBlocks {
		cleaned = block.ReplaceAllString(cleaned, "")
	}
	cleaned = unclosedOpenTag.ReplaceAllString(cleaned, "")

	cleaned = anyTag.ReplaceAllString(cleaned, "")
	cleaned = fencedBlock.ReplaceAllString(cleaned, "")

	cleaned = strings.TrimSpace(whitespaceRun.ReplaceAllString(cleaned, " "))

	candidate, ok := balancedObject(cleaned)
	if !ok {
		first := strings.IndexByte(cleaned, '{')
		last := strings.LastIndexByte(cleaned, '}')
		if first < 0 || last <= first {
			return "", errNoJSONObject
		}
		candidate = cleaned[first : last+1]
	}

	if !strings.Contains(candidate, ":") || !strings.Contains(candidate, `"`) {
		return "", errInvalidObject
	}

	return strings.TrimSpace(candidate), nil
}

// balancedObject returns the object that starts at the first '{' and ends where
// nesting depth returns to zero. Braces inside string literals are ignored.
func balancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
