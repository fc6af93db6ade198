// File: internal/inference/parser.go
package inference

import (
	"regexp"
	"strings"

	json "github.com/json-iterator/go"
)

const rawExcerptLimit = 500

var (
	// Regex definitions use \x60 (hex representation) for backticks because Go raw strings cannot contain backticks.

	// fencedObjectRegex extracts a JSON object wrapped in a markdown code fence,
	// with or without a language tag.
	fencedObjectRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*({.*})\\s*\x60\x60\x60")
	// fencedArrayRegex extracts a fenced JSON array.
	fencedArrayRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json)?\\s*(\\[.*\\])\\s*\x60\x60\x60")
)

// ParseFailure is the tagged error record returned when a vision response is
// not machine-parseable. Malformed model output is an expected, common
// condition, so the parser reports it as a value rather than an error.
type ParseFailure struct {
	Error      string `json:"error"`
	Detail     string `json:"detail"`
	RawExcerpt string `json:"raw_excerpt"`
}

// parseFailure builds the record, excerpting the first 500 characters of the
// original input (not of whatever substring was extracted from it).
func parseFailure(raw string, err error) *ParseFailure {
	return &ParseFailure{
		Error:      "parse failure",
		Detail:     err.Error(),
		RawExcerpt: truncateString(raw, rawExcerptLimit),
	}
}

// ParseJSONResponse parses an LLM response into a target Go type. It tolerates
// the formatting noise models commonly add: a markdown code fence around the
// payload (with or without a language tag), or conversational text surrounding
// the structure. It never panics and never returns a Go error; failures come
// back as a *ParseFailure value.
func ParseJSONResponse[T any](raw string) (*T, *ParseFailure) {
	response := strings.TrimSpace(raw)
	candidate := response

	// Heuristically determine whether the content looks like an object or array.
	isObject := strings.Contains(response, "{")
	isArray := strings.Contains(response, "[")

	if strings.HasPrefix(response, "```") {
		// Fenced payload; unwrap it. Object form takes priority.
		var matches []string
		if isObject {
			matches = fencedObjectRegex.FindStringSubmatch(response)
		}
		if len(matches) <= 1 && isArray {
			matches = fencedArrayRegex.FindStringSubmatch(response)
		}
		if len(matches) > 1 {
			candidate = matches[1]
		}
	} else if (isObject || isArray) && !strings.HasPrefix(response, "{") && !strings.HasPrefix(response, "[") {
		// Structure embedded in conversational text; take the outermost
		// bracket boundaries.
		if extracted, ok := extractBracketed(response, isObject, isArray); ok {
			candidate = extracted
		}
	}

	var result T
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return nil, parseFailure(raw, err)
	}
	return &result, nil
}

// extractBracketed slices out the outermost {...} (preferred) or [...] span.
func extractBracketed(s string, tryObject, tryArray bool) (string, bool) {
	if tryObject {
		first := strings.Index(s, "{")
		last := strings.LastIndex(s, "}")
		if first != -1 && last > first {
			return s[first : last+1], true
		}
	}
	if tryArray {
		first := strings.Index(s, "[")
		last := strings.LastIndex(s, "]")
		if first != -1 && last > first {
			return s[first : last+1], true
		}
	}
	return "", false
}

// truncateString truncates a string to a maximum byte length. Truncation does
// not respect rune boundaries; excerpts are diagnostic text only.
func truncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
