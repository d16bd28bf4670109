package analysis

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// DecodeJSON unmarshals model output into v, tolerating the usual framing
// noise. It tries, in order: the raw text, the first fenced code block,
// and the substring between the first '{' and the last '}'.
func DecodeJSON(text string, v any) bool {
	text = strings.TrimSpace(text)

	if json.Unmarshal([]byte(text), v) == nil {
		return true
	}

	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		if json.Unmarshal([]byte(strings.TrimSpace(m[1])), v) == nil {
			return true
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if json.Unmarshal([]byte(text[start:end+1]), v) == nil {
			return true
		}
	}

	return false
}
