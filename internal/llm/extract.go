package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON pulls the JSON payload out of a model reply.
// A ```json fenced block wins; otherwise valid JSON is returned compacted;
// otherwise the trimmed reply is returned unchanged.
func ExtractJSON(content string) string {
	if m := jsonFence.FindStringSubmatch(content); len(m) == 2 && m[1] != "" {
		return m[1]
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(content)); err == nil {
		return buf.String()
	}
	return strings.TrimSpace(content)
}

// FencedJSON returns the content of a ```json block and whether one was found.
// Unlike ExtractJSON it never falls back to the raw reply.
func FencedJSON(content string) (string, bool) {
	m := jsonFence.FindStringSubmatch(content)
	if len(m) != 2 {
		return "", false
	}
	return m[1], true
}

// DecodeObject extracts JSON from content and decodes it into v.
// The payload must be a JSON object; arrays and scalars are rejected.
func DecodeObject(content string, v interface{}) error {
	payload := strings.TrimSpace(ExtractJSON(content))
	if !strings.HasPrefix(payload, "{") {
		return fmt.Errorf("llm: reply is not a JSON object")
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("llm: decode reply: %w", err)
	}
	return nil
}

// CountWords splits on whitespace the way essay word limits are judged.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
