package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseStructured decodes a flat JSON object, tolerating markdown code fences
// around it. Non-string values are rendered back to their JSON text.
func ParseStructured(raw string) (map[string]string, error) {
	cleaned := StripFences(raw)

	var loose map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &loose); err != nil {
		return nil, fmt.Errorf("parse structured output: %w", err)
	}

	fields := make(map[string]string, len(loose))
	for k, v := range loose {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			fields[k] = s
			continue
		}
		fields[k] = string(v)
	}
	return fields, nil
}

// StripFences removes a leading/trailing markdown code fence if present.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
