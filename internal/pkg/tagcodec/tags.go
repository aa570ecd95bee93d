package tagcodec

import (
	"encoding/json"
	"strings"
)

// Normalize trims every tag and drops the empty ones. A list left with
// nothing in it becomes nil so it is stored as NULL.
func Normalize(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Encode converts a tag list to its JSON column form. A nil list stays NULL.
func Encode(tags []string) *string {
	if tags == nil {
		return nil
	}
	data, _ := json.Marshal(tags)
	s := string(data)
	return &s
}

// Decode converts a stored column back to a normalized tag list.
func Decode(s *string) []string {
	if s == nil {
		return nil
	}
	raw := strings.TrimSpace(*s)
	if raw == "" || raw == "null" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		// legacy rows stored the comma-separated form
		return Normalize(strings.Split(raw, ","))
	}
	return Normalize(tags)
}
