package documents

import (
	"strings"

	json "github.com/goccy/go-json"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
)

// ParseTags flattens raw tag values. Each value may itself be a
// comma-separated list; entries are trimmed and empty ones dropped.
func ParseTags(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if t := strings.TrimSpace(part); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// TagsInput accepts either a JSON string of comma-separated tags or a JSON
// array of strings.
type TagsInput []string

func (t *TagsInput) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*t = TagsInput{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return apperr.Validation("tags must be a string or a list of strings")
		}
		*t = ParseTags(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return apperr.Validation("tags must be a string or a list of strings")
	}
	*t = ParseTags(list...)
	return nil
}

func unmarshalString(b []byte, s *string) error {
	if err := json.Unmarshal(b, s); err != nil {
		return apperr.Validation("expected a string")
	}
	return nil
}
