package memory

import "encoding/json"

// parseJSONStringArray attempts to decode s as a JSON array of strings,
// returning an empty slice on any failure (malformed JSON, wrong element
// type, or a JSON value that isn't an array at all). This mirrors the
// original implementation's forgiving _ensure_list helper.
func parseJSONStringArray(s string) []string {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		var str string
		if err := json.Unmarshal(r, &str); err != nil {
			return []string{}
		}
		out = append(out, str)
	}
	return out
}
