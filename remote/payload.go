package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query    string `json:"query"`
	Database string `json:"database"`
}

// QueryResponse is the structured payload returned by POST /query.
// Every field is optional; absent fields decode to "".
type QueryResponse struct {
	Answer Text   `json:"answer"`
	Image  Text   `json:"image"`
	Source Source `json:"source"`
}

// Text accepts a JSON string, null, number or boolean and keeps its textual form.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[':
		return fmt.Errorf("expected text, got %s", trimmed[:1])
	default:
		*t = Text(trimmed)
	}
	return nil
}

// Source is a label for where an answer came from. The service sends either a
// plain string or the metadata object of the best matching chunk; objects are
// reduced to "<file>, p. <page>" when those keys exist.
type Source string

func (s *Source) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = ""
		return nil
	}

	switch trimmed[0] {
	case '"':
		var str string
		if err := json.Unmarshal(trimmed, &str); err != nil {
			return err
		}
		*s = Source(strings.TrimSpace(str))
	case '{':
		var meta map[string]any
		if err := json.Unmarshal(trimmed, &meta); err != nil {
			return err
		}
		*s = Source(metadataLabel(meta))
	default:
		*s = Source(trimmed)
	}
	return nil
}

func metadataLabel(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}

	file, _ := meta["source"].(string)
	file = baseName(file)
	if file == "" {
		// no recognizable keys: fall back to a stable key=value listing
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, meta[k]))
		}
		return strings.Join(parts, ", ")
	}

	page, ok := meta["page_label"]
	if !ok || page == nil || page == "" {
		page, ok = meta["page"]
	}
	if !ok || page == nil || page == "" {
		return file
	}
	return fmt.Sprintf("%s, p. %v", file, page)
}

// baseName strips both slash styles; the service runs on either platform.
func baseName(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return path
}
