package summarizer

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
)

// SchemaError names the field of a model reply that failed validation.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("field %q %s", e.Field, e.Reason)
}

var stripTags = bluemonday.StrictPolicy()

// decodeSummary validates a raw model reply against the ArticleSummary schema.
func decodeSummary(raw string, minTags, maxTags int) (ArticleSummary, error) {
	object, ok := locateObject(raw)
	if !ok {
		return ArticleSummary{}, &SchemaError{Reason: "reply does not contain a JSON object"}
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(object), &fields); err != nil {
		// Small models often emit trailing commas or unquoted keys.
		if err := json5.Unmarshal([]byte(object), &fields); err != nil {
			return ArticleSummary{}, &SchemaError{Reason: "reply is not valid JSON"}
		}
	}

	title, err := requiredString(fields, "title")
	if err != nil {
		return ArticleSummary{}, err
	}
	summary, err := requiredString(fields, "summary")
	if err != nil {
		return ArticleSummary{}, err
	}
	tags, err := tagList(fields, minTags, maxTags)
	if err != nil {
		return ArticleSummary{}, err
	}
	return ArticleSummary{Title: title, Summary: summary, Tags: tags}, nil
}

// locateObject drops code fences and chatter around the outermost JSON object.
func locateObject(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if nl := strings.IndexByte(raw, '\n'); nl != -1 {
			raw = raw[nl+1:]
		}
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	}
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

func requiredString(fields map[string]any, name string) (string, error) {
	value, ok := fields[name]
	if !ok || value == nil {
		return "", &SchemaError{Field: name, Reason: "is missing"}
	}
	s, ok := value.(string)
	if !ok {
		return "", &SchemaError{Field: name, Reason: "must be a string"}
	}
	s = clean(s)
	if s == "" {
		return "", &SchemaError{Field: name, Reason: "must not be empty"}
	}
	return s, nil
}

func tagList(fields map[string]any, minTags, maxTags int) ([]string, error) {
	value, ok := fields["tags"]
	if !ok || value == nil {
		return nil, &SchemaError{Field: "tags", Reason: "is missing"}
	}
	items, ok := value.([]any)
	if !ok {
		return nil, &SchemaError{Field: "tags", Reason: "must be an array of strings"}
	}

	tags := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &SchemaError{Field: "tags", Reason: "must be an array of strings"}
		}
		tag := clean(s)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
	}

	if maxTags > 0 && len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	if len(tags) < minTags {
		return nil, &SchemaError{Field: "tags", Reason: fmt.Sprintf("must contain at least %d entries, got %d", minTags, len(tags))}
	}
	return tags, nil
}

// clean strips HTML the model echoed back from the article. Text without a closing
// or self-closing tag is kept as is, so generics like List<String> and comparisons
// like a<b survive.
func clean(s string) string {
	s = strings.TrimSpace(s)
	if !hasMarkup(s) {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(stripTags.Sanitize(s)))
}

func hasMarkup(s string) bool {
	return strings.Contains(s, "</") || strings.Contains(s, "/>")
}
