package summarizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		want      ArticleSummary
		wantField string
		wantErr   string
	}{
		{
			name: "plain object",
			raw:  `{"title":"標題","summary":"摘要","tags":["a","b","c"]}`,
			want: ArticleSummary{Title: "標題", Summary: "摘要", Tags: []string{"a", "b", "c"}},
		},
		{
			name: "code fence and chatter",
			raw:  "Here you go:\n```json\n{\"title\":\"T\",\"summary\":\"S\",\"tags\":[\"x\",\"y\",\"z\"]}\n```",
			want: ArticleSummary{Title: "T", Summary: "S", Tags: []string{"x", "y", "z"}},
		},
		{
			name: "fenced only",
			raw:  "```json\n{\"title\":\"T\",\"summary\":\"S\",\"tags\":[\"x\",\"y\",\"z\"]}\n```",
			want: ArticleSummary{Title: "T", Summary: "S", Tags: []string{"x", "y", "z"}},
		},
		{
			name: "json5 trailing comma and unquoted keys",
			raw:  `{title: "T", summary: "S", tags: ["x", "y", "z",],}`,
			want: ArticleSummary{Title: "T", Summary: "S", Tags: []string{"x", "y", "z"}},
		},
		{
			name: "tags trimmed deduplicated and capped",
			raw:  `{"title":"T","summary":"S","tags":[" Go ","go","","K8s","gRPC","SQL","Redis","Kafka"]}`,
			want: ArticleSummary{Title: "T", Summary: "S", Tags: []string{"Go", "K8s", "gRPC", "SQL", "Redis"}},
		},
		{
			name: "markup stripped",
			raw:  `{"title":"<b>Bold</b> &amp; brave","summary":"<p>Body</p>","tags":["a","b","c"]}`,
			want: ArticleSummary{Title: "Bold & brave", Summary: "Body", Tags: []string{"a", "b", "c"}},
		},
		{
			name: "angle brackets in technical prose kept",
			raw:  `{"title":"List<String> 與 a<b","summary":"介紹 List<String> 與 Map<K, V> 以及 a<b 的比較","tags":["Java","Generics","a<b"]}`,
			want: ArticleSummary{
				Title:   "List<String> 與 a<b",
				Summary: "介紹 List<String> 與 Map<K, V> 以及 a<b 的比較",
				Tags:    []string{"Java", "Generics", "a<b"},
			},
		},
		{
			name: "entities left alone without markup",
			raw:  `{"title":"R&amp;D","summary":"x &lt; y","tags":["a","b","c"]}`,
			want: ArticleSummary{Title: "R&amp;D", Summary: "x &lt; y", Tags: []string{"a", "b", "c"}},
		},
		{
			name: "self closing tag stripped",
			raw:  `{"title":"T","summary":"line one<br/>line two","tags":["a","b","c"]}`,
			want: ArticleSummary{Title: "T", Summary: "line oneline two", Tags: []string{"a", "b", "c"}},
		},
		{
			name:    "single quotes rejected",
			raw:     `{'title': 'T', 'summary': 'S', 'tags': ['x', 'y', 'z']}`,
			wantErr: "reply is not valid JSON",
		},
		{
			name:    "no object",
			raw:     "I could not summarize this.",
			wantErr: "reply does not contain a JSON object",
		},
		{
			name:    "broken json",
			raw:     `{"title": "T", "summary": }`,
			wantErr: "reply is not valid JSON",
		},
		{
			name:      "missing title",
			raw:       `{"summary":"S","tags":["a","b","c"]}`,
			wantField: "title",
		},
		{
			name:      "blank summary",
			raw:       `{"title":"T","summary":"   ","tags":["a","b","c"]}`,
			wantField: "summary",
		},
		{
			name:      "null tags",
			raw:       `{"title":"T","summary":"S","tags":null}`,
			wantField: "tags",
		},
		{
			name:      "tags not array",
			raw:       `{"title":"T","summary":"S","tags":"a, b, c"}`,
			wantField: "tags",
		},
		{
			name:      "non string tag",
			raw:       `{"title":"T","summary":"S","tags":["a",1,"c"]}`,
			wantField: "tags",
		},
		{
			name:      "too few tags after dedupe",
			raw:       `{"title":"T","summary":"S","tags":["a","A","b"]}`,
			wantField: "tags",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := decodeSummary(tt.raw, 3, 5)
			if tt.wantErr == "" && tt.wantField == "" {
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
				return
			}
			var schemaErr *SchemaError
			require.ErrorAs(t, err, &schemaErr)
			require.Equal(t, tt.wantField, schemaErr.Field)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
