package api_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-course-portal/api"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string `json:"name"`
}

func TestPage_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected api.Page[item]
	}{
		{
			name: "paginated envelope with boolean links",
			body: `{"count":12,"next":true,"previous":false,"page":1,"total_pages":2,"results":[{"name":"a"}]}`,
			expected: api.Page[item]{
				Count: 12, Next: api.Link{Present: true}, Page: 1, TotalPages: 2,
				Results: []item{{Name: "a"}},
			},
		},
		{
			name: "url links",
			body: `{"count":1,"next":null,"previous":"http://x/?page=1","results":[{"name":"b"}]}`,
			expected: api.Page[item]{
				Count: 1, Previous: api.Link{Present: true, URL: "http://x/?page=1"},
				Results: []item{{Name: "b"}},
			},
		},
		{
			name: "count and results only",
			body: `{"results":[{"name":"a"},{"name":"b"}]}`,
			expected: api.Page[item]{
				Count: 2, Results: []item{{Name: "a"}, {Name: "b"}},
			},
		},
		{
			name:     "bare array",
			body:     `[{"name":"c"}]`,
			expected: api.Page[item]{Count: 1, Page: 1, TotalPages: 1, Results: []item{{Name: "c"}}},
		},
		{
			name:     "missing results",
			body:     `{"count":0}`,
			expected: api.Page[item]{Results: []item{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var page api.Page[item]
			require.NoError(t, json.Unmarshal([]byte(tt.body), &page))
			require.Equal(t, tt.expected, page)
		})
	}
}
