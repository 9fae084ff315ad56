package api

import (
	"bytes"
	"encoding/json"
)

// Page is the list envelope returned by the backend's list endpoints.
// Results is never nil after decoding. A bare JSON array decodes into a
// single page holding every element.
type Page[T any] struct {
	Count      int  `json:"count"`
	Next       Link `json:"next"`
	Previous   Link `json:"previous"`
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	Results    []T  `json:"results"`
}

// pageEnvelope has Page's fields without its UnmarshalJSON method
type pageEnvelope[T any] Page[T]

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var results []T
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return err
		}
		*p = Page[T]{Count: len(results), Page: 1, TotalPages: 1, Results: results}
	} else {
		var e pageEnvelope[T]
		if err := json.Unmarshal(trimmed, &e); err != nil {
			return err
		}
		*p = Page[T](e)
	}

	if p.Results == nil {
		p.Results = []T{}
	}
	if p.Count == 0 {
		p.Count = len(p.Results)
	}
	return nil
}

// Link is a next/previous page marker. The backend sends either a boolean
// or, for framework paginated views, a URL or null.
type Link struct {
	Present bool
	URL     string
}

func (l *Link) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*l = Link{Present: t}
	case string:
		*l = Link{Present: t != "", URL: t}
	default:
		*l = Link{}
	}
	return nil
}

func (l Link) MarshalJSON() ([]byte, error) {
	if l.URL != "" {
		return json.Marshal(l.URL)
	}
	return json.Marshal(l.Present)
}
