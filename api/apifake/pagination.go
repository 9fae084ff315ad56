package apifake

import (
	"net/http"
	"strconv"
)

const defaultPageSize = 20

// paginate slices items the way the backend's list views do. Out of range
// pages fall back to the last page.
func paginate[T any](r *http.Request, items []T) map[string]any {
	pageSize := queryInt(r, "page_size", defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	page := queryInt(r, "page", 1)

	totalPages := (len(items) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	current := page
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	start := (current - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	results := items[start:end]
	if results == nil {
		results = []T{}
	}

	return map[string]any{
		"count":       len(items),
		"next":        current < totalPages,
		"previous":    current > 1,
		"page":        page,
		"total_pages": totalPages,
		"results":     results,
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
