package portal

// DefaultPageSize is the backend page size for course and student lists
const DefaultPageSize = 10

const maxPageLinks = 5

// Window describes the page links shown under a paginated list
type Window struct {
	Count      int
	Page       int
	TotalPages int
	First      int // 1 based index of the first item on the page, 0 when empty
	Last       int
	Pages      []int
}

func (w Window) HasPrevious() bool { return w.Page > 1 }
func (w Window) HasNext() bool     { return w.Page < w.TotalPages }

// Pagination computes the window for page of a list holding count items.
// Up to five page numbers are shown, centred on the current page where possible.
func Pagination(count, page, pageSize int) Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count < 0 {
		count = 0
	}
	total := (count + pageSize - 1) / pageSize
	if total == 0 {
		return Window{Page: 1, Pages: []int{}}
	}
	page = max(1, min(page, total))

	w := Window{
		Count:      count,
		Page:       page,
		TotalPages: total,
		First:      (page-1)*pageSize + 1,
		Last:       min(page*pageSize, count),
		Pages:      make([]int, 0, maxPageLinks),
	}
	start := max(1, min(page-2, total-maxPageLinks+1))
	for n := start; n <= total && len(w.Pages) < maxPageLinks; n++ {
		w.Pages = append(w.Pages, n)
	}
	return w
}
