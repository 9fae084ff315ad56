package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-course-portal/api"
	"github.com/jrsteele09/go-course-portal/portal"
)

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

// printPager writes the "Showing x to y of n results" footer and the page window
func printPager[T any](cli *commandLine, page *api.Page[T], pageSize int) {
	if page.Count == 0 {
		return
	}
	w := portal.Pagination(page.Count, page.Page, pageSize)
	fmt.Fprintf(cli.out, "Showing %d to %d of %d results\n", w.First, w.Last, w.Count)
	if w.TotalPages <= 1 {
		return
	}

	links := make([]string, 0, len(w.Pages))
	for _, n := range w.Pages {
		if n == w.Page {
			links = append(links, cli.paint(Blue, fmt.Sprintf("[%d]", n)))
			continue
		}
		links = append(links, fmt.Sprintf("%d", n))
	}
	fmt.Fprintf(cli.out, "Pages: %s\n", strings.Join(links, " "))
}
