package collector

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v55/github"
	"go.uber.org/zap"
)

// pageFetch fetches one numbered page of a listing.
type pageFetch[T any] func(ctx context.Context, page int) ([]T, *github.Response, error)

// fetchPage issues a single page fetch with rate-limit recovery. A
// fetch that exhausts the quota sleeps until the reported reset and is
// retried once. Any remaining failure is logged to the error log and
// reported as unavailable. A 409 means an empty repository and counts
// as an empty page, not a failure.
func fetchPage[T any](ctx context.Context, c *Client, resource string, page int, fetch pageFetch[T]) ([]T, bool) {
	items, resp, err := fetch(ctx, page)
	if err != nil && c.guard.waitForReset(ctx, err) {
		items, resp, err = fetch(ctx, page)
	}
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return nil, true
		}
		c.errors.Record(pageLocator(resource, page), err)
		return nil, false
	}
	return items, true
}

// walkPages walks a numbered listing starting at page 1, invoking
// visit once per non-empty batch. The walk stops on an empty or
// unavailable page, when visit returns false, or at the page ceiling.
func walkPages[T any](ctx context.Context, c *Client, resource string, fetch pageFetch[T], visit func([]T) bool) {
	for page := 1; ; page++ {
		if page > c.maxPages {
			c.logger.Warn("page ceiling reached, stopping walk",
				zap.String("resource", resource),
				zap.Int("max_pages", c.maxPages))
			return
		}
		items, ok := fetchPage(ctx, c, resource, page, fetch)
		if !ok || len(items) == 0 {
			return
		}
		if !visit(items) {
			return
		}
	}
}

// collectAll gathers every item of a walked listing into one slice.
func collectAll[T any](ctx context.Context, c *Client, resource string, fetch pageFetch[T]) []T {
	var all []T
	walkPages(ctx, c, resource, fetch, func(batch []T) bool {
		all = append(all, batch...)
		return true
	})
	return all
}

func pageLocator(resource string, page int) string {
	sep := "?"
	if strings.Contains(resource, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", resource, sep, page)
}
