// Package ranger started as a chunked-range HTTP client. Where that fetched
// one large body in parallel byte-range chunks, this package instead fans
// out over many origin URLs, issuing one small range check against each,
// bounded by the same worker-pool primitive.
package ranger

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sourcegraph/conc/stream"
)

const (
	headerNameRange         = "Range"
	headerNameAcceptRanges  = "Accept-Ranges"
	headerNameContentLength = "Content-Length"
)

// Report describes one origin's range-handling behaviour.
type Report struct {
	URL           string
	AcceptsRanges bool
	ContentLength int64
	RangeStatus   int
	RangeHonoured bool // true if a ranged GET returned 206
	Err           error
}

// Check probes a single origin: a HEAD to read Accept-Ranges/Content-Length,
// then a ranged GET for the first byte to see whether the origin itself
// answers 206 (in which case this proxy's splicer would stay out of the way).
func Check(ctx context.Context, c *http.Client, url string) Report {
	if c == nil {
		c = http.DefaultClient
	}
	rep := Report{URL: url}

	headReq, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		rep.Err = fmt.Errorf("building HEAD request: %w", err)
		return rep
	}
	headResp, err := c.Do(headReq)
	if err != nil {
		rep.Err = fmt.Errorf("HEAD probe: %w", err)
		return rep
	}
	defer headResp.Body.Close()

	rep.AcceptsRanges = headResp.Header.Get(headerNameAcceptRanges) == "bytes"
	if cl := headResp.Header.Get(headerNameContentLength); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			rep.ContentLength = n
		}
	}

	getReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		rep.Err = fmt.Errorf("building ranged GET: %w", err)
		return rep
	}
	getReq.Header.Set(headerNameRange, "bytes=0-0")
	getResp, err := c.Do(getReq)
	if err != nil {
		rep.Err = fmt.Errorf("ranged GET probe: %w", err)
		return rep
	}
	defer getResp.Body.Close()

	rep.RangeStatus = getResp.StatusCode
	rep.RangeHonoured = getResp.StatusCode == http.StatusPartialContent
	return rep
}

// CheckAll probes every URL concurrently, bounded to at most workers
// in-flight HTTP round trips at a time, via stream.New().WithMaxGoroutines.
func CheckAll(ctx context.Context, c *http.Client, urls []string, workers int) []Report {
	if workers < 1 {
		workers = 1
	}
	reports := make([]Report, len(urls))
	s := stream.New().WithMaxGoroutines(workers)
	for i, url := range urls {
		i, url := i, url
		s.Go(func() stream.Callback {
			rep := Check(ctx, c, url)
			return func() {
				reports[i] = rep
			}
		})
	}
	s.Wait()
	return reports
}
