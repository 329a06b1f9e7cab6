// Package probe is the CLI-facing diagnostic: given an origin URL, report
// whether that origin advertises byte-range support and whether it honours
// a ranged GET with a genuine 206, so an operator can tell in advance
// whether this proxy's splicer will ever need to step in for it.
package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sudhirj/rangeproxy/internal/ranger"
)

// Result is the operator-facing rendering of a ranger.Report.
type Result struct {
	URL           string
	AcceptsRanges bool
	ContentLength int64
	RangeHonoured bool
	Err           error
}

// One probes a single origin URL with a bounded timeout.
func One(ctx context.Context, url string, timeout time.Duration) Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{}
	rep := ranger.Check(ctx, client, url)
	return Result{
		URL:           rep.URL,
		AcceptsRanges: rep.AcceptsRanges,
		ContentLength: rep.ContentLength,
		RangeHonoured: rep.RangeHonoured,
		Err:           rep.Err,
	}
}

// Many probes every URL concurrently, bounded to workers in-flight
// requests, and renders each ranger.Report into a Result.
func Many(ctx context.Context, urls []string, workers int, timeout time.Duration) []Result {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{}
	reports := ranger.CheckAll(ctx, client, urls, workers)

	results := make([]Result, len(reports))
	for i, rep := range reports {
		results[i] = Result{
			URL:           rep.URL,
			AcceptsRanges: rep.AcceptsRanges,
			ContentLength: rep.ContentLength,
			RangeHonoured: rep.RangeHonoured,
			Err:           rep.Err,
		}
	}
	return results
}

// String renders a one-line human-readable summary, used by the probe
// subcommand's plain-text output mode.
func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: error: %v", r.URL, r.Err)
	}
	return fmt.Sprintf("%s: accepts-ranges=%v range-honoured=%v content-length=%d",
		r.URL, r.AcceptsRanges, r.RangeHonoured, r.ContentLength)
}
