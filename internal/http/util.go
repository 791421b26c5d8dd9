package httpx

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/target/jobdispatch/internal/domain/model"
)

// queryInt reads an integer query value; missing or malformed values yield def.
func queryInt(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return def
	}
	return n
}

// parseListOptions reads the list filters and paging from q. Paging values are clamped;
// an unknown status is an error.
func parseListOptions(q url.Values) (model.JobDispatchListOptions, error) {
	opts := model.JobDispatchListOptions{
		Name:       strings.TrimSpace(q.Get("name")),
		JobBatchID: strings.TrimSpace(q.Get("job_batch_id")),
		Limit:      min(max(queryInt(q, "limit", defaultDispatchListLimit), 1), maxDispatchListLimit),
		Offset:     max(queryInt(q, "offset", 0), 0),
	}
	if raw := q.Get("status"); raw != "" {
		var status model.JobDispatchStatus
		if err := status.UnmarshalText([]byte(raw)); err != nil {
			return opts, err
		}
		opts.Status = &status
	}
	return opts, nil
}
