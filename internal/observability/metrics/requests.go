// Package metrics standardises metric emission for HTTP request handling
// so every route reports the same names and tags.
package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/studyzone/studyzone-api/internal/observability/errors"
	"github.com/studyzone/studyzone-api/internal/observability/statsd"
)

// RequestMetric captures the outcome of one handled HTTP request.
type RequestMetric struct {
	Route    string
	Method   string
	Status   int
	Duration time.Duration
	Err      error
}

// EmitRequest emits the standard request counter and latency timing.
// A 5xx status with a known error additionally tags the error class.
func EmitRequest(sink statsd.Sink, in RequestMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"route":  in.Route,
		"method": in.Method,
		"status": strconv.Itoa(in.Status),
	}

	if in.Err != nil && in.Status >= 500 {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("http.request", 1, tags)

	if in.Duration > 0 {
		sink.Timing("http.request_duration", in.Duration, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k == "" {
			continue
		}
		out[k] = v
	}
	return out
}
