package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordedMetric struct {
	name  string
	value int64
	ms    time.Duration
	tags  map[string]string
}

type recordingSink struct {
	counts  []recordedMetric
	timings []recordedMetric
}

func (r *recordingSink) Count(name string, value int64, tags map[string]string) {
	r.counts = append(r.counts, recordedMetric{name: name, value: value, tags: tags})
}

func (r *recordingSink) Gauge(string, float64, map[string]string) {}

func (r *recordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	r.timings = append(r.timings, recordedMetric{name: name, ms: value, tags: tags})
}

func TestEmitRequest_CounterAndTiming(t *testing.T) {
	sink := &recordingSink{}

	EmitRequest(sink, RequestMetric{
		Route:    "/api/courses",
		Method:   "GET",
		Status:   200,
		Duration: 30 * time.Millisecond,
	})

	assert.Len(t, sink.counts, 1)
	assert.Equal(t, "http.request", sink.counts[0].name)
	assert.Equal(t, map[string]string{
		"route":  "/api/courses",
		"method": "GET",
		"status": "200",
	}, sink.counts[0].tags)

	assert.Len(t, sink.timings, 1)
	assert.Equal(t, "http.request_duration", sink.timings[0].name)
	assert.Equal(t, 30*time.Millisecond, sink.timings[0].ms)
}

func TestEmitRequest_ServerErrorTagsClass(t *testing.T) {
	sink := &recordingSink{}

	EmitRequest(sink, RequestMetric{
		Route:  "/api/courses",
		Method: "POST",
		Status: 500,
		Err:    errors.New("pool exhausted"),
	})

	assert.Len(t, sink.counts, 1)
	assert.Contains(t, sink.counts[0].tags, "error_class")
}

func TestEmitRequest_ClientErrorSkipsClass(t *testing.T) {
	sink := &recordingSink{}

	EmitRequest(sink, RequestMetric{
		Route:  "/api/courses",
		Method: "POST",
		Status: 400,
		Err:    errors.New("bad payload"),
	})

	assert.Len(t, sink.counts, 1)
	assert.NotContains(t, sink.counts[0].tags, "error_class")
}

func TestEmitRequest_NilSink(t *testing.T) {
	assert.NotPanics(t, func() {
		EmitRequest(nil, RequestMetric{Route: "/healthz", Method: "GET", Status: 200})
	})
}

func TestEmitRequest_ZeroDurationSkipsTiming(t *testing.T) {
	sink := &recordingSink{}

	EmitRequest(sink, RequestMetric{Route: "/healthz", Method: "GET", Status: 200})

	assert.Len(t, sink.counts, 1)
	assert.Empty(t, sink.timings)
}

func TestCloneTags(t *testing.T) {
	src := map[string]string{"a": "1", "": "drop", "b": "2"}

	out := CloneTags(src)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, out)
	assert.Nil(t, CloneTags(nil))
}
