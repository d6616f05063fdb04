package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelAdapter   = "adapter"
	ProfilingLabelOperation = "operation"
	ProfilingLabelRoute     = "route"
	ProfilingLabelMethod    = "method"
)

// MaxLabelValueLength bounds label values
const MaxLabelValueLength = 128

// highCardinalityLabels never become profile labels
var highCardinalityLabels = map[string]bool{
	"business_id": true,
	"run_id":      true,
	"request_id":  true,
	"trace_id":    true,
	"span_id":     true,
}

// WithProfilingLabels runs fn with pprof labels attached, so samples taken
// inside it can be filtered in Pyroscope. It works without a running
// profiler; the labels then only show up in local pprof output.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// AdapterLabels labels work done for one source adapter
func AdapterLabels(adapter string) map[string]string {
	return map[string]string{
		ProfilingLabelOperation: "collect",
		ProfilingLabelAdapter:   adapter,
	}
}

// HTTPRequestLabels labels one API route
func HTTPRequestLabels(route, method string) map[string]string {
	labels := make(map[string]string, 2)
	if route != "" {
		labels[ProfilingLabelRoute] = route
	}
	if method != "" {
		labels[ProfilingLabelMethod] = method
	}
	return labels
}

// sanitizeLabels drops empty and high-cardinality labels, truncates long
// values and returns key/value pairs in key order.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, k := range keys {
		v := labels[k]
		key := sanitizeLabelKey(k)
		if key == "" || v == "" || highCardinalityLabels[key] {
			continue
		}
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		pairs = append(pairs, key, v)
	}
	return pairs
}

// sanitizeLabelKey lowercases key and keeps [a-z0-9_]
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	var b strings.Builder
	for _, r := range key {
		switch {
		case r == ' ' || r == '-':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
