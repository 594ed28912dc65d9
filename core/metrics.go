package core

import (
	"context"
	"fmt"
	"strings"
)

const metricPrefix = "ledger"

// NopMetricsRecorder drops every sample.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ MetricsRecorder = NopMetricsRecorder{}

// operationMetric names a per-operation series, e.g. ledger.issuance.issue.total.
func operationMetric(operation string, series string) string {
	return metricPrefix + "." + operation + "." + series
}

// operationTags builds the label set for one observed operation. Caller
// identities stay in logs only; metrics carry the caller kind.
func operationTags(operation string, status string, err error, fields map[string]any) map[string]string {
	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	if kind := callerKind(fields["caller"]); kind != "" {
		tags["caller_kind"] = kind
	}
	for _, key := range []string{"collection_id", "error_code"} {
		if value := tagValue(fields[key]); value != "" {
			tags[key] = value
		}
	}
	if family := ErrorFamily(err); family != "" {
		tags["error_family"] = family
	}
	return tags
}

func callerKind(value any) string {
	caller := tagValue(value)
	switch caller {
	case "":
		return ""
	case "root":
		return "root"
	default:
		return "signed"
	}
}

func tagValue(value any) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

func cloneTags(tags map[string]string) map[string]string {
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}
