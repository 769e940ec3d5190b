package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/synaptica-ai/afi-risk/pkg/risk"
)

var (
	assessmentsCompleted atomic.Int64
	assessmentsFailed    atomic.Int64
	tierLow              atomic.Int64
	tierModerate         atomic.Int64
	tierHigh             atomic.Int64
	failedEncode         atomic.Int64
	failedBuild          atomic.Int64
	failedScore          atomic.Int64
	failedExplain        atomic.Int64
	eventsPublished      atomic.Int64
	eventsFailed         atomic.Int64
	lastLatencyMicros    atomic.Int64
)

func ObserveAssessment(tier risk.Tier, latency time.Duration) {
	assessmentsCompleted.Add(1)
	lastLatencyMicros.Store(latency.Microseconds())
	switch tier {
	case risk.TierLow:
		tierLow.Add(1)
	case risk.TierModerate:
		tierModerate.Add(1)
	case risk.TierHigh:
		tierHigh.Add(1)
	}
}

// ObserveFailure counts a rejected assessment by pipeline stage.
func ObserveFailure(stage string) {
	assessmentsFailed.Add(1)
	switch stage {
	case "encode":
		failedEncode.Add(1)
	case "build":
		failedBuild.Add(1)
	case "score":
		failedScore.Add(1)
	case "explain":
		failedExplain.Add(1)
	}
}

func ObserveEvent(published bool) {
	if published {
		eventsPublished.Add(1)
		return
	}
	eventsFailed.Add(1)
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP afi_risk_assessments_total Number of assessments scored.\n")
	fmt.Fprintf(w, "# TYPE afi_risk_assessments_total counter\n")
	fmt.Fprintf(w, "afi_risk_assessments_total %d\n", assessmentsCompleted.Load())

	fmt.Fprintf(w, "# HELP afi_risk_assessments_by_tier_total Number of assessments per risk tier.\n")
	fmt.Fprintf(w, "# TYPE afi_risk_assessments_by_tier_total counter\n")
	fmt.Fprintf(w, "afi_risk_assessments_by_tier_total{tier=\"low\"} %d\n", tierLow.Load())
	fmt.Fprintf(w, "afi_risk_assessments_by_tier_total{tier=\"moderate\"} %d\n", tierModerate.Load())
	fmt.Fprintf(w, "afi_risk_assessments_by_tier_total{tier=\"high\"} %d\n", tierHigh.Load())

	fmt.Fprintf(w, "# HELP afi_risk_assessments_failed_total Number of assessments rejected, by pipeline stage.\n")
	fmt.Fprintf(w, "# TYPE afi_risk_assessments_failed_total counter\n")
	fmt.Fprintf(w, "afi_risk_assessments_failed_total{stage=\"encode\"} %d\n", failedEncode.Load())
	fmt.Fprintf(w, "afi_risk_assessments_failed_total{stage=\"build\"} %d\n", failedBuild.Load())
	fmt.Fprintf(w, "afi_risk_assessments_failed_total{stage=\"score\"} %d\n", failedScore.Load())
	fmt.Fprintf(w, "afi_risk_assessments_failed_total{stage=\"explain\"} %d\n", failedExplain.Load())

	fmt.Fprintf(w, "# HELP afi_risk_events_published_total Number of assessment events published.\n")
	fmt.Fprintf(w, "# TYPE afi_risk_events_published_total counter\n")
	fmt.Fprintf(w, "afi_risk_events_published_total %d\n", eventsPublished.Load())

	fmt.Fprintf(w, "# HELP afi_risk_events_failed_total Number of assessment events that could not be published.\n")
	fmt.Fprintf(w, "# TYPE afi_risk_events_failed_total counter\n")
	fmt.Fprintf(w, "afi_risk_events_failed_total %d\n", eventsFailed.Load())

	fmt.Fprintf(w, "# HELP afi_risk_last_assessment_latency_microseconds Latency of the most recent assessment.\n")
	fmt.Fprintf(w, "# TYPE afi_risk_last_assessment_latency_microseconds gauge\n")
	fmt.Fprintf(w, "afi_risk_last_assessment_latency_microseconds %d\n", lastLatencyMicros.Load())
}
