package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ethereum-optimism/infra/op-sweetest/types"
)

const (
	MetricsNamespace = "sweetest"
)

var (
	Debug                bool = true
	validResults              = []types.Status{types.StatusPass, types.StatusFail}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	casesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "cases_total",
		Help:      "Count of executed test cases",
	}, []string{
		"run_id",
		"suite",
		"result",
	})

	suitesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suites_total",
		Help:      "Count of executed suites",
	}, []string{
		"run_id",
		"depth",
		"result",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of a run",
	}, []string{
		"run_id",
		"result",
	})

	runCasesTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_cases_total",
		Help:      "Total number of cases in a run",
	}, []string{
		"run_id",
	})

	runCasesPassed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_cases_passed",
		Help:      "Number of passed cases in a run",
	}, []string{
		"run_id",
	})

	runCasesFailed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_cases_failed",
		Help:      "Number of failed cases in a run",
	}, []string{
		"run_id",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration",
		Help:      "Duration of a run in seconds",
	}, []string{
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

func RecordCase(runID string, suite string, result types.Status) {
	if !isValidResult(result) {
		log.Error("RecordCase - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "cases_total",
			"run_id", runID,
			"suite", suite,
			"result", result)
	}
	casesTotal.WithLabelValues(runID, suite, string(result)).Inc()
}

func RecordSuite(runID string, depth int, result types.Status) {
	if !isValidResult(result) {
		log.Error("RecordSuite - invalid result", "result", result)
		return
	}
	suitesTotal.WithLabelValues(runID, strconv.Itoa(depth), string(result)).Inc()
}

func RecordRun(
	runID string,
	result types.Status,
	total int,
	passed int,
	failed int,
	duration time.Duration,
) {
	runResults.WithLabelValues(runID, string(result)).Set(1)
	runCasesTotal.WithLabelValues(runID).Set(float64(total))
	runCasesPassed.WithLabelValues(runID).Set(float64(passed))
	runCasesFailed.WithLabelValues(runID).Set(float64(failed))
	runDuration.WithLabelValues(runID).Set(duration.Seconds())
}

func isValidResult(result types.Status) bool {
	return slices.Contains(validResults, result)
}
