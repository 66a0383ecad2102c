package main

import (
	"time"

	"github.com/codeprep/go-runner/worker"
	"github.com/codeprep/go-runner/workspace"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "go_runner"
)

var (
	// 1ms -> 10s
	timeBuckets = []float64{
		0.001, 0.002, 0.005, 0.008, 0.010, 0.025, 0.050, 0.075, 0.1, 0.2,
		0.4, 0.6, 0.8, 1.0, 1.5, 2, 5, 10,
	}

	metricsSummaryQuantile = map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}

	execErrorCount = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "error",
		Help:      "Number of execution requests returns error",
	})

	requestCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "request_total",
		Help:      "Number of judged requests by outcome",
	}, []string{"language", "outcome"})

	requestTimeHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "request_time_seconds",
		Help:      "Histogram for the request handling time including compile",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{"language"})

	caseCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "case_total",
		Help:      "Number of test cases by status",
	}, []string{"status", "passed"})

	caseTimeHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "time_seconds",
		Help:      "Histogram for the running time",
		Buckets:   timeBuckets,
	}, []string{"status"})

	caseTimeSummary = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  metricsNamespace,
		Name:       "time",
		Help:       "Summary for the running time",
		Objectives: metricsSummaryQuantile,
	}, []string{"status"})

	workspaceCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "workspace_created",
		Help:      "Total number of workspace created by workspace manager",
	})

	workspaceInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "workspace_in_use",
		Help:      "Total number of workspace currently in use",
	})
)

func init() {
	prometheus.MustRegister(execErrorCount, requestCount, requestTimeHist)
	prometheus.MustRegister(caseCount, caseTimeHist, caseTimeSummary)
	prometheus.MustRegister(workspaceCreated, workspaceInUse)
}

func execObserve(res worker.Response) {
	requestTimeHist.WithLabelValues(res.Language).Observe(res.Duration.Seconds())
	switch {
	case res.Error != nil:
		execErrorCount.Inc()
		requestCount.WithLabelValues(res.Language, "error").Inc()
		return
	case res.Result == nil:
		return
	case res.Result.CompileFailed():
		requestCount.WithLabelValues(res.Language, "compile_error").Inc()
		return
	}
	requestCount.WithLabelValues(res.Language, "judged").Inc()

	for _, r := range res.Result.Results {
		status := r.Status.String()
		passed := "false"
		if r.Passed {
			passed = "true"
		}
		caseCount.WithLabelValues(status, passed).Inc()
		ob := time.Duration(r.Time).Seconds()
		caseTimeHist.WithLabelValues(status).Observe(ob)
		caseTimeSummary.WithLabelValues(status).Observe(ob)
	}
}

var _ workspace.Manager = &metricsWorkspaceManager{}

type metricsWorkspaceManager struct {
	workspace.Manager
}

func (m *metricsWorkspaceManager) Acquire() (*workspace.Workspace, error) {
	w, err := m.Manager.Acquire()
	if err != nil {
		return nil, err
	}
	workspaceCreated.Inc()
	workspaceInUse.Inc()
	return w, nil
}

func (m *metricsWorkspaceManager) Release(w *workspace.Workspace) {
	m.Manager.Release(w)
	workspaceInUse.Dec()
}
