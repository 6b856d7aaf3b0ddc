package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pyassist/backend/internal/domain/chat"
)

// 结果标签
const (
	OutcomeSuccess = "success"
)

// Metrics 服务的全部 Prometheus 指标，注册在独立的 Registry 上
type Metrics struct {
	registry *prometheus.Registry

	// 检索
	RetrievalRequests *prometheus.CounterVec
	RetrievalDuration prometheus.Histogram
	RetrievalMatches  prometheus.Histogram

	// 生成
	GenerationRequests *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec

	// 转写
	TranscriptionRequests *prometheus.CounterVec
	TranscriptionDuration prometheus.Histogram
	AudioDuration         prometheus.Histogram

	// HTTP API
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics 创建并注册全部指标
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RetrievalRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pyassist_retrieval_requests_total",
			Help: "Total number of context retrievals by outcome",
		}, []string{"outcome"}),
		RetrievalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pyassist_retrieval_duration_seconds",
			Help:    "Time spent embedding the query and searching the index",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		}),
		RetrievalMatches: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pyassist_retrieval_matches",
			Help:    "Number of question/answer matches returned per retrieval",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),

		GenerationRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pyassist_generation_requests_total",
			Help: "Total number of language model calls by branch and outcome",
		}, []string{"branch", "outcome"}),
		GenerationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pyassist_generation_duration_seconds",
			Help:    "Language model call latency",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		}, []string{"branch"}),

		TranscriptionRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pyassist_transcription_requests_total",
			Help: "Total number of transcriptions by outcome",
		}, []string{"outcome"}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pyassist_transcription_duration_seconds",
			Help:    "Wall time spent decoding and recognizing an audio file",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		AudioDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pyassist_transcription_audio_seconds",
			Help:    "Duration of the transcribed audio",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4 minutes
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pyassist_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pyassist_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ProvideMetrics wire provider
func ProvideMetrics() *Metrics {
	return NewMetrics()
}

// Registry 返回指标所在的 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Outcome 成功为 success，否则为错误分类名
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	return string(chat.KindOf(err))
}

// ObserveRetrieval 记录一次检索
func (m *Metrics) ObserveRetrieval(seconds float64, matches int, err error) {
	m.RetrievalRequests.WithLabelValues(Outcome(err)).Inc()
	m.RetrievalDuration.Observe(seconds)
	if err == nil {
		m.RetrievalMatches.Observe(float64(matches))
	}
}

// ObserveGeneration 记录一次模型调用
func (m *Metrics) ObserveGeneration(branch string, seconds float64, err error) {
	m.GenerationRequests.WithLabelValues(branch, Outcome(err)).Inc()
	m.GenerationDuration.WithLabelValues(branch).Observe(seconds)
}

// ObserveTranscription 记录一次转写
func (m *Metrics) ObserveTranscription(seconds float64, audioSeconds float64, err error) {
	m.TranscriptionRequests.WithLabelValues(Outcome(err)).Inc()
	m.TranscriptionDuration.Observe(seconds)
	if err == nil {
		m.AudioDuration.Observe(audioSeconds)
	}
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, route string, status int, seconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
