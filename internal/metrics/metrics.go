// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpLatency    prometheus.Histogram
	registrations  prometheus.Counter
	logins         prometheus.Counter
	coursesCreated prometheus.Counter
	coursesDeleted prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courseboard_http_requests_total",
			Help: "メソッド・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "status_code"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courseboard_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courseboard_registrations_total",
			Help: "ユーザー登録成功の合計数",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courseboard_logins_total",
			Help: "ログイン成功の合計数",
		}),
		coursesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courseboard_courses_created_total",
			Help: "作成されたコースの合計数",
		}),
		coursesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courseboard_courses_deleted_total",
			Help: "削除されたコースの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpLatency,
		c.registrations,
		c.logins,
		c.coursesCreated,
		c.coursesDeleted,
	)

	return c
}

// RecordHTTPRequest はHTTPリクエストの完了を記録する。
func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpLatency.Observe(duration.Seconds())
}

// RecordRegistration はユーザー登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin はログイン成功を記録する。
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordCourseCreated はコース作成を記録する。
func (c *Collector) RecordCourseCreated() {
	c.coursesCreated.Inc()
}

// RecordCourseDeleted はコース削除を記録する。
func (c *Collector) RecordCourseDeleted() {
	c.coursesDeleted.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
