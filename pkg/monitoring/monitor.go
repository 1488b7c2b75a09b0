package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// BriefingLookups 简报读取，result: redis_hit / db_hit / miss
	BriefingLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "briefing_lookups_total",
			Help: "Briefing cache lookups by result",
		},
		[]string{"result"},
	)

	BriefingGenerations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "briefing_generations_total",
			Help: "LLM briefing generations by outcome",
		},
		[]string{"outcome"},
	)

	GenerationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "briefing_generation_duration_seconds",
			Help:    "Duration of LLM briefing generation",
			Buckets: []float64{1, 2, 5, 10, 20, 40, 60},
		},
	)

	QuizAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_attempts_total",
			Help: "Recorded quiz attempts",
		},
	)

	// RateLimited 被限流拒绝的请求，scope: api / enhance
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	CoinsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_coins_awarded_total",
			Help: "Coins awarded across all quiz attempts",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(BriefingLookups)
	prometheus.MustRegister(BriefingGenerations)
	prometheus.MustRegister(GenerationDuration)
	prometheus.MustRegister(QuizAttempts)
	prometheus.MustRegister(CoinsAwarded)
	prometheus.MustRegister(RateLimited)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
