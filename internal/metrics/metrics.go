// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/bk1785/internal/poller"
	"github.com/tamzrod/bk1785/internal/psu"
)

// NewRegistry creates a dedicated registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler returns the /metrics HTTP handler for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Exchange result label values.
const (
	ResultOK            = "ok"
	ResultTransport     = "transport"
	ResultChecksum      = "checksum"
	ResultMalformed     = "malformed"
	ResultRejected      = "rejected"
	ResultUnknownStatus = "unknown_status"
	ResultCanceled      = "canceled"
	ResultError         = "error"
)

// PSUMetrics holds the driver and monitor metrics.
type PSUMetrics struct {
	ExchangeTotal   *prometheus.CounterVec   // labels: cmd, result
	ExchangeSeconds *prometheus.HistogramVec // labels: cmd
	PollTotal       *prometheus.CounterVec   // labels: result=ok|error
	Up              prometheus.Gauge         // 1 after a good poll, 0 after a failed one

	PresentVoltage   prometheus.Gauge
	PresentCurrent   prometheus.Gauge
	OutputVoltage    prometheus.Gauge
	MaxOutputVoltage prometheus.Gauge
	OutputOn         prometheus.Gauge
}

// NewPSUMetrics registers and returns the PSU metrics.
func NewPSUMetrics(reg prometheus.Registerer) *PSUMetrics {
	m := &PSUMetrics{
		ExchangeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bk1785_exchange_total",
			Help: "Command/response exchanges by command and result.",
		}, []string{"cmd", "result"}),
		ExchangeSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bk1785_exchange_duration_seconds",
			Help:    "Wall time of one exchange, write through decode.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"cmd"}),
		PollTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bk1785_poll_total",
			Help: "Monitor poll cycles by result.",
		}, []string{"result"}),
		Up: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bk1785_up",
			Help: "Whether the last poll succeeded.",
		}),
		PresentVoltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bk1785_present_voltage_volts",
			Help: "Measured output voltage.",
		}),
		PresentCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bk1785_present_current_amperes",
			Help: "Measured output current.",
		}),
		OutputVoltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bk1785_output_voltage_volts",
			Help: "Configured output voltage.",
		}),
		MaxOutputVoltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bk1785_max_output_voltage_volts",
			Help: "Configured output voltage limit.",
		}),
		OutputOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bk1785_output_on",
			Help: "Whether the output stage is enabled.",
		}),
	}
	reg.MustRegister(
		m.ExchangeTotal, m.ExchangeSeconds, m.PollTotal, m.Up,
		m.PresentVoltage, m.PresentCurrent, m.OutputVoltage, m.MaxOutputVoltage, m.OutputOn,
	)
	return m
}

// ObserveExchange implements psu.Observer.
func (m *PSUMetrics) ObserveExchange(cmd psu.Command, elapsed time.Duration, err error) {
	name := cmd.String()
	m.ExchangeTotal.WithLabelValues(name, ResultLabel(err)).Inc()
	m.ExchangeSeconds.WithLabelValues(name).Observe(elapsed.Seconds())
}

// ObservePoll records one monitor cycle. Telemetry gauges keep their last
// value across failed polls.
func (m *PSUMetrics) ObservePoll(res poller.PollResult) {
	if res.Err != nil {
		m.PollTotal.WithLabelValues(ResultError).Inc()
		m.Up.Set(0)
		return
	}

	m.PollTotal.WithLabelValues(ResultOK).Inc()
	m.Up.Set(1)

	t := res.Telemetry
	m.PresentVoltage.Set(float64(t.PresentVoltage) / 1000)
	m.PresentCurrent.Set(float64(t.PresentCurrent) / 1000)
	m.OutputVoltage.Set(float64(t.OutputVoltage) / 1000)
	m.MaxOutputVoltage.Set(float64(t.MaxOutputVoltage) / 1000)
	if t.OutputOn() {
		m.OutputOn.Set(1)
	} else {
		m.OutputOn.Set(0)
	}
}

// ResultLabel maps an exchange error onto a bounded label value.
func ResultLabel(err error) string {
	if err == nil {
		return ResultOK
	}

	var pe *psu.ProtocolError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case psu.KindChecksumMismatch:
			return ResultChecksum
		case psu.KindMalformedFrame:
			return ResultMalformed
		case psu.KindDeviceRejected:
			return ResultRejected
		case psu.KindUnknownStatus:
			return ResultUnknownStatus
		}
	}

	switch {
	case psu.IsTransportError(err):
		return ResultTransport
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCanceled
	}

	return ResultError
}
