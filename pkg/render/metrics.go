package render

import "github.com/prometheus/client_golang/prometheus"

// Metrics of the per-frame path.
type Metrics struct {
	Frames   prometheus.Counter
	Failures prometheus.Counter
	Wait     prometheus.Histogram
	Capture  prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Frames captured and presented.",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_failures_total",
			Help:      "Frames that failed to render.",
		}),
		Wait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_wait_seconds",
			Help:      "Time spent waiting for the producer.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		Capture: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "capture_seconds",
			Help:      "Filter chain plus synchronous pixel readback time.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
	}
}

func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Frames, m.Failures, m.Wait, m.Capture} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}
