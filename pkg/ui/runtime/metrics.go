package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricFramesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "panes",
		Name:      "frames_rendered_total",
		Help:      "Frames rendered and flushed to the backend.",
	})

	metricEventsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "panes",
			Name:      "events_dispatched_total",
			Help:      "Events dispatched to the pane tree, by kind.",
		},
		[]string{"kind"},
	)

	metricRenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "panes",
		Name:      "render_duration_seconds",
		Help:      "Time to render and flush one frame.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 100µs to ~200ms
	})

	metricQueueDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "panes",
		Name:      "queue_dropped_total",
		Help:      "Events dropped because the event queue was full.",
	})
)
