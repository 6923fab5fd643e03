package romanclock

import (
	"expvar"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsCollector exports a Metrics snapshot to Prometheus.
type metricsCollector struct {
	metrics  *Metrics
	counters []counterDesc
	running  *prometheus.Desc
	visible  *prometheus.Desc
	frame    *prometheus.Desc
	frameAvg *prometheus.Desc
}

type counterDesc struct {
	desc  *prometheus.Desc
	value func(MetricsSnapshot) int64
}

// NewPrometheusCollector returns a collector reading m on every scrape.
// Metric names are prefixed with namespace, "romanclock" when empty.
func NewPrometheusCollector(m *Metrics, namespace string) prometheus.Collector {
	if namespace == "" {
		namespace = "romanclock"
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, nil, nil)
	}
	counter := func(name, help string, value func(MetricsSnapshot) int64) counterDesc {
		return counterDesc{desc: desc(name, help), value: value}
	}
	return &metricsCollector{
		metrics: m,
		counters: []counterDesc{
			counter("starts_total", "Times the wallpaper was started.", func(s MetricsSnapshot) int64 { return s.Starts }),
			counter("stops_total", "Times the wallpaper was stopped.", func(s MetricsSnapshot) int64 { return s.Stops }),
			counter("frames_rendered_total", "Frames drawn.", func(s MetricsSnapshot) int64 { return s.FramesRendered }),
			counter("frames_skipped_total", "Frames skipped because no surface was available.", func(s MetricsSnapshot) int64 { return s.FramesSkipped }),
			counter("images_skipped_total", "Collage image draws left out of a frame.", func(s MetricsSnapshot) int64 { return s.ImagesSkipped }),
			counter("decode_failures_total", "Collage images that could not be opened or decoded.", func(s MetricsSnapshot) int64 { return s.DecodeFailures }),
			counter("settings_saves_total", "Settings snapshots saved.", func(s MetricsSnapshot) int64 { return s.SettingsSaves }),
			counter("settings_reloads_total", "Settings reloaded from the store.", func(s MetricsSnapshot) int64 { return s.SettingsReloads }),
			counter("imports_rejected_total", "Rejected settings imports.", func(s MetricsSnapshot) int64 { return s.ImportsRejected }),
			counter("errors_total", "Runtime errors reported.", func(s MetricsSnapshot) int64 { return s.ErrorsTotal }),
			counter("events_emitted_total", "Lifecycle events emitted.", func(s MetricsSnapshot) int64 { return s.EventsEmitted }),
			counter("image_cache_hits_total", "Image lookups served from the cache.", func(s MetricsSnapshot) int64 { return s.CacheHits }),
			counter("image_cache_misses_total", "Image lookups that started or joined a decode.", func(s MetricsSnapshot) int64 { return s.CacheMisses }),
			counter("image_cache_failures_total", "Image decodes that failed.", func(s MetricsSnapshot) int64 { return s.CacheFailures }),
		},
		running:  desc("running", "1 while the wallpaper is running."),
		visible:  desc("visible", "1 while the render loop is active."),
		frame:    desc("last_frame_seconds", "Duration of the latest frame."),
		frameAvg: desc("frame_average_seconds", "Average frame duration."),
	}
}

// Describe implements prometheus.Collector.
func (c *metricsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, cd := range c.counters {
		ch <- cd.desc
	}
	ch <- c.running
	ch <- c.visible
	ch <- c.frame
	ch <- c.frameAvg
}

// Collect implements prometheus.Collector.
func (c *metricsCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.metrics.Snapshot()
	for _, cd := range c.counters {
		ch <- prometheus.MustNewConstMetric(cd.desc, prometheus.CounterValue, float64(cd.value(snap)))
	}
	ch <- prometheus.MustNewConstMetric(c.running, prometheus.GaugeValue, float64(boolGauge(snap.Running)))
	ch <- prometheus.MustNewConstMetric(c.visible, prometheus.GaugeValue, float64(boolGauge(snap.Visible)))
	ch <- prometheus.MustNewConstMetric(c.frame, prometheus.GaugeValue, snap.LastFrame.Seconds())
	ch <- prometheus.MustNewConstMetric(c.frameAvg, prometheus.GaugeValue, snap.FrameAvg.Seconds())
}

// MetricsHandler serves m in the Prometheus text format on /metrics and the
// expvar JSON on /debug/vars.
func MetricsHandler(m *Metrics) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewPrometheusCollector(m, "")); err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	return mux, nil
}
