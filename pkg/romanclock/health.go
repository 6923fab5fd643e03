package romanclock

import (
	"fmt"
	"time"
)

// HealthStatus is the overall state of a component.
type HealthStatus string

const (
	HealthOK        HealthStatus = "ok"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck is the result of Wallpaper.Health.
type HealthCheck struct {
	Status     HealthStatus
	Timestamp  time.Time
	Uptime     time.Duration
	Components map[string]ComponentHealth
	Message    string
}

// ComponentHealth is the state of one part of the wallpaper.
type ComponentHealth struct {
	Status  HealthStatus
	Message string
}

// IsHealthy reports whether the overall status is HealthOK.
func (h HealthCheck) IsHealthy() bool { return h.Status == HealthOK }

// IsDegraded reports whether the overall status is HealthDegraded.
func (h HealthCheck) IsDegraded() bool { return h.Status == HealthDegraded }

// IsUnhealthy reports whether the overall status is HealthUnhealthy.
func (h HealthCheck) IsUnhealthy() bool { return h.Status == HealthUnhealthy }

// healthInput is what buildHealth needs from a wallpaper.
type healthInput struct {
	now           time.Time
	running       bool
	visible       bool
	startTime     time.Time
	frames        int64
	imagesSkipped int64
	lastErr       error
}

func buildHealth(in healthInput) HealthCheck {
	components := make(map[string]ComponentHealth, 3)

	var uptime time.Duration
	if in.running && !in.startTime.IsZero() {
		uptime = in.now.Sub(in.startTime)
	}

	switch {
	case in.running && in.visible:
		components["renderer"] = ComponentHealth{HealthOK, fmt.Sprintf("rendering, %d frames drawn", in.frames)}
	case in.running:
		components["renderer"] = ComponentHealth{HealthOK, "paused while hidden"}
	default:
		components["renderer"] = ComponentHealth{HealthUnhealthy, "not running"}
	}

	if in.imagesSkipped > 0 {
		components["images"] = ComponentHealth{HealthDegraded, fmt.Sprintf("%d image draws skipped", in.imagesSkipped)}
	} else {
		components["images"] = ComponentHealth{HealthOK, "all images drawn"}
	}

	if in.lastErr != nil {
		components["errors"] = ComponentHealth{HealthDegraded, in.lastErr.Error()}
	} else {
		components["errors"] = ComponentHealth{HealthOK, "no recent errors"}
	}

	status, message := HealthOK, "all components healthy"
	switch {
	case !in.running:
		status, message = HealthUnhealthy, "wallpaper is not running"
	case in.lastErr != nil:
		status, message = HealthDegraded, "running with recent errors"
	case in.imagesSkipped > 0:
		status, message = HealthDegraded, "running with missing images"
	}

	return HealthCheck{
		Status:     status,
		Timestamp:  in.now,
		Uptime:     uptime,
		Components: components,
		Message:    message,
	}
}
