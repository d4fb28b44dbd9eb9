package domain

// HealthStatus is the aggregated status of a component.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "Healthy"
	HealthDegraded  HealthStatus = "Degraded"
	HealthUnhealthy HealthStatus = "Unhealthy"
)

// ComponentHealth is the status of one dependency.
type ComponentHealth struct {
	Status      HealthStatus `json:"status"`
	Description string       `json:"description"`
}

// HealthReport aggregates the status of every checked dependency.
// The overall status is the worst component status.
type HealthReport struct {
	Status     HealthStatus               `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}

func (s HealthStatus) rank() int {
	switch s {
	case HealthUnhealthy:
		return 2
	case HealthDegraded:
		return 1
	default:
		return 0
	}
}

// Add records a component status and lowers the overall status when needed.
func (r *HealthReport) Add(name string, c ComponentHealth) {
	if r.Components == nil {
		r.Components = make(map[string]ComponentHealth)
	}
	r.Components[name] = c
	if r.Status == "" || c.Status.rank() > r.Status.rank() {
		r.Status = c.Status
	}
}
