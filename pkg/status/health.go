package status

import (
	"fmt"
	"strings"

	"github.com/eda-labs/clab-connector/pkg/eda"
	"github.com/eda-labs/clab-connector/pkg/kube"
)

// HealthStatus grades a single health check result.
type HealthStatus string

const (
	Healthy   HealthStatus = "healthy"
	Degraded  HealthStatus = "degraded"
	Unhealthy HealthStatus = "unhealthy"
	Unknown   HealthStatus = "unknown"
)

// ComponentHealth is the outcome of one health check.
type ComponentHealth struct {
	Name    string
	Status  HealthStatus
	Message string
}

// EDA major versions this connector is known to work with.
var supportedMajorVersions = map[string]bool{"24": true, "25": true, "26": true}

// HealthChecker probes EDA reachability, credentials, version support
// and, when a kube client is given, the cluster underneath.
type HealthChecker struct {
	eda  *eda.Client
	kube *kube.Client
}

// NewHealthChecker returns a checker. Pass a nil kube client to skip
// the cluster checks.
func NewHealthChecker(edaClient *eda.Client, kubeClient *kube.Client) *HealthChecker {
	return &HealthChecker{eda: edaClient, kube: kubeClient}
}

// Run executes all health checks in order and returns their results.
func (h *HealthChecker) Run() []ComponentHealth {
	results := []ComponentHealth{
		h.checkConnectivity(),
		h.checkAuthentication(),
		h.checkVersion(),
	}
	if h.kube != nil {
		results = append(results, h.checkCluster())
	}
	return results
}

func (h *HealthChecker) checkConnectivity() ComponentHealth {
	c := ComponentHealth{Name: "EDA Connectivity"}
	if h.eda.IsUp() {
		c.Status, c.Message = Healthy, "EDA is reachable"
	} else {
		c.Status, c.Message = Unhealthy, "EDA is not reachable"
	}
	return c
}

func (h *HealthChecker) checkAuthentication() ComponentHealth {
	c := ComponentHealth{Name: "EDA Authentication"}
	if h.eda.IsAuthenticated() {
		c.Status, c.Message = Healthy, "authentication successful"
	} else {
		c.Status, c.Message = Unhealthy, "authentication failed"
	}
	return c
}

func (h *HealthChecker) checkVersion() ComponentHealth {
	c := ComponentHealth{Name: "EDA Version"}
	version, err := h.eda.Version()
	if err != nil {
		c.Status, c.Message = Unhealthy, fmt.Sprintf("version check failed: %v", err)
		return c
	}
	major, _, _ := strings.Cut(strings.TrimPrefix(version, "v"), ".")
	if supportedMajorVersions[major] {
		c.Status, c.Message = Healthy, fmt.Sprintf("version %s is supported", version)
	} else {
		c.Status, c.Message = Degraded, fmt.Sprintf("version %s may not be fully supported", version)
	}
	return c
}

func (h *HealthChecker) checkCluster() ComponentHealth {
	c := ComponentHealth{Name: "Kubernetes Cluster"}
	ready, total, err := h.kube.NodesReady()
	switch {
	case err != nil:
		c.Status, c.Message = Unhealthy, fmt.Sprintf("cluster check failed: %v", err)
	case total == 0 || ready == 0:
		c.Status, c.Message = Unhealthy, "no nodes are ready"
	case ready < total:
		c.Status, c.Message = Degraded, fmt.Sprintf("%d/%d nodes ready", ready, total)
	default:
		c.Status, c.Message = Healthy, fmt.Sprintf("all %d nodes ready", total)
	}
	return c
}

// Overall folds component results into a single grade. Any unhealthy
// component makes the whole deployment unhealthy; degraded or unknown
// components degrade it.
func Overall(results []ComponentHealth) HealthStatus {
	if len(results) == 0 {
		return Unknown
	}
	overall := Healthy
	for _, r := range results {
		switch r.Status {
		case Unhealthy:
			return Unhealthy
		case Degraded, Unknown:
			overall = Degraded
		}
	}
	return overall
}
