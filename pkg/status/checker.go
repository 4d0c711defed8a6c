// Package status inspects the synchronization state of onboarded nodes
// and the overall health of an EDA deployment.
package status

import (
	"context"
	"strings"
	"time"

	"github.com/eda-labs/clab-connector/pkg/eda"
	"github.com/eda-labs/clab-connector/pkg/util"
)

// SyncStatus classifies how far along a node is in syncing with EDA.
type SyncStatus string

const (
	StatusUnknown SyncStatus = "unknown"
	StatusPending SyncStatus = "pending"
	StatusSyncing SyncStatus = "syncing"
	StatusReady   SyncStatus = "ready"
	StatusError   SyncStatus = "error"
)

// NodeStatus is the evaluated state of a single toponode.
type NodeStatus struct {
	Name      string
	Status    SyncStatus
	Detail    string
	NodeState string
	NPPState  string
}

// Ready reports whether the node has fully synced.
func (s NodeStatus) Ready() bool { return s.Status == StatusReady }

// Checker reads toponode state for one namespace through the EDA API.
type Checker struct {
	client    *eda.Client
	namespace string
}

// NewChecker returns a Checker for the given namespace.
func NewChecker(client *eda.Client, namespace string) *Checker {
	return &Checker{client: client, namespace: namespace}
}

func (c *Checker) toponodeEndpoints(suffix string) []string {
	return []string{
		"apps/core.eda.nokia.com/v1/namespaces/" + c.namespace + "/toponodes" + suffix,
		"core/topology/v1/namespaces/" + c.namespace + "/toponodes" + suffix,
		"api/core/v1/namespaces/" + c.namespace + "/toponodes" + suffix,
	}
}

// CheckNode fetches and evaluates the state of one node.
func (c *Checker) CheckNode(name string) NodeStatus {
	data, _ := c.client.TryEndpoints(c.toponodeEndpoints("/"+name), "TopoNode "+name)
	obj, _ := data.(map[string]any)
	if obj == nil {
		return NodeStatus{Name: name, Status: StatusUnknown, Detail: "no data available"}
	}
	return evaluateNode(name, obj)
}

// CheckAll evaluates the state of every named node.
func (c *Checker) CheckAll(names []string) []NodeStatus {
	util.Infof("Checking synchronization status for %d nodes", len(names))
	statuses := make([]NodeStatus, 0, len(names))
	for _, name := range names {
		statuses = append(statuses, c.CheckNode(name))
	}
	return statuses
}

// WaitForNodesReady polls until every node reports ready, logging
// status transitions as they happen. Returns false on timeout or
// context cancellation.
func (c *Checker) WaitForNodesReady(ctx context.Context, names []string, timeout, interval time.Duration) bool {
	util.Infof("Waiting for %d nodes to synchronize...", len(names))

	deadline := time.Now().Add(timeout)
	previous := map[string]SyncStatus{}
	reportedReady := map[string]bool{}

	for {
		statuses := c.CheckAll(names)

		ready := 0
		for _, s := range statuses {
			switch {
			case s.Ready():
				ready++
				if !reportedReady[s.Name] {
					util.Infof("Node %s is ready", s.Name)
					reportedReady[s.Name] = true
				}
			case previous[s.Name] != "" && previous[s.Name] != s.Status:
				switch s.Status {
				case StatusSyncing:
					util.Infof("Node %s is syncing...", s.Name)
				case StatusError:
					util.Errorf("Node %s error: %s", s.Name, s.Detail)
				case StatusPending:
					util.Infof("Node %s is pending...", s.Name)
				}
			}
			previous[s.Name] = s.Status
		}
		if ready == len(names) {
			return true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		wait := interval
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(wait):
		}
	}
}

// ListTopoNodes lists the toponode names in the checker's namespace.
func (c *Checker) ListTopoNodes() []string {
	data, path := c.client.TryEndpoints(c.toponodeEndpoints(""), "TopoNodes in "+c.namespace)
	if data == nil {
		return nil
	}
	names := eda.ExtractNames(data, nil)
	util.Infof("Found %d toponodes in namespace %s via %s", len(names), c.namespace, path)
	return names
}

// ListNamespaces lists containerlab-managed namespaces known to EDA.
func (c *Checker) ListNamespaces() []string {
	data, _ := c.client.TryEndpoints([]string{
		"apps/core.eda.nokia.com/v1/namespaces",
		"api/v1/namespaces",
	}, "namespaces")
	if data == nil {
		return nil
	}
	return eda.ExtractNames(data, func(name string) bool {
		return strings.HasPrefix(name, "clab-")
	})
}

// SuggestNamespace proposes an existing namespace close to the expected
// one, for error messages when the expected namespace is absent.
func (c *Checker) SuggestNamespace(expected string) string {
	available := c.ListNamespaces()
	if len(available) == 0 {
		return ""
	}
	want := strings.ToLower(strings.TrimPrefix(expected, "clab-"))
	for _, ns := range available {
		have := strings.ToLower(strings.TrimPrefix(ns, "clab-"))
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return ns
		}
	}
	return available[0]
}

// Summary counts node statuses by category.
type Summary struct {
	Total   int
	Ready   int
	Syncing int
	Pending int
	Errors  int
	Unknown int
}

// Summarize tallies a list of node statuses.
func Summarize(statuses []NodeStatus) Summary {
	s := Summary{Total: len(statuses)}
	for _, st := range statuses {
		switch st.Status {
		case StatusReady:
			s.Ready++
		case StatusSyncing:
			s.Syncing++
		case StatusPending:
			s.Pending++
		case StatusError:
			s.Errors++
		default:
			s.Unknown++
		}
	}
	return s
}

// evaluateNode maps a toponode API object to a NodeStatus.
func evaluateNode(name string, data map[string]any) NodeStatus {
	statusData, _ := data["status"].(map[string]any)
	if statusData == nil {
		// Nodes whose spec is active but carry no status yet are
		// in the middle of onboarding.
		spec, _ := data["spec"].(map[string]any)
		if state, _ := spec["state"].(string); state == "active" {
			return NodeStatus{Name: name, Status: StatusSyncing}
		}
		return NodeStatus{Name: name, Status: StatusUnknown, Detail: "no status data"}
	}

	nodeState, _ := statusData["node-state"].(string)
	nppState, _ := statusData["npp-state"].(string)
	nodeDetails, _ := statusData["node-details"].(string)
	nppDetails, _ := statusData["npp-details"].(string)

	status, detail := evaluateStates(name, nodeState, nppState, nodeDetails, nppDetails)
	return NodeStatus{
		Name:      name,
		Status:    status,
		Detail:    detail,
		NodeState: nodeState,
		NPPState:  nppState,
	}
}

// evaluateStates maps the raw node and NPP states to a SyncStatus and
// an optional detail message.
func evaluateStates(name, nodeState, nppState, nodeDetails, nppDetails string) (SyncStatus, string) {
	status := StatusUnknown
	detail := ""

	switch {
	case nodeState == "Synced":
		status = StatusReady
	case nodeState == "Committing" || nodeState == "RetryingCommit":
		status = StatusSyncing
	case nodeState == "TryingToConnect" || nodeState == "WaitingForInitialCfg":
		status = StatusPending
	case nodeState == "Standby":
		status = StatusPending
		detail = "node in standby mode"
	case nodeState == "NoIpAddress":
		status = StatusError
		detail = "no IP address available"
	case nodeState != "":
		status = StatusPending
		util.Debugf("Node %s has unrecognized node-state %q, treating as pending", name, nodeState)
	case nppState == "Connected":
		status = StatusSyncing
	case nppState != "":
		status = StatusPending
	default:
		util.Debugf("Node %s has no node-state or npp-state", name)
	}

	details := strings.ToLower(nodeDetails + " " + nppDetails)
	if strings.Contains(details, "error") {
		status = StatusError
		detail = strings.TrimSpace("node details: " + nodeDetails + ", npp details: " + nppDetails)
	}
	return status, detail
}
