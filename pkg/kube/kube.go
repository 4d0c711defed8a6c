// Package kube accesses the cluster hosting EDA through the kubectl
// binary, so the connector works with whatever kubeconfig or in-cluster
// context the operator already has.
package kube

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/eda-labs/clab-connector/pkg/util"
)

// SystemNamespace holds the EDA platform pods and artifacts.
const SystemNamespace = "eda-system"

const (
	toolboxSelector = "eda.nokia.com/app=eda-toolbox"
	bsvrSelector    = "eda.nokia.com/app=bootstrapserver"
)

// Client shells out to kubectl. The zero value is not usable; call
// NewClient.
type Client struct {
	kubectl string

	// Extraction retry knobs, tuned down in tests.
	extractRetries int
	extractDelay   time.Duration
}

// NewClient returns a client using the kubectl found on PATH.
func NewClient() *Client {
	return &Client{
		kubectl:        "kubectl",
		extractRetries: 20,
		extractDelay:   2 * time.Second,
	}
}

// NewClientWithBinary returns a client using a specific kubectl
// binary instead of the one on PATH.
func NewClientWithBinary(path string) *Client {
	c := NewClient()
	c.kubectl = path
	return c
}

// run executes kubectl with the given arguments, feeding stdin when
// non-empty, and returns stdout and stderr separately.
func (c *Client) run(stdin string, args ...string) (string, string, error) {
	util.Debugf("Running %s %s", c.kubectl, strings.Join(args, " "))

	cmd := exec.Command(c.kubectl, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// PodByLabel returns the name of the first pod matching the label
// selector in the namespace.
func (c *Client) PodByLabel(namespace, selector string) (string, error) {
	stdout, stderr, err := c.run("",
		"get", "pods", "-n", namespace, "-l", selector,
		"-o", "jsonpath={.items[*].metadata.name}")
	if err != nil {
		return "", util.NewConnectionError("kubectl", strings.TrimSpace(stderr))
	}
	names := strings.Fields(stdout)
	if len(names) == 0 {
		return "", fmt.Errorf("no pod matching %s in namespace %s: %w",
			selector, namespace, util.ErrNotFound)
	}
	return names[0], nil
}

// ToolboxPod returns the EDA toolbox pod, which carries edactl.
func (c *Client) ToolboxPod() (string, error) {
	return c.PodByLabel(SystemNamespace, toolboxSelector)
}

// BootstrapServerPod returns the EDA bootstrap server pod.
func (c *Client) BootstrapServerPod() (string, error) {
	return c.PodByLabel(SystemNamespace, bsvrSelector)
}

// Exec runs a command inside a pod and returns its combined output.
// The output is returned even when the command fails, so callers can
// inspect it.
func (c *Client) Exec(namespace, pod string, command ...string) (string, error) {
	args := append([]string{"exec", "-n", namespace, pod, "--"}, command...)
	stdout, stderr, err := c.run("", args...)
	return stdout + stderr, err
}

// PingFromBootstrapServer sends a single ping to the target IP from the
// bootstrap server pod, verifying that EDA can reach a node's
// management address.
func (c *Client) PingFromBootstrapServer(targetIP string) bool {
	util.Debugf("Pinging %s from the bootstrap server pod", targetIP)
	pod, err := c.BootstrapServerPod()
	if err != nil {
		util.Errorf("Ping to %s failed: %v", targetIP, err)
		return false
	}
	out, _ := c.Exec(SystemNamespace, pod, "ping", "-c", "1", targetIP)
	if strings.Contains(out, "1 packets transmitted, 1 received") {
		util.Infof("Ping from bootstrap server to %s succeeded", targetIP)
		return true
	}
	util.Errorf("Ping from bootstrap server to %s failed:\n%s", targetIP, out)
	return false
}

// NodesReady counts cluster nodes and how many of them report Ready.
func (c *Client) NodesReady() (ready, total int, err error) {
	stdout, stderr, err := c.run("", "get", "nodes", "--no-headers")
	if err != nil {
		return 0, 0, util.NewConnectionError("kubectl", strings.TrimSpace(stderr))
	}
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		total++
		// The status column may read "Ready,SchedulingDisabled".
		if strings.HasPrefix(fields[1], "Ready") {
			ready++
		}
	}
	return ready, total, nil
}

// RevertCommit reverts an EDA git commit through edactl in the toolbox
// pod.
func (c *Client) RevertCommit(commitHash string) bool {
	pod, err := c.ToolboxPod()
	if err != nil {
		util.Errorf("Failed to revert commit %s: %v", commitHash, err)
		return false
	}
	out, err := c.Exec(SystemNamespace, pod, "edactl", "git", "revert", commitHash)
	if strings.Contains(out, "Successfully reverted commit") {
		util.Infof("Successfully reverted commit %s", commitHash)
		return true
	}
	util.Errorf("Failed to revert commit %s: %v\n%s", commitHash, err, out)
	return false
}
