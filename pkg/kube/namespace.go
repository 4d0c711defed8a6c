package kube

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/eda-labs/clab-connector/pkg/util"
)

var transactionRe = regexp.MustCompile(`Transaction (\d+)`)

// BootstrapNamespace creates an EDA namespace through edactl in the
// toolbox pod. Returns the transaction ID of the bootstrap commit, or
// an empty string when the namespace already exists or no transaction
// was reported.
func (c *Client) BootstrapNamespace(namespace string) (string, error) {
	pod, err := c.ToolboxPod()
	if err != nil {
		return "", err
	}
	out, err := c.Exec(SystemNamespace, pod, "edactl", "namespace", "bootstrap", namespace)
	if strings.Contains(out, "already exists") {
		util.Infof("Namespace %s already exists, skipping bootstrap", namespace)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("bootstrapping namespace %s: %w\n%s", namespace, err, out)
	}
	if m := transactionRe.FindStringSubmatch(out); m != nil {
		util.Infof("Created namespace %s (transaction %s)", namespace, m[1])
		return m[1], nil
	}
	util.Infof("Created namespace %s, no transaction ID reported", namespace)
	return "", nil
}

// WaitForNamespace polls until the namespace exists in the cluster.
func (c *Client) WaitForNamespace(namespace string, attempts int, delay time.Duration) error {
	for attempt := 1; attempt <= attempts; attempt++ {
		if _, _, err := c.run("", "get", "namespace", namespace); err == nil {
			util.Infof("Namespace %s is available", namespace)
			return nil
		}
		util.Debugf("Waiting for namespace %s (attempt %d/%d)", namespace, attempt, attempts)
		time.Sleep(delay)
	}
	return fmt.Errorf("timed out waiting for namespace %s", namespace)
}

// UpdateNamespaceDescription patches the description of an EDA
// namespace resource. The resource appears shortly after the namespace
// itself, so the patch is retried.
func (c *Client) UpdateNamespaceDescription(namespace, description string, attempts int, delay time.Duration) error {
	if _, _, err := c.run("", "get", "namespace", namespace); err != nil {
		return fmt.Errorf("namespace %s does not exist", namespace)
	}

	patch := fmt.Sprintf(`{"spec":{"description":%q}}`, description)
	for attempt := 1; attempt <= attempts; attempt++ {
		_, stderr, err := c.run("",
			"patch", "namespaces.core.eda.nokia.com", namespace,
			"-n", SystemNamespace, "--type=merge", "-p", patch)
		if err == nil {
			util.Debugf("Namespace %s description updated", namespace)
			return nil
		}
		util.Infof("EDA namespace %s not patchable yet (attempt %d/%d): %s",
			namespace, attempt, attempts, strings.TrimSpace(stderr))
		time.Sleep(delay)
	}
	return fmt.Errorf("could not update description of namespace %s after %d attempts",
		namespace, attempts)
}
