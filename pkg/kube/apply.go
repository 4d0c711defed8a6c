package kube

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eda-labs/clab-connector/pkg/util"
)

// ApplyError is returned when a manifest cannot be created. Callers
// decide whether an existing resource is a problem by checking
// AlreadyExists instead of parsing kubectl output themselves.
type ApplyError struct {
	Kind          string
	Namespace     string
	Output        string
	AlreadyExists bool
}

func (e *ApplyError) Error() string {
	if e.AlreadyExists {
		return fmt.Sprintf("%s already exists in namespace %s", e.Kind, e.Namespace)
	}
	return fmt.Sprintf("applying %s to namespace %s: %s", e.Kind, e.Namespace, e.Output)
}

func (e *ApplyError) Unwrap() error {
	if e.AlreadyExists {
		return util.ErrAlreadyExists
	}
	return nil
}

// ApplyManifest creates a YAML manifest in the given namespace. The
// manifest must carry apiVersion and kind. Failures come back as an
// *ApplyError.
func (c *Client) ApplyManifest(manifest, namespace string) error {
	var head struct {
		APIVersion string `yaml:"apiVersion"`
		Kind       string `yaml:"kind"`
	}
	if err := yaml.Unmarshal([]byte(manifest), &head); err != nil {
		return fmt.Errorf("parsing manifest: %w", err)
	}
	if head.APIVersion == "" || head.Kind == "" {
		return fmt.Errorf("manifest must specify apiVersion and kind")
	}

	_, stderr, err := c.run(manifest, "create", "-n", namespace, "-f", "-")
	if err != nil {
		return &ApplyError{
			Kind:          head.Kind,
			Namespace:     namespace,
			Output:        strings.TrimSpace(stderr),
			AlreadyExists: strings.Contains(stderr, "AlreadyExists") || strings.Contains(stderr, "already exists"),
		}
	}
	util.Infof("Applied %s to namespace %s", head.Kind, namespace)
	return nil
}
