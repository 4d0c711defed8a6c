package kube

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/eda-labs/clab-connector/pkg/util"
)

// SecretField reads one field of a secret and decodes it. Freshly
// issued node certificates can be momentarily empty, so the read is
// retried until the field has content.
func (c *Client) SecretField(namespace, secret, field string) ([]byte, error) {
	jsonpath := fmt.Sprintf("jsonpath={.data.%s}", strings.ReplaceAll(field, ".", `\.`))
	encoded, err := c.extract("secret "+secret+" field "+field,
		"get", "secret", secret, "-n", namespace, "-o", jsonpath)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding %s of secret %s: %w", field, secret, err)
	}
	return data, nil
}

// ArtifactContent reads the text content of an EDA artifact, such as a
// node's initial configuration.
func (c *Client) ArtifactContent(namespace, artifact string) (string, error) {
	content, err := c.extract("artifact "+artifact,
		"get", "artifact", artifact, "-n", namespace,
		"-o", "jsonpath={.spec.textFile.content}")
	if err != nil {
		return "", err
	}
	// The artifact stores newlines as literal \n sequences.
	return strings.ReplaceAll(content, `\n`, "\n"), nil
}

// extract runs a kubectl read until it yields non-empty output.
func (c *Client) extract(what string, args ...string) (string, error) {
	for attempt := 1; attempt <= c.extractRetries; attempt++ {
		stdout, stderr, err := c.run("", args...)
		if err == nil && strings.TrimSpace(stdout) != "" {
			if attempt > 1 {
				util.Infof("Extracting %s succeeded on attempt %d/%d", what, attempt, c.extractRetries)
			}
			return strings.TrimSpace(stdout), nil
		}
		if attempt == c.extractRetries {
			return "", fmt.Errorf("extracting %s: empty after %d attempts: %s",
				what, c.extractRetries, strings.TrimSpace(stderr))
		}
		util.Warnf("Extracting %s returned nothing (attempt %d/%d), retrying",
			what, attempt, c.extractRetries)
		time.Sleep(c.extractDelay)
	}
	return "", fmt.Errorf("extracting %s failed", what)
}
