package integrate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/eda-labs/clab-connector/pkg/kube"
	"github.com/eda-labs/clab-connector/pkg/topology"
	"github.com/eda-labs/clab-connector/pkg/util"
)

var srosConfigureRe = regexp.MustCompile(`(?s)configure\s*\{(.*)\}`)

// prepareSROSNode imports the EDA-issued boot certificate into an SR OS
// node and replays its initial configuration, since SR OS cannot pull
// either on its own during onboarding.
func prepareSROSNode(k *kube.Client, namespace string, node topology.Node, passwords []string) error {
	name := node.ResourceName()
	util.WithNode(name).Info("Running SR OS post-integration")

	cert, key, config, err := fetchBootMaterial(k, namespace, name, node.Version())
	if err != nil {
		return err
	}

	m := srosConfigureRe.FindStringSubmatch(config)
	if m == nil {
		return fmt.Errorf("no configure block in initial configuration of %s", name)
	}
	innerConfig := strings.TrimSpace(m[1])

	session, err := dialNode(node.MgmtIPv4(), "admin", passwords)
	if err != nil {
		return err
	}
	defer session.Close()

	// Compact-flash storage is preferred; fall back to the root path
	// for platforms without cf3.
	root, err := uploadToFirstRoot(session, []string{"cf3:/", "/"}, map[string][]byte{
		"edaboot.crt": cert,
		"edaboot.key": key,
	})
	if err != nil {
		return err
	}

	commands := []string{
		"environment more false",
		"environment print-detail false",
		"environment confirmations false",
		fmt.Sprintf("admin system security pki import type certificate input-url %sedaboot.crt output-file edaboot.crt format pem", root),
		fmt.Sprintf("admin system security pki import type key input-url %sedaboot.key output-file edaboot.key format pem", root),
		"configure global",
	}
	commands = append(commands, strings.Split(innerConfig, "\n")...)
	commands = append(commands, "commit", "exit all")

	out, err := session.RunScript(commands, 500*time.Millisecond)
	if err != nil {
		return err
	}
	util.WithNode(name).Debugf("SR OS configuration output: %.500s", out)
	util.WithNode(name).Info("SR OS configuration completed")
	return nil
}

// fetchBootMaterial pulls the node's TLS certificate, key, and initial
// configuration out of the cluster.
func fetchBootMaterial(k *kube.Client, namespace, name, version string) (cert, key []byte, config string, err error) {
	secret := fmt.Sprintf("%s--%s-cert-tls", namespace, name)
	cert, err = k.SecretField(kube.SystemNamespace, secret, "tls.crt")
	if err != nil {
		return nil, nil, "", err
	}
	key, err = k.SecretField(kube.SystemNamespace, secret, "tls.key")
	if err != nil {
		return nil, nil, "", err
	}
	config, err = k.ArtifactContent(namespace, fmt.Sprintf("initcfg-%s-%s", name, version))
	if err != nil {
		return nil, nil, "", err
	}
	return cert, key, config, nil
}

// uploadToFirstRoot uploads every file under the first destination root
// that accepts all of them, returning that root.
func uploadToFirstRoot(session *nodeSession, roots []string, files map[string][]byte) (string, error) {
	var lastErr error
nextRoot:
	for _, root := range roots {
		for name, data := range files {
			if err := session.Upload(root+name, data); err != nil {
				util.Debugf("Upload of %s to %s failed: %v", name, root, err)
				lastErr = err
				continue nextRoot
			}
		}
		util.Debugf("Files uploaded to %s", root)
		return root, nil
	}
	return "", fmt.Errorf("uploading files to %s: %w", session.host, lastErr)
}
