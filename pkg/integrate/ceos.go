package integrate

import (
	"fmt"
	"time"

	"github.com/eda-labs/clab-connector/pkg/kube"
	"github.com/eda-labs/clab-connector/pkg/topology"
	"github.com/eda-labs/clab-connector/pkg/util"
)

// prepareCEOSNode replays the startup configuration on a cEOS node and
// installs the EDA boot certificate for the gNMI transports.
func prepareCEOSNode(k *kube.Client, namespace string, node topology.Node, passwords []string) error {
	name := node.ResourceName()
	util.WithNode(name).Info("Running cEOS post-integration")

	cert, key, config, err := fetchBootMaterial(k, namespace, name, node.Version())
	if err != nil {
		return err
	}

	session, err := dialNode(node.MgmtIPv4(), "admin", passwords)
	if err != nil {
		return err
	}
	defer session.Close()

	// SCP/SFTP towards EOS only works once exec authorization is local.
	enableSCP := []string{
		"enable",
		"configure terminal",
		"aaa authorization exec default local",
		"exit",
		"write",
	}
	if _, err := session.RunScript(enableSCP, 500*time.Millisecond); err != nil {
		return fmt.Errorf("enabling file transfer on %s: %w", name, err)
	}

	root, err := uploadToFirstRoot(session, []string{"/mnt/flash/", "/"}, map[string][]byte{
		"startup-config": []byte(config),
		"edaboot.crt":    cert,
		"edaboot.key":    key,
	})
	if err != nil {
		return err
	}

	commands := []string{
		"enable",
		"configure replace startup-config ignore-errors",
		fmt.Sprintf("copy file:%sedaboot.crt certificate:", root),
		fmt.Sprintf("copy file:%sedaboot.key sslkey:", root),
		"configure terminal",
		"management api gnmi",
		"    transport grpc discovery",
		"    ssl profile edaboot",
		"management api gnmi",
		"    transport grpc mgmt",
		"    ssl profile EDA",
		"exit",
		"write",
	}
	out, err := session.RunScript(commands, 500*time.Millisecond)
	if err != nil {
		return err
	}
	util.WithNode(name).Debugf("cEOS configuration output: %.500s", out)
	util.WithNode(name).Info("cEOS configuration completed")
	return nil
}
