package kube

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eda-labs/clab-connector/pkg/util"
)

// stubClient returns a Client whose kubectl is a shell script, so the
// command-level behavior can be tested without a cluster.
func stubClient(t *testing.T, script string) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kubectl")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return &Client{
		kubectl:        path,
		extractRetries: 3,
		extractDelay:   time.Millisecond,
	}
}

func TestPodByLabel(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		c := stubClient(t, `printf 'eda-toolbox-abc eda-toolbox-def'`)
		pod, err := c.PodByLabel(SystemNamespace, toolboxSelector)
		if err != nil {
			t.Fatalf("PodByLabel: %v", err)
		}
		if pod != "eda-toolbox-abc" {
			t.Errorf("pod = %q, want eda-toolbox-abc", pod)
		}
	})

	t.Run("none", func(t *testing.T) {
		c := stubClient(t, `printf ''`)
		_, err := c.PodByLabel(SystemNamespace, bsvrSelector)
		if !errors.Is(err, util.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestApplyManifest(t *testing.T) {
	manifest := "apiVersion: artifacts.eda.nokia.com/v1\nkind: Artifact\nmetadata:\n  name: x\n"

	t.Run("success", func(t *testing.T) {
		c := stubClient(t, `cat >/dev/null; exit 0`)
		if err := c.ApplyManifest(manifest, SystemNamespace); err != nil {
			t.Errorf("ApplyManifest: %v", err)
		}
	})

	t.Run("already exists", func(t *testing.T) {
		c := stubClient(t, `cat >/dev/null; echo 'Error from server (AlreadyExists): artifacts "x" already exists' >&2; exit 1`)
		err := c.ApplyManifest(manifest, SystemNamespace)
		var applyErr *ApplyError
		if !errors.As(err, &applyErr) {
			t.Fatalf("err = %v, want *ApplyError", err)
		}
		if !applyErr.AlreadyExists {
			t.Errorf("AlreadyExists = false, output: %s", applyErr.Output)
		}
		if !errors.Is(err, util.ErrAlreadyExists) {
			t.Error("error should unwrap to ErrAlreadyExists")
		}
	})

	t.Run("server error", func(t *testing.T) {
		c := stubClient(t, `cat >/dev/null; echo 'Error from server: forbidden' >&2; exit 1`)
		err := c.ApplyManifest(manifest, SystemNamespace)
		var applyErr *ApplyError
		if !errors.As(err, &applyErr) {
			t.Fatalf("err = %v, want *ApplyError", err)
		}
		if applyErr.AlreadyExists {
			t.Error("AlreadyExists should be false for other server errors")
		}
	})

	t.Run("missing kind", func(t *testing.T) {
		c := stubClient(t, `exit 0`)
		if err := c.ApplyManifest("metadata:\n  name: x\n", SystemNamespace); err == nil {
			t.Error("expected error for manifest without apiVersion/kind")
		}
	})
}

func TestBootstrapNamespace(t *testing.T) {
	tests := []struct {
		name   string
		script string
		wantTx string
	}{
		{
			name:   "created",
			script: `echo 'Transaction 117 committed'`,
			wantTx: "117",
		},
		{
			name:   "already exists",
			script: `echo 'namespace clab-lab1 already exists'`,
			wantTx: "",
		},
		{
			name:   "no transaction reported",
			script: `echo 'namespace created'`,
			wantTx: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := stubClient(t, tt.script)
			tx, err := c.BootstrapNamespace("clab-lab1")
			if err != nil {
				t.Fatalf("BootstrapNamespace: %v", err)
			}
			if tx != tt.wantTx {
				t.Errorf("tx = %q, want %q", tx, tt.wantTx)
			}
		})
	}
}

func TestWaitForNamespace(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		c := stubClient(t, `exit 0`)
		if err := c.WaitForNamespace("clab-lab1", 2, time.Millisecond); err != nil {
			t.Errorf("WaitForNamespace: %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		c := stubClient(t, `exit 1`)
		if err := c.WaitForNamespace("clab-lab1", 2, time.Millisecond); err == nil {
			t.Error("expected timeout error")
		}
	})
}

func TestPingFromBootstrapServer(t *testing.T) {
	t.Run("reachable", func(t *testing.T) {
		c := stubClient(t, `
case "$*" in
*"get pods"*) printf 'bsvr-abc' ;;
*ping*) echo '1 packets transmitted, 1 received, 0% packet loss' ;;
esac`)
		if !c.PingFromBootstrapServer("10.58.2.10") {
			t.Error("expected ping to succeed")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		c := stubClient(t, `
case "$*" in
*"get pods"*) printf 'bsvr-abc' ;;
*ping*) echo '1 packets transmitted, 0 received, 100% packet loss'; exit 1 ;;
esac`)
		if c.PingFromBootstrapServer("10.58.2.99") {
			t.Error("expected ping to fail")
		}
	})
}

func TestRevertCommit(t *testing.T) {
	c := stubClient(t, `
case "$*" in
*"get pods"*) printf 'eda-toolbox-abc' ;;
*revert*) echo 'Successfully reverted commit abc123' ;;
esac`)
	if !c.RevertCommit("abc123") {
		t.Error("expected revert to succeed")
	}
}

func TestSecretField(t *testing.T) {
	// base64 of "CERTDATA"
	c := stubClient(t, `printf 'Q0VSVERBVEE='`)
	data, err := c.SecretField(SystemNamespace, "clab-lab1--leaf1-cert-tls", "tls.crt")
	if err != nil {
		t.Fatalf("SecretField: %v", err)
	}
	if string(data) != "CERTDATA" {
		t.Errorf("data = %q, want CERTDATA", data)
	}
}

func TestSecretFieldEmpty(t *testing.T) {
	c := stubClient(t, `printf ''`)
	if _, err := c.SecretField(SystemNamespace, "missing-secret", "tls.crt"); err == nil {
		t.Error("expected error for persistently empty secret field")
	}
}

func TestArtifactContent(t *testing.T) {
	c := stubClient(t, `printf 'configure {\\n  system\\n}'`)
	content, err := c.ArtifactContent("clab-lab1", "initcfg-leaf1-24.10.1")
	if err != nil {
		t.Fatalf("ArtifactContent: %v", err)
	}
	want := "configure {\n  system\n}"
	if content != want {
		t.Errorf("content = %q, want %q", content, want)
	}
}
