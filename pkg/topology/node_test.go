package topology

import "testing"

func TestSRLInterfaceName(t *testing.T) {
	n := newNode("leaf1", "nokia_srlinux", "", "24.10.1", "10.0.0.1")
	tests := []struct {
		in   string
		want string
	}{
		{"e1-1", "ethernet-1-1"},
		{"e2-3", "ethernet-2-3"},
		{"e10-24", "ethernet-10-24"},
		{"ethernet-1-1", "ethernet-1-1"},
		{"mgmt0", "mgmt0"},
		{"e1-1-1", "e1-1-1"},
	}
	for _, tt := range tests {
		if got := n.InterfaceName(tt.in); got != tt.want {
			t.Errorf("InterfaceName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSROSInterfaceName(t *testing.T) {
	n := newNode("dcgw1", "nokia_sros", "sr-1", "25.3.r2", "10.0.0.2")
	tests := []struct {
		in   string
		want string
	}{
		{"1/1/1", "ethernet-1-a-1-1"},
		{"1/2/3", "ethernet-1-b-3-1"},
		{"2/1/5", "ethernet-2-a-5-1"},
		{"1/1/c3/2", "ethernet-1-3-2"},
		{"1/2/c3/4", "ethernet-1-b-3-4"},
		{"1/x2/3/4", "ethernet-1-2-c-4"},
		{"eth3", "ethernet-1-a-3-1"},
		{"e1-2", "ethernet-1-a-2-1"},
		{"lo0", "loopback-0"},
		{"lag-10", "lag-10"},
		{"unknown0", "unknown0"},
	}
	for _, tt := range tests {
		if got := n.InterfaceName(tt.in); got != tt.want {
			t.Errorf("InterfaceName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSROSTopolinkInterfaceName(t *testing.T) {
	n := newNode("dcgw1", "nokia_sros", "sr-1", "25.3.r2", "10.0.0.2")
	if got := n.TopolinkInterfaceName("1/1/1"); got != "dcgw1-1-a-1-1" {
		t.Errorf("TopolinkInterfaceName(1/1/1) = %q, want dcgw1-1-a-1-1", got)
	}
	if got := n.TopolinkInterfaceName("lo0"); got != "dcgw1-loopback-0" {
		t.Errorf("TopolinkInterfaceName(lo0) = %q, want dcgw1-loopback-0", got)
	}
}

func TestCEOSInterfaceName(t *testing.T) {
	n := newNode("ceos1", "ceos", "", "4.33.2f", "10.0.0.3")
	tests := []struct {
		in   string
		want string
	}{
		{"eth1_2", "ethernet-1-2"},
		{"et2_3", "ethernet-2-3"},
		{"eth5", "ethernet-5-1"},
		{"et7", "ethernet-7-1"},
		{"ethernet-1-1", "ethernet-1-1"},
		{"mgmt0", "mgmt0"},
	}
	for _, tt := range tests {
		if got := n.InterfaceName(tt.in); got != tt.want {
			t.Errorf("InterfaceName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCEOSLinkToken(t *testing.T) {
	n := newNode("ceos1", "ceos", "", "4.33.2f", "10.0.0.3")
	tests := []struct {
		in   string
		want string
	}{
		{"eth1_1", "eth1_1"},
		{"eth1", "eth1_1"},
		{"et2", "et2_1"},
		{"ethernet-1-2", "eth1_2"},
	}
	for _, tt := range tests {
		if got := n.LinkToken(tt.in); got != tt.want {
			t.Errorf("LinkToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	// eth1 and eth1_1 must resolve to the same token so link names stay
	// stable across spelling variants.
	if n.LinkToken("eth1") != n.LinkToken("eth1_1") {
		t.Error("eth1 and eth1_1 should produce the same link token")
	}
}

func TestInterfaceNameIdempotent(t *testing.T) {
	nodes := []Node{
		newNode("leaf1", "nokia_srlinux", "", "24.10.1", ""),
		newNode("dcgw1", "nokia_sros", "sr-1", "25.3.r2", ""),
		newNode("ceos1", "ceos", "", "4.33.2f", ""),
	}
	inputs := []string{"e1-1", "1/1/1", "eth1_2", "eth3", "lo0", "lag-10"}
	for _, n := range nodes {
		for _, in := range inputs {
			once := n.InterfaceName(in)
			twice := n.InterfaceName(once)
			if once != twice {
				t.Errorf("%s: InterfaceName not stable for %q: %q then %q",
					n.Kind(), in, once, twice)
			}
		}
	}
}

func TestNodeDefaults(t *testing.T) {
	srl := newNode("leaf1", "nokia_srlinux", "", "24.10.1", "")
	if srl.NodeType() != "ixrd3l" {
		t.Errorf("SRL default type = %q, want ixrd3l", srl.NodeType())
	}
	if srl.Platform() != "7220 IXR-D3L" {
		t.Errorf("SRL platform = %q, want 7220 IXR-D3L", srl.Platform())
	}

	sros := newNode("dcgw1", "nokia_sros", "sr-1", "25.3.R2", "")
	if sros.Version() != "25.3.r2" {
		t.Errorf("SROS version should be lowercased, got %q", sros.Version())
	}
	if sros.Platform() != "7750 SR-1" {
		t.Errorf("SROS platform = %q, want 7750 SR-1", sros.Platform())
	}

	generic := newNode("host1", "linux", "", "", "")
	if generic.Supported() {
		t.Error("linux node should not be supported")
	}
	if generic.Platform() != "UNKNOWN" {
		t.Errorf("generic platform = %q, want UNKNOWN", generic.Platform())
	}
}

func TestRoleForName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"leaf1", "leaf"},
		{"spine2", "spine"},
		{"borderleaf1", "borderleaf"},
		{"bl3", "borderleaf"},
		{"dcgw1", "dcgw"},
		{"node7", "leaf"},
	}
	for _, tt := range tests {
		if got := roleForName(tt.name); got != tt.want {
			t.Errorf("roleForName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestArtifactInfo(t *testing.T) {
	t.Run("known version", func(t *testing.T) {
		n := newNode("leaf1", "nokia_srlinux", "", "24.10.1", "")
		name, filename, url := n.ArtifactInfo()
		if name != "clab-srlinux-24.10.1" {
			t.Errorf("artifact name = %q", name)
		}
		if filename != "srlinux-24.10.1.zip" {
			t.Errorf("filename = %q", filename)
		}
		if url == "" {
			t.Error("url should not be empty")
		}
	})

	t.Run("unknown version", func(t *testing.T) {
		n := newNode("leaf1", "nokia_srlinux", "", "1.0.0", "")
		name, filename, url := n.ArtifactInfo()
		if name != "" || filename != "" || url != "" {
			t.Errorf("expected empty info for unknown version, got %q %q %q", name, filename, url)
		}
	})
}
