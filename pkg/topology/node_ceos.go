package topology

import (
	"fmt"
	"regexp"

	"github.com/eda-labs/clab-connector/pkg/render"
	"github.com/eda-labs/clab-connector/pkg/util"
)

const (
	ceosGnmiPort = "50051"
	ceosOS       = "eos"
)

// ceosSchemaProfiles maps cEOS versions to published YANG schema bundles.
var ceosSchemaProfiles = map[string]string{
	"4.33.2f": "https://github.com/hellt/tmp/releases/download/v0.0.1-test1/eos-4.33.2f.zip",
}

var (
	ceosCanonical = regexp.MustCompile(`(?i)^ethernet-(\d+)-(\d+)$`)
	ceosLong      = regexp.MustCompile(`^[a-zA-Z]+(\d+)_(\d+)$`)
	ceosShort     = regexp.MustCompile(`(?i)^(eth|et)(\d+)$`)
	ceosLongToken = regexp.MustCompile(`(?i)^(?:eth|et)\d+_\d+$`)
)

// ceosNode is an Arista cEOS device.
type ceosNode struct {
	baseNode
}

func (n *ceosNode) Supported() bool { return true }

func (n *ceosNode) Platform() string { return "EOS" }

func (n *ceosNode) ProfileName(t *Topology) string {
	return fmt.Sprintf("%s-ceos-%s", t.SafeName(), n.version)
}

func (n *ceosNode) NodeProfileYAML(t *Topology) (string, error) {
	util.Debugf("Rendering node profile for %s", n.name)
	filename := fmt.Sprintf("eos-%s.zip", n.version)
	return render.Render("node-profile.yaml.tmpl", render.NodeProfile{
		Namespace:          t.Namespace(),
		Name:               n.ProfileName(t),
		OperatingSystem:    ceosOS,
		Version:            n.version,
		GnmiPort:           ceosGnmiPort,
		YangPath:           schemaProfileURL(n.ArtifactName(), filename),
		Annotate:           "false",
		NodeUser:           "admin-ceos",
		OnboardingUsername: "admin",
		OnboardingPassword: "admin",
	})
}

func (n *ceosNode) TopoNodeYAML(t *Topology) (string, error) {
	util.Debugf("Creating toponode for %s", n.name)
	mgmtIP := n.mgmtIPv4
	if mgmtIP != "" {
		mgmtIP = fmt.Sprintf("%s/%d", mgmtIP, t.mgmtPrefixLength())
	}
	return render.Render("toponode.yaml.tmpl", render.TopoNode{
		Namespace:    t.Namespace(),
		Name:         n.ResourceName(),
		Topology:     t.SafeName(),
		Role:         roleForName(n.name),
		NodeProfile:  n.ProfileName(t),
		Kind:         ceosOS,
		Platform:     n.Platform(),
		Version:      n.version,
		MgmtIP:       mgmtIP,
		ContainerLab: "managedEos",
	})
}

// InterfaceName converts containerlab cEOS spellings to the canonical form:
//
//	eth1_2 -> ethernet-1-2
//	et2_3  -> ethernet-2-3
//	eth5   -> ethernet-5-1
//	ethernet-1-1 passes through unchanged
func (n *ceosNode) InterfaceName(ifname string) string {
	if m := ceosCanonical.FindStringSubmatch(ifname); m != nil {
		return fmt.Sprintf("ethernet-%s-%s", m[1], m[2])
	}
	if m := ceosLong.FindStringSubmatch(ifname); m != nil {
		return fmt.Sprintf("ethernet-%s-%s", m[1], m[2])
	}
	if m := ceosShort.FindStringSubmatch(ifname); m != nil {
		return fmt.Sprintf("ethernet-%s-1", m[2])
	}
	return ifname
}

// LinkToken keeps TopoLink names stable across interface spelling variants
// by resolving every spelling to the containerlab long form (ethX_Y).
func (n *ceosNode) LinkToken(ifname string) string {
	if ceosLongToken.MatchString(ifname) {
		return ifname
	}
	if m := ceosShort.FindStringSubmatch(ifname); m != nil {
		return fmt.Sprintf("%s%s_1", m[1], m[2])
	}
	if m := ceosCanonical.FindStringSubmatch(ifname); m != nil {
		return fmt.Sprintf("eth%s_%s", m[1], m[2])
	}
	return ifname
}

func (n *ceosNode) TopolinkInterfaceName(ifname string) string {
	return n.ResourceName() + "-" + n.InterfaceName(ifname)
}

func (n *ceosNode) TopolinkInterfaceYAML(t *Topology, ifname string, peer Node) (string, error) {
	util.Debugf("Creating topolink interface for %s", n.name)
	role, desc := interfaceRole(peer)
	return render.Render("interface.yaml.tmpl", render.Interface{
		Namespace:   t.Namespace(),
		Name:        n.TopolinkInterfaceName(ifname),
		LabelKey:    "eda.nokia.com/role",
		LabelValue:  role,
		EncapType:   "'null'",
		NodeName:    n.ResourceName(),
		Interface:   n.InterfaceName(ifname),
		Description: desc,
	})
}

func (n *ceosNode) NeedsArtifact() bool { return true }

func (n *ceosNode) ArtifactName() string {
	return "clab-eos-" + n.version
}

func (n *ceosNode) ArtifactInfo() (string, string, string) {
	url, ok := ceosSchemaProfiles[n.version]
	if !ok {
		util.Warnf("No schema profile for version %s", n.version)
		return "", "", ""
	}
	return n.ArtifactName(), fmt.Sprintf("eos-%s.zip", n.version), url
}

func (n *ceosNode) ArtifactYAML(name, filename, url string) (string, error) {
	return render.Render("artifact.yaml.tmpl", render.Artifact{
		Name:      name,
		Namespace: "eda-system",
		Filename:  filename,
		URL:       url,
	})
}
