package topology

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/eda-labs/clab-connector/pkg/render"
	"github.com/eda-labs/clab-connector/pkg/util"
)

const (
	srlDefaultNodeType = "ixrd3l"
	srlUsername        = "admin"
	srlPassword        = "NokiaSrl1!"
	srlGnmiPort        = "57410"
	srlVersionPath     = ".system.information.version"
	srlOS              = "srl"
)

// srlSchemaProfiles maps SR Linux versions to published YANG schema bundles.
var srlSchemaProfiles = map[string]string{
	"24.10.1": "https://github.com/nokia/srlinux-yang-models/releases/download/v24.10.1/srlinux-24.10.1-492.zip",
	"24.10.2": "https://github.com/nokia/srlinux-yang-models/releases/download/v24.10.2/srlinux-24.10.2-357.zip",
	"24.10.3": "https://github.com/nokia/srlinux-yang-models/releases/download/v24.10.3/srlinux-24.10.3-201.zip",
	"24.10.4": "https://github.com/nokia/srlinux-yang-models/releases/download/v24.10.4/srlinux-24.10.4-244.zip",
	"25.3.1":  "https://github.com/nokia/srlinux-yang-models/releases/download/v25.3.1/srlinux-25.3.1-149.zip",
}

var srlIfacePattern = regexp.MustCompile(`^e(\d+)-(\d+)$`)

// srlNode is a Nokia SR Linux device.
type srlNode struct {
	baseNode
}

func (n *srlNode) Supported() bool { return true }

func (n *srlNode) Platform() string {
	t := strings.ReplaceAll(n.nodeType, "ixr", "")
	return "7220 IXR-" + strings.ToUpper(t)
}

func (n *srlNode) ProfileName(t *Topology) string {
	return fmt.Sprintf("%s-srlinux-%s", t.SafeName(), n.version)
}

func (n *srlNode) NodeProfileYAML(t *Topology) (string, error) {
	util.Debugf("Rendering node profile for %s", n.name)
	filename := fmt.Sprintf("srlinux-%s.zip", n.version)
	versionMatch := "v" + strings.ReplaceAll(n.version, ".", `\.`) + ".*"
	return render.Render("node-profile.yaml.tmpl", render.NodeProfile{
		Namespace:          t.Namespace(),
		Name:               n.ProfileName(t),
		OperatingSystem:    srlOS,
		Version:            n.version,
		VersionPath:        srlVersionPath,
		VersionMatch:       versionMatch,
		GnmiPort:           srlGnmiPort,
		YangPath:           schemaProfileURL(n.ArtifactName(), filename),
		NodeUser:           srlUsername,
		OnboardingUsername: srlUsername,
		OnboardingPassword: srlPassword,
		SwImage:            fmt.Sprintf("eda-system/srlimages/srlinux-%s-bin/srlinux.bin", n.version),
		SwImageMd5:         fmt.Sprintf("eda-system/srlimages/srlinux-%s-bin/srlinux.bin.md5", n.version),
	})
}

func (n *srlNode) TopoNodeYAML(t *Topology) (string, error) {
	util.Debugf("Creating toponode for %s", n.name)
	return render.Render("toponode.yaml.tmpl", render.TopoNode{
		Namespace:    t.Namespace(),
		Name:         n.ResourceName(),
		Topology:     t.SafeName(),
		Role:         roleForName(n.name),
		NodeProfile:  n.ProfileName(t),
		Kind:         srlOS,
		Platform:     n.Platform(),
		Version:      n.version,
		MgmtIP:       n.mgmtIPv4,
		ContainerLab: "managedSrl",
	})
}

func (n *srlNode) InterfaceName(ifname string) string {
	if m := srlIfacePattern.FindStringSubmatch(ifname); m != nil {
		return fmt.Sprintf("ethernet-%s-%s", m[1], m[2])
	}
	return ifname
}

func (n *srlNode) TopolinkInterfaceName(ifname string) string {
	return n.ResourceName() + "-" + n.InterfaceName(ifname)
}

func (n *srlNode) TopolinkInterfaceYAML(t *Topology, ifname string, peer Node) (string, error) {
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

func (n *srlNode) NeedsArtifact() bool { return true }

func (n *srlNode) ArtifactName() string {
	return "clab-srlinux-" + n.version
}

func (n *srlNode) ArtifactInfo() (string, string, string) {
	url, ok := srlSchemaProfiles[n.version]
	if !ok {
		util.Warnf("No schema profile for version %s", n.version)
		return "", "", ""
	}
	return n.ArtifactName(), fmt.Sprintf("srlinux-%s.zip", n.version), url
}

func (n *srlNode) ArtifactYAML(name, filename, url string) (string, error) {
	return render.Render("artifact.yaml.tmpl", render.Artifact{
		Name:      name,
		Namespace: "eda-system",
		Filename:  filename,
		URL:       url,
	})
}

// schemaProfileURL builds the artifact server URL for a schema bundle.
func schemaProfileURL(artifactName, filename string) string {
	return fmt.Sprintf(
		"https://eda-asvr.eda-system.svc/eda-system/clab-schemaprofiles/%s/%s",
		artifactName, filename,
	)
}

// interfaceRole classifies a link endpoint by its peer: interSwitch when the
// peer is managed, edge otherwise.
func interfaceRole(peer Node) (role, description string) {
	if peer == nil {
		return "edge", "edge link"
	}
	if peer.Supported() {
		return "interSwitch", "inter-switch link to " + peer.ResourceName()
	}
	return "edge", "edge link to " + peer.ResourceName()
}
