package topology

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/eda-labs/clab-connector/pkg/render"
	"github.com/eda-labs/clab-connector/pkg/util"
)

const (
	srosDefaultNodeType = "sr7750"
	srosGnmiPort        = "57400"
	srosOS              = "sros"
)

// srosSchemaProfiles maps SR OS versions to published YANG schema bundles.
var srosSchemaProfiles = map[string]string{
	"25.3.r2": "https://github.com/nokia-eda/schema-profiles/releases/download/nokia-sros-v25.3.r2/sros-25.3.r2.zip",
}

// srosComponents describes the line card, MDA, and connector layout per
// chassis type.
var srosComponents = map[string]struct {
	lineCardType string
	mdaType      string
	connectors   int
}{
	"sr-1":  {"iom-1", "me12-100gb-qsfp28", 12},
	"sr-1s": {"xcm-1s", "s36-100gb-qsfp28", 36},
	"sr-2s": {"xcm-2s", "ms8-100gb-sfpdd+2-100gb-qsfp28", 10},
	"sr-7s": {"xcm-7s", "s36-100gb-qsfp28", 36},
}

var (
	srosSlotMdaPort = regexp.MustCompile(`^(\d+)/(\d+)/(\d+)$`)
	srosBreakout    = regexp.MustCompile(`^(\d+)/(\d+)/c(\d+)/(\d+)$`)
	srosXiom        = regexp.MustCompile(`^(\d+)/x(\d+)/(\d+)/(\d+)$`)
	srosEth         = regexp.MustCompile(`^eth(\d+)$`)
	srosEDash       = regexp.MustCompile(`^e(\d+)-(\d+)$`)
	srosLoopback    = regexp.MustCompile(`^lo(\d+)$`)
	srosLag         = regexp.MustCompile(`^lag-\d+$`)
)

// srosNode is a Nokia SR OS device.
type srosNode struct {
	baseNode
}

func (n *srosNode) Supported() bool { return true }

func (n *srosNode) Platform() string {
	if strings.HasPrefix(strings.ToLower(n.nodeType), "sr-") {
		return "7750 " + strings.ToUpper(n.nodeType)
	}
	return "7750 SR"
}

func (n *srosNode) ProfileName(t *Topology) string {
	return fmt.Sprintf("%s-sros-%s", t.SafeName(), n.version)
}

func (n *srosNode) NodeProfileYAML(t *Topology) (string, error) {
	util.Debugf("Rendering node profile for %s", n.name)
	filename := fmt.Sprintf("sros-%s.zip", n.version)
	versionShort := strings.ReplaceAll(n.version, ".", "-")
	return render.Render("node-profile.yaml.tmpl", render.NodeProfile{
		Namespace:          t.Namespace(),
		Name:               n.ProfileName(t),
		OperatingSystem:    srosOS,
		Version:            n.version,
		GnmiPort:           srosGnmiPort,
		YangPath:           schemaProfileURL(n.ArtifactName(), filename),
		Annotate:           "false",
		NodeUser:           "admin-sros",
		OnboardingUsername: "admin",
		OnboardingPassword: "NokiaSros1!",
		License:            fmt.Sprintf("sros-ghcr-%s-dummy-license", n.version),
		LLMDb: fmt.Sprintf(
			"https://eda-asvr.eda-system.svc/eda-system/llm-dbs/llm-db-sros-ghcr-%s/llm-embeddings-sros-%s.tar.gz",
			n.version, versionShort,
		),
	})
}

func (n *srosNode) TopoNodeYAML(t *Topology) (string, error) {
	util.Debugf("Creating toponode for %s", n.name)
	return render.Render("toponode.yaml.tmpl", render.TopoNode{
		Namespace:    t.Namespace(),
		Name:         n.ResourceName(),
		Topology:     t.SafeName(),
		Role:         "dcgw",
		NodeProfile:  n.ProfileName(t),
		Kind:         srosOS,
		Platform:     n.Platform(),
		Version:      n.version,
		MgmtIP:       n.mgmtIPv4,
		ContainerLab: "managedSros",
		Components:   n.components(),
	})
}

// components lists the hardware elements for the chassis type, or nothing
// when the type is unknown.
func (n *srosNode) components() []render.Component {
	info, ok := srosComponents[strings.ToLower(n.nodeType)]
	if !ok {
		return nil
	}
	comps := []render.Component{
		{Kind: "lineCard", Slot: "1", Type: info.lineCardType},
		{Kind: "mda", Slot: "1-a", Type: info.mdaType},
	}
	for i := 1; i <= info.connectors; i++ {
		comps = append(comps, render.Component{
			Kind: "connector",
			Slot: fmt.Sprintf("1-a-%d", i),
			Type: "c1-100g",
		})
	}
	return comps
}

// InterfaceName converts SR OS port spellings to the canonical form:
//
//	1/2/3     -> ethernet-1-b-3-1   (slot/MDA/port)
//	1/1/c3/2  -> ethernet-1-3-2     (breakout, implicit MDA 1)
//	1/2/c3/4  -> ethernet-1-b-3-4   (breakout, explicit MDA)
//	1/x2/3/4  -> ethernet-1-2-c-4   (XIOM MDA)
//	eth3      -> ethernet-1-a-3-1
//	e1-2      -> ethernet-1-a-2-1
//	lo0       -> loopback-0
//	lag-10    -> lag-10
func (n *srosNode) InterfaceName(ifname string) string {
	if m := srosSlotMdaPort.FindStringSubmatch(ifname); m != nil {
		return fmt.Sprintf("ethernet-%s-%s-%s-1", m[1], mdaLetter(m[2]), m[3])
	}
	if m := srosBreakout.FindStringSubmatch(ifname); m != nil {
		if m[2] == "1" {
			return fmt.Sprintf("ethernet-%s-%s-%s", m[1], m[3], m[4])
		}
		return fmt.Sprintf("ethernet-%s-%s-%s-%s", m[1], mdaLetter(m[2]), m[3], m[4])
	}
	if m := srosXiom.FindStringSubmatch(ifname); m != nil {
		return fmt.Sprintf("ethernet-%s-%s-%s-%s", m[1], m[2], mdaLetter(m[3]), m[4])
	}
	if m := srosEth.FindStringSubmatch(ifname); m != nil {
		return fmt.Sprintf("ethernet-1-a-%s-1", m[1])
	}
	if m := srosEDash.FindStringSubmatch(ifname); m != nil {
		return fmt.Sprintf("ethernet-%s-a-%s-1", m[1], m[2])
	}
	if m := srosLoopback.FindStringSubmatch(ifname); m != nil {
		return "loopback-" + m[1]
	}
	if srosLag.MatchString(ifname) {
		return ifname
	}
	return ifname
}

// mdaLetter converts an MDA number to its letter form (1 -> a, 2 -> b).
func mdaLetter(num string) string {
	v, err := strconv.Atoi(num)
	if err != nil || v < 1 || v > 26 {
		return num
	}
	return string(rune('a' + v - 1))
}

func (n *srosNode) TopolinkInterfaceName(ifname string) string {
	resource := strings.TrimPrefix(n.InterfaceName(ifname), "ethernet-")
	return n.ResourceName() + "-" + resource
}

func (n *srosNode) TopolinkInterfaceYAML(t *Topology, ifname string, peer Node) (string, error) {
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

func (n *srosNode) NeedsArtifact() bool { return true }

func (n *srosNode) ArtifactName() string {
	return "clab-sros-ghcr-" + n.version
}

func (n *srosNode) ArtifactInfo() (string, string, string) {
	url, ok := srosSchemaProfiles[n.version]
	if !ok {
		util.Warnf("No schema profile for version %s", n.version)
		return "", "", ""
	}
	return n.ArtifactName(), fmt.Sprintf("sros-%s.zip", n.version), url
}

func (n *srosNode) ArtifactYAML(name, filename, url string) (string, error) {
	return render.Render("artifact.yaml.tmpl", render.Artifact{
		Name:      name,
		Namespace: "eda-system",
		Filename:  filename,
		URL:       url,
	})
}
