// Package topology models a containerlab topology and generates the EDA
// resources needed to manage its nodes and links.
package topology

import (
	"strings"

	"github.com/eda-labs/clab-connector/pkg/util"
)

// Node is one device in a containerlab topology. Vendor-specific types
// implement the naming and resource generation rules for their OS; the
// generic node returned for unrecognized kinds reports Supported() false
// and renders nothing.
type Node interface {
	Name() string
	Kind() string
	NodeType() string
	Version() string
	MgmtIPv4() string

	// Supported reports whether EDA can manage this node kind.
	Supported() bool
	Platform() string

	// ResourceName is the node name normalized for use in resource names.
	ResourceName() string

	// ProfileName returns the NodeProfile name shared by all nodes of the
	// same kind and version within the topology.
	ProfileName(t *Topology) string
	NodeProfileYAML(t *Topology) (string, error)
	TopoNodeYAML(t *Topology) (string, error)

	// InterfaceName converts a containerlab interface name to the
	// canonical form for this node's OS.
	InterfaceName(ifname string) string

	// LinkToken returns the interface token used when composing TopoLink
	// resource names, so spelling variants of the same port produce the
	// same link name.
	LinkToken(ifname string) string

	TopolinkInterfaceName(ifname string) string
	TopolinkInterfaceYAML(t *Topology, ifname string, peer Node) (string, error)

	NeedsArtifact() bool
	ArtifactName() string
	// ArtifactInfo returns the artifact name, file name, and download URL,
	// or empty strings when no schema is published for this version.
	ArtifactInfo() (name, filename, url string)
	ArtifactYAML(name, filename, url string) (string, error)
}

// baseNode carries the common attributes and the defaults for kinds EDA
// does not manage.
type baseNode struct {
	name     string
	kind     string
	nodeType string
	version  string
	mgmtIPv4 string
}

func (n *baseNode) Name() string     { return n.name }
func (n *baseNode) Kind() string     { return n.kind }
func (n *baseNode) NodeType() string { return n.nodeType }
func (n *baseNode) Version() string  { return n.version }
func (n *baseNode) MgmtIPv4() string { return n.mgmtIPv4 }

func (n *baseNode) Supported() bool  { return false }
func (n *baseNode) Platform() string { return "UNKNOWN" }

func (n *baseNode) ResourceName() string { return util.NormalizeName(n.name) }

func (n *baseNode) ProfileName(*Topology) string             { return "" }
func (n *baseNode) NodeProfileYAML(*Topology) (string, error) { return "", nil }
func (n *baseNode) TopoNodeYAML(*Topology) (string, error)    { return "", nil }

func (n *baseNode) InterfaceName(ifname string) string { return ifname }
func (n *baseNode) LinkToken(ifname string) string     { return ifname }

func (n *baseNode) TopolinkInterfaceName(ifname string) string {
	return n.ResourceName() + "-" + ifname
}

func (n *baseNode) TopolinkInterfaceYAML(*Topology, string, Node) (string, error) {
	return "", nil
}

func (n *baseNode) NeedsArtifact() bool                  { return false }
func (n *baseNode) ArtifactName() string                 { return "" }
func (n *baseNode) ArtifactInfo() (string, string, string) { return "", "", "" }
func (n *baseNode) ArtifactYAML(string, string, string) (string, error) {
	return "", nil
}

// roleForName derives the fabric role from the node name.
func roleForName(name string) string {
	nl := strings.ToLower(name)
	switch {
	case strings.Contains(nl, "spine"):
		return "spine"
	case strings.Contains(nl, "borderleaf"), strings.Contains(nl, "bl"):
		return "borderleaf"
	case strings.Contains(nl, "dcgw"):
		return "dcgw"
	default:
		return "leaf"
	}
}

// newNode builds the vendor-specific node for the given containerlab kind.
// Unrecognized kinds produce a generic unsupported node that still takes
// part in link classification.
func newNode(name, kind, nodeType, version, mgmtIPv4 string) Node {
	base := baseNode{
		name:     name,
		kind:     kind,
		nodeType: nodeType,
		version:  version,
		mgmtIPv4: mgmtIPv4,
	}
	switch kind {
	case "nokia_srlinux":
		if base.nodeType == "" {
			base.nodeType = srlDefaultNodeType
		}
		return &srlNode{baseNode: base}
	case "nokia_sros":
		if base.nodeType == "" {
			base.nodeType = srosDefaultNodeType
		}
		base.version = strings.ToLower(base.version)
		return &srosNode{baseNode: base}
	case "ceos", "arista_ceos":
		base.version = strings.ToLower(base.version)
		return &ceosNode{baseNode: base}
	default:
		util.Debugf("Unsupported kind %q for node %q", kind, name)
		return &base
	}
}
