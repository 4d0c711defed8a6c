package topology

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/eda-labs/clab-connector/pkg/render"
	"github.com/eda-labs/clab-connector/pkg/util"
)

// Topology is a parsed containerlab topology. Nodes holds only the
// managed nodes; Links may reference unmanaged peers for edge links.
type Topology struct {
	Name         string
	MgmtSubnet   string
	SSHPubKeys   []string
	Nodes        []Node
	Links        []*Link
	ClabFilePath string
}

// SafeName returns the topology name normalized for resource naming.
// Parse already normalizes Name, so this is idempotent.
func (t *Topology) SafeName() string {
	return util.NormalizeName(t.Name)
}

// Namespace returns the namespace holding this topology's resources.
func (t *Topology) Namespace() string {
	return "clab-" + t.Name
}

// mgmtPrefixLength extracts the prefix length from the management subnet,
// defaulting to 24 when absent or malformed.
func (t *Topology) mgmtPrefixLength() int {
	_, after, found := strings.Cut(t.MgmtSubnet, "/")
	if !found {
		return 24
	}
	n, err := strconv.Atoi(after)
	if err != nil || n < 0 || n > 32 {
		return 24
	}
	return n
}

// NodeProfiles renders one NodeProfile per kind and version combination.
func (t *Topology) NodeProfiles() ([]string, error) {
	var profiles []string
	seen := map[string]bool{}
	for _, n := range t.Nodes {
		key := n.Kind() + "-" + n.Version()
		if seen[key] {
			continue
		}
		prof, err := n.NodeProfileYAML(t)
		if err != nil {
			return nil, err
		}
		if prof != "" {
			seen[key] = true
			profiles = append(profiles, prof)
		}
	}
	return profiles, nil
}

// NodeUsers returns the node user accounts required by the operating
// systems present in the topology. The SR Linux admin user is always
// included; SR OS and cEOS users are added when such nodes exist.
func (t *Topology) NodeUsers() []render.NodeUser {
	base := render.NodeUser{
		Namespace:  t.Namespace(),
		SSHPubKeys: t.SSHPubKeys,
	}
	users := []render.NodeUser{}
	add := func(name, username, password, selector string) {
		u := base
		u.Name, u.Username, u.Password, u.Selector = name, username, password, selector
		users = append(users, u)
	}
	// The selector must match the containerlab label each TopoNode
	// carries, or the user binds to no nodes.
	add("admin", "admin", "NokiaSrl1!", "managedSrl")

	seen := map[string]bool{}
	for _, n := range t.Nodes {
		if seen[n.Kind()] {
			continue
		}
		seen[n.Kind()] = true
		switch n.Kind() {
		case "nokia_sros":
			add("admin-sros", "admin", "admin", "managedSros")
		case "ceos", "arista_ceos":
			add("admin-ceos", "admin", "admin", "managedEos")
		}
	}
	return users
}

// TopoNodes renders one TopoNode per managed node.
func (t *Topology) TopoNodes() ([]string, error) {
	var tnodes []string
	for _, n := range t.Nodes {
		tn, err := n.TopoNodeYAML(t)
		if err != nil {
			return nil, err
		}
		if tn != "" {
			tnodes = append(tnodes, tn)
		}
	}
	return tnodes, nil
}

// Topolinks renders TopoLink resources for inter-switch and edge links.
// Edge links are omitted when skipEdgeLinks is set.
func (t *Topology) Topolinks(skipEdgeLinks bool) ([]string, error) {
	var links []string
	for _, l := range t.Links {
		if skipEdgeLinks && l.IsEdgeLink() {
			continue
		}
		if !l.IsTopolink() && !l.IsEdgeLink() {
			continue
		}
		yml, err := l.TopolinkYAML(t)
		if err != nil {
			return nil, err
		}
		if yml != "" {
			links = append(links, yml)
		}
	}
	return links, nil
}

// TopolinkInterfaces renders an Interface resource for each managed link
// endpoint. Endpoints of edge links are omitted when skipEdgeLinks is set.
func (t *Topology) TopolinkInterfaces(skipEdgeLinks bool) ([]string, error) {
	var interfaces []string
	for _, l := range t.Links {
		isEdge := l.IsEdgeLink()
		ends := []struct {
			node Node
			intf string
			peer Node
		}{
			{l.NodeA, l.IfA, l.NodeB},
			{l.NodeB, l.IfB, l.NodeA},
		}
		for _, e := range ends {
			if e.node == nil || !e.node.Supported() {
				continue
			}
			if skipEdgeLinks && isEdge && (e.peer == nil || !e.peer.Supported()) {
				continue
			}
			yml, err := e.node.TopolinkInterfaceYAML(t, e.intf, e.peer)
			if err != nil {
				return nil, err
			}
			if yml != "" {
				interfaces = append(interfaces, yml)
			}
		}
	}
	return interfaces, nil
}

type topologyFile struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Clab struct {
		Config struct {
			Mgmt struct {
				IPv4Subnet string `json:"ipv4-subnet"`
			} `json:"mgmt"`
		} `json:"config"`
	} `json:"clab"`
	SSHPubKeys []string                    `json:"ssh-pub-keys"`
	Nodes      map[string]topologyNodeData `json:"nodes"`
	Links      []struct {
		A endpointRef `json:"a"`
		Z endpointRef `json:"z"`
	} `json:"links"`
}

type topologyNodeData struct {
	Kind     string            `json:"kind"`
	Image    string            `json:"image"`
	MgmtIPv4 string            `json:"mgmt-ipv4-address"`
	Labels   map[string]string `json:"labels"`
}

type endpointRef struct {
	Node      string `json:"node"`
	Interface string `json:"interface"`
}

// Parse reads a containerlab topology-data JSON file and builds the
// topology model. Nodes of unrecognized kinds are kept for link
// classification but never become managed resources; a managed node
// without a software version is an error, as is a topology with no
// manageable nodes at all.
func Parse(path string) (*Topology, error) {
	util.Infof("Parsing topology file %q", path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, util.NewTopologyFileError(path, err.Error())
	}
	var data topologyFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, util.NewTopologyFileError(path, "not valid JSON: "+err.Error())
	}
	if data.Type != "clab" {
		return nil, util.NewTopologyFileError(path, "not a containerlab topology (missing type=clab)")
	}

	names := make([]string, 0, len(data.Nodes))
	for name := range data.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	allNodes := make(map[string]Node, len(data.Nodes))
	var managed []Node
	clabFilePath := ""
	for _, name := range names {
		nd := data.Nodes[name]
		if clabFilePath == "" {
			clabFilePath = nd.Labels["clab-topo-file"]
		}
		version := ""
		if i := strings.LastIndexByte(nd.Image, ':'); i >= 0 {
			version = nd.Image[i+1:]
		}
		node := newNode(name, nd.Kind, nd.Labels["clab-node-type"], version, nd.MgmtIPv4)
		if node.Supported() {
			if node.Version() == "" {
				return nil, util.NewTopologyFileError(path,
					fmt.Sprintf("node %s is missing a version", name))
			}
			managed = append(managed, node)
		}
		allNodes[name] = node
	}
	if len(managed) == 0 {
		return nil, fmt.Errorf("%w: none of the node kinds in %s can be managed",
			util.ErrUnsupportedKind, path)
	}

	var links []*Link
	for _, l := range data.Links {
		nodeA, okA := allNodes[l.A.Node]
		nodeZ, okZ := allNodes[l.Z.Node]
		if !okA || !okZ {
			continue
		}
		if !nodeA.Supported() && !nodeZ.Supported() {
			util.Debugf("Skipping link %s:%s <-> %s:%s, no managed endpoint",
				l.A.Node, l.A.Interface, l.Z.Node, l.Z.Interface)
			continue
		}
		links = append(links, &Link{
			NodeA: nodeA, IfA: l.A.Interface,
			NodeB: nodeZ, IfB: l.Z.Interface,
		})
	}

	topo := &Topology{
		Name:         data.Name,
		MgmtSubnet:   data.Clab.Config.Mgmt.IPv4Subnet,
		SSHPubKeys:   data.SSHPubKeys,
		Nodes:        managed,
		Links:        links,
		ClabFilePath: clabFilePath,
	}

	if safe := topo.SafeName(); safe != topo.Name {
		util.Debugf("Renamed topology %q -> %q for resource naming", topo.Name, safe)
		topo.Name = safe
	}
	return topo, nil
}
