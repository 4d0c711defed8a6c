// Package export turns EDA state back into containerlab input: a
// running namespace into a .clab.yaml file, and a topology file into
// standalone CR manifests.
package export

import (
	"fmt"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eda-labs/clab-connector/pkg/eda"
	"github.com/eda-labs/clab-connector/pkg/util"
)

// defaultMgmtSubnet is used when no node carries a usable management IP.
const defaultMgmtSubnet = "172.80.80.0/24"

// Lab is a containerlab topology definition ready for marshalling.
type Lab struct {
	Name     string      `yaml:"name"`
	Mgmt     LabMgmt     `yaml:"mgmt"`
	Topology LabTopology `yaml:"topology"`
}

type LabMgmt struct {
	Network    string `yaml:"network"`
	IPv4Subnet string `yaml:"ipv4-subnet"`
}

type LabTopology struct {
	Nodes map[string]LabNode `yaml:"nodes"`
	Links []LabLink          `yaml:"links"`
}

type LabNode struct {
	Kind     string `yaml:"kind"`
	MgmtIPv4 string `yaml:"mgmt-ipv4"`
	Image    string `yaml:"image,omitempty"`
}

type LabLink struct {
	Endpoints []string `yaml:"endpoints,flow"`
}

// Exporter reads toponodes and topolinks of a namespace from the EDA
// API and builds the equivalent containerlab topology.
type Exporter struct {
	client    *eda.Client
	namespace string
}

// NewExporter returns an Exporter for the given namespace.
func NewExporter(client *eda.Client, namespace string) *Exporter {
	return &Exporter{client: client, namespace: namespace}
}

// Run exports the namespace and writes the lab definition to path.
func (e *Exporter) Run(path string) error {
	lab, err := e.Export()
	if err != nil {
		return err
	}
	raw, err := yaml.Marshal(lab)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return err
	}
	util.Infof("Exported containerlab file: %s", path)
	return nil
}

// Export builds the lab definition without writing it.
func (e *Exporter) Export() (*Lab, error) {
	nodes, err := e.listItems("toponodes")
	if err != nil {
		return nil, err
	}
	links, err := e.listItems("topolinks")
	if err != nil {
		return nil, err
	}

	lab := &Lab{
		Name: e.namespace,
		Mgmt: LabMgmt{
			Network:    e.namespace + "-mgmt",
			IPv4Subnet: deriveMgmtSubnet(nodes),
		},
		Topology: LabTopology{Nodes: map[string]LabNode{}},
	}

	for _, item := range nodes {
		name, def, ok := buildNodeDefinition(item)
		if ok {
			lab.Topology.Nodes[name] = def
		}
	}
	for _, item := range links {
		lab.Topology.Links = append(lab.Topology.Links, buildLinkDefinitions(item)...)
	}
	return lab, nil
}

// listItems fetches a resource list for the namespace, trying the API
// groups that different EDA versions expose.
func (e *Exporter) listItems(resource string) ([]map[string]any, error) {
	paths := []string{
		fmt.Sprintf("apps/core.eda.nokia.com/v1/namespaces/%s/%s", e.namespace, resource),
		fmt.Sprintf("core/topology/v1/namespaces/%s/%s", e.namespace, resource),
		fmt.Sprintf("api/core/v1/namespaces/%s/%s", e.namespace, resource),
	}
	data, path := e.client.TryEndpoints(paths, resource+" in "+e.namespace)
	if data == nil {
		return nil, fmt.Errorf("could not list %s in namespace %s: %w",
			resource, e.namespace, util.ErrNotFound)
	}
	items := extractItems(data)
	util.Infof("Found %d %s in namespace %s via %s", len(items), resource, e.namespace, path)
	return items, nil
}

// extractItems unwraps a list response into its object items, accepting
// both {"items": [...]} wrappers and bare lists.
func extractItems(data any) []map[string]any {
	list, ok := data.([]any)
	if !ok {
		obj, _ := data.(map[string]any)
		list, _ = obj["items"].([]any)
	}
	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if obj, ok := entry.(map[string]any); ok {
			items = append(items, obj)
		}
	}
	return items
}

// managementIP digs a node's management address out of its production
// address, falling back to the host part of node-details.
func managementIP(item map[string]any) string {
	spec, _ := item["spec"].(map[string]any)
	status, _ := item["status"].(map[string]any)

	for _, section := range []map[string]any{spec, status} {
		if addr, ok := section["productionAddress"].(map[string]any); ok {
			if ip, _ := addr["ipv4"].(string); ip != "" {
				return ip
			}
		}
	}
	if details, _ := status["node-details"].(string); details != "" {
		host, _, _ := strings.Cut(details, ":")
		return host
	}
	return ""
}

func deriveMgmtSubnet(nodes []map[string]any) string {
	var ips []net.IP
	for _, item := range nodes {
		raw := managementIP(item)
		if raw == "" {
			continue
		}
		ip := net.ParseIP(raw)
		if ip == nil || ip.To4() == nil {
			util.Warnf("Invalid management IP address: %s", raw)
			continue
		}
		ips = append(ips, ip)
	}
	subnet, err := util.CommonSubnet(ips)
	if err != nil {
		util.Warn("No valid management IPs found, using the default subnet")
		return defaultMgmtSubnet
	}
	return subnet
}

// buildNodeDefinition converts a toponode item into a containerlab node
// entry. Nodes without a name or management IP are skipped.
func buildNodeDefinition(item map[string]any) (string, LabNode, bool) {
	meta, _ := item["metadata"].(map[string]any)
	spec, _ := item["spec"].(map[string]any)
	status, _ := item["status"].(map[string]any)

	name, _ := meta["name"].(string)
	if name == "" {
		util.Warn("Toponode item without metadata.name, skipping")
		return "", LabNode{}, false
	}
	mgmtIP := managementIP(item)
	if mgmtIP == "" {
		util.Warnf("No management IP found for node %s, skipping", name)
		return "", LabNode{}, false
	}

	osName, _ := spec["operatingSystem"].(string)
	if osName == "" {
		osName, _ = status["operatingSystem"].(string)
	}
	version, _ := spec["version"].(string)
	if version == "" {
		version, _ = status["version"].(string)
	}

	kind := "nokia_srlinux"
	if strings.HasPrefix(strings.ToLower(osName), "sros") {
		kind = "nokia_sros"
	}
	def := LabNode{Kind: kind, MgmtIPv4: mgmtIP}
	if version != "" {
		def.Image = "ghcr.io/nokia/srlinux:" + version
	}
	return name, def, true
}

// buildLinkDefinitions converts a topolink item into containerlab link
// entries, one per complete link in its spec.
func buildLinkDefinitions(item map[string]any) []LabLink {
	spec, _ := item["spec"].(map[string]any)
	entries, _ := spec["links"].([]any)

	var links []LabLink
	for _, raw := range entries {
		entry, _ := raw.(map[string]any)
		local, _ := entry["local"].(map[string]any)
		remote, _ := entry["remote"].(map[string]any)
		localNode, _ := local["node"].(string)
		localIntf, _ := local["interface"].(string)
		remoteNode, _ := remote["node"].(string)
		remoteIntf, _ := remote["interface"].(string)
		if localNode == "" || localIntf == "" || remoteNode == "" || remoteIntf == "" {
			meta, _ := item["metadata"].(map[string]any)
			name, _ := meta["name"].(string)
			util.Warnf("Incomplete link entry in %s, skipping", name)
			continue
		}
		links = append(links, LabLink{Endpoints: []string{
			localNode + ":" + localIntf,
			remoteNode + ":" + remoteIntf,
		}})
	}
	return links
}
