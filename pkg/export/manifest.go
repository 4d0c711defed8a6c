package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/eda-labs/clab-connector/pkg/render"
	"github.com/eda-labs/clab-connector/pkg/topology"
	"github.com/eda-labs/clab-connector/pkg/util"
)

// Category is one group of generated CR documents.
type Category struct {
	Name string
	Docs []string
}

// Generator renders the CR manifests a topology would be integrated
// with, for inspection or out-of-band application.
type Generator struct {
	topo          *topology.Topology
	skipEdgeLinks bool
}

// NewGenerator returns a Generator for the topology.
func NewGenerator(topo *topology.Topology, skipEdgeLinks bool) *Generator {
	return &Generator{topo: topo, skipEdgeLinks: skipEdgeLinks}
}

// Generate renders every CR category in integration order. Empty
// categories are omitted.
func (g *Generator) Generate() ([]Category, error) {
	ns := g.topo.Namespace()
	util.Infof("Generating manifests for namespace %s", ns)

	var categories []Category
	add := func(name string, docs []string) {
		if len(docs) > 0 {
			categories = append(categories, Category{Name: name, Docs: docs})
		}
	}

	add("artifacts", g.artifacts())

	initYAML, err := render.Render("init.yaml.tmpl", render.Init{Namespace: ns})
	if err != nil {
		return nil, err
	}
	add("init", []string{initYAML})

	nsp, err := render.Render("node-security-profile.yaml.tmpl",
		render.NodeSecurityProfile{Namespace: ns})
	if err != nil {
		return nil, err
	}
	add("node-security-profile", []string{nsp})

	group, err := render.Render("node-user-group.yaml.tmpl",
		render.NodeUserGroup{Namespace: ns})
	if err != nil {
		return nil, err
	}
	add("node-user-group", []string{group})

	var users []string
	for _, user := range g.topo.NodeUsers() {
		yml, err := render.Render("node-user.yaml.tmpl", user)
		if err != nil {
			return nil, err
		}
		users = append(users, yml)
	}
	add("node-user", users)

	profiles, err := g.topo.NodeProfiles()
	if err != nil {
		return nil, err
	}
	add("node-profiles", profiles)

	tnodes, err := g.topo.TopoNodes()
	if err != nil {
		return nil, err
	}
	add("toponodes", tnodes)

	interfaces, err := g.topo.TopolinkInterfaces(g.skipEdgeLinks)
	if err != nil {
		return nil, err
	}
	add("topolink-interfaces", interfaces)

	links, err := g.topo.Topolinks(g.skipEdgeLinks)
	if err != nil {
		return nil, err
	}
	add("topolinks", links)

	return categories, nil
}

// artifacts renders one document per distinct schema artifact.
func (g *Generator) artifacts() []string {
	var docs []string
	seen := map[string]bool{}
	for _, n := range g.topo.Nodes {
		if !n.NeedsArtifact() {
			continue
		}
		name, filename, url := n.ArtifactInfo()
		if name == "" || filename == "" || url == "" {
			util.Warnf("No artifact info for node %s, skipping", n.Name())
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		yml, err := n.ArtifactYAML(name, filename, url)
		if err != nil {
			util.Errorf("Could not render artifact %s: %v", name, err)
			continue
		}
		docs = append(docs, yml)
	}
	return docs
}

// Combine concatenates all categories into one multi-document YAML
// stream with a comment header per category.
func Combine(categories []Category) string {
	var docs []string
	for _, cat := range categories {
		docs = append(docs, "# --- "+strings.ToUpper(cat.Name)+" ---")
		docs = append(docs, cat.Docs...)
	}
	return strings.Join(docs, "\n---\n")
}

// WriteCombined writes all categories to a single file.
func WriteCombined(categories []Category, path string) error {
	if err := os.WriteFile(path, []byte(Combine(categories)), 0o644); err != nil {
		return err
	}
	util.Infof("Combined manifest written to %s", path)
	return nil
}

// WriteSeparate writes one file per category into dir, creating it if
// needed.
func WriteSeparate(categories []Category, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, cat := range categories {
		path := filepath.Join(dir, cat.Name+".yaml")
		content := strings.Join(cat.Docs, "\n---\n")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
		util.Infof("Manifest for %s written to %s", cat.Name, path)
	}
	return nil
}
