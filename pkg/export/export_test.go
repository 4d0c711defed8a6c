package export

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eda-labs/clab-connector/pkg/eda"
	"github.com/eda-labs/clab-connector/pkg/topology"
)

func exportServer(t *testing.T, nodes, links []map[string]any) *eda.Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
	})
	mux.HandleFunc("/apps/core.eda.nokia.com/v1/namespaces/clab-lab1/toponodes",
		func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"items": nodes})
		})
	mux.HandleFunc("/apps/core.eda.nokia.com/v1/namespaces/clab-lab1/topolinks",
		func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"items": links})
		})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return eda.NewClient(srv.URL, "admin", "admin", false)
}

func TestExport(t *testing.T) {
	nodes := []map[string]any{
		{
			"metadata": map[string]any{"name": "leaf1"},
			"spec": map[string]any{
				"operatingSystem":   "srl",
				"version":           "25.3.1",
				"productionAddress": map[string]any{"ipv4": "10.0.0.1"},
			},
		},
		{
			// Management IP only available through node-details.
			"metadata": map[string]any{"name": "sr1"},
			"spec":     map[string]any{"operatingSystem": "sros", "version": "24.10.r4"},
			"status":   map[string]any{"node-details": "10.0.0.9:57400"},
		},
		{
			// No IP at all: skipped.
			"metadata": map[string]any{"name": "ghost"},
			"spec":     map[string]any{},
		},
	}
	links := []map[string]any{
		{
			"metadata": map[string]any{"name": "leaf1-sr1"},
			"spec": map[string]any{"links": []any{
				map[string]any{
					"local":  map[string]any{"node": "leaf1", "interface": "ethernet-1-1"},
					"remote": map[string]any{"node": "sr1", "interface": "ethernet-1-1"},
				},
				map[string]any{
					"local": map[string]any{"node": "leaf1"},
				},
			}},
		},
	}

	lab, err := NewExporter(exportServer(t, nodes, links), "clab-lab1").Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if lab.Name != "clab-lab1" {
		t.Errorf("Name = %q", lab.Name)
	}
	if lab.Mgmt.Network != "clab-lab1-mgmt" {
		t.Errorf("Network = %q", lab.Mgmt.Network)
	}
	if lab.Mgmt.IPv4Subnet != "10.0.0.0/28" {
		t.Errorf("IPv4Subnet = %q, want 10.0.0.0/28", lab.Mgmt.IPv4Subnet)
	}

	if len(lab.Topology.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2: %+v", len(lab.Topology.Nodes), lab.Topology.Nodes)
	}
	leaf1 := lab.Topology.Nodes["leaf1"]
	if leaf1.Kind != "nokia_srlinux" || leaf1.MgmtIPv4 != "10.0.0.1" ||
		leaf1.Image != "ghcr.io/nokia/srlinux:25.3.1" {
		t.Errorf("leaf1 = %+v", leaf1)
	}
	sr1 := lab.Topology.Nodes["sr1"]
	if sr1.Kind != "nokia_sros" || sr1.MgmtIPv4 != "10.0.0.9" {
		t.Errorf("sr1 = %+v", sr1)
	}

	if len(lab.Topology.Links) != 1 {
		t.Fatalf("links = %d, want 1", len(lab.Topology.Links))
	}
	want := []string{"leaf1:ethernet-1-1", "sr1:ethernet-1-1"}
	got := lab.Topology.Links[0].Endpoints
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("endpoints = %v, want %v", got, want)
	}
}

func TestExportDefaultSubnet(t *testing.T) {
	nodes := []map[string]any{
		{
			"metadata": map[string]any{"name": "leaf1"},
			"spec": map[string]any{
				"productionAddress": map[string]any{"ipv4": "not-an-ip"},
			},
		},
	}
	lab, err := NewExporter(exportServer(t, nodes, nil), "clab-lab1").Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if lab.Mgmt.IPv4Subnet != defaultMgmtSubnet {
		t.Errorf("IPv4Subnet = %q, want %q", lab.Mgmt.IPv4Subnet, defaultMgmtSubnet)
	}
}

func TestExportMissingNamespace(t *testing.T) {
	client := exportServer(t, nil, nil)
	if _, err := NewExporter(client, "clab-nope").Export(); err == nil {
		t.Fatal("expected error for unknown namespace")
	}
}

func testTopology(t *testing.T) *topology.Topology {
	t.Helper()
	doc := map[string]any{
		"type": "clab",
		"name": "lab1",
		"clab": map[string]any{"config": map[string]any{"mgmt": map[string]any{"ipv4-subnet": "10.0.0.0/24"}}},
		"nodes": map[string]any{
			"leaf1": map[string]any{
				"kind":              "nokia_srlinux",
				"image":             "ghcr.io/nokia/srlinux:24.10.1",
				"mgmt-ipv4-address": "10.0.0.1",
			},
			"leaf2": map[string]any{
				"kind":              "nokia_srlinux",
				"image":             "ghcr.io/nokia/srlinux:24.10.1",
				"mgmt-ipv4-address": "10.0.0.2",
			},
		},
		"links": []any{
			map[string]any{
				"a": map[string]any{"node": "leaf1", "interface": "e1-1"},
				"z": map[string]any{"node": "leaf2", "interface": "e1-1"},
			},
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "topology-data.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	topo, err := topology.Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	return topo
}

func TestGenerate(t *testing.T) {
	categories, err := NewGenerator(testTopology(t), false).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := map[string]int{
		"artifacts":             1,
		"init":                  1,
		"node-security-profile": 1,
		"node-user-group":       1,
		"node-user":             1,
		"node-profiles":         1,
		"toponodes":             2,
		"topolink-interfaces":   2,
		"topolinks":             1,
	}
	if len(categories) != len(want) {
		t.Fatalf("categories = %d, want %d", len(categories), len(want))
	}
	for _, cat := range categories {
		if want[cat.Name] != len(cat.Docs) {
			t.Errorf("category %s has %d docs, want %d", cat.Name, len(cat.Docs), want[cat.Name])
		}
	}
	if categories[0].Name != "artifacts" || categories[len(categories)-1].Name != "topolinks" {
		t.Errorf("unexpected category order: %v", categories)
	}
}

func TestWriteCombined(t *testing.T) {
	categories, err := NewGenerator(testTopology(t), false).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	path := filepath.Join(t.TempDir(), "manifests.yaml")
	if err := WriteCombined(categories, path); err != nil {
		t.Fatalf("WriteCombined: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(raw)
	for _, header := range []string{"# --- ARTIFACTS ---", "# --- TOPONODES ---"} {
		if !strings.Contains(content, header) {
			t.Errorf("combined manifest missing %q", header)
		}
	}
}

func TestWriteSeparate(t *testing.T) {
	categories, err := NewGenerator(testTopology(t), false).Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "manifests")
	if err := WriteSeparate(categories, dir); err != nil {
		t.Fatalf("WriteSeparate: %v", err)
	}
	for _, cat := range categories {
		if _, err := os.Stat(filepath.Join(dir, cat.Name+".yaml")); err != nil {
			t.Errorf("missing manifest file for %s: %v", cat.Name, err)
		}
	}
}
