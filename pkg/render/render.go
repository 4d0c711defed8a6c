// Package render produces EDA custom resource YAML from embedded templates.
package render

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Render executes the named template with the given data and returns the
// resulting YAML document.
func Render(name string, data any) (string, error) {
	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), nil
}

// Artifact describes a schema artifact hosted in the EDA artifact server.
type Artifact struct {
	Name      string
	Namespace string
	Filename  string
	URL       string
}

// Init bootstraps the base resources of a freshly created namespace.
type Init struct {
	Namespace string
}

// NodeSecurityProfile references the EDA node issuer for managed nodes.
type NodeSecurityProfile struct {
	Namespace string
}

// NodeUserGroup defines the group node users are bound to.
type NodeUserGroup struct {
	Namespace string
}

// NodeUser defines a login account pushed to managed nodes.
type NodeUser struct {
	Namespace  string
	Name       string
	Username   string
	Password   string
	Selector   string
	SSHPubKeys []string
}

// NodeProfile carries the onboarding parameters for one OS/version combo.
type NodeProfile struct {
	Namespace          string
	Name               string
	OperatingSystem    string
	Version            string
	VersionPath        string
	VersionMatch       string
	GnmiPort           string
	YangPath           string
	Annotate           string
	NodeUser           string
	OnboardingUsername string
	OnboardingPassword string
	SwImage            string
	SwImageMd5         string
	License            string
	LLMDb              string
}

// Component is a hardware element listed on a TopoNode (line card, MDA,
// connector).
type Component struct {
	Kind string
	Slot string
	Type string
}

// TopoNode describes a managed node resource.
type TopoNode struct {
	Namespace    string
	Name         string
	Topology     string
	Role         string
	NodeProfile  string
	Kind         string
	Platform     string
	Version      string
	MgmtIP       string
	ContainerLab string
	Components   []Component
}

// Interface describes a link endpoint interface resource.
type Interface struct {
	Namespace   string
	Name        string
	LabelKey    string
	LabelValue  string
	EncapType   string
	NodeName    string
	Interface   string
	Description string
}

// TopoLink describes a point-to-point link between two managed nodes.
type TopoLink struct {
	Namespace       string
	Name            string
	Role            string
	LocalNode       string
	LocalInterface  string
	RemoteNode      string
	RemoteInterface string
}
