package topology

import (
	"fmt"

	"github.com/eda-labs/clab-connector/pkg/render"
)

// Link is a bidirectional connection between two topology endpoints.
// Either node may be an unmanaged kind; classification methods decide
// whether the link becomes an EDA resource.
type Link struct {
	NodeA Node
	IfA   string
	NodeB Node
	IfB   string
}

// IsTopolink reports whether both endpoints are managed nodes.
func (l *Link) IsTopolink() bool {
	return l.NodeA != nil && l.NodeA.Supported() &&
		l.NodeB != nil && l.NodeB.Supported()
}

// IsEdgeLink reports whether exactly one endpoint is a managed node and
// the other is a linux container.
func (l *Link) IsEdgeLink() bool {
	if l.NodeA == nil || l.NodeB == nil {
		return false
	}
	if l.NodeA.Supported() && l.NodeB.Kind() == "linux" {
		return true
	}
	return l.NodeB.Supported() && l.NodeA.Kind() == "linux"
}

// Name builds the TopoLink resource name. Interface tokens are normalized
// per endpoint OS so spelling variants yield the same name.
func (l *Link) Name() string {
	return fmt.Sprintf("%s-%s-%s-%s",
		l.NodeA.ResourceName(), l.NodeA.LinkToken(l.IfA),
		l.NodeB.ResourceName(), l.NodeB.LinkToken(l.IfB),
	)
}

// TopolinkYAML renders the TopoLink resource, or returns empty when the
// link is neither an inter-switch nor an edge link.
func (l *Link) TopolinkYAML(t *Topology) (string, error) {
	var role string
	switch {
	case l.IsTopolink():
		role = "interSwitch"
	case l.IsEdgeLink():
		role = "edge"
	default:
		return "", nil
	}
	return render.Render("topolink.yaml.tmpl", render.TopoLink{
		Namespace:       t.Namespace(),
		Name:            l.Name(),
		Role:            role,
		LocalNode:       l.NodeA.ResourceName(),
		LocalInterface:  l.NodeA.InterfaceName(l.IfA),
		RemoteNode:      l.NodeB.ResourceName(),
		RemoteInterface: l.NodeB.InterfaceName(l.IfB),
	})
}
