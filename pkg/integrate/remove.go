package integrate

import (
	"fmt"

	"github.com/eda-labs/clab-connector/pkg/eda"
	"github.com/eda-labs/clab-connector/pkg/topology"
	"github.com/eda-labs/clab-connector/pkg/util"
)

// Remover tears down all EDA resources of a topology by deleting its
// namespace, which cascades to everything created during integration.
type Remover struct {
	eda *eda.Client
}

// NewRemover returns a Remover.
func NewRemover(edaClient *eda.Client) *Remover {
	return &Remover{eda: edaClient}
}

// Run removes the topology's namespace from EDA.
func (r *Remover) Run(topo *topology.Topology) error {
	if !r.eda.IsUp() {
		return fmt.Errorf("%w: EDA is not up or unreachable", util.ErrConnectionFailed)
	}

	ns := topo.Namespace()
	util.Infof("== Removing namespace %s ==", ns)
	r.eda.AddDeleteToTransaction("", "Namespace", ns, "", "")
	if _, err := r.eda.CommitTransaction("remove namespace "+ns, false); err != nil {
		return err
	}
	util.Info("Done!")
	return nil
}
