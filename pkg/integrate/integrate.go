// Package integrate drives the end-to-end onboarding of a containerlab
// topology into EDA: namespace bootstrap, schema artifacts, profiles,
// users, node and link resources, and vendor-specific follow-up work.
package integrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eda-labs/clab-connector/pkg/eda"
	"github.com/eda-labs/clab-connector/pkg/kube"
	"github.com/eda-labs/clab-connector/pkg/render"
	"github.com/eda-labs/clab-connector/pkg/status"
	"github.com/eda-labs/clab-connector/pkg/topology"
	"github.com/eda-labs/clab-connector/pkg/util"
)

// Config tunes the integration run.
type Config struct {
	// TopoNodes are committed in batches so EDA does not try to
	// onboard every node at once.
	BatchSize  int
	BatchDelay time.Duration

	// When WaitForSync is set, the run blocks until all nodes report
	// synced, or SyncTimeout passes.
	WaitForSync  bool
	SyncTimeout  time.Duration
	SyncInterval time.Duration

	// SkipEdgeLinks leaves links towards plain linux containers out
	// of the created resources.
	SkipEdgeLinks bool

	// NodePassword is tried first when dialing nodes for
	// post-integration work, before the vendor default.
	NodePassword string

	// RollbackOnFailure restores EDA to the state before this run's
	// first commit when a later phase fails. Best effort.
	RollbackOnFailure bool
}

// DefaultConfig returns the tuning used by the CLI.
func DefaultConfig() Config {
	return Config{
		BatchSize:    3,
		BatchDelay:   2 * time.Second,
		SyncTimeout:  90 * time.Second,
		SyncInterval: 10 * time.Second,
	}
}

// Integrator creates all EDA resources for one topology.
type Integrator struct {
	eda  *eda.Client
	kube *kube.Client
	cfg  Config
	topo *topology.Topology

	// firstCommit is the transaction ID of this run's first commit,
	// the restore point for rollback.
	firstCommit string
}

// New returns an Integrator.
func New(edaClient *eda.Client, kubeClient *kube.Client, cfg Config) *Integrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &Integrator{eda: edaClient, kube: kubeClient, cfg: cfg}
}

// Run executes the full integration workflow for the topology. With
// RollbackOnFailure set, a failure after the first commit triggers a
// best-effort restore of EDA to its pre-integration state.
func (i *Integrator) Run(ctx context.Context, topo *topology.Topology) error {
	i.topo = topo

	err := i.run(ctx)
	if err != nil && i.cfg.RollbackOnFailure && i.firstCommit != "" {
		util.Warnf("Integration failed, restoring EDA to before transaction %s", i.firstCommit)
		if rerr := i.eda.RestoreTransaction(i.firstCommit); rerr != nil {
			util.Errorf("Restore failed: %v", rerr)
		}
	}
	return err
}

func (i *Integrator) run(ctx context.Context) error {
	util.Info("== Checking node connectivity ==")
	if err := i.checkConnectivity(); err != nil {
		return err
	}

	util.Info("== Running pre-checks ==")
	if err := i.prechecks(); err != nil {
		return err
	}

	util.Info("== Creating namespace ==")
	if err := i.createNamespace(); err != nil {
		return err
	}

	util.Info("== Creating artifacts ==")
	i.createArtifacts()

	util.Info("== Creating init ==")
	if err := i.createInit(); err != nil {
		return err
	}

	util.Info("== Creating node security profile ==")
	if err := i.createNodeSecurityProfile(); err != nil {
		return err
	}

	util.Info("== Creating node users ==")
	if err := i.createNodeUsers(); err != nil {
		return err
	}

	util.Info("== Creating node profiles ==")
	if err := i.createNodeProfiles(); err != nil {
		return err
	}

	util.Info("== Onboarding nodes ==")
	if err := i.createTopoNodes(ctx); err != nil {
		return err
	}

	util.Info("== Adding topolink interfaces ==")
	if err := i.createTopolinkInterfaces(); err != nil {
		return err
	}

	util.Info("== Creating topolinks ==")
	if err := i.createTopolinks(); err != nil {
		return err
	}

	util.Info("== Running post-integration steps ==")
	i.runPostIntegration()

	if i.cfg.WaitForSync {
		util.Info("== Waiting for nodes to synchronize ==")
		checker := status.NewChecker(i.eda, i.topo.Namespace())
		names := make([]string, 0, len(i.topo.Nodes))
		for _, n := range i.topo.Nodes {
			names = append(names, n.ResourceName())
		}
		if !checker.WaitForNodesReady(ctx, names, i.cfg.SyncTimeout, i.cfg.SyncInterval) {
			// The resources are all committed at this point, so a slow
			// node is not a failed integration.
			s := status.Summarize(checker.CheckAll(names))
			util.Warnf("Nodes did not synchronize within %s: %d/%d ready, %d syncing, %d pending, %d in error",
				i.cfg.SyncTimeout, s.Ready, s.Total, s.Syncing, s.Pending, s.Errors)
		}
	}

	util.Info("Done!")
	return nil
}

// commit commits the transaction buffer and remembers the first
// transaction ID as the rollback restore point.
func (i *Integrator) commit(description string) error {
	id, err := i.eda.CommitTransaction(description, false)
	if err != nil {
		return err
	}
	if i.firstCommit == "" {
		i.firstCommit = id
	}
	return nil
}

// checkConnectivity verifies that EDA's bootstrap server can reach every
// node's management address; an unreachable node would fail onboarding
// much later with a far less obvious error.
func (i *Integrator) checkConnectivity() error {
	for _, n := range i.topo.Nodes {
		if !i.kube.PingFromBootstrapServer(n.MgmtIPv4()) {
			return fmt.Errorf("%w: node %s (%s) is unreachable from the bootstrap server",
				util.ErrConnectionFailed, n.Name(), n.MgmtIPv4())
		}
	}
	return nil
}

func (i *Integrator) prechecks() error {
	if !i.eda.IsUp() {
		return fmt.Errorf("%w: EDA is not up or unreachable", util.ErrConnectionFailed)
	}
	if !i.eda.IsAuthenticated() {
		return fmt.Errorf("%w: EDA credentials are invalid", util.ErrConnectionFailed)
	}
	return nil
}

func (i *Integrator) createNamespace() error {
	ns := i.topo.Namespace()
	if _, err := i.kube.BootstrapNamespace(ns); err != nil {
		return err
	}
	if err := i.kube.WaitForNamespace(ns, 10, time.Second); err != nil {
		return err
	}
	desc := fmt.Sprintf("Containerlab %s: %s", i.topo.Name, i.topo.ClabFilePath)
	if err := i.kube.UpdateNamespaceDescription(ns, desc, 5, 2*time.Second); err != nil {
		util.Warnf("Namespace description not updated: %v", err)
	}
	return nil
}

// createArtifacts uploads one schema artifact per distinct artifact
// name. Existing artifacts and nodes without artifact info are skipped;
// failures here do not abort the run since other nodes may still
// onboard fine.
func (i *Integrator) createArtifacts() {
	type artifactInfo struct {
		filename string
		url      string
		nodes    []string
		source   topology.Node
	}
	var order []string
	byName := map[string]*artifactInfo{}

	for _, n := range i.topo.Nodes {
		if !n.NeedsArtifact() {
			continue
		}
		name, filename, url := n.ArtifactInfo()
		if name == "" || filename == "" || url == "" {
			util.Warnf("No artifact info for node %s, skipping", n.Name())
			continue
		}
		if byName[name] == nil {
			byName[name] = &artifactInfo{filename: filename, url: url, source: n}
			order = append(order, name)
		}
		byName[name].nodes = append(byName[name].nodes, n.Name())
	}

	for _, name := range order {
		info := byName[name]
		util.Infof("Creating schema artifact %s (nodes: %v)", name, info.nodes)
		manifest, err := info.source.ArtifactYAML(name, info.filename, info.url)
		if err != nil {
			util.Errorf("Could not render artifact %s: %v", name, err)
			continue
		}
		err = i.kube.ApplyManifest(manifest, kube.SystemNamespace)
		var applyErr *kube.ApplyError
		switch {
		case err == nil:
		case errors.As(err, &applyErr) && applyErr.AlreadyExists:
			util.Infof("Artifact %s already exists", name)
		default:
			util.Errorf("Error creating artifact %s: %v", name, err)
		}
	}
}

func (i *Integrator) createInit() error {
	yml, err := render.Render("init.yaml.tmpl", render.Init{Namespace: i.topo.Namespace()})
	if err != nil {
		return err
	}
	if err := i.replaceAndValidate(yml, "init"); err != nil {
		return err
	}
	return i.commit("create init (bootstrap)")
}

func (i *Integrator) createNodeSecurityProfile() error {
	yml, err := render.Render("node-security-profile.yaml.tmpl",
		render.NodeSecurityProfile{Namespace: i.topo.Namespace()})
	if err != nil {
		return err
	}
	err = i.kube.ApplyManifest(yml, i.topo.Namespace())
	var applyErr *kube.ApplyError
	if errors.As(err, &applyErr) && applyErr.AlreadyExists {
		util.Info("Node security profile already exists, skipping")
		return nil
	}
	return err
}

func (i *Integrator) createNodeUsers() error {
	if len(i.topo.SSHPubKeys) == 0 {
		util.Warn("No SSH public keys found, proceeding with an empty key list")
	}
	group, err := render.Render("node-user-group.yaml.tmpl",
		render.NodeUserGroup{Namespace: i.topo.Namespace()})
	if err != nil {
		return err
	}
	if err := i.replaceAndValidate(group, "node user group"); err != nil {
		return err
	}

	for _, user := range i.topo.NodeUsers() {
		yml, err := render.Render("node-user.yaml.tmpl", user)
		if err != nil {
			return err
		}
		if err := i.replaceAndValidate(yml, "node user "+user.Name); err != nil {
			return err
		}
	}
	return i.commit("create node users and groups")
}

func (i *Integrator) createNodeProfiles() error {
	profiles, err := i.topo.NodeProfiles()
	if err != nil {
		return err
	}
	for _, prof := range profiles {
		if err := i.replaceAndValidate(prof, "node profile"); err != nil {
			return err
		}
	}
	return i.commit("create node profiles")
}

// createTopoNodes commits nodes in batches, pausing between batches so
// the cluster onboards a few nodes at a time.
func (i *Integrator) createTopoNodes(ctx context.Context) error {
	tnodes, err := i.topo.TopoNodes()
	if err != nil {
		return err
	}
	for start := 0; start < len(tnodes); start += i.cfg.BatchSize {
		if start > 0 {
			if err := sleep(ctx, i.cfg.BatchDelay); err != nil {
				return err
			}
		}
		end := min(start+i.cfg.BatchSize, len(tnodes))
		batch := start/i.cfg.BatchSize + 1
		util.Infof("Onboarding nodes %d-%d of %d", start+1, end, len(tnodes))
		for _, tn := range tnodes[start:end] {
			if err := i.replaceAndValidate(tn, "toponode"); err != nil {
				return err
			}
		}
		if err := i.commit(fmt.Sprintf("create toponodes (batch %d)", batch)); err != nil {
			return err
		}
	}
	return nil
}

func (i *Integrator) createTopolinkInterfaces() error {
	interfaces, err := i.topo.TopolinkInterfaces(i.cfg.SkipEdgeLinks)
	if err != nil {
		return err
	}
	if len(interfaces) == 0 {
		util.Info("No topolink interfaces to create")
		return nil
	}
	for _, intf := range interfaces {
		if err := i.replaceAndValidate(intf, "topolink interface"); err != nil {
			return err
		}
	}
	return i.commit("create topolink interfaces")
}

func (i *Integrator) createTopolinks() error {
	links, err := i.topo.Topolinks(i.cfg.SkipEdgeLinks)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		util.Info("No topolinks to create")
		return nil
	}
	for _, link := range links {
		if err := i.replaceAndValidate(link, "topolink"); err != nil {
			return err
		}
	}
	return i.commit("create topolinks")
}

// runPostIntegration performs vendor-specific follow-up per node. A
// failing node is reported but does not abort the others.
func (i *Integrator) runPostIntegration() {
	passwords := nodePasswords(i.cfg.NodePassword)
	for _, n := range i.topo.Nodes {
		var err error
		switch n.Kind() {
		case "nokia_sros":
			err = prepareSROSNode(i.kube, i.topo.Namespace(), n, passwords)
		case "ceos", "arista_ceos":
			err = prepareCEOSNode(i.kube, i.topo.Namespace(), n, passwords)
		default:
			continue
		}
		if err != nil {
			util.Errorf("Post-integration for %s failed: %v", n.Name(), err)
		}
	}
}

func (i *Integrator) replaceAndValidate(resource, what string) error {
	item, err := i.eda.AddReplaceToTransaction(resource)
	if err != nil {
		return err
	}
	if !i.eda.IsTransactionItemValid(item) {
		return util.NewValidationError(what, "rejected by transaction validation")
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
