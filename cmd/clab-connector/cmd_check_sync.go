package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eda-labs/clab-connector/pkg/cli"
	"github.com/eda-labs/clab-connector/pkg/status"
	"github.com/eda-labs/clab-connector/pkg/topology"
)

func newCheckSyncCmd() *cobra.Command {
	var topologyFile string
	var namespace string

	cmd := &cobra.Command{
		Use:   "check-sync",
		Short: "Check the synchronization state of onboarded nodes",
		Long: `Check-sync reports how far each node of a topology has progressed
in syncing with EDA. The nodes are taken from the topology file when
given, otherwise from the namespace's toponodes.

  clab-connector check-sync -e https://eda.example --namespace clab-mylab`,
		RunE: func(cmd *cobra.Command, args []string) error {
			edaClient, err := newEDAClient()
			if err != nil {
				return err
			}

			var names []string
			if topologyFile != "" {
				topo, err := topology.Parse(topologyFile)
				if err != nil {
					return err
				}
				if namespace == "" {
					namespace = topo.Namespace()
				}
				for _, n := range topo.Nodes {
					names = append(names, n.ResourceName())
				}
			}
			if namespace == "" {
				return fmt.Errorf("namespace required: use --namespace or -t <topology-data.json>")
			}

			checker := status.NewChecker(edaClient, namespace)
			if len(names) == 0 {
				names = checker.ListTopoNodes()
			}
			if len(names) == 0 {
				if suggestion := checker.SuggestNamespace(namespace); suggestion != "" {
					return fmt.Errorf("no toponodes found in namespace %s; did you mean %s?",
						namespace, suggestion)
				}
				return fmt.Errorf("no toponodes found in namespace %s", namespace)
			}

			statuses := checker.CheckAll(names)
			printStatuses(statuses)

			summary := status.Summarize(statuses)
			fmt.Printf("\n%d/%d nodes ready", summary.Ready, summary.Total)
			if summary.Errors > 0 {
				fmt.Printf(", %d in error", summary.Errors)
			}
			fmt.Println()
			if summary.Ready != summary.Total {
				return fmt.Errorf("%d nodes not yet synced", summary.Total-summary.Ready)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&topologyFile, "topology-data", "t", "", "path to topology-data.json")
	cmd.Flags().StringVar(&namespace, "namespace", "", "EDA namespace holding the topology")
	return cmd
}

func printStatuses(statuses []status.NodeStatus) {
	table := cli.NewTable("NODE", "STATUS", "NODE-STATE", "DETAIL")
	for _, s := range statuses {
		table.Row(s.Name, colorStatus(string(s.Status), s.Status), s.NodeState, s.Detail)
	}
	table.Flush()
}

func colorStatus(text string, s status.SyncStatus) string {
	switch s {
	case status.StatusReady:
		return cli.Green(text)
	case status.StatusSyncing, status.StatusPending:
		return cli.Yellow(text)
	case status.StatusError:
		return cli.Red(text)
	default:
		return cli.Dim(text)
	}
}
