// clab-connector — containerlab to Nokia EDA integration
//
// clab-connector onboards a deployed containerlab topology into an EDA
// cluster and manages its lifecycle from there.
//
// Usage:
//
//	clab-connector integrate -t <topology-data.json> -e <eda-url>
//	clab-connector remove -t <topology-data.json> -e <eda-url>
//	clab-connector check-sync -e <eda-url> --namespace <ns>
//	clab-connector health -e <eda-url>
//	clab-connector export-lab -e <eda-url> --namespace <ns>
//	clab-connector generate-crs -t <topology-data.json>
package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/eda-labs/clab-connector/pkg/cli"
	"github.com/eda-labs/clab-connector/pkg/eda"
	"github.com/eda-labs/clab-connector/pkg/util"
	"github.com/eda-labs/clab-connector/pkg/version"
)

var (
	logLevel    string
	edaURL      string
	edaUser     string
	edaPassword string
	verifyTLS   bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Red("Error: ")+err.Error())
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "clab-connector",
	Short:             "Integrate containerlab topologies with Nokia EDA",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `clab-connector onboards containerlab topologies into Nokia EDA.

It reads the topology-data.json that containerlab writes on deploy,
creates the corresponding EDA resources transactionally, and can check,
export, or remove the result.

  clab-connector integrate -t clab-mylab/topology-data.json -e https://eda.example`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return util.SetLogLevel(logLevel)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVarP(&edaURL, "eda-url", "e", "", "EDA API server URL (env EDA_URL)")
	pf.StringVar(&edaUser, "eda-user", "", "EDA username (env EDA_USER, default admin)")
	pf.StringVar(&edaPassword, "eda-password", "", "EDA password (env EDA_PASSWORD, prompted when empty)")
	pf.BoolVar(&verifyTLS, "verify", false, "verify the EDA TLS certificate")

	rootCmd.AddCommand(
		newIntegrateCmd(),
		newRemoveCmd(),
		newCheckSyncCmd(),
		newHealthCmd(),
		newExportLabCmd(),
		newGenerateCRsCmd(),
		newVersionCmd(),
	)
}

// newEDAClient resolves the connection settings from flags and
// environment, prompting for the password as a last resort.
func newEDAClient() (*eda.Client, error) {
	url := edaURL
	if url == "" {
		url = os.Getenv("EDA_URL")
	}
	if url == "" {
		return nil, fmt.Errorf("EDA URL required: use -e <url> or set EDA_URL")
	}
	url = strings.TrimSuffix(url, "/")

	user := edaUser
	if user == "" {
		user = os.Getenv("EDA_USER")
	}
	if user == "" {
		user = "admin"
	}

	password := edaPassword
	if password == "" {
		password = os.Getenv("EDA_PASSWORD")
	}
	if password == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return nil, fmt.Errorf("EDA password required: use --eda-password or set EDA_PASSWORD")
		}
		fmt.Fprintf(os.Stderr, "Password for %s: ", user)
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		password = string(raw)
	}

	return eda.NewClient(url, user, password, verifyTLS), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			if version.Version == "dev" {
				fmt.Println("clab-connector dev build")
			} else {
				fmt.Printf("clab-connector %s\n", version.Info())
			}
		},
	}
}
