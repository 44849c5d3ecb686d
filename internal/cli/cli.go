// Package cli wires the fabric's binaries to cobra/pflag. Both runners
// accept an --config flag pointing at an INI file, falling back to
// positional args when no file is given.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nabbar/svc-fabric/internal/config"
	"github.com/nabbar/svc-fabric/internal/iniconf"
)

// ServerCommand builds the fabric-server root command. run receives the
// resolved configuration once flags/positional-args/INI are reconciled.
func ServerCommand(run func(cfg *config.Server) int) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "fabric-server [mcAddr mcPort svcPort monPort [presence prAddr prPort] [daemon]]",
		Short: "Announce this machine on the LAN and dispatch work to it",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, e := resolveServer(cfgFile, args)
			if e != nil {
				return e
			}
			os.Exit(run(cfg))
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "path to the INI configuration file")
	pflag.CommandLine.AddFlagSet(cmd.Flags())

	return cmd
}

// ClientCommand builds the fabric-client root command.
func ClientCommand(run func(cfg *config.Client) int) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "fabric-client [mcAddr mcPort [presence prAddr prPort] [daemon]]",
		Short: "Discover fabric servers on the LAN and dispatch work to the best one",
		RunE: func(c *cobra.Command, args []string) error {
			cfg, e := resolveClient(cfgFile, args)
			if e != nil {
				return e
			}
			os.Exit(run(cfg))
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgFile, "config", "c", "", "path to the INI configuration file")
	pflag.CommandLine.AddFlagSet(cmd.Flags())

	return cmd
}

func resolveServer(cfgFile string, args []string) (*config.Server, error) {
	if cfgFile != "" {
		return loadServerFile(cfgFile)
	}
	return config.ServerFromArgs(args)
}

func resolveClient(cfgFile string, args []string) (*config.Client, error) {
	if cfgFile != "" {
		return loadClientFile(cfgFile)
	}
	return config.ClientFromArgs(args)
}

func loadServerFile(path string) (*config.Server, error) {
	f, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer f.Close()

	tree, e := iniconf.Parse(f)
	if e != nil {
		return nil, e
	}

	return config.LoadServer(tree)
}

func loadClientFile(path string) (*config.Client, error) {
	f, e := os.Open(path)
	if e != nil {
		return nil, e
	}
	defer f.Close()

	tree, e := iniconf.Parse(f)
	if e != nil {
		return nil, e
	}

	return config.LoadClient(tree)
}
