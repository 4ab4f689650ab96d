package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/colorpick/config"
)

type rootOptions struct {
	configFile string
	manager    *config.Manager
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "colorpickd",
		Short: "Simulate background colour picking for render nodes",
		Long: `colorpickd runs render nodes over changing backgrounds through the
asynchronous colour picker, the way a compositor would: one prepare, sync
and draw pass per vsync, with sampling on the picker worker.

Settings come from colorpick.yaml in the working directory (or --config)
and COLORPICK_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}
			var mopts []config.Option
			if opts.configFile != "" {
				mopts = append(mopts, config.WithConfigFile(opts.configFile))
			}
			opts.manager = config.NewManager(mopts...)
			if err := opts.manager.Load(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default ./colorpick.yaml)")

	cmd.AddCommand(newRunCmd(opts), newConfigCmd(opts))
	return cmd
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := yaml.Marshal(opts.manager.Get())
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			if used := opts.manager.FileUsed(); used != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", used)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
