package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/mtgtop8-sync/internal/app"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Validate and print the effective curation rules",
		Long: `Loads the curation rules file (or the built-in rules when it is missing),
validates it and prints the result as YAML. Redirect the output to a file to
start a custom rules file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(app.Overrides{
				ConfigPath: flagConfig,
				DBPath:     flagDB,
				RulesPath:  flagRules,
			})
			if err != nil {
				return err
			}
			rules, err := app.LoadRules(cfg)
			if err != nil {
				return err
			}
			data, err := rules.Marshal()
			if err != nil {
				return fmt.Errorf("encoding rules: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
