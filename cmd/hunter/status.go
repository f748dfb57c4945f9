package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func statusCMD(cfgPath *string) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the configuration status report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}

			st := cfg.Status()
			if err := printJSON(cmd.OutOrStdout(), st); err != nil {
				return err
			}
			if strict && !st.Valid {
				return fmt.Errorf("configuration is incomplete: %d issue(s)", len(st.Issues))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the configuration is not valid")
	return cmd
}
