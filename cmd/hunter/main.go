package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "hunter",
		Short:         "Find buyer leads in web search results",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var cfgPath string
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default configs/config.yaml)")

	root.AddCommand(runCMD(&cfgPath), statusCMD(&cfgPath), migrateCMD(&cfgPath))
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
