package main

import (
	"github.com/jpl-au/rvdata"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <project> <src>",
	Short: "Rebuild a project's Scripts file from a grouped or flat export",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings.Config()
		if err != nil {
			return err
		}
		set, err := rvdata.Import(args[1])
		if err != nil {
			return err
		}

		path := rvdata.NewProject(cfg).ScriptsPath(args[0])
		if err := set.Save(path, cfg); err != nil {
			return err
		}
		logger.Info("imported scripts", "count", set.Len(), "path", path)
		return nil
	},
}
