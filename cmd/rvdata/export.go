package main

import (
	"github.com/jpl-au/rvdata"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <project> <dest>",
	Short: "Write a project's scripts as .rb files",
	Long: `Write a project's scripts as .rb files.

Layouts:
  grouped  one directory per "▼ Group" marker (default)
  flat     every script directly under dest
  single   one file named dest holding every script`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings.Config()
		if err != nil {
			return err
		}
		opts, err := settings.ExportOptions()
		if err != nil {
			return err
		}

		path := rvdata.NewProject(cfg).ScriptsPath(args[0])
		logger.Debug("reading scripts", "path", path)
		set, err := rvdata.LoadScripts(path)
		if err != nil {
			return err
		}
		if err := rvdata.Export(set, args[1], opts); err != nil {
			return err
		}
		logger.Info("exported scripts", "count", set.Len(), "dest", args[1], "layout", opts.Layout, "line_endings", opts.LineEndings)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("layout", "", "grouped, flat or single")
	exportCmd.Flags().String("line-endings", "", "crlf or lf")
	exportCmd.Flags().Bool("labels", false, "single layout: put a banner before each script")
}
