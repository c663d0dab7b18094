package main

import (
	"fmt"

	"github.com/jpl-au/rvdata"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <project>",
	Short: "Summarise a project's Data directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := settings.Config()
		if err != nil {
			return err
		}
		logger.Debug("loading project", "dir", args[0])
		p, err := rvdata.LoadProject(args[0], cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(args[0]))
		for _, c := range p.Database.Categories() {
			coll := p.Database.Collection(c)
			fmt.Fprintf(out, "%s%d (next id %d)\n", labelStyle.Render(string(c)), coll.Len(), coll.NextID())
		}
		system := "none"
		if sys := p.Database.System(); sys != nil {
			system = sys.Class()
		}
		fmt.Fprintf(out, "%s%s\n", labelStyle.Render("system"), system)
		fmt.Fprintf(out, "%s%d\n", labelStyle.Render("scripts"), p.Scripts.Len())
		return nil
	},
}
