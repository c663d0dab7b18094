package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/jpl-au/rvdata"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print any Marshal data file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		v, err := rvdata.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		logger.Debug("decoded", "file", args[0], "bytes", len(data), "kind", v.Kind())
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	},
}
