// Command rvdata inspects and converts RPG Maker VX Ace projects.
//
//	rvdata info <project>                 summarise the Data directory
//	rvdata export <project> <dest>        write the scripts as .rb files
//	rvdata import <project> <src>         rebuild Scripts from an export
//	rvdata dump <file>                    print any data file as JSON
//
// Settings come from flags, RVDATA_* environment variables and an
// optional rvdata.toml in the working directory, in that order.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is set via -ldflags.
	Version = "dev"

	verbose bool
	cfgFile string

	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "rvdata"})

	rootCmd = &cobra.Command{
		Use:   "rvdata",
		Short: "Read and convert RPG Maker VX Ace project data",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if s.Verbose {
				logger.SetLevel(log.DebugLevel)
			}
			settings = s
			logger.Debug("settings", "tag_algorithm", s.TagAlgorithm, "sync_writes", s.SyncWrites, "config", s.source)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./rvdata.toml)")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(dumpCmd)
}

func main() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
