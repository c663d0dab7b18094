package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jpl-au/rvdata"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Settings is the merged view of flags, environment and config file.
type Settings struct {
	Verbose      bool   `mapstructure:"verbose"`
	TagAlgorithm string `mapstructure:"tag_algorithm"`
	SyncWrites   bool   `mapstructure:"sync_writes"`
	Export       struct {
		Layout      string `mapstructure:"layout"`
		LineEndings string `mapstructure:"line_endings"`
		Labels      bool   `mapstructure:"labels"`
	} `mapstructure:"export"`

	source string
}

// settings is filled by the root command before any subcommand runs.
var settings *Settings

var tagAlgorithms = map[string]int{
	"xxh3":    rvdata.AlgXXHash3,
	"fnv1a":   rvdata.AlgFNV1a,
	"blake2b": rvdata.AlgBlake2b,
}

func loadSettings(cmd *cobra.Command) (*Settings, error) {
	v := viper.New()

	v.SetDefault("verbose", false)
	v.SetDefault("tag_algorithm", "xxh3")
	v.SetDefault("sync_writes", false)
	v.SetDefault("export.layout", rvdata.LayoutGrouped.String())
	v.SetDefault("export.line_endings", rvdata.CRLF.String())
	v.SetDefault("export.labels", false)

	v.SetEnvPrefix("RVDATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if f := cmd.Flags().Lookup("verbose"); f != nil {
		if err := v.BindPFlag("verbose", f); err != nil {
			return nil, err
		}
	}
	for key, flag := range map[string]string{
		"export.layout":       "layout",
		"export.line_endings": "line-endings",
		"export.labels":       "labels",
	} {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("rvdata")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	s.source = v.ConfigFileUsed()
	return s, nil
}

// Config converts the settings into library options.
func (s *Settings) Config() (rvdata.Config, error) {
	alg, ok := tagAlgorithms[strings.ToLower(s.TagAlgorithm)]
	if !ok {
		return rvdata.Config{}, fmt.Errorf("%w: %q", rvdata.ErrAlgorithm, s.TagAlgorithm)
	}
	return rvdata.Config{TagAlgorithm: alg, SyncWrites: s.SyncWrites}, nil
}

// ExportOptions converts the export settings into library options.
func (s *Settings) ExportOptions() (rvdata.ExportOptions, error) {
	layout, err := rvdata.ParseLayout(s.Export.Layout)
	if err != nil {
		return rvdata.ExportOptions{}, err
	}
	le, err := rvdata.ParseLineEnding(s.Export.LineEndings)
	if err != nil {
		return rvdata.ExportOptions{}, err
	}
	return rvdata.ExportOptions{Layout: layout, LineEndings: le, Labels: s.Export.Labels}, nil
}
