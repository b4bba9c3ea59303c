package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mewkiz/pkg/jsonutil"
	"github.com/spf13/cobra"

	"omibyte.io/preservenone/builder"
	"omibyte.io/preservenone/compiler/loader"
)

var (
	buildOpts = struct {
		writeList   string
		loadList    string
		infect      bool
		config      string
		target      string
		tags        string
		verbose     string
		allPackages bool
		dot         string
		stats       string
		json        bool
	}{}

	buildCmd = &cobra.Command{
		Use:   "build [packages]",
		Short: "Run the preserve-none passes over packages",
		Long: `Load the packages, infect the callers of preserve-none functions and record or
apply the names of preserve-none functions in a function list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := builder.Environment()
			builderOptions := builder.DefaultOptions(env)
			builderOptions.Output = cmd.ErrOrStderr()

			// Apply the configuration file
			configPath := env.Value("PNONE_CONFIG")
			if cmd.Flags().Changed("config") {
				configPath = buildOpts.config
			}
			if len(configPath) > 0 {
				config, err := builder.LoadConfig(configPath)
				if err != nil {
					return err
				}
				if err = config.Apply(&builderOptions); err != nil {
					return err
				}
			}

			// Command line flags take precedence
			flags := cmd.Flags()
			if flags.Changed("write-list") {
				builderOptions.WriteList = buildOpts.writeList
			}
			if flags.Changed("load-list") {
				builderOptions.LoadList = buildOpts.loadList
			}
			if flags.Changed("infect") {
				builderOptions.Infect = buildOpts.infect
			}
			if flags.Changed("target") {
				builderOptions.Target = buildOpts.target
			}
			if flags.Changed("tags") {
				builderOptions.BuildTags = strings.Split(buildOpts.tags, ",")
			}
			if flags.Changed("all") {
				builderOptions.AllPackages = buildOpts.allPackages
			}
			if flags.Changed("verbose") {
				verbosity, err := builder.ParseVerbosity(buildOpts.verbose)
				if err != nil {
					return err
				}
				builderOptions.Verbosity = verbosity
			}
			builderOptions.DotOutput = buildOpts.dot
			builderOptions.StatsOutput = buildOpts.stats

			if len(args) == 0 {
				// Build the current directory by default
				builderOptions.Packages = []string{"."}
			} else {
				builderOptions.Packages = packagePatterns(args)
			}

			// Begin building the packages
			result, err := builder.Build(context.Background(), builderOptions)
			if err != nil {
				if errors.Is(err, loader.ErrParserError) {
					return fmt.Errorf("build error: %w", err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if buildOpts.json {
				return jsonutil.Write(out, result.Report())
			}

			for _, name := range result.Marked {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
)

func init() {
	buildCmd.Flags().StringVar(&buildOpts.writeList, "write-list", "-", "append the names of preserve-none functions to this file (\"-\" disables)")
	buildCmd.Flags().StringVar(&buildOpts.loadList, "load-list", "-", "mark the functions named in this file as preserve-none (\"-\" disables)")
	buildCmd.Flags().BoolVar(&buildOpts.infect, "infect", false, "propagate preserve-none into eligible callers")
	buildCmd.Flags().StringVarP(&buildOpts.config, "config", "c", "", "configuration file. Default: $PNONE_CONFIG")
	buildCmd.Flags().StringVar(&buildOpts.target, "target", "", "target architecture. Default: $PNONE_TARGET")
	buildCmd.Flags().StringVarP(&buildOpts.tags, "tags", "t", "", "build tags")
	buildCmd.Flags().StringVarP(&buildOpts.verbose, "verbose", "v", "warning", "verbosity level (=quiet, =warning, =info, =debug)")
	buildCmd.Flags().BoolVar(&buildOpts.allPackages, "all", false, "also run the passes over dependencies")
	buildCmd.Flags().StringVar(&buildOpts.dot, "dot", "", "write the call graph in DOT format to this file")
	buildCmd.Flags().StringVar(&buildOpts.stats, "stats", "", "write the pass statistics in JSON format to this file")
	buildCmd.Flags().BoolVar(&buildOpts.json, "json", false, "print the result as JSON")
}

func packagePatterns(args []string) []string {
	cwd, err := os.Getwd()
	if err != nil {
		return args
	}

	var patterns []string
	for _, arg := range args {
		// Convert the paths to relative paths
		if filepath.IsAbs(arg) {
			if path, err := filepath.Rel(cwd, arg); err == nil {
				arg = "./" + filepath.ToSlash(path)
			}
		}
		patterns = append(patterns, arg)
	}
	return patterns
}
