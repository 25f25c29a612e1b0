package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/forgescript/forgekit"
	"github.com/forgescript/forgekit/metadata"
	"github.com/forgescript/forgekit/parser"
	"github.com/forgescript/forgekit/validator"
	"github.com/forgescript/forgekit/visitor"
)

// options holds the persistent flags shared by the subcommands.
type options struct {
	repos     []string
	cacheFile string
	timeout   time.Duration
	debug     bool
}

// logger returns a stderr text logger when --debug is set, nil
// otherwise. The library packages treat a nil logger as silence.
func (o *options) logger() *slog.Logger {
	if !o.debug {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "forgekit",
		Short: "Parse, analyze, and validate ForgeScript templates",
	}

	rootCmd.PersistentFlags().StringSliceVar(&opts.repos, "repo", nil, "GitHub metadata repo as owner/name[@branch] (repeatable)")
	rootCmd.PersistentFlags().StringVar(&opts.cacheFile, "cache", "", "Path to a metadata cache file")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Metadata fetch timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug output")

	rootCmd.AddCommand(
		parseCmd(opts),
		statsCmd(),
		validateCmd(opts),
		fetchCmd(opts),
		functionsCmd(opts),
		completionsCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

func parseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a template and print its tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args)
			if err != nil {
				return err
			}
			var popts []parser.Option
			if l := opts.logger(); l != nil {
				popts = append(popts, parser.WithLogger(l))
			}
			doc, diags := parser.Parse(source, popts...)
			fmt.Print(visitor.FormatAST(doc))
			for _, d := range diags {
				fmt.Fprintf(os.Stderr, "warning: %v\n", d)
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Print tree statistics for a template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args)
			if err != nil {
				return err
			}
			doc, _ := parser.Parse(source)
			s := visitor.CalculateStats(doc)
			fmt.Printf("nodes:      %d\n", s.TotalNodes)
			fmt.Printf("text:       %d\n", s.TextNodes)
			fmt.Printf("escapes:    %d\n", s.EscapeNodes)
			fmt.Printf("calls:      %d\n", s.CallNodes)
			fmt.Printf("arguments:  %d\n", s.ArgumentNodes)
			fmt.Printf("max depth:  %d\n", s.MaxDepth)
			fmt.Printf("functions:  %d unique\n", s.UniqueFunctions)
			return nil
		},
	}
}

func validateCmd(opts *options) *cobra.Command {
	var (
		noArguments bool
		noEnums     bool
		noFunctions bool
		noBrackets  bool
		noEscapes   bool
	)
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a template against fetched metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args)
			if err != nil {
				return err
			}
			cat, err := loadCatalogue(opts)
			if err != nil {
				return err
			}
			cfg := validator.Strict()
			cfg.Arguments = cfg.Arguments && !noArguments
			cfg.Enums = cfg.Enums && !noEnums
			cfg.Functions = cfg.Functions && !noFunctions
			cfg.Brackets = cfg.Brackets && !noBrackets
			cfg.Escapes = cfg.Escapes && !noEscapes

			report, err := validator.ValidateCode(source, cat, cfg)
			if err != nil {
				return err
			}
			if report.Empty() {
				fmt.Println("ok")
				return nil
			}
			for _, f := range report.Findings {
				fmt.Println(f)
				if f.Suggestion != "" {
					fmt.Printf("  did you mean $%s?\n", f.Suggestion)
				}
			}
			os.Exit(1)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noArguments, "no-arguments", false, "Disable argument count checks")
	cmd.Flags().BoolVar(&noEnums, "no-enums", false, "Disable enum value checks")
	cmd.Flags().BoolVar(&noFunctions, "no-functions", false, "Disable unknown function checks")
	cmd.Flags().BoolVar(&noBrackets, "no-brackets", false, "Disable bracket checks")
	cmd.Flags().BoolVar(&noEscapes, "no-escapes", false, "Disable escape checks")
	return cmd
}

func fetchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch metadata and write it to the cache file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.repos) == 0 {
				return fmt.Errorf("at least one --repo is required")
			}
			if opts.cacheFile == "" {
				return fmt.Errorf("--cache is required to store fetched metadata")
			}
			cat := newCatalogue(opts)
			ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
			defer cancel()

			res := cat.FetchAll(ctx)
			fmt.Println(res)
			for _, f := range res.Failures {
				fmt.Fprintf(os.Stderr, "warning: %v\n", f)
			}
			data, err := cat.ExportCache()
			if err != nil {
				return err
			}
			return os.WriteFile(opts.cacheFile, data, 0o644)
		},
	}
}

func functionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List every known function",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalogue(opts)
			if err != nil {
				return err
			}
			for _, name := range cat.GetCompletions("") {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func completionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "completions <prefix>",
		Short: "List function names matching a prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalogue(opts)
			if err != nil {
				return err
			}
			names := cat.GetCompletions(args[0])
			if len(names) == 0 {
				if s := cat.Suggest(args[0]); s != "" {
					fmt.Fprintf(os.Stderr, "no matches; did you mean $%s?\n", s)
				}
				return nil
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the toolkit version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(forgekit.Info())
		},
	}
}

// newCatalogue registers one GitHub source per --repo value.
func newCatalogue(opts *options) *metadata.Catalogue {
	var copts []metadata.CatalogueOption
	if l := opts.logger(); l != nil {
		copts = append(copts, metadata.WithLogger(l))
	}
	cat := metadata.New(copts...)
	for _, entry := range opts.repos {
		repo, branch := entry, "main"
		if at := strings.LastIndex(entry, "@"); at >= 0 {
			repo, branch = entry[:at], entry[at+1:]
		}
		ext := repo
		if slash := strings.LastIndex(repo, "/"); slash >= 0 {
			ext = repo[slash+1:]
		}
		cat.AddGitHubSource(ext, repo, branch)
	}
	return cat
}

// loadCatalogue prefers the cache file when it exists and falls back to
// fetching from the configured repos.
func loadCatalogue(opts *options) (*metadata.Catalogue, error) {
	cat := newCatalogue(opts)

	if opts.cacheFile != "" {
		if data, err := os.ReadFile(opts.cacheFile); err == nil {
			if err := cat.ImportCache(data); err != nil {
				return nil, err
			}
			return cat, nil
		}
	}
	if len(opts.repos) == 0 {
		return nil, fmt.Errorf("no metadata available: pass --repo or --cache")
	}
	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	res := cat.FetchAll(ctx)
	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "warning: %v\n", f)
	}
	return cat, nil
}

// readSource handles the two input modes: a file argument or stdin.
func readSource(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("error opening file %s: %w", args[0], err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
