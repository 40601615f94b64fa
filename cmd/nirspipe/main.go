package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GBeurier/nirspipe/config"
	"github.com/GBeurier/nirspipe/datasets"
	_ "github.com/GBeurier/nirspipe/datasets/all"
	"github.com/GBeurier/nirspipe/detect"
	"github.com/GBeurier/nirspipe/pipeline"
	"github.com/GBeurier/nirspipe/variants"
	"github.com/GBeurier/nirspipe/wizard"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nirspipe",
	Short: "NIRS dataset ingestion and pipeline variant tooling",
	Long: `nirspipe imports near-infrared spectroscopy datasets (csv, excel,
html reports, zip archives) into SQLite, previews them, and counts or
expands preprocessing pipeline variants.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if configPath != "" {
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.DefaultConfig()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func detector() detect.Detector {
	return detect.ForMode(detect.ExecutionMode(cfg.Mode), cfg.ServerURL)
}

var detectCmd = &cobra.Command{
	Use:   "detect [file]",
	Short: "Detect the delimiter and decimal separator of a delimited file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sample, err := readSample(args[0])
		if err != nil {
			return err
		}
		res, err := detector().Detect(cmd.Context(), sample)
		if err != nil {
			return err
		}
		fmt.Printf("delimiter: %s\ndecimal:   %c\n", delimiterLabel(res.Delimiter), res.Decimal)
		return nil
	},
}

var (
	previewTable string
	previewCount int
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Show the leading rows and inferred column types of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, closeFn, err := openDataset(args[0])
		if err != nil {
			return err
		}
		defer closeFn()

		table := previewTable
		if table == "" {
			tables := provider.TableNames()
			if len(tables) == 0 {
				return fmt.Errorf("no tables found in %s", args[0])
			}
			table = tables[0]
		}

		p, err := datasets.Collect(provider, table, previewCount)
		if err != nil {
			return err
		}
		printPreview(p)
		return nil
	},
}

var (
	importLogErrors bool
	importTable     string
	importDelim     string
	importDecimal   string
	importAssess    bool
)

var importCmd = &cobra.Command{
	Use:   "import [input] [output.db]",
	Short: "Import a dataset file into a SQLite database",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputPath := args[0]
		outputPath := inputPath + ".db"
		if len(args) == 2 {
			outputPath = args[1]
		}

		opts, err := parseOverrides()
		if err != nil {
			return err
		}
		provider, closeFn, err := openDatasetWith(inputPath, opts)
		if err != nil {
			return err
		}
		defer closeFn()

		if dir := filepath.Dir(outputPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		out, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer out.Close()

		scanTimeout, err := cfg.ScanTimeoutDuration()
		if err != nil {
			return err
		}
		err = datasets.ImportToSQLite(provider, out, &datasets.ImportOptions{
			LogErrors:   importLogErrors,
			BatchSize:   cfg.BatchSize,
			ScanTimeout: scanTimeout,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		fmt.Printf("imported %s to %s\n", inputPath, outputPath)
		return nil
	},
}

var (
	variantMode string
	variantK    int
	variantFrom int
	variantTo   int
)

var variantsCmd = &cobra.Command{
	Use:   "variants [option-count]",
	Short: "Count pipeline variants for a generator node",
	Long: `Counts how many variants a generator node with the given number of
options expands to. Modes: try-each, pick, arrange. Use --k for a single
subset size or --from/--to for an inclusive range.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var n int
		if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil {
			return fmt.Errorf("invalid option count %q", args[0])
		}
		mode, err := variants.ParseMode(variantMode)
		if err != nil {
			return err
		}

		sel := variants.Single(mode, variantK)
		if variantFrom != 0 || variantTo != 0 {
			sel = variants.SizeRange(mode, variantFrom, variantTo)
		}
		fmt.Println(variants.Count(n, sel))
		return nil
	},
}

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Inspect pipeline definition files",
}

var pipelineCountCmd = &cobra.Command{
	Use:   "count [file.hcl]",
	Short: "Count the variants of every pipeline in a definition file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipelines, err := pipeline.Load(args[0])
		if err != nil {
			return err
		}
		for _, p := range pipelines {
			if err := p.Validate(); err != nil {
				return err
			}
			fmt.Printf("%s: %d\n", p.Name, p.VariantCount())
		}
		return nil
	},
}

var expandLimit int

var pipelineExpandCmd = &cobra.Command{
	Use:   "expand [file.hcl]",
	Short: "Expand every pipeline in a definition file into concrete variants",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipelines, err := pipeline.Load(args[0])
		if err != nil {
			return err
		}
		for _, p := range pipelines {
			if err := p.Validate(); err != nil {
				return err
			}
			vars, err := p.Expand(expandLimit)
			if err != nil {
				return err
			}
			for i, v := range vars {
				fmt.Printf("%s[%d]: %s\n", p.Name, i, strings.Join(v.Steps, " -> "))
			}
		}
		return nil
	},
}

var wizardCmd = &cobra.Command{
	Use:   "wizard [folder]",
	Short: "Run the interactive import wizard",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		return wizard.Run(root, detector(), logger)
	},
}

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "List the registered dataset drivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range datasets.Drivers() {
			fmt.Println(name)
		}
		return nil
	},
}

func openDataset(path string) (datasets.RowProvider, func(), error) {
	return openDatasetWith(path, nil)
}

func openDatasetWith(path string, opts *datasets.ParseOptions) (datasets.RowProvider, func(), error) {
	driverName, err := datasets.DriverForPath(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input: %w", err)
	}
	provider, err := datasets.Open(driverName, f, opts)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	closeFn := func() {
		if c, ok := provider.(io.Closer); ok {
			c.Close()
		}
		f.Close()
	}
	return provider, closeFn, nil
}

func parseOverrides() (*datasets.ParseOptions, error) {
	opts := &datasets.ParseOptions{
		TableName:       importTable,
		AssessHeaderRow: importAssess,
	}
	var err error
	if opts.Delimiter, err = parseSeparator(importDelim, "delimiter"); err != nil {
		return nil, err
	}
	if opts.Decimal, err = parseSeparator(importDecimal, "decimal separator"); err != nil {
		return nil, err
	}
	return opts, nil
}

func parseSeparator(s, what string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", "\\t":
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return runes[0], nil
}

func readSample(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	buf := make([]byte, 8192)
	n, err := f.Read(buf)
	if n == 0 && err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(buf[:n]), nil
}

func printPreview(p *datasets.Preview) {
	header := make([]string, len(p.Headers))
	for i, h := range p.Headers {
		if i < len(p.Types) {
			header[i] = fmt.Sprintf("%s(%s)", h, p.Types[i])
		} else {
			header[i] = h
		}
	}
	fmt.Printf("table %s\n", p.Table)
	fmt.Println(strings.Join(header, "\t"))
	for _, row := range p.Rows {
		fmt.Println(strings.Join(row, "\t"))
	}
}

func delimiterLabel(d rune) string {
	if d == '\t' {
		return "TAB"
	}
	return string(d)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to HCL config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	previewCmd.Flags().StringVar(&previewTable, "table", "", "table to preview (default: first)")
	previewCmd.Flags().IntVar(&previewCount, "rows", 10, "number of rows to show")

	importCmd.Flags().BoolVar(&importLogErrors, "log-errors", false, "record bad rows in _import_errors instead of aborting")
	importCmd.Flags().StringVar(&importTable, "table", "", "override the table name")
	importCmd.Flags().StringVar(&importDelim, "delimiter", "", "override the detected delimiter (single char or 'tab')")
	importCmd.Flags().StringVar(&importDecimal, "decimal", "", "override the detected decimal separator")
	importCmd.Flags().BoolVar(&importAssess, "assess-header", false, "scan leading rows to find the real header row")

	variantsCmd.Flags().StringVar(&variantMode, "mode", "try-each", "selection mode: try-each, pick, arrange")
	variantsCmd.Flags().IntVar(&variantK, "k", 1, "subset size for pick/arrange")
	variantsCmd.Flags().IntVar(&variantFrom, "from", 0, "lower bound of an inclusive size range")
	variantsCmd.Flags().IntVar(&variantTo, "to", 0, "upper bound of an inclusive size range")

	pipelineCmd.AddCommand(pipelineCountCmd, pipelineExpandCmd)
	pipelineExpandCmd.Flags().IntVar(&expandLimit, "limit", 10000, "refuse to expand past this many variants")

	rootCmd.AddCommand(detectCmd, previewCmd, importCmd, variantsCmd, pipelineCmd, wizardCmd, driversCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
