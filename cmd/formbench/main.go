// Package main implements the formbench binary.
// It benchmarks write, read, and aggregation performance of columnar,
// row-oriented, and length-prefixed binary data formats over synthetic
// order data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/formbench/formbench/internal/benchmark"
	"github.com/formbench/formbench/internal/config"
	"github.com/formbench/formbench/internal/format"
	"github.com/formbench/formbench/internal/generator"
	"github.com/formbench/formbench/internal/observability"
	"github.com/formbench/formbench/internal/pipeline"
	"github.com/formbench/formbench/internal/report"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	flag.Usage = usage

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "write":
		err = runWrite(os.Args[2:])
	case "read":
		err = runRead(os.Args[2:])
	case "report":
		err = runReport(os.Args[2:])
	case "run":
		err = runAll(os.Args[2:])
	case "generate":
		err = runGenerate(os.Args[2:])
	case "version", "-version", "--version":
		fmt.Printf("formbench version %s (commit: %s)\n", version, commit)
	case "help", "-help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Formbench - Data Format Benchmark\n\n")
	fmt.Fprintf(os.Stderr, "Usage: formbench <command> [options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  write      Generate and write data in streaming mode\n")
	fmt.Fprintf(os.Stderr, "  read       Run read benchmark on existing files\n")
	fmt.Fprintf(os.Stderr, "  report     Generate combined report from saved results\n")
	fmt.Fprintf(os.Stderr, "  run        Run all phases: write, read, report\n")
	fmt.Fprintf(os.Stderr, "  generate   Write sample records to a file\n")
	fmt.Fprintf(os.Stderr, "  version    Show version information\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  formbench write -size 10\n")
	fmt.Fprintf(os.Stderr, "  formbench read -runs 3\n")
	fmt.Fprintf(os.Stderr, "  formbench report -output data/report.md\n")
	fmt.Fprintf(os.Stderr, "  formbench run -size 1 -formats parquet,avro\n")
	fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
	fmt.Fprintf(os.Stderr, "  FORMBENCH_DATA_DIR          Base directory for data files\n")
	fmt.Fprintf(os.Stderr, "  FORMBENCH_FORMATS           Comma-separated format list\n")
	fmt.Fprintf(os.Stderr, "  FORMBENCH_STORAGE_TYPE      Artifact storage type (local, s3)\n")
	fmt.Fprintf(os.Stderr, "  FORMBENCH_S3_BUCKET         S3 bucket for archived artifacts\n")
}

func banner(title string) {
	line := strings.Repeat("=", 60)
	fmt.Println(line)
	fmt.Println(title)
	fmt.Println(line)
}

// loadConfig loads configuration in precedence order: defaults, then
// the optional config file, then environment variables. Flag values
// are applied by the callers afterwards.
func loadConfig(configFile string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)
	return cfg, nil
}

func runWrite(args []string) error {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to configuration file (YAML or JSON)")
	size := fs.Float64("size", 0, "Target dataset size in GB")
	output := fs.String("output", "", "Output directory for data files")
	formats := fs.String("formats", "", "Comma-separated list of formats")
	seed := fs.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	saveResults := fs.String("save-results", "", "Path to save write results JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if *size > 0 {
		cfg.Write.TargetSizeGB = *size
	}
	if *output != "" {
		cfg.DataDir = *output
	}
	if *formats != "" {
		cfg.Formats = config.SplitFormats(*formats)
	}
	if *seed != 0 {
		cfg.Write.Seed = *seed
	}
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return err
	}

	handlers, err := format.NewAll(cfg.Formats)
	if err != nil {
		return err
	}

	banner("Write Benchmark - Streaming Mode")

	gen := generator.New(cfg.Write.Seed)
	records := gen.EstimateRecordsForSize(cfg.Write.TargetSizeGB)
	log.Printf("target size: %g GB (~%d records)", cfg.Write.TargetSizeGB, records)
	log.Printf("formats: %s", strings.Join(cfg.Formats, ", "))

	wb, err := benchmark.NewWriteBenchmark(cfg.DataDir)
	if err != nil {
		return err
	}
	results, err := wb.RunAllFormats(handlers, records, cfg.Write.Seed)
	if err != nil {
		return err
	}

	resultsPath := *saveResults
	if resultsPath == "" {
		resultsPath = cfg.WriteResultsPath()
	}
	if err := benchmark.SaveWriteResults(results, resultsPath); err != nil {
		return err
	}
	log.Printf("write results saved to %s", resultsPath)
	log.Printf("next step: formbench read -input %s", cfg.DataDir)
	return nil
}

func runRead(args []string) error {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to configuration file (YAML or JSON)")
	input := fs.String("input", "", "Directory containing data files")
	formats := fs.String("formats", "", "Comma-separated list of formats")
	runs := fs.Int("runs", 0, "Number of runs for averaging")
	filterCategory := fs.String("filter-category", "", "Category for filtered read tests")
	timeout := fs.Int("timeout", 0, "Timeout per operation in seconds")
	saveResults := fs.String("save-results", "", "Path to save read results JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if *input != "" {
		cfg.DataDir = *input
	}
	if *formats != "" {
		cfg.Formats = config.SplitFormats(*formats)
	}
	if *runs > 0 {
		cfg.Read.Runs = *runs
	}
	if *filterCategory != "" {
		cfg.Read.FilterCategory = *filterCategory
	}
	if *timeout > 0 {
		cfg.Read.TimeoutSeconds = *timeout
	}
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return err
	}

	handlers, err := format.NewAll(cfg.Formats)
	if err != nil {
		return err
	}

	banner("Read Benchmark")
	log.Printf("input directory: %s", cfg.DataDir)
	log.Printf("runs: %d, filter category: %q, timeout: %ds",
		cfg.Read.Runs, cfg.Read.FilterCategory, cfg.Read.TimeoutSeconds)

	stats := observability.NewRunStats()
	rb := benchmark.NewReadBenchmark(
		cfg.DataDir,
		cfg.Read.Runs,
		cfg.Read.FilterCategory,
		time.Duration(cfg.Read.TimeoutSeconds)*time.Second,
		stats,
	)
	results, err := rb.RunAllFormats(handlers)
	if err != nil {
		return err
	}

	resultsPath := *saveResults
	if resultsPath == "" {
		resultsPath = cfg.ReadResultsPath()
	}
	if err := benchmark.SaveReadResults(results, resultsPath); err != nil {
		return err
	}
	log.Printf("read results saved to %s", resultsPath)
	if len(stats.Snapshot()) > 0 {
		log.Printf("run statistics:\n%s", stats)
	}
	log.Printf("next step: formbench report")
	return nil
}

func runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to configuration file (YAML or JSON)")
	writeResults := fs.String("write-results", "", "Path to write results JSON")
	readResults := fs.String("read-results", "", "Path to read results JSON")
	output := fs.String("output", "", "Output path for report (default: print only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	cfg.Resolve()

	writePath := *writeResults
	if writePath == "" {
		writePath = cfg.WriteResultsPath()
	}
	readPath := *readResults
	if readPath == "" {
		readPath = cfg.ReadResultsPath()
	}

	banner("Generating Report")
	log.Printf("write results: %s", writePath)
	log.Printf("read results: %s", readPath)

	writes, err := benchmark.LoadWriteResults(writePath)
	if err != nil {
		return err
	}
	reads, err := benchmark.LoadReadResults(readPath)
	if err != nil {
		return err
	}

	gen := report.NewGenerator(benchmark.Combine(writes, reads))
	if *output != "" {
		if err := gen.Save(*output); err != nil {
			return err
		}
	}
	gen.Print()
	return nil
}

func runAll(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configFile := fs.String("config", "", "Path to configuration file (YAML or JSON)")
	size := fs.Float64("size", 0, "Target dataset size in GB")
	output := fs.String("output", "", "Output directory for data files")
	formats := fs.String("formats", "", "Comma-separated list of formats")
	runs := fs.Int("runs", 0, "Number of runs for averaging")
	seed := fs.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	timeout := fs.Int("timeout", 0, "Timeout per operation in seconds")
	reportFile := fs.String("report-file", "", "Output path for the rendered report")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}
	if *size > 0 {
		cfg.Write.TargetSizeGB = *size
	}
	if *output != "" {
		cfg.DataDir = *output
	}
	if *formats != "" {
		cfg.Formats = config.SplitFormats(*formats)
	}
	if *runs > 0 {
		cfg.Read.Runs = *runs
	}
	if *seed != 0 {
		cfg.Write.Seed = *seed
	}
	if *timeout > 0 {
		cfg.Read.TimeoutSeconds = *timeout
	}
	if *reportFile != "" {
		cfg.ReportFile = *reportFile
	}
	cfg.Resolve()

	banner("Full Benchmark")

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	return p.Run(context.Background())
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	records := fs.Int("records", 1000, "Number of records to generate")
	formatName := fs.String("format", "parquet", "Output format")
	output := fs.String("output", "./sample", "Output path (extension is appended)")
	seed := fs.Int64("seed", 0, "Random seed for reproducible data (0 = random)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *records < 1 {
		return fmt.Errorf("records must be at least 1, got %d", *records)
	}

	h, err := format.New(*formatName)
	if err != nil {
		return err
	}

	gen := generator.New(*seed)
	path := format.FilePath(h, *output)

	written, err := h.WriteStream(gen.GenerateStream(*records), path, nil)
	if err != nil {
		return err
	}
	log.Printf("wrote %d %s records to %s", written, h.Name(), path)
	return nil
}
