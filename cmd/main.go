// Command copybench compares sequential and concurrent file copying built
// on joinable's ownership wrappers. Each copy runs as one spawned
// execution unit owned by a Group; a Limiter caps how many run at once.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/baxromumarov/joinable"
)

type config struct {
	// Inputs lists files to copy. When empty, synthetic inputs are
	// generated under OutDir.
	Inputs []string `yaml:"inputs"`

	OutDir     string `yaml:"out_dir"`
	MaxWorkers int64  `yaml:"max_workers"`
	FileCount  int    `yaml:"file_count"`
	FileSizeKB int    `yaml:"file_size_kb"`
	Verbose    bool   `yaml:"verbose"`
}

func defaultConfig() config {
	return config{
		OutDir:     "copybench-out",
		MaxWorkers: 8,
		FileCount:  4,
		FileSizeKB: 4096,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	// .env may point at an alternate config file (CI convenience).
	_ = godotenv.Load()
	if p := os.Getenv("COPYBENCH_CONFIG"); p != "" && path == "" {
		path = p
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func main() {
	cfgPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		color.Red("config error: %v", err)
		os.Exit(1)
	}

	if cfg.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			color.Red("logger error: %v", err)
			os.Exit(1)
		}
		defer logger.Sync()
		joinable.SetLogger(logger)
	}

	if err := run(cfg); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func run(cfg config) error {
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return err
	}

	inputs := cfg.Inputs
	if len(inputs) == 0 {
		var err error
		inputs, err = generateInputs(cfg)
		if err != nil {
			return fmt.Errorf("generate inputs: %w", err)
		}
	}

	seq, err := copySequential(cfg, inputs)
	if err != nil {
		return fmt.Errorf("sequential: %w", err)
	}
	conc, err := copyConcurrent(cfg, inputs)
	if err != nil {
		return fmt.Errorf("concurrent: %w", err)
	}

	bold := color.New(color.Bold)
	bold.Printf("copied %d files\n", len(inputs))
	fmt.Printf("  sequential: %v\n", seq.Round(time.Microsecond))
	fmt.Printf("  concurrent: %v\n", conc.Round(time.Microsecond))

	switch {
	case conc < seq:
		color.Green("  concurrent was %.2fx faster", float64(seq)/float64(conc))
	default:
		color.Yellow("  concurrent was not faster (small or few files)")
	}
	return nil
}

func generateInputs(cfg config) ([]string, error) {
	chunk := make([]byte, 1024)
	for i := range chunk {
		chunk[i] = byte('a' + i%26)
	}

	inputs := make([]string, 0, cfg.FileCount)
	for i := 0; i < cfg.FileCount; i++ {
		path := filepath.Join(cfg.OutDir, fmt.Sprintf("input-%d.txt", i))
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		for k := 0; k < cfg.FileSizeKB; k++ {
			if _, err := f.Write(chunk); err != nil {
				f.Close()
				return nil, err
			}
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
		inputs = append(inputs, path)
	}
	return inputs, nil
}

func copySequential(cfg config, inputs []string) (time.Duration, error) {
	start := time.Now()
	for i, in := range inputs {
		out := filepath.Join(cfg.OutDir, fmt.Sprintf("seq-%d.txt", i))
		if err := copyFile(in, out); err != nil {
			return 0, err
		}
	}
	return time.Since(start), nil
}

func copyConcurrent(cfg config, inputs []string) (time.Duration, error) {
	limiter := joinable.NewLimiter(cfg.MaxWorkers)
	errs := make([]error, len(inputs))

	start := time.Now()

	var g joinable.Group
	for i, in := range inputs {
		out := filepath.Join(cfg.OutDir, fmt.Sprintf("conc-%d.txt", i))
		err := g.Go(
			func() { errs[i] = copyFile(in, out) },
			joinable.WithName(filepath.Base(in)),
			joinable.WithLimiter(limiter),
		)
		if err != nil {
			// Limiter full: fall back to copying on this goroutine
			// rather than dropping the file.
			if joinable.IsSpawnError(err) {
				errs[i] = copyFile(in, out)
				continue
			}
			_ = g.JoinAll()
			return 0, err
		}
	}

	if err := g.JoinAll(); err != nil {
		return 0, err
	}
	elapsed := time.Since(start)

	for _, err := range errs {
		if err != nil {
			return 0, err
		}
	}
	return elapsed, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
