package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/edp1096/toy-helmholtz/pkg/experiment"
	"github.com/edp1096/toy-helmholtz/pkg/solver"
	"github.com/edp1096/toy-helmholtz/pkg/util"
	"github.com/edp1096/toy-helmholtz/pkg/visual"
)

func main() {
	configPath := flag.String("config", "", "sweep config file (yaml)")
	plotDir := flag.String("plot", "", "directory for residual/field plots (optional)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: helmholtz -config sweep.yaml [-plot dir] [-v]")
		os.Exit(2)
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}
	defer logger.Sync()

	sweep, err := experiment.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("loading sweep config", zap.String("path", *configPath), zap.Error(err))
	}

	if *plotDir != "" {
		if err := os.MkdirAll(*plotDir, 0o755); err != nil {
			logger.Fatal("creating plot directory", zap.Error(err))
		}
		caseNum := 0
		sweep.Hook = func(c experiment.Case, rec *experiment.Record) {
			caseNum++
			writePlots(*plotDir, caseNum, c, rec, logger)
		}
	}

	records, err := sweep.Run(logger)
	if err != nil {
		logger.Fatal("sweep failed", zap.Error(err))
	}

	printResults(records)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

func writePlots(dir string, n int, c experiment.Case, rec *experiment.Record, logger *zap.Logger) {
	if rec.Result == nil {
		return
	}
	if len(rec.Result.Residuals) > 0 {
		path := filepath.Join(dir, fmt.Sprintf("case%03d_residuals.png", n))
		if err := visual.SaveResiduals(rec.Result.Residuals, path); err != nil {
			logger.Warn("residual plot failed", zap.Int("case", n), zap.Error(err))
		}
	}
	path := filepath.Join(dir, fmt.Sprintf("case%03d_field.png", n))
	err := visual.SaveField(rec.Result.Solution, c.Grid, path)
	if err != nil && !errors.Is(err, visual.ErrUnsupportedDim) {
		logger.Warn("field plot failed", zap.Int("case", n), zap.Error(err))
	}
}

func printResults(records []experiment.Record) {
	fmt.Println("\nSweep Results:")
	fmt.Println("==============")
	fmt.Printf("%-4s %-22s %-10s %-10s %-11s %6s %9s  %s\n",
		"#", "Grid", "Stencil", "Load", "Omega", "Iters", "Residual", "Status")

	for i, rec := range records {
		status := "converged"
		switch {
		case errors.Is(rec.Err, solver.ErrDidNotConverge):
			status = "max-iter"
		case errors.Is(rec.Err, solver.ErrBreakdown):
			status = "breakdown"
		case rec.Err != nil:
			status = "failed"
		}

		residual := ""
		iters := 0
		if rec.Result != nil {
			iters = rec.Result.Iterations
			if len(rec.Result.Residuals) > 0 {
				residual = util.FormatResidual(rec.Result.Residuals[len(rec.Result.Residuals)-1])
			}
		}

		fmt.Printf("%-4d %-22s %-10s %-10s %-11s %6d %9s  %s\n",
			i+1, rec.Case.Grid, rec.Case.Stencil, rec.Case.Load.Name(),
			util.FormatOmega(rec.Case.Omega), iters, residual, status)
	}
}
