package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/di"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/usecase"
	xhttp "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/http"
)

func analyzeCmd() *cobra.Command {
	var pattern string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze portfolios once and print the reports as JSON",
		Long: `analyze runs every portfolio file matched by --portfolio (a doublestar glob such
as 'portfolios/**/*.yaml') and writes one JSON report per line to stdout.
Without --portfolio the configured default portfolio is analyzed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var portfolios []models.Portfolio
			if pattern != "" {
				if portfolios, err = loadPortfolios(pattern); err != nil {
					return err
				}
			}

			analyzer, cleanup, err := di.InitializeAnalyzer(cfg)
			if err != nil {
				return fmt.Errorf("analyzer initialization failed: %w", err)
			}
			defer cleanup()

			return runAnalyses(cmd.Context(), analyzer, portfolios, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&pattern, "portfolio", "p", "", "glob of portfolio YAML files")
	return cmd
}

// loadPortfolios reads and validates every portfolio file matching pattern, in path order.
func loadPortfolios(pattern string) ([]models.Portfolio, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("portfolio glob %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no portfolio files match %q", pattern)
	}
	sort.Strings(paths)

	out := make([]models.Portfolio, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		var pf models.Portfolio
		if err := yaml.Unmarshal(b, &pf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		if len(pf.Allocations) == 0 {
			return nil, fmt.Errorf("%s: portfolio has no allocations", p)
		}
		for i := range pf.Allocations {
			if verr := xhttp.Validate(&pf.Allocations[i]); verr != nil {
				return nil, fmt.Errorf("%s: allocation %d: %v", p, i, verr)
			}
		}
		out = append(out, pf)
	}
	return out, nil
}

// runAnalyses runs each portfolio in turn. An empty list runs the default portfolio.
func runAnalyses(ctx context.Context, analyzer *usecase.PortfolioAnalyzer, portfolios []models.Portfolio, w io.Writer) error {
	if len(portfolios) == 0 {
		portfolios = []models.Portfolio{{}}
	}
	enc := json.NewEncoder(w)
	for _, pf := range portfolios {
		report, err := analyzer.Run(ctx, usecase.RunParams{PortfolioID: pf.ID, Allocations: pf.Allocations})
		if err != nil {
			return fmt.Errorf("analyze %q: %w", pf.ID, err)
		}
		if err := enc.Encode(report); err != nil {
			return err
		}
	}
	return nil
}
