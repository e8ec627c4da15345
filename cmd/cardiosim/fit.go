package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/cardiosim/internal/experiment"
	"github.com/san-kum/cardiosim/internal/optim"
)

var (
	gridFlags    map[string]string
	fitAPD       float64
	fitFinalV    float64
	fitMetric    string
	fitTarget    float64
	fitShowCount int
)

func fitParameters(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args[0])
	if err != nil {
		return err
	}

	names, ranges, err := parseGrid(gridFlags)
	if err != nil {
		return err
	}
	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	var objective optim.Objective
	flags := cmd.Flags()
	switch {
	case flags.Changed("apd"):
		objective = optim.TargetAPD(apdLevel, fitAPD)
	case flags.Changed("final-v"):
		objective = optim.TargetFinalVoltage(fitFinalV)
	case fitMetric != "":
		objective = optim.TargetMetric(fitMetric, fitTarget)
	default:
		return fmt.Errorf("one of --apd, --final-v or --metric is required")
	}

	res, err := gs.Search(cmd.Context(), optim.ConfigBuilder(cfg, experiment.NewRegistry()), objective)
	if err != nil {
		return err
	}

	fmt.Printf("%d combinations, best objective %.6g\n\n", len(res.Evaluations), res.Value)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(append([]string{"RANK"}, append(upper(names), "OBJECTIVE")...), "\t"))
	for i, e := range res.Ranked() {
		if i == fitShowCount {
			break
		}
		row := []string{strconv.Itoa(i + 1)}
		for _, n := range names {
			row = append(row, strconv.FormatFloat(e.Params[n], 'g', 6, 64))
		}
		row = append(row, strconv.FormatFloat(e.Value, 'g', 6, 64))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

// parseGrid reads name=min:max:n entries, or name=v1,v2,... lists.
func parseGrid(grid map[string]string) ([]string, [][]float64, error) {
	if len(grid) == 0 {
		return nil, nil, fmt.Errorf("no --grid parameters given")
	}

	names := make([]string, 0, len(grid))
	for name := range grid {
		names = append(names, name)
	}
	sort.Strings(names)

	ranges := make([][]float64, len(names))
	for i, name := range names {
		spec := grid[name]
		if parts := strings.Split(spec, ":"); len(parts) == 3 {
			lo, err1 := strconv.ParseFloat(parts[0], 64)
			hi, err2 := strconv.ParseFloat(parts[1], 64)
			n, err3 := strconv.Atoi(parts[2])
			if err1 != nil || err2 != nil || err3 != nil || n < 1 {
				return nil, nil, fmt.Errorf("grid %s: want min:max:n, got %q", name, spec)
			}
			ranges[i] = optim.Linspace(lo, hi, n)
			continue
		}
		for _, field := range strings.Split(spec, ";") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", name, err)
			}
			ranges[i] = append(ranges[i], v)
		}
	}
	return names, ranges, nil
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}
