// Command bacontract loads a system file (spec.md §6's grammar) and runs
// either the feasibility solver or, if the file declares an objective, the
// branch-and-bound optimizer, printing progress the way the teacher's
// cmd/example prints with plain fmt.Printf, colorized where it helps a
// human operator read loup/uplo convergence.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/gitrdm/bacontract/pkg/bacontract"
)

func main() {
	var (
		eps       = flag.Float64("eps", 1e-7, "precision: stop bisecting a branch once every dimension is at or below this width")
		timeout   = flag.Duration("timeout", 0, "wall-clock budget for the search; 0 = unbounded")
		maxSols   = flag.Int("max-solutions", 0, "feasibility mode only: stop after this many solutions; 0 = unbounded")
		seed      = flag.Int64("seed", 1, "local-search / sampling seed, for reproducible optimizer runs")
		parallel  = flag.Int("parallel-faces", 0, "optimizer mode only: solve the linear relaxation's 2n faces across this many workers; 0 = sequential")
		acidDepth = flag.Int("acid-depth", 2, "optimizer mode only: shaving depth for the Acid contractor wrapping HC4 (feasibility mode uses 2)")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <system-file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	sys, err := bacontract.LoadSystemFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	if sys.Objective == nil {
		runSolve(ctx, sys, *eps, *timeout, *maxSols)
		return
	}
	runOptimize(ctx, sys, *eps, *timeout, *seed, *parallel, *acidDepth)
}

func buildContractor(sys *bacontract.System, acidDepth int, pool int) bacontract.Contractor {
	hc4 := bacontract.NewHC4(sys.Constraints, sys.NbVar(), 0.1)
	acid := bacontract.NewAcid(hc4, acidDepth)
	lr := bacontract.NewCtcLinearRelaxation(sys.Constraints, sys.NbVar(), bacontract.TaylorLinearizer{})
	if pool > 0 {
		lr.WithParallelFaces(pool)
	}
	return bacontract.NewFixPoint(bacontract.NewCompo(acid, lr), 1e-3)
}

func runSolve(ctx context.Context, sys *bacontract.System, eps float64, timeout time.Duration, maxSols int) {
	ctc := buildContractor(sys, 2, 0)
	bis := bacontract.NewRoundRobin(eps, 0.45)
	solver := bacontract.NewSolver(sys, ctc, bis, eps)
	solver.MaxSols = maxSols
	solver.Timeout = timeout

	start := time.Now()
	solutions, err := solver.Solve(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	report(sys, solutions, solver.Monitor, time.Since(start))
}

func runOptimize(ctx context.Context, sys *bacontract.System, eps float64, timeout time.Duration, seed int64, pool int, acidDepth int) {
	ext := sys.Extended()
	ctcIn := buildContractor(ext, acidDepth, pool)
	hc4Out := bacontract.NewHC4(ext.Constraints, ext.NbVar(), 0.1)
	bis := bacontract.NewSmearFunction(ext.Objective, bacontract.SmearMaxRelative, eps, 0.45)

	opt := bacontract.NewOptimizer(ext, ctcIn, hc4Out, bis, seed)
	opt.Timeout = timeout

	start := time.Now()
	uplo, loup, loupPoint, err := opt.Optimize(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	reportPerf(sys, uplo, loup, loupPoint, opt.Monitor, time.Since(start))
}

func report(sys *bacontract.System, solutions []*bacontract.IntervalVector, mon *bacontract.SearchMonitor, elapsed time.Duration) {
	color.Green("found %d solution box(es) in %v", len(solutions), elapsed)
	for i, box := range solutions {
		fmt.Printf("  #%d: %s\n", i, boxString(sys, box))
	}
	stats := mon.Stats()
	fmt.Printf("cells processed=%d discarded=%d\n", stats.CellsProcessed, stats.CellsDiscarded)
}

func reportPerf(sys *bacontract.System, uplo, loup float64, loupPoint []float64, mon *bacontract.SearchMonitor, elapsed time.Duration) {
	gap := loup - uplo
	color.Yellow("uplo=%.10g", uplo)
	color.Green("loup=%.10g", loup)
	fmt.Printf("gap=%.3g point=%v elapsed=%v\n", gap, loupPoint, elapsed)
	stats := mon.Stats()
	fmt.Printf("cells processed=%d discarded=%d loup updates=%d\n", stats.CellsProcessed, stats.CellsDiscarded, stats.LoupUpdates)
}

func boxString(sys *bacontract.System, box *bacontract.IntervalVector) string {
	out := ""
	for i := 0; i < box.Size() && i < len(sys.VarNames); i++ {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%s", sys.VarNames[i], box.At(i).String())
	}
	return out
}
