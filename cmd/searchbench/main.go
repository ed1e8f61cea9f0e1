package main

import (
	"flag"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/judwhite/RomanticEngine/engine"
)

// A small mixed suite: openings, middlegames, and a couple of endgames.
var benchFens = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
	"r4rk1/3nppbp/bq1p1np1/2pP4/8/2N2NPP/PP2PPB1/R1BQR1K1 b - - 1 12",
	"r1bq1rk1/1pp2pbp/p1np1np1/3Pp3/2P1P3/2N1BP2/PP4PP/R1NQKB1R b KQ - 1 9",
	"8/k7/3p4/p2P1p2/P2P1P2/8/8/K7 w - - 0 1",
	"8/8/4kpp1/3p4/3P1P2/4K1P1/8/8 w - - 0 1",
}

func main() {
	depth := flag.Int("depth", 7, "search depth in plies")
	workers := flag.Int("workers", len(benchFens), "concurrent searches, one engine each")
	cpuProfile := flag.Bool("cpuprofile", false, "write a CPU profile for the run")
	flag.Parse()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	cfg := engine.DefaultConfig()
	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)

	var totalNodes atomic.Uint64
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(*workers)
	for _, fen := range benchFens {
		fen := fen
		g.Go(func() error {
			eng := engine.New(cfg, logger)
			if err := eng.SetPosition(fen, nil); err != nil {
				return err
			}

			var nodes uint64
			eng.OnInfo = func(info engine.Info) { nodes = info.Nodes }
			eng.OnBestMove = func(result engine.Result) {
				fmt.Printf("%-72s best %s\n", fen, result.BestMove.String())
			}

			eng.Go(engine.Limits{Depth: *depth})
			eng.Wait()
			totalNodes.Add(nodes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "bench error: %v\n", err)
		os.Exit(1)
	}

	elapsed := time.Since(start)
	fmt.Printf("positions %d\tdepth %d\tnodes %d\ttime %s\tnps %.0f\n",
		len(benchFens), *depth, totalNodes.Load(), elapsed,
		float64(totalNodes.Load())/elapsed.Seconds())
}
