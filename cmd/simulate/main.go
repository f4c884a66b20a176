// Command simulate plays rounds of every level with the computer opponent and
// prints how often each difficulty wins. It needs no database or Redis.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"text/tabwriter"

	"github.com/playmatatu/marbles/internal/ai"
	"github.com/playmatatu/marbles/internal/config"
	"github.com/playmatatu/marbles/internal/level"
	"github.com/playmatatu/marbles/internal/progress"
)

func main() {
	rounds := flag.Int("rounds", 200, "rounds per level and difficulty")
	maxShots := flag.Int("shots", 5, "shots allowed per round before it counts as unfinished")
	seed := flag.Int64("seed", 1, "random seed")
	only := flag.Int("level", 0, "simulate a single level (0 = all)")
	flag.Parse()

	cfg := config.Load()
	rng := rand.New(rand.NewSource(*seed))
	ctx := context.Background()

	defs := level.All()
	if *only != 0 {
		def, err := level.Lookup(*only)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defs = []level.Definition{def}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LEVEL\tDIFFICULTY\tWIN\tLOSS\tUNFINISHED\tAVG SHOTS\tMARBLES")

	for _, def := range defs {
		for _, d := range []ai.Difficulty{ai.Easy, ai.Medium, ai.Hard} {
			// Each difficulty gets its own ledger so marble totals are comparable.
			store := progress.NewMemoryStore()
			var wins, losses, unfinished, shots int

			for i := 0; i < *rounds; i++ {
				out, n, err := playRound(def, d, *maxShots, cfg.MaxTicksPerShot, rng)
				if err != nil {
					log.Fatalf("level %d %s: %v", def.Number, d, err)
				}
				shots += n
				switch out.Result {
				case level.ResultWin:
					wins++
				case level.ResultLoss:
					losses++
				default:
					unfinished++
					continue
				}
				if _, err := store.Settle(ctx, 1, def.Number, out, n); err != nil {
					log.Fatalf("settle: %v", err)
				}
			}

			p, _ := store.Get(ctx, 1)
			fmt.Fprintf(w, "%d %s\t%s\t%d\t%d\t%d\t%.2f\t%d\n",
				def.Number, def.Name, d, wins, losses, unfinished,
				float64(shots)/float64(*rounds), p.MarbleCount)
		}
	}
	w.Flush()
}

// playRound lets the planner shoot until the round concludes or maxShots run
// out.
func playRound(def level.Definition, d ai.Difficulty, maxShots, maxTicks int, rng *rand.Rand) (level.RoundOutcome, int, error) {
	round, err := level.NewRound(def)
	if err != nil {
		return level.RoundOutcome{}, 0, err
	}

	var out level.RoundOutcome
	for shot := 1; shot <= maxShots; shot++ {
		planned, err := ai.PlanShot(d, round.Shooter().Position, round.AimPoints(), round.TargetContains, rng)
		if err != nil {
			return level.RoundOutcome{}, 0, err
		}
		out, err = round.Play(planned, maxTicks)
		if err != nil {
			return level.RoundOutcome{}, 0, err
		}
		if out.Final() {
			return out, shot, nil
		}
	}
	return out, maxShots, nil
}
