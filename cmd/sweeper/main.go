package main

import (
	"flag"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/trongnghia2007/minesweeper-agent/internal/autoplay"
	"github.com/trongnghia2007/minesweeper-agent/internal/game"
	"github.com/trongnghia2007/minesweeper-agent/internal/knowledge"
)

var (
	log = logrus.New()

	height    int
	width     int
	mineCount int
	seed      uint64
	verbose   bool
)

func init() {
	flag.IntVar(&height, "height", 8, "board height")
	flag.IntVar(&width, "width", 8, "board width")
	flag.IntVar(&mineCount, "mines", 8, "number of mines")
	flag.Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	flag.BoolVar(&verbose, "v", false, "log agent deductions")
}

func main() {
	flag.Parse()

	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
		knowledge.Log.SetLevel(logrus.DebugLevel)
		autoplay.Log.SetLevel(logrus.DebugLevel)
	}

	if seed == 0 {
		seed = new(maphash.Hash).Sum64()
	}
	rnd := rand.New(rand.NewPCG(seed, seed))

	board, err := game.NewBoard(height, width, mineCount, rnd)
	if err != nil {
		log.Fatal(err)
	}
	agent, err := knowledge.NewAgent(height, width, rnd)
	if err != nil {
		log.Fatal(err)
	}
	runner, err := autoplay.New(board, agent)
	if err != nil {
		log.Fatal(err)
	}

	log.Infof("playing %dx%d board with %d mines (seed %d)",
		height, width, mineCount, seed)

	moves, status, err := runner.Play()
	if err != nil {
		log.Fatal(err)
	}
	for i, move := range moves {
		if move.Mine {
			fmt.Printf("%3d. %-6s %s BOOM\n", i+1, move.Strategy, move.Cell)
		} else {
			fmt.Printf("%3d. %-6s %s = %d\n", i+1, move.Strategy, move.Cell, move.Count)
		}
	}

	fmt.Print(board)
	switch status {
	case autoplay.Won:
		fmt.Printf("won in %d moves\n", len(moves))
	case autoplay.Lost:
		fmt.Printf("lost after %d moves\n", len(moves))
	default:
		fmt.Printf("stopped after %d moves (%s)\n", len(moves), status)
		os.Exit(1)
	}
}
