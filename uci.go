package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dylhunn/dragontoothmg"
	"github.com/rs/zerolog"

	"github.com/judwhite/RomanticEngine/engine"
)

const configPath = "romantic.yaml"

func main() {
	cfg, err := engine.LoadConfig(configPath)
	logger := newLogger(cfg.LogLevel)
	if err != nil {
		logger.Warn().Err(err).Msg("config unusable, running on defaults")
	}

	eng := engine.New(cfg, logger)
	uciLoop(eng, logger)
}

func newLogger(level string) zerolog.Logger {
	// Protocol traffic owns stdout; diagnostics go to stderr.
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func uciLoop(eng *engine.Engine, logger zerolog.Logger) {
	eng.OnInfo = func(info engine.Info) {
		fmt.Println(
			"info depth", info.Depth,
			"score", engine.FormatScore(info.Score),
			"nodes", info.Nodes,
			"nps", info.NPS,
			"time", info.Elapsed.Milliseconds(),
			"pv", engine.LineString(info.PV),
		)
	}
	eng.OnBestMove = func(result engine.Result) {
		if result.HasMove {
			fmt.Println("bestmove", result.BestMove.String())
		} else {
			fmt.Println("bestmove 0000")
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			fmt.Println("id name RomanticEngine")
			fmt.Println("id author judwhite")
			fmt.Println("option name MoveOverhead type spin default 30 min 0 max 5000")
			fmt.Println("option name Book type string default <empty>")
			fmt.Println("option name Ponder type check default true")
			fmt.Println("uciok")
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			eng.NewGame()
		case "position":
			if err := handlePosition(eng, tokens[1:]); err != nil {
				fmt.Println("info string", err)
			}
		case "go":
			eng.Go(parseGoLimits(tokens[1:], eng.ParseSearchMoves))
		case "stop":
			eng.Stop()
		case "ponderhit":
			eng.PonderHit()
		case "setoption":
			handleSetOption(eng, logger, tokens[1:])
		case "quit":
			eng.Stop()
			eng.Wait()
			return
		default:
			fmt.Println("info string Unknown command:", line)
		}
	}
}

// handlePosition parses "position [startpos|fen <fen>] [moves m1 m2 ...]".
func handlePosition(eng *engine.Engine, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("malformed position command")
	}

	var fen string
	var moveStart int
	switch strings.ToLower(args[0]) {
	case "startpos":
		fen = "startpos"
		moveStart = 1
	case "fen":
		fenEnd := len(args)
		for i, arg := range args[1:] {
			if strings.ToLower(arg) == "moves" {
				fenEnd = i + 1
				break
			}
		}
		fen = strings.Join(args[1:fenEnd], " ")
		moveStart = fenEnd
	default:
		return fmt.Errorf("invalid position subcommand %q", args[0])
	}

	var moves []string
	if moveStart < len(args) && strings.ToLower(args[moveStart]) == "moves" {
		moves = args[moveStart+1:]
	}
	return eng.SetPosition(fen, moves)
}

// parseGoLimits turns the go command's tokens into search limits. Malformed
// numeric options are skipped rather than failing the whole request, the
// lenient way engines traditionally treat the go command.
func parseGoLimits(tokens []string, resolveMoves func([]string) []dragontoothmg.Move) engine.Limits {
	var limits engine.Limits

	nextInt := func(i int) (int, bool) {
		if i+1 >= len(tokens) {
			return 0, false
		}
		n, err := strconv.Atoi(tokens[i+1])
		if err != nil {
			return 0, false
		}
		return n, true
	}

	for i := 0; i < len(tokens); i++ {
		switch strings.ToLower(tokens[i]) {
		case "infinite":
			limits.Infinite = true
		case "ponder":
			limits.Ponder = true
		case "depth":
			if n, ok := nextInt(i); ok {
				limits.Depth = n
				i++
			}
		case "nodes":
			if n, ok := nextInt(i); ok {
				limits.Nodes = uint64(n)
				i++
			}
		case "mate":
			if n, ok := nextInt(i); ok {
				limits.Mate = n
				i++
			}
		case "movetime":
			if n, ok := nextInt(i); ok {
				limits.MoveTime = time.Duration(n) * time.Millisecond
				i++
			}
		case "wtime":
			if n, ok := nextInt(i); ok {
				limits.WhiteTime = time.Duration(n) * time.Millisecond
				i++
			}
		case "btime":
			if n, ok := nextInt(i); ok {
				limits.BlackTime = time.Duration(n) * time.Millisecond
				i++
			}
		case "winc":
			if n, ok := nextInt(i); ok {
				limits.WhiteInc = time.Duration(n) * time.Millisecond
				i++
			}
		case "binc":
			if n, ok := nextInt(i); ok {
				limits.BlackInc = time.Duration(n) * time.Millisecond
				i++
			}
		case "movestogo":
			if n, ok := nextInt(i); ok {
				limits.MovesToGo = n
				i++
			}
		case "searchmoves":
			if resolveMoves != nil {
				limits.SearchMoves = resolveMoves(tokens[i+1:])
			}
			i = len(tokens)
		default:
			fmt.Println("info string Unknown go subcommand", tokens[i])
		}
	}
	return limits
}

func handleSetOption(eng *engine.Engine, logger zerolog.Logger, args []string) {
	// setoption name <id> [value <x>]
	var name, value string
	for i := 0; i < len(args); i++ {
		switch strings.ToLower(args[i]) {
		case "name":
			if i+1 < len(args) {
				name = args[i+1]
			}
		case "value":
			if i+1 < len(args) {
				value = strings.Join(args[i+1:], " ")
				i = len(args)
			}
		}
	}

	switch strings.ToLower(name) {
	case "moveoverhead":
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			eng.SetMoveOverhead(ms)
		} else {
			fmt.Println("info string Invalid MoveOverhead value", value)
		}
	case "book":
		if err := eng.SetBookPath(value); err != nil {
			logger.Warn().Err(err).Msg("book not loaded")
		}
	case "ponder":
		// Pondering is driven entirely by "go ponder"; nothing to configure.
	default:
		fmt.Println("info string Unknown option", name)
	}
}
