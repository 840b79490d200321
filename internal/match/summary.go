package match

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/hailam/minichess/internal/board"
)

// DefaultConfidence is the confidence level, in percent, of Summary.ScoreLow
// and Summary.ScoreHigh.
const DefaultConfidence = 95.0

// Tally counts results by colour and by agent. Agent A is the agent that
// plays White in unswapped games.
type Tally struct {
	AgentA      string `json:"agent_a"`
	AgentB      string `json:"agent_b"`
	WhiteWins   int    `json:"white_wins"`
	Draws       int    `json:"draws"`
	BlackWins   int    `json:"black_wins"`
	AWins       int    `json:"agent_a_wins"`
	BWins       int    `json:"agent_b_wins"`
	Adjudicated int    `json:"adjudicated"`
	Games       int    `json:"games"`
	TotalPlies  int    `json:"total_plies"`
}

// Record adds one finished game.
func (t *Tally) Record(g GameRecord) {
	t.Games++
	t.TotalPlies += g.Plies
	if g.Adjudicated {
		t.Adjudicated++
	}

	switch g.Outcome {
	case board.WhiteWin:
		t.WhiteWins++
	case board.BlackWin:
		t.BlackWins++
	default:
		t.Draws++
		return
	}

	// Agent A holds White unless the game was swapped.
	if (g.Outcome == board.WhiteWin) != g.Swapped {
		t.AWins++
	} else {
		t.BWins++
	}
}

// AvgPlies returns the mean game length.
func (t *Tally) AvgPlies() float64 {
	if t.Games == 0 {
		return 0
	}
	return float64(t.TotalPlies) / float64(t.Games)
}

// Score returns agent A's score fraction, counting a draw as half a win.
func (t *Tally) Score() float64 {
	return WinRate(t.AWins, t.Draws, t.BWins)
}

func (t *Tally) String() string {
	return fmt.Sprintf("By color -> White %d | Draw %d | Black %d (avg plies: %.1f)\n"+
		"By agent  -> %s %d | Draw %d | %s %d",
		t.WhiteWins, t.Draws, t.BlackWins, t.AvgPlies(),
		t.AgentA, t.AWins, t.Draws, t.AgentB, t.BWins)
}

// WinRate is (wins + draws/2) / games, or 0 for no games.
func WinRate(wins, draws, losses int) float64 {
	games := wins + draws + losses
	if games == 0 {
		return 0
	}
	return (float64(wins) + 0.5*float64(draws)) / float64(games)
}

// ZVal returns the two-tailed z value for a confidence level given in percent.
func ZVal(confidence float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	return dist.Quantile((1 + confidence/100) / 2)
}

// Summary is the aggregate of a finished match.
type Summary struct {
	ID string `json:"id"`
	Tally
	MeanPlies   float64       `json:"mean_plies"`
	StdDevPlies float64       `json:"stddev_plies"`
	ScoreA      float64       `json:"score_a"`
	ScoreLow    float64       `json:"score_low"`
	ScoreHigh   float64       `json:"score_high"`
	Lengths     []float64     `json:"lengths"`
	WhiteTime   time.Duration `json:"white_time"`
	BlackTime   time.Duration `json:"black_time"`
	Elapsed     time.Duration `json:"elapsed"`
	FinishedAt  time.Time     `json:"finished_at"`
}

// Summarize builds a Summary from records played between agent specs a and b.
func Summarize(a, b string, records []GameRecord) Summary {
	s := Summary{Tally: Tally{AgentA: a, AgentB: b}}
	for _, g := range records {
		s.Record(g)
		s.WhiteTime += g.WhiteTime
		s.BlackTime += g.BlackTime
	}

	s.Lengths = lo.Map(records, func(g GameRecord, _ int) float64 { return float64(g.Plies) })
	if len(s.Lengths) > 0 {
		s.MeanPlies, s.StdDevPlies = stat.MeanStdDev(s.Lengths, nil)
		if math.IsNaN(s.StdDevPlies) {
			s.StdDevPlies = 0
		}
	}

	s.ScoreA = s.Score()
	s.ScoreLow, s.ScoreHigh = s.ScoreInterval(DefaultConfidence)
	s.FinishedAt = time.Now()
	return s
}

// ScoreInterval returns a normal-approximation confidence interval for agent
// A's score, clamped to [0, 1].
func (s Summary) ScoreInterval(confidence float64) (float64, float64) {
	if s.Games == 0 {
		return 0, 1
	}
	p := s.Score()
	se := math.Sqrt(p * (1 - p) / float64(s.Games))
	z := ZVal(confidence)
	return math.Max(0, p-z*se), math.Min(1, p+z*se)
}

// Report writes the tallies, score interval and a histogram of game lengths.
func (s Summary) Report(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ran %d games: %s vs %s\n", s.Games, s.AgentA, s.AgentB)
	sb.WriteString(s.Tally.String())
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "Score %s: %.3f (%.0f%% CI %.3f - %.3f)\n",
		s.AgentA, s.ScoreA, DefaultConfidence, s.ScoreLow, s.ScoreHigh)
	fmt.Fprintf(&sb, "Game length: mean %.1f, stddev %.1f plies; adjudicated %d\n",
		s.MeanPlies, s.StdDevPlies, s.Adjudicated)
	fmt.Fprintf(&sb, "Thinking time: White %s, Black %s; wall %s\n",
		s.WhiteTime.Round(time.Millisecond), s.BlackTime.Round(time.Millisecond), s.Elapsed.Round(time.Millisecond))
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	if len(s.Lengths) < 2 {
		return nil
	}
	if _, err := io.WriteString(w, "Plies per game:\n"); err != nil {
		return err
	}
	hist := histogram.Hist(10, s.Lengths)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}
