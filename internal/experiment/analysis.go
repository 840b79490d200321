package experiment

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/hailam/minichess/internal/agent"
	"github.com/hailam/minichess/internal/config"
)

const rule = "================================================================================"

// Cell is one entry of a head-to-head matrix.
type Cell struct {
	WinRate float64
	Games   int
}

// Matrix holds the win rate of each row agent (listed as White) against
// each column agent.
type Matrix struct {
	Rows  []string
	Cols  []string
	Cells map[string]map[string]Cell
}

// Get returns the cell for row r and column c.
func (m *Matrix) Get(r, c string) (Cell, bool) {
	cell, ok := m.Cells[r][c]
	return cell, ok
}

// HeadToHead builds the win-rate matrix of the head-to-head rows.
func HeadToHead(rows []Row) *Matrix {
	h2h := lo.Filter(rows, func(r Row, _ int) bool { return r.Type == config.HeadToHead })
	m := &Matrix{
		Rows:  sortSpecs(lo.Uniq(lo.Map(h2h, func(r Row, _ int) string { return r.WhiteSpec() }))),
		Cols:  sortSpecs(lo.Uniq(lo.Map(h2h, func(r Row, _ int) string { return r.BlackSpec() }))),
		Cells: map[string]map[string]Cell{},
	}
	for _, r := range h2h {
		row, ok := m.Cells[r.WhiteSpec()]
		if !ok {
			row = map[string]Cell{}
			m.Cells[r.WhiteSpec()] = row
		}
		row[r.BlackSpec()] = Cell{WinRate: r.WinRate(), Games: r.Games}
	}
	return m
}

// strength orders specs of one kind by their budget.
func strength(text string) (string, int) {
	spec, err := agent.ParseSpec(text)
	if err != nil {
		return text, 0
	}
	budget := spec.Depth
	if spec.Kind == agent.KindMCTS {
		budget = spec.Simulations
	}
	return string(spec.Kind), budget
}

func sortSpecs(specs []string) []string {
	sort.SliceStable(specs, func(i, j int) bool {
		ki, bi := strength(specs[i])
		kj, bj := strength(specs[j])
		if ki != kj {
			return ki < kj
		}
		if bi != bj {
			return bi < bj
		}
		return specs[i] < specs[j]
	})
	return specs
}

// Report writes the per-type listing, the head-to-head matrix, the
// degradation tables and a closing summary.
func Report(w io.Writer, rows []Row) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Loaded %d experiment results\n", len(rows))

	writeByType(&sb, rows)
	writeMatrix(&sb, HeadToHead(rows))
	writeDegradation(&sb, rows)

	totalGames := lo.SumBy(rows, func(r Row) int { return r.Games })
	totalTime := lo.SumBy(rows, func(r Row) time.Duration { return r.TotalTime })
	fmt.Fprintf(&sb, "\n%s\nSUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(&sb, "Total experiments: %d\n", len(rows))
	fmt.Fprintf(&sb, "Total games played: %d\n", totalGames)
	fmt.Fprintf(&sb, "Total compute time: %.1fs (%.1f minutes)\n", totalTime.Seconds(), totalTime.Minutes())

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeByType(sb *strings.Builder, rows []Row) {
	fmt.Fprintf(sb, "\n%s\nANALYSIS BY EXPERIMENT TYPE\n%s\n", rule, rule)
	groups := lo.GroupBy(rows, func(r Row) config.ExperimentType { return r.Type })
	types := lo.Keys(groups)
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, typ := range types {
		group := groups[typ]
		fmt.Fprintf(sb, "\n%s (%d experiments)\n%s\n", strings.ToUpper(string(typ)), len(group), strings.Repeat("-", len(rule)))
		for _, r := range group {
			fmt.Fprintf(sb, "  %s: %s\n", r.ID, r.Description)
			fmt.Fprintf(sb, "    %s %d-%d-%d %s\n", r.WhiteSpec(), r.WhiteAgentWins, r.Draws, r.BlackAgentWins, r.BlackSpec())
			fmt.Fprintf(sb, "    Win rate: %.1f%% | Avg plies: %.1f | Time: %.1fs\n",
				r.WinRate()*100, r.AvgPlies, r.TotalTime.Seconds())
		}
	}
}

func writeMatrix(sb *strings.Builder, m *Matrix) {
	if len(m.Rows) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s\nHEAD-TO-HEAD WIN RATE MATRIX\n%s\n", rule, rule)
	sb.WriteString("\nRows play White in even games; cells show the row agent's win rate\n\n")

	width := lo.Max(lo.Map(m.Rows, func(r string, _ int) int { return len(r) }))
	colWidth := max(lo.Max(lo.Map(m.Cols, func(c string, _ int) int { return len(c) })), 7)

	header := fmt.Sprintf("%-*s |", width, "")
	for _, c := range m.Cols {
		header += fmt.Sprintf(" %*s |", colWidth, c)
	}
	sb.WriteString(header + "\n")
	sb.WriteString(strings.Repeat("-", len(header)) + "\n")

	for _, r := range m.Rows {
		line := fmt.Sprintf("%-*s |", width, r)
		for _, c := range m.Cols {
			if cell, ok := m.Get(r, c); ok {
				line += fmt.Sprintf(" %*.1f%% |", colWidth-1, cell.WinRate*100)
			} else {
				line += fmt.Sprintf(" %*s |", colWidth, "-")
			}
		}
		sb.WriteString(line + "\n")
	}
}

func writeDegradation(sb *strings.Builder, rows []Row) {
	deg := lo.Filter(rows, func(r Row, _ int) bool { return r.Type == config.Degradation })
	if len(deg) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s\nRESOURCE DEGRADATION ANALYSIS\n%s\n", rule, rule)

	byKind := lo.GroupBy(deg, func(r Row) string { return r.WhiteAgent })
	kinds := lo.Keys(byKind)
	sort.Strings(kinds)
	for _, kind := range kinds {
		group := byKind[kind]
		sort.SliceStable(group, func(i, j int) bool {
			_, bi := strength(group[i].WhiteSpec())
			_, bj := strength(group[j].WhiteSpec())
			return bi > bj
		})
		fmt.Fprintf(sb, "\n%s vs %s (varying budget):\n%s\n", kind, group[0].BlackSpec(), strings.Repeat("-", 40))
		for _, r := range group {
			fmt.Fprintf(sb, "  %-20s %d-%d-%d (win rate: %.1f%%)\n",
				r.WhiteConfig, r.WhiteAgentWins, r.Draws, r.BlackAgentWins, r.WinRate()*100)
		}
	}
}
