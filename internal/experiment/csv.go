package experiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/hailam/minichess/internal/config"
)

// Header lists the CSV columns in order.
var Header = []string{
	"experiment_id", "experiment_type", "description",
	"white_agent", "white_config", "black_agent", "black_config",
	"num_games", "swap_colors",
	"white_wins", "draws", "black_wins",
	"white_agent_wins", "black_agent_wins",
	"avg_plies", "total_time_sec",
}

func (r Row) record() []string {
	return []string{
		r.ID, string(r.Type), r.Description,
		r.WhiteAgent, r.WhiteConfig, r.BlackAgent, r.BlackConfig,
		strconv.Itoa(r.Games), strconv.FormatBool(r.SwapColors),
		strconv.Itoa(r.WhiteWins), strconv.Itoa(r.Draws), strconv.Itoa(r.BlackWins),
		strconv.Itoa(r.WhiteAgentWins), strconv.Itoa(r.BlackAgentWins),
		strconv.FormatFloat(r.AvgPlies, 'f', 2, 64),
		strconv.FormatFloat(r.TotalTime.Seconds(), 'f', 3, 64),
	}
}

// WriteCSV writes a header line followed by one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes rows to path, replacing any existing file.
func SaveCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses rows written by WriteCSV. Columns are matched by header
// name, so extra columns are ignored.
func ReadCSV(r io.Reader) ([]Row, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[name] = i
	}
	for _, name := range Header {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("csv: missing column %q", name)
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for line, rec := range records[1:] {
		p := fieldParser{rec: rec, col: col}
		row := Row{
			ID:             p.str("experiment_id"),
			Type:           config.ExperimentType(p.str("experiment_type")),
			Description:    p.str("description"),
			WhiteAgent:     p.str("white_agent"),
			WhiteConfig:    p.str("white_config"),
			BlackAgent:     p.str("black_agent"),
			BlackConfig:    p.str("black_config"),
			Games:          p.asInt("num_games"),
			SwapColors:     p.asBool("swap_colors"),
			WhiteWins:      p.asInt("white_wins"),
			Draws:          p.asInt("draws"),
			BlackWins:      p.asInt("black_wins"),
			WhiteAgentWins: p.asInt("white_agent_wins"),
			BlackAgentWins: p.asInt("black_agent_wins"),
			AvgPlies:       p.asFloat("avg_plies"),
			TotalTime:      time.Duration(p.asFloat("total_time_sec") * float64(time.Second)),
		}
		if p.err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line+2, p.err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadCSV reads rows from path.
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// fieldParser keeps the first conversion error.
type fieldParser struct {
	rec []string
	col map[string]int
	err error
}

func (p *fieldParser) str(name string) string {
	return p.rec[p.col[name]]
}

func (p *fieldParser) asInt(name string) int {
	n, err := strconv.Atoi(p.str(name))
	p.keep(name, err)
	return n
}

func (p *fieldParser) asFloat(name string) float64 {
	f, err := strconv.ParseFloat(p.str(name), 64)
	p.keep(name, err)
	return f
}

func (p *fieldParser) asBool(name string) bool {
	b, err := strconv.ParseBool(p.str(name))
	p.keep(name, err)
	return b
}

func (p *fieldParser) keep(name string, err error) {
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: %w", name, err)
	}
}
