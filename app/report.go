package app

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	reportTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	reportLabelStyle = lipgloss.NewStyle().Width(20).
		Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	reportWarnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F5F"))
	reportBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

//Summary aggregates the frames of a headless run
type Summary struct {
	Ticks             int
	SimTime           float64
	Wall              time.Duration
	DegenerateSprings int
	DegenerateSphere  int
	GroundContacts    int
	SphereContacts    int
	DivergedTicks     int
	FirstDiverged     int
	PeakSpeed         float64
	Last              Metrics
}

//Add folds one frame and its metrics into the summary
func (s *Summary) Add(f *Frame, m Metrics) {
	s.Ticks++
	s.SimTime = f.Time
	s.DegenerateSprings += f.Stats.DegenerateSprings
	s.DegenerateSphere += f.Stats.DegenerateSphere
	s.GroundContacts += f.Stats.GroundContacts
	s.SphereContacts += f.Stats.SphereContacts
	if f.Stats.Diverged {
		if s.DivergedTicks == 0 {
			s.FirstDiverged = f.Tick
		}
		s.DivergedTicks++
	}
	if m.MaxSpeed > s.PeakSpeed {
		s.PeakSpeed = m.MaxSpeed
	}
	s.Last = m
}

//Render formats the summary for a terminal
func (s *Summary) Render() string {
	row := func(label string, value string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, reportLabelStyle.Render(label), value)
	}

	rows := []string{
		reportTitleStyle.Render("cloth run"),
		row("ticks", fmt.Sprintf("%d (%.2fs simulated, %s wall)", s.Ticks, s.SimTime, s.Wall.Round(time.Millisecond))),
		row("height mean/std", fmt.Sprintf("%.3f / %.3f", s.Last.MeanHeight, s.Last.StdHeight)),
		row("height min/max", fmt.Sprintf("%.3f / %.3f", s.Last.MinHeight, s.Last.MaxHeight)),
		row("speed mean/max", fmt.Sprintf("%.3f / %.3f", s.Last.MeanSpeed, s.Last.MaxSpeed)),
		row("peak speed", fmt.Sprintf("%.3f", s.PeakSpeed)),
		row("kinetic energy", fmt.Sprintf("%.4f", s.Last.KineticEnergy)),
		row("ground contacts", fmt.Sprintf("%d", s.GroundContacts)),
		row("sphere contacts", fmt.Sprintf("%d", s.SphereContacts)),
		row("degenerate", fmt.Sprintf("%d springs, %d sphere", s.DegenerateSprings, s.DegenerateSphere)),
	}
	if s.DivergedTicks > 0 {
		rows = append(rows, row("diverged", reportWarnStyle.Render(
			fmt.Sprintf("%d ticks, first at %d", s.DivergedTicks, s.FirstDiverged))))
	}
	return reportBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

//WriteReport renders the summary to w
func WriteReport(w io.Writer, s *Summary) error {
	_, err := fmt.Fprintln(w, s.Render())
	return err
}
