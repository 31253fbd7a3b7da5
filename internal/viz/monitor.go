package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/moldtherm/internal/sim"
)

const (
	historyCapacity = 240
	gridColumns     = 6
	targetStep      = 5.0
)

var speeds = []int{1, 4, 16}

type TickMsg time.Time

// Monitor is a Bubble Tea model that pulls one driver tick per polling
// period, scaled by the selected speed.
type Monitor struct {
	driver   *sim.Driver
	title    string
	last     []sim.Status
	history  map[int][]float64
	selected int
	running  bool
	speed    int
	err      error
}

func NewMonitor(d *sim.Driver, title string) Monitor {
	chans := d.Channels()
	last := make([]sim.Status, len(chans))
	for i, ch := range chans {
		last[i] = sim.Status{
			ChannelID:   ch.ID,
			Voltage:     ch.Voltage,
			Temperature: ch.LastAccepted,
			Target:      ch.Target,
			HeaterOn:    ch.Heating,
		}
		last[i].Classification = d.Components().Classifier.ClassifyChannel(&ch)
	}
	return Monitor{
		driver:  d,
		title:   title,
		last:    last,
		history: make(map[int][]float64, len(chans)),
		running: true,
	}
}

func (m Monitor) interval() time.Duration {
	return m.driver.PollingPeriod() / time.Duration(speeds[m.speed])
}

func (m Monitor) tick() tea.Cmd {
	return tea.Tick(m.interval(), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Monitor) Init() tea.Cmd {
	return m.tick()
}

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "tab", "right", "l":
			m.selected = (m.selected + 1) % len(m.last)
		case "shift+tab", "left", "h":
			m.selected = (m.selected + len(m.last) - 1) % len(m.last)
		case "down", "j":
			m.selected = min(m.selected+gridColumns, len(m.last)-1)
		case "up", "k":
			m.selected = max(m.selected-gridColumns, 0)
		case "m":
			m.toggleEquipment(true)
		case "p":
			m.toggleEquipment(false)
		case "+", "=":
			m.shiftTarget(targetStep)
		case "-", "_":
			m.shiftTarget(-targetStep)
		case "f":
			m.speed = (m.speed + 1) % len(speeds)
		case "t":
			NextTheme()
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Monitor) step() {
	m.last = m.driver.Tick()
	for _, st := range m.last {
		h := append(m.history[st.ChannelID], st.Temperature)
		if len(h) > historyCapacity {
			h = h[len(h)-historyCapacity:]
		}
		m.history[st.ChannelID] = h
	}
}

func (m *Monitor) selectedID() int { return m.last[m.selected].ChannelID }

func (m *Monitor) toggleEquipment(matrix bool) {
	ch, err := m.driver.Channel(m.selectedID())
	if err != nil {
		m.err = err
		return
	}
	if matrix {
		ch.MatrixOperational = !ch.MatrixOperational
	} else {
		ch.PunchOperational = !ch.PunchOperational
	}
	m.err = m.driver.SetEquipment(ch.ID, ch.MatrixOperational, ch.PunchOperational)
}

func (m *Monitor) shiftTarget(delta float64) {
	ch, err := m.driver.Channel(m.selectedID())
	if err != nil {
		m.err = err
		return
	}
	m.err = m.driver.SetTarget(ch.ID, ch.Target+delta)
}

func (m Monitor) View() string {
	var s strings.Builder

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	header := fmt.Sprintf("%s  tick %d  t=%.1fs  %s  x%d",
		strings.ToUpper(m.title), m.driver.TickCount(), m.driver.Elapsed().Seconds(), status, speeds[m.speed])
	s.WriteString(headerStyle.Foreground(CurrentTheme.Secondary).Render(header) + "\n")

	rows := make([]string, 0, (len(m.last)+gridColumns-1)/gridColumns)
	for start := 0; start < len(m.last); start += gridColumns {
		end := min(start+gridColumns, len(m.last))
		cells := make([]string, 0, gridColumns)
		for i := start; i < end; i++ {
			cells = append(cells, m.cell(i))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)

	view := lipgloss.JoinHorizontal(lipgloss.Top, grid, statsStyle.Render(m.details()))
	s.WriteString(view)
	s.WriteString(helpStyle.Render("\nSP:Pause TAB/←→↑↓:Select M/P:Matrix/Punch +/-:Target F:Speed T:Theme Q:Quit"))
	return s.String()
}

func (m Monitor) cell(i int) string {
	st := m.last[i]
	heater := "off"
	if st.HeaterOn {
		heater = "on "
	}
	body := fmt.Sprintf("#%-2d %6.1f C\nset %5.1f  %s\n%s",
		st.ChannelID, st.Temperature, st.Target, heater,
		Sparkline(m.history[st.ChannelID], st.Target-m.alarmBand(), st.Target+m.alarmBand(), 14))

	style := cellStyle.BorderForeground(ClassColor(st.Classification))
	if i == m.selected {
		style = style.BorderStyle(lipgloss.ThickBorder())
	}
	return style.Render(ClassStyle(st.Classification).Render(body))
}

func (m Monitor) details() string {
	st := m.last[m.selected]
	var s strings.Builder

	s.WriteString(headerStyle.Foreground(CurrentTheme.Primary).Render(fmt.Sprintf("CHANNEL %d", st.ChannelID)) + "\n")
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("State", ClassStyle(st.Classification).Render(st.Classification.String()))
	row("Temp", fmt.Sprintf("%.2f C", st.Temperature))
	row("Raw", fmt.Sprintf("%.2f C", st.Raw))
	row("Target", fmt.Sprintf("%.1f C", st.Target))
	row("Voltage", fmt.Sprintf("%.3f mV", st.Voltage))
	row("Heater", fmt.Sprintf("%v", st.HeaterOn))
	if st.Rejected {
		row("Filter", "reading rejected")
	}

	if ch, err := m.driver.Channel(st.ChannelID); err == nil {
		row("Matrix", okString(ch.MatrixOperational))
		row("Punch", okString(ch.PunchOperational))
	}

	if h := m.history[st.ChannelID]; len(h) > 1 {
		chart := asciigraph.Plot(h, asciigraph.Height(6), asciigraph.Width(36), asciigraph.Precision(1),
			asciigraph.Caption("temperature"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	if alarm := m.alarmBand(); alarm > 0 {
		row("Band", ProgressBar((st.Temperature-st.Target+alarm)/(2*alarm), 20))
	}

	if m.err != nil {
		s.WriteString(lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	return s.String()
}

func (m Monitor) alarmBand() float64 {
	return m.driver.Components().Classifier.AlarmBand
}

func okString(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAULT"
}

// Selected returns the id of the highlighted channel.
func (m Monitor) Selected() int { return m.selectedID() }

// Last returns the statuses shown on screen.
func (m Monitor) Last() []sim.Status { return m.last }

var _ tea.Model = Monitor{}
