package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/teachbot/pkg/pad"
	"github.com/gwillem/teachbot/pkg/recorder"
	"github.com/gwillem/teachbot/pkg/robot"
)

type RecordCommand struct {
	Config string `long:"config" short:"c" description:"Config file" default:"teachbot.json"`
	Memory string `long:"memory" short:"m" description:"Memory file to load before recording"`
}

const (
	refreshInterval = 200 * time.Millisecond
	headerHeight    = 2
	panelHeight     = 10 // memory + feed boxes
	borderSize      = 2
	maxFeedLines    = 6
	maxMemoryLines  = 6
)

// Joint colors: one distinct color per joint trace.
var jointColors = []string{"196", "208", "46", "51"}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	goodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type dashboardModel struct {
	rec        *recorder.Recorder
	savePath   string
	chart      *streamlinechart.Model
	width      int
	height     int
	jointSpeed int
	quitting   bool
}

func newDashboardModel(rec *recorder.Recorder, savePath string) dashboardModel {
	chart := streamlinechart.New(80, 16,
		streamlinechart.WithYRange(-360, 360),
	)
	for j, color := range jointColors {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		chart.SetDataSetStyles(jointName(j), runes.ThinLineStyle, style)
	}
	return dashboardModel{
		rec:        rec,
		savePath:   savePath,
		chart:      &chart,
		jointSpeed: 100,
	}
}

func jointName(j int) string {
	return fmt.Sprintf("j%d", j+1)
}

func (m *dashboardModel) resizeChart() {
	w := m.width - borderSize - 2
	if w < 40 {
		w = 40
	}
	h := m.height - headerHeight - panelHeight - borderSize
	if h < 8 {
		h = 8
	}
	m.chart.Resize(w, h)
}

func (m dashboardModel) Init() tea.Cmd {
	return tick()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		for j, angle := range m.rec.CurrentAngles() {
			m.chart.PushDataSet(jointName(j), angle)
		}
		m.chart.DrawAll()
		return m, tick()
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.rec.Stop()
		return m, tea.Quit
	case "s":
		m.rec.SaveMemory(m.savePath)
	case "l":
		m.rec.LoadMemory(m.savePath)
	case "b":
		m.rec.Bundle()
	case "r":
		// Replay blocks on arm motion; keep the UI alive.
		go m.rec.Replay()
	case "e":
		go func() {
			if err := m.rec.ClearError(); err != nil {
				m.rec.AddFeed(fmt.Sprintf("Clear error failed: %v", err), "Dashboard")
			}
		}()
	case "n":
		go func() {
			if err := m.rec.Reconnect(); err != nil {
				m.rec.AddFeed(fmt.Sprintf("Reconnect failed: %v", err), "Dashboard")
			}
		}()
	case "+", "=":
		if m.jointSpeed < 100 {
			m.jointSpeed += 10
		}
		m.setJointSpeed()
	case "-":
		if m.jointSpeed > 10 {
			m.jointSpeed -= 10
		}
		m.setJointSpeed()
	}
	return m, nil
}

func (m dashboardModel) setJointSpeed() {
	if err := m.rec.SetJointSpeed(float64(m.jointSpeed)); err != nil {
		m.rec.AddFeed(fmt.Sprintf("Set speed failed: %v", err), "Dashboard")
	}
}

func (m dashboardModel) View() string {
	if m.quitting {
		return "Recorder stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Teachbot Recorder"))
	sb.WriteString("  " + m.statusLine())
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	boxWidth := m.width/2 - 3
	if boxWidth < 30 {
		boxWidth = 30
	}
	memBox := panelStyle.Width(boxWidth).Render(m.renderMemory())
	feedBox := panelStyle.Width(boxWidth).Render(m.renderFeed())
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, memBox, feedBox))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(
		"[s]ave [l]oad [b]undle [r]eplay clear [e]rror reco[n]nect [+/-] speed [q]uit"))
	sb.WriteString("\n")

	return sb.String()
}

func (m dashboardModel) statusLine() string {
	pose := m.rec.CurrentPose()
	mode := string(m.rec.Mode())
	parts := []string{
		fmt.Sprintf("mode %s", mode),
		fmt.Sprintf("joint %d", m.rec.ActiveJoint()+1),
		fmt.Sprintf("speed %d%%", m.jointSpeed),
		fmt.Sprintf("pose %s", formatVec(pose)),
		liveness("robot", m.rec.RobotAlive()),
		liveness("controller", m.rec.ControllerAlive()),
	}
	return statusStyle.Render(strings.Join(parts, "  "))
}

func liveness(name string, alive bool) string {
	if alive {
		return goodStyle.Render(name + " ●")
	}
	return badStyle.Render(name + " ○")
}

func formatVec(vec []float64) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = fmt.Sprintf("%.1f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (m dashboardModel) renderMemory() string {
	entries := m.rec.Memory()
	lines := []string{titleStyle.Render(fmt.Sprintf("Memory (%d)", len(entries)))}
	start := 0
	if len(entries) > maxMemoryLines {
		start = len(entries) - maxMemoryLines
	}
	for i := start; i < len(entries); i++ {
		e := entries[i]
		line := fmt.Sprintf("%3d [%s][%s] %s", i+1, e.Category, e.Motion, formatVec(e.Value))
		if !e.Valid {
			line = badStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderFeed shows the most recent log lines, newest first.
func (m dashboardModel) renderFeed() string {
	feed := m.rec.Feed()
	lines := []string{titleStyle.Render("Feed")}
	for i := len(feed) - 1; i >= 0 && len(lines) <= maxFeedLines; i-- {
		f := feed[i]
		lines = append(lines, fmt.Sprintf("%s [%s] %s",
			f.Timestamp.Format("15:04:05"), f.Source, f.Message))
	}
	return strings.Join(lines, "\n")
}

func (c *RecordCommand) Execute(args []string) error {
	logger := log.New(os.Stderr)
	logger.SetReportTimestamp(true)

	cfg, err := recorder.LoadConfigFrom(c.Config)
	if err != nil {
		logger.Warn("No config file, using defaults", "path", c.Config)
		cfg = recorder.DefaultConfig()
		if err := cfg.SaveTo(c.Config); err == nil {
			logger.Info("Wrote default config", "path", c.Config)
		}
	}

	// The recorder owns the feed log both links report into, so it is built
	// first and the links are wired to it.
	var rec *recorder.Recorder
	feed := func(msg, source string) {
		if rec != nil {
			rec.AddFeed(msg, source)
		} else {
			logger.Info(msg, "source", source)
		}
	}

	logger.Info("Connecting to arm", "addr", cfg.Robot.Addr)
	arm, err := robot.Dial(cfg.Robot, feed)
	if err != nil {
		return fmt.Errorf("connect arm: %w", err)
	}

	logger.Info("Connecting to controller", "joystick", cfg.JoystickID)
	ctrl, err := pad.Connect(pad.OpenJoystick(cfg.JoystickID), cfg.PollHz, feed)
	if err != nil {
		arm.Close()
		return fmt.Errorf("connect controller: %w", err)
	}

	rec, err = recorder.New(cfg, arm, ctrl)
	if err != nil {
		arm.Close()
		ctrl.Close()
		return err
	}
	if c.Memory != "" {
		rec.LoadMemory(c.Memory)
	}
	if err := rec.Start(); err != nil {
		return err
	}

	p := tea.NewProgram(newDashboardModel(rec, cfg.SavePath), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		rec.Stop()
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
