package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fogleman/ease"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
	cli "gopkg.in/urfave/cli.v1"
)

var topCommand = cli.Command{
	Name:  "top",
	Usage: "live-updating view of profiler stats",
	Action: func(c *cli.Context) error {
		m := topModel{cl: newClient(c.GlobalString("addr"))}
		p := tea.NewProgram(m)
		return p.Start()
	},
}

type statsMsg struct {
	stats map[string]interface{}
	err   error
}

type topModel struct {
	cl     *client
	stats  map[string]interface{}
	err    error
	pulse  float64 // eases 0->1->0, driving the header's color intensity
	rising bool
}

func (m topModel) Init() tea.Cmd {
	return tea.Batch(m.poll(), tick())
}

func (m topModel) poll() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.cl.stats()
		return statsMsg{stats: stats, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

type tickMsg struct{}

func (m topModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		if m.rising {
			m.pulse += 0.1
			if m.pulse >= 1 {
				m.pulse, m.rising = 1, false
			}
		} else {
			m.pulse -= 0.1
			if m.pulse <= 0 {
				m.pulse, m.rising = 0, true
			}
		}
		return m, tea.Batch(m.poll(), tick())
	case statsMsg:
		m.stats, m.err = msg.stats, msg.err
	}
	return m, nil
}

func (m topModel) View() string {
	// ease.InOutQuad gives the header pulse a smoother ramp than a
	// linear fade; go-colorful blends toward a warm highlight as it
	// peaks, purely a terminal-polish touch.
	t := ease.InOutQuad(m.pulse)
	base, _ := colorful.Hex("#2a9df4")
	warm, _ := colorful.Hex("#f4a42a")
	header := termenv.String("ldbctl top").Foreground(termenv.ColorProfile().Color(base.BlendLuv(warm, t).Hex())).Bold()

	body := "waiting for first sample...\n"
	if m.err != nil {
		body = fmt.Sprintf("error: %v\n", m.err)
	} else if m.stats != nil {
		body = ""
		for k, v := range m.stats {
			body += fmt.Sprintf("%-24s %v\n", k, v)
		}
	}

	return header.String() + "\n" + wordwrap.String(body, 100) + "\n(press q to quit)\n"
}
