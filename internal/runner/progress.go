package runner

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	progressBarFilled = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	progressBarEmpty  = lipgloss.NewStyle().Foreground(lipgloss.Color("#44475A"))
	progressTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BE9FD"))
	progressFail      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
	progressDim       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
)

// progressMsg carries a snapshot of Runner counters into the bubbletea
// loop; ProgressView pushes one of these every 200ms rather than
// reading the Runner's fields directly from the Update goroutine.
type progressMsg struct {
	total, done, fromCache, skipped, failed, retried, pending int
	lastMessage                                               string
	finished                                                  bool
}

type progressTickMsg time.Time

// ProgressView renders a single live progress bar plus a scrolling tail
// of recent job messages (failures, retries) while a Runner drains its
// queue, replacing the original's indicatif::ProgressBar with a
// bubbletea program in the same vein as ui/app.go's Model.
type ProgressView struct {
	total int

	mu       sync.Mutex
	latest   progressMsg
	messages []string
}

// NewProgressView wires itself to r via r.OnMessage so failure/retry
// notices appear in the scrolling tail, and returns a view ready to be
// driven by Run. total is the number of jobs the caller is about to
// Enqueue, used to size the bar.
func NewProgressView(r *Runner, total int) *ProgressView {
	p := &ProgressView{total: total}
	r.OnMessage(func(msg string) {
		p.mu.Lock()
		p.messages = append(p.messages, msg)
		if len(p.messages) > 8 {
			p.messages = p.messages[len(p.messages)-8:]
		}
		p.mu.Unlock()
	})
	return p
}

// poll is called periodically by Run's driving goroutine with the
// latest Runner counters.
func (p *ProgressView) poll(r *Runner) progressMsg {
	r.mu.Lock()
	m := progressMsg{
		total:     p.total,
		done:      r.Done,
		fromCache: r.DoneViaCache,
		skipped:   r.DoneViaSkip,
		failed:    r.Failed,
		retried:   r.Retried,
		pending:   len(r.queue),
	}
	r.mu.Unlock()
	return m
}

// Run drives r.Drain while rendering a live bubbletea progress program,
// returning whatever Drain returns. It blocks until the run completes.
func (p *ProgressView) Run(drain func() []Result, r *Runner) []Result {
	prog := tea.NewProgram(p)
	done := make(chan []Result, 1)

	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		stop := make(chan struct{})
		go func() {
			for {
				select {
				case <-ticker.C:
					snap := p.poll(r)
					p.mu.Lock()
					snap.lastMessage = lastOrEmpty(p.messages)
					p.mu.Unlock()
					prog.Send(snap)
				case <-stop:
					return
				}
			}
		}()
		results := drain()
		close(stop)
		final := p.poll(r)
		final.finished = true
		prog.Send(final)
		done <- results
	}()

	prog.Run()
	return <-done
}

func lastOrEmpty(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return lines[len(lines)-1]
}

func (p *ProgressView) Init() tea.Cmd { return nil }

func (p *ProgressView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case progressMsg:
		p.mu.Lock()
		p.latest = m
		p.mu.Unlock()
		if m.finished {
			return p, tea.Quit
		}
		return p, nil
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			return p, tea.Quit
		}
	}
	return p, nil
}

func (p *ProgressView) View() string {
	p.mu.Lock()
	m := p.latest
	msgs := append([]string(nil), p.messages...)
	p.mu.Unlock()

	const width = 40
	finishedCount := m.done + m.fromCache + m.skipped + m.failed
	frac := 0.0
	if m.total > 0 {
		frac = float64(finishedCount) / float64(m.total)
	}
	filled := int(frac * width)
	if filled > width {
		filled = width
	}
	bar := progressBarFilled.Render(strings.Repeat("█", filled)) +
		progressBarEmpty.Render(strings.Repeat("░", width-filled))

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", progressTitle.Render("running jobs"))
	fmt.Fprintf(&b, "[%s] %d/%d\n", bar, finishedCount, m.total)
	fmt.Fprintf(&b, "done=%d cache=%d skipped=%d retried=%d ", m.done, m.fromCache, m.skipped, m.retried)
	if m.failed > 0 {
		fmt.Fprintf(&b, "%s\n", progressFail.Render(fmt.Sprintf("failed=%d", m.failed)))
	} else {
		fmt.Fprintf(&b, "failed=%d\n", m.failed)
	}
	for _, line := range msgs {
		fmt.Fprintf(&b, "%s\n", progressDim.Render(line))
	}
	return b.String()
}
