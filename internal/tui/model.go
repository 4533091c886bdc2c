// Package tui runs a quiz session in the terminal with Bubble Tea.
package tui

import (
	"fmt"
	"prepaena_backend/internal/quiz"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configures the terminal quiz.
type Options struct {
	Title        string
	NoColor      bool
	TickInterval time.Duration
}

// Model drives one quiz.Session from key presses and a one second clock.
type Model struct {
	session      *quiz.Session
	title        string
	styles       styles
	tickInterval time.Duration
	status       string
	quitting     bool
}

// tickMsg is one elapsed second of the time budget.
type tickMsg time.Time

func NewModel(session *quiz.Session, opts Options) Model {
	interval := opts.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	title := opts.Title
	if title == "" {
		title = "PrepaENA"
	}
	return Model{
		session:      session,
		title:        title,
		styles:       newStyles(opts.NoColor),
		tickInterval: interval,
	}
}

// Session exposes the driven session, mostly for callers printing a summary.
func (m Model) Session() *quiz.Session {
	return m.session
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tickMsg:
		if m.session.State() != quiz.StateInProgress {
			return m, nil
		}
		if err := m.session.Tick(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		if m.session.State() == quiz.StateResults {
			m.status = "Temps écoulé"
			return m, nil
		}
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(typed.String())
	}
	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	m.status = ""
	switch key {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit
	}

	switch m.session.State() {
	case quiz.StateIntro:
		if key == "enter" || key == " " {
			if err := m.session.Start(); err != nil {
				m.status = err.Error()
				return m, nil
			}
			return m, m.tick()
		}
	case quiz.StateInProgress:
		switch key {
		case "right", "n", "l":
			m.report(m.session.GoNext())
		case "left", "p", "h":
			m.report(m.session.GoPrev())
		case "f", "enter":
			m.report(m.session.Finish())
		default:
			if choice, ok := choiceForKey(key); ok {
				m.report(m.session.SelectAnswer(choice))
			}
		}
	}
	return m, nil
}

func (m *Model) report(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

// choiceForKey maps 1-4 and a-d to option indexes.
func choiceForKey(key string) (quiz.Choice, bool) {
	if len(key) != 1 {
		return quiz.Unanswered, false
	}
	switch c := key[0]; {
	case c >= '1' && c <= '4':
		return quiz.Choice(c - '1'), true
	case c >= 'a' && c <= 'd':
		return quiz.Choice(c - 'a'), true
	}
	return quiz.Unanswered, false
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var body string
	switch m.session.State() {
	case quiz.StateIntro:
		body = m.introView()
	case quiz.StateInProgress:
		body = m.questionView()
	case quiz.StateResults:
		body = m.resultsView()
	}
	parts := []string{m.styles.title.Render(m.title), body}
	if m.status != "" {
		parts = append(parts, m.styles.warn.Render(m.status))
	}
	parts = append(parts, m.styles.help.Render(m.help()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m Model) help() string {
	switch m.session.State() {
	case quiz.StateIntro:
		return "entrée: commencer • q: quitter"
	case quiz.StateInProgress:
		return "1-4: répondre • ←/→: naviguer • f: terminer • q: quitter"
	}
	return "q: quitter"
}

func (m Model) introView() string {
	return fmt.Sprintf("%d questions • %s", m.session.Len(), clock(m.session.Budget()))
}

func (m Model) questionView() string {
	q, ok := m.session.Current()
	if !ok {
		return "Aucune question"
	}
	answers := m.session.Answers()
	selected := answers[m.session.Index()]

	var b strings.Builder
	header := fmt.Sprintf("Question %d/%d", m.session.Index()+1, m.session.Len())
	b.WriteString(m.styles.header.Render(header))
	b.WriteString("  ")
	b.WriteString(m.timer())
	b.WriteString("\n\n")
	b.WriteString(q.Prompt)
	b.WriteString("\n\n")
	for i, opt := range q.Options {
		line := fmt.Sprintf("%s. %s", quiz.OptionLetter(i), opt)
		if quiz.Choice(i) == selected {
			b.WriteString(m.styles.selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(progressBar(answers, m.session.Index()))
	return b.String()
}

func (m Model) timer() string {
	text := clock(m.session.Remaining())
	if m.session.Remaining() <= 60 {
		return m.styles.warn.Render(text)
	}
	return m.styles.muted.Render(text)
}

func (m Model) resultsView() string {
	score, _ := m.session.Score()
	review, _ := m.session.Review()

	var b strings.Builder
	b.WriteString(m.styles.header.Render(fmt.Sprintf("Score: %d/%d (%d%%)", score.Correct, score.Total, score.Percentage)))
	if m.session.FinishReason() == quiz.FinishTimeout {
		b.WriteString(" ")
		b.WriteString(m.styles.warn.Render("temps écoulé"))
	}
	b.WriteString("\n\n")
	for i, r := range review {
		mark := m.styles.good.Render("✓")
		if !r.IsCorrect {
			mark = m.styles.bad.Render("✗")
		}
		fmt.Fprintf(&b, "%s %d. %s\n", mark, i+1, r.Prompt)
		for _, opt := range r.Options {
			line := fmt.Sprintf("   %s. %s", opt.Letter, opt.Text)
			switch {
			case opt.Correct:
				line = m.styles.good.Render(line)
			case opt.Selected:
				line = m.styles.bad.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		if !r.Answered {
			b.WriteString(m.styles.muted.Render("   sans réponse"))
			b.WriteString("\n")
		}
		if r.Explanation != "" {
			b.WriteString(m.styles.muted.Render("   " + r.Explanation))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// progressBar shows one cell per question: answered, unanswered, current.
func progressBar(answers []quiz.Choice, current int) string {
	var b strings.Builder
	for i, a := range answers {
		switch {
		case i == current:
			b.WriteString("◆")
		case a != quiz.Unanswered:
			b.WriteString("●")
		default:
			b.WriteString("○")
		}
	}
	return b.String()
}

func clock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
