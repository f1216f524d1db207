// Package tui is a terminal rendition of the search and verification flow.
package tui

import (
	"fmt"
	"strings"
	"time"

	"schemebot/internal/metrics"
	"schemebot/internal/search"
	"schemebot/internal/session"
	"schemebot/internal/verify"
	"schemebot/pkg/types"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

type focusArea int

const (
	focusQuery focusArea = iota
	focusResults
)

const (
	fieldAge = iota
	fieldIncome
	fieldGender
	fieldCaste
	fieldOccupation
	fieldCount
)

var fieldLabels = [fieldCount]string{"Age", "Annual Income (₹)", "Gender", "Caste / Category", "Occupation"}

type searchSettledMsg struct{}

type verifySettledMsg struct {
	id string
}

type Model struct {
	backend session.Backend
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
	timeout time.Duration
	styles  Styles

	search *search.Controller
	query  textinput.Model
	focus  focusArea
	cursor int

	verification *verify.Controller
	fields       []textinput.Model
	field        int
	alert        string

	spinner spinner.Model
}

func New(backend session.Backend, logger logrus.FieldLogger, m *metrics.Metrics, timeout time.Duration) *Model {
	query := textinput.New()
	query.Placeholder = "e.g. scholarship for st student"
	query.CharLimit = 256
	query.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		backend: backend,
		logger:  logger,
		metrics: m,
		timeout: timeout,
		styles:  DefaultStyles(),
		search:  search.NewController(backend, logger, m, timeout),
		query:   query,
		spinner: sp,
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func waitFor(done <-chan struct{}, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		<-done
		return msg
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.shutdown()
			return m, tea.Quit
		}
		if m.verification != nil {
			return m.updateVerification(msg)
		}
		return m.updateSearch(msg)

	case searchSettledMsg:
		m.cursor = 0
		return m, nil

	case verifySettledMsg:
		if m.verification != nil && m.verification.ID() == msg.id {
			m.alert = m.verification.TakeAlert()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.search.State().Results

	switch msg.Type {
	case tea.KeyTab:
		if m.focus == focusQuery && len(results) > 0 {
			m.focus = focusResults
			m.query.Blur()
		} else {
			m.focus = focusQuery
			m.query.Focus()
		}
		return m, nil

	case tea.KeyEsc:
		if m.focus == focusResults {
			m.focus = focusQuery
			m.query.Focus()
			return m, nil
		}
		m.shutdown()
		return m, tea.Quit
	}

	if m.focus == focusResults {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(results)-1 {
				m.cursor++
			}
		case "enter":
			if m.cursor < len(results) {
				m.openVerification(results[m.cursor])
			}
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		done, issued := m.search.Search(m.query.Value())
		if !issued {
			return m, nil
		}
		return m, waitFor(done, searchSettledMsg{})
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m *Model) openVerification(scheme types.SchemeSummary) {
	if m.verification != nil {
		m.verification.Close()
	}

	m.verification = verify.NewController(scheme, m.backend, m.logger, m.metrics, m.timeout)
	m.alert = ""
	m.field = 0
	m.fields = newProfileInputs(m.verification.View().Form)
}

func newProfileInputs(form types.UserProfileForm) []textinput.Model {
	values := [fieldCount]string{form.Age, form.Income, form.Gender, form.Caste, form.Occupation}
	placeholders := [fieldCount]string{"Years", "₹ 0", "Male / Female / Other", "General / SC / ST / OBC / Minority", "e.g. Student, Farmer, Artisan"}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.SetValue(values[i])
		in.CharLimit = 64
		inputs[i] = in
	}
	inputs[0].Focus()
	return inputs
}

func (m *Model) profileForm() types.UserProfileForm {
	return types.UserProfileForm{
		Age:        m.fields[fieldAge].Value(),
		Income:     m.fields[fieldIncome].Value(),
		Gender:     m.fields[fieldGender].Value(),
		Caste:      m.fields[fieldCaste].Value(),
		Occupation: m.fields[fieldOccupation].Value(),
	}
}

func (m *Model) updateVerification(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.closeVerification()
		return m, nil
	}

	switch m.verification.Step() {
	case verify.StepResult:
		if msg.Type == tea.KeyEnter {
			m.closeVerification()
		}
		return m, nil
	case verify.StepLoading:
		return m, nil
	}

	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		m.moveField(1)
		return m, nil
	case tea.KeyShiftTab, tea.KeyUp:
		m.moveField(-1)
		return m, nil
	case tea.KeyEnter:
		m.alert = ""
		done, err := m.verification.Submit(m.profileForm())
		if err != nil {
			return m, nil
		}
		return m, waitFor(done, verifySettledMsg{id: m.verification.ID()})
	}

	var cmd tea.Cmd
	m.fields[m.field], cmd = m.fields[m.field].Update(msg)
	return m, cmd
}

func (m *Model) moveField(delta int) {
	m.fields[m.field].Blur()
	m.field = (m.field + delta + fieldCount) % fieldCount
	m.fields[m.field].Focus()
}

func (m *Model) closeVerification() {
	if m.verification != nil {
		m.verification.Close()
	}
	m.verification = nil
	m.fields = nil
	m.alert = ""
}

func (m *Model) shutdown() {
	m.closeVerification()
	m.search.Close()
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("SchemeBot"))
	b.WriteString(m.styles.Muted.Render("  find schemes you qualify for"))
	b.WriteString("\n\n")

	if m.verification != nil {
		m.viewVerification(&b)
	} else {
		m.viewSearch(&b)
	}

	return b.String()
}

func (m *Model) viewSearch(b *strings.Builder) {
	b.WriteString(m.query.View())
	b.WriteString("\n\n")

	state := m.search.State()
	switch {
	case state.Loading:
		fmt.Fprintf(b, "%s Analyzing schemes, finding the best matches for you...\n", m.spinner.View())
	case len(state.Results) > 0:
		for i, r := range state.Results {
			card := fmt.Sprintf("%s  %s\n%s\n%s",
				m.styles.Match.Render(fmt.Sprintf("%d%% MATCH", r.MatchPercent())),
				m.styles.Heading.Render(r.Name),
				m.styles.Muted.Render(r.Category),
				truncate(r.Details, 160),
			)
			if m.focus == focusResults && i == m.cursor {
				b.WriteString(m.styles.Selected.Render(card))
			} else {
				b.WriteString(m.styles.Card.Render(card))
			}
			b.WriteString("\n")
		}
	case state.Failed:
		fmt.Fprintf(b, "%s\nWe couldn't reach the scheme service for %q.\n", m.styles.Alert.Render("Search is unavailable"), state.Query)
	case state.Searched():
		fmt.Fprintf(b, "%s\nWe couldn't find any schemes matching %q. Try different keywords.\n", m.styles.Heading.Render("No schemes found"), state.Query)
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("enter: search/check eligibility • tab: switch to results • esc: quit"))
}

func (m *Model) viewVerification(b *strings.Builder) {
	view := m.verification.View()

	b.WriteString(m.styles.Heading.Render(view.Scheme.Name))
	b.WriteString("\n\n")

	if m.alert != "" {
		b.WriteString(m.styles.Alert.Render(m.alert))
		b.WriteString("\n\n")
	}

	switch view.Step {
	case verify.StepInput:
		b.WriteString("Enter your details to check eligibility\n\n")
		if view.Error != "" {
			b.WriteString(m.styles.Alert.Render(view.Error))
			b.WriteString("\n")
		}
		for i, in := range m.fields {
			fmt.Fprintf(b, "%-20s %s\n", fieldLabels[i], in.View())
		}
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("tab: next field • enter: verify eligibility • esc: close"))

	case verify.StepLoading:
		fmt.Fprintf(b, "%s Analyzing profile against scheme criteria...\n", m.spinner.View())

	case verify.StepResult:
		result := view.Result
		if result.Eligible() {
			b.WriteString(m.styles.Eligible.Render(string(result.Verdict)))
		} else {
			b.WriteString(m.styles.NotEligible.Render(string(result.Verdict)))
		}
		b.WriteString("\n")
		for _, reason := range result.Reasons {
			b.WriteString("  " + reason + "\n")
		}
		if result.Eligible() && result.Details != nil {
			fmt.Fprintf(b, "\n%s\n%s\n", m.styles.Heading.Render("Primary Benefits"), result.Details.Benefits)
			fmt.Fprintf(b, "\n%s\n%s\n", m.styles.Heading.Render("Required Documents"), result.Details.Documents)
			fmt.Fprintf(b, "\n%s\n%s\n", m.styles.Heading.Render("Application Steps"), result.Details.ApplicationSteps)
		}
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render("enter/esc: close verification"))
	}
}

func truncate(s string, l int) string {
	r := []rune(s)
	if len(r) > l {
		return string(r[:l-3]) + "..."
	}
	return s
}
