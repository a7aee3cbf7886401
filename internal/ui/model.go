package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/juanzandev/CS487Project/internal/config"
	"github.com/juanzandev/CS487Project/internal/state"
	"github.com/juanzandev/CS487Project/internal/theme"
)

// SaveFunc persists a candidate Config. restarting reports that the process
// is about to be replaced.
type SaveFunc func(ctx context.Context, candidate config.Config) (restarting bool, err error)

// Options configures the UI.
type Options struct {
	// Views delivers every cache write. The UI never reads the cache directly.
	Views       <-chan state.View
	Refresh     func()
	Busy        func() bool
	Save        SaveFunc
	Settings    func() (config.Config, bool)
	Diagnostics func(ctx context.Context) ([]string, error)
	LogPath     string
	Palette     theme.Palette
	NeedsSetup  bool
	OpenURL     func(url string) error
}

type mode int

const (
	modeGrades mode = iota
	modeSettings
	modeDiagnostics
	modeHelp
)

const (
	busyPollEvery   = time.Second
	diagnosticLines = 200
	headerHeight    = 2
	footerHeight    = 2
)

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx  context.Context
	opts Options
	keys keyMap
	help help.Model

	theme  Theme
	styles Styles

	width  int
	height int
	ready  bool

	view       state.View
	haveView   bool
	refreshing bool
	spinner    spinner.Model
	list       viewport.Model

	mode       mode
	form       settingsForm
	diag       viewport.Model
	notice     string
	restarting bool
}

// New creates the model.
func New(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.OpenURL == nil {
		opts.OpenURL = browser.OpenURL
	}
	th := ThemeFor(opts.Palette)

	m := Model{
		ctx:     ctx,
		opts:    opts,
		keys:    defaultKeys(),
		help:    help.New(),
		theme:   th,
		styles:  th.Styles(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		mode:    modeGrades,
	}
	if opts.NeedsSetup {
		m.openSettings(true)
	}
	return m
}

// Messages

type viewMsg state.View

type viewsClosedMsg struct{}

type busyTickMsg time.Time

type savedMsg struct {
	restarting bool
	err        error
}

type diagnosticsMsg struct {
	logLines []string
	metrics  []string
	err      error
}

type browserMsg struct{ err error }

// Commands

func waitForView(ch <-chan state.View) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return viewsClosedMsg{}
		}
		return viewMsg(v)
	}
}

func busyTick() tea.Cmd {
	return tea.Tick(busyPollEvery, func(t time.Time) tea.Msg {
		return busyTickMsg(t)
	})
}

func saveCmd(ctx context.Context, save SaveFunc, candidate config.Config) tea.Cmd {
	return func() tea.Msg {
		if save == nil {
			return savedMsg{err: errors.New("settings cannot be saved in this mode")}
		}
		restarting, err := save(ctx, candidate)
		return savedMsg{restarting: restarting, err: err}
	}
}

func loadDiagnosticsCmd(ctx context.Context, logPath string, collect func(context.Context) ([]string, error)) tea.Cmd {
	return func() tea.Msg {
		var msg diagnosticsMsg
		if logPath != "" {
			lines, err := readLogTail(logPath, diagnosticLines)
			if err != nil {
				msg.err = err
			}
			msg.logLines = lines
		}
		if collect != nil {
			metrics, err := collect(ctx)
			if err != nil && msg.err == nil {
				msg.err = err
			}
			msg.metrics = metrics
		}
		return msg
	}
}

func openURLCmd(open func(string) error, url string) tea.Cmd {
	return func() tea.Msg {
		return browserMsg{err: open(url)}
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForView(m.opts.Views),
		busyTick(),
		m.spinner.Tick,
	}
	if m.mode == modeSettings {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.updateList()
		return m, nil

	case viewMsg:
		v := state.View(msg)
		if m.haveView && v.Seq <= m.view.Seq {
			return m, waitForView(m.opts.Views)
		}
		m.view = v
		m.haveView = true
		m.refreshing = false
		m.updateList()
		return m, waitForView(m.opts.Views)

	case viewsClosedMsg:
		return m, nil

	case busyTickMsg:
		if m.opts.Busy != nil && m.opts.Busy() && !m.refreshing {
			m.refreshing = true
			return m, tea.Batch(busyTick(), m.spinner.Tick)
		}
		return m, busyTick()

	case spinner.TickMsg:
		if !m.spinning() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case savedMsg:
		return m.handleSaved(msg)

	case diagnosticsMsg:
		m.setDiagnostics(msg)
		return m, nil

	case browserMsg:
		if msg.err != nil && m.mode == modeSettings {
			m.form.err = "Could not open a browser: " + msg.err.Error()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) spinning() bool {
	return m.refreshing || (!m.haveView && !m.opts.NeedsSetup) || (m.mode == modeSettings && m.form.saving)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	switch m.mode {
	case modeHelp:
		return m.renderHelp()
	case modeSettings:
		return m.renderSettings()
	case modeDiagnostics:
		return m.renderDiagnostics()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeHelp:
		m.mode = modeGrades
		return m, nil
	case modeSettings:
		return m.handleFormKey(msg)
	case modeDiagnostics:
		switch {
		case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Diagnostics):
			m.mode = modeGrades
			return m, nil
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.diag, cmd = m.diag.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		if m.restarting {
			return m, nil
		}
		if m.opts.Refresh != nil {
			m.opts.Refresh()
		}
		m.notice = ""
		if !m.refreshing {
			m.refreshing = true
			return m, m.spinner.Tick
		}
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		if m.restarting {
			return m, nil
		}
		m.openSettings(false)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Diagnostics):
		m.mode = modeDiagnostics
		m.diag.SetContent(m.styles.MutedText.Render("Loading diagnostics..."))
		return m, loadDiagnosticsCmd(m.ctx, m.opts.LogPath, m.opts.Diagnostics)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) openSettings(wizard bool) {
	var cur config.Config
	if m.opts.Settings != nil {
		cur, _ = m.opts.Settings()
	}
	m.form = newSettingsForm(cur, wizard)
	m.mode = modeSettings
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	form, action, cmd := m.form.update(msg)
	m.form = form

	switch action {
	case formCancel:
		m.mode = modeGrades
		return m, nil
	case formOpenTokenPage:
		url := tokenPageURL(m.form.url.Value())
		if url == "" {
			m.form.err = "Enter your Canvas URL first."
			return m, nil
		}
		return m, openURLCmd(m.opts.OpenURL, url)
	case formSubmit:
		candidate, err := m.form.candidate()
		if err != nil {
			m.form.err = saveErrorText(err)
			return m, nil
		}
		m.form.err = ""
		m.form.saving = true
		return m, tea.Batch(saveCmd(m.ctx, m.opts.Save, candidate), m.spinner.Tick)
	}
	return m, cmd
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	m.form.saving = false
	if msg.err != nil {
		m.form.err = saveErrorText(msg.err)
		return m, nil
	}

	wasWizard := m.form.wizard
	m.mode = modeGrades
	m.opts.NeedsSetup = false
	if msg.restarting {
		m.restarting = true
		m.notice = "Restarting to apply the new theme..."
		return m, nil
	}
	m.notice = "Settings saved."
	if wasWizard {
		m.notice = "Settings saved. Loading your courses..."
	}
	return m, m.spinner.Tick
}

func saveErrorText(err error) string {
	var verr *config.ValidationError
	if errors.As(err, &verr) {
		return fmt.Sprintf("%s %s.", fieldLabel(verr.Field), verr.Reason)
	}
	return "Not saved: " + describeError(err)
}

func fieldLabel(field string) string {
	switch field {
	case "base_url":
		return "Canvas URL"
	case "api_token":
		return "API token"
	case "theme":
		return "Theme"
	case "poll_interval_seconds":
		return "Refresh interval"
	}
	return field
}

func (m *Model) resize() {
	listHeight := max(m.height-headerHeight-footerHeight, 1)
	if m.list.Width == 0 && m.list.Height == 0 {
		m.list = viewport.New(m.width, listHeight)
	} else {
		m.list.Width = m.width
		m.list.Height = listHeight
	}
	diagHeight := max(m.height-4, 1)
	if m.diag.Width == 0 && m.diag.Height == 0 {
		m.diag = viewport.New(m.width, diagHeight)
	} else {
		m.diag.Width = m.width
		m.diag.Height = diagHeight
	}
	m.help.Width = m.width
}

func (m *Model) updateList() {
	if !m.ready {
		return
	}
	m.list.SetContent(m.renderCourses(m.width))
}

func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.list.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("Canvas Grades")
	right := ""
	if m.spinning() {
		right = m.spinner.View() + m.styles.MutedText.Render(" refreshing")
	}
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(right), 1)
	line := title + strings.Repeat(" ", gap) + right
	rule := m.styles.FaintText.Render(strings.Repeat("─", max(m.width, 1)))
	return line + "\n" + rule
}

func (m Model) renderFooter() string {
	status := StatusLine(m.view)
	style := m.styles.MutedText
	if m.view.Health.ConsecutiveFailures > 0 {
		style = m.styles.ErrorText
	}
	if m.notice != "" {
		status = m.notice + " · " + status
	}
	if !m.haveView {
		status = "Loading your courses..."
	}
	return m.styles.Footer.Render(style.Render(status)) + "\n" + m.styles.Footer.Render(m.help.View(m.keys))
}

func (m Model) renderCourses(width int) string {
	snap := m.view.Snapshot
	if !m.haveView || (snap.Empty() && snap.Timestamp.IsZero()) {
		return m.styles.MutedText.Render("  No grades yet.")
	}
	if len(snap.Entries) == 0 {
		return m.styles.MutedText.Render("  No active courses.")
	}

	cardWidth := max(width-2, 20)
	cards := make([]string, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		cards = append(cards, m.renderCard(e, cardWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

func (m Model) renderCard(e state.Entry, width int) string {
	var b strings.Builder
	b.WriteString(m.styles.Text.Bold(true).Render(TruncateName(e.Course.Name)))
	b.WriteString("\n")

	term := e.Course.Term
	if term == "" {
		term = "Unknown term"
	}
	if e.Course.CourseCode != "" {
		term = e.Course.CourseCode + " · " + term
	}
	b.WriteString(m.styles.MutedText.Render(term))
	b.WriteString("\n")

	if e.Failed() {
		b.WriteString(m.styles.FaintText.Render("Grade: not available"))
	} else {
		b.WriteString(m.styles.GradeStyle(displayScore(e.Enrollment)).Render(GradeText(e.Enrollment)))
	}

	style := m.styles.Card
	if m.view.HasChanged(e.Course.ID) {
		style = m.styles.ChangedCard
	}
	// Border adds two columns.
	return style.Width(max(width-2, 1)).Render(b.String())
}

func (m Model) renderSettings() string {
	body := m.form.view(m.styles)
	if m.form.saving {
		body += " " + m.spinner.View()
	}
	body += "\n\n" + m.help.View(m.form.keys)
	return m.overlay(m.styles.Modal.Width(min(max(m.width-4, 40), 72)).Render(body))
}

func (m Model) renderDiagnostics() string {
	title := m.styles.Title.Render("Diagnostics")
	hint := m.styles.FaintText.Render("esc to close · j/k to scroll")
	return title + "\n" + m.diag.View() + "\n" + hint
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	// pkg/browser echoes the opener's output, which would corrupt the screen.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	m := New(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
