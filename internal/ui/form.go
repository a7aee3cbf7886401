package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/juanzandev/CS487Project/internal/config"
)

type formField int

const (
	fieldURL formField = iota
	fieldToken
	fieldTheme
	fieldInterval
	fieldCount
)

// settingsForm edits a candidate Config. The same form serves as the
// first-run wizard, which cannot be cancelled.
type settingsForm struct {
	wizard bool
	keys   formKeyMap

	url      textinput.Model
	token    textinput.Model
	interval textinput.Model
	theme    config.Theme

	focus  formField
	err    string
	saving bool
}

func newSettingsForm(cur config.Config, wizard bool) settingsForm {
	cur = cur.Normalized()

	url := textinput.New()
	url.Prompt = ""
	url.Placeholder = "https://school.instructure.com"
	url.CharLimit = 256
	url.SetValue(cur.BaseURL)

	token := textinput.New()
	token.Prompt = ""
	token.Placeholder = "paste your Canvas access token"
	token.CharLimit = 512
	token.EchoMode = textinput.EchoPassword
	token.EchoCharacter = '•'
	token.SetValue(cur.APIToken)

	interval := textinput.New()
	interval.Prompt = ""
	interval.Placeholder = strconv.Itoa(config.DefaultPollIntervalSeconds)
	interval.CharLimit = 6
	secs := cur.PollIntervalSeconds
	if secs <= 0 {
		secs = config.DefaultPollIntervalSeconds
	}
	interval.SetValue(strconv.Itoa(secs))

	f := settingsForm{
		wizard:   wizard,
		keys:     defaultFormKeys(),
		url:      url,
		token:    token,
		interval: interval,
		theme:    cur.Theme,
	}
	f.setFocus(fieldURL)
	return f
}

func (f *settingsForm) setFocus(field formField) {
	f.focus = (field + fieldCount) % fieldCount
	f.url.Blur()
	f.token.Blur()
	f.interval.Blur()
	switch f.focus {
	case fieldURL:
		f.url.Focus()
	case fieldToken:
		f.token.Focus()
	case fieldInterval:
		f.interval.Focus()
	}
}

// candidate builds the Config to validate. Only the interval can fail to
// parse here; everything else is checked by the settings flow.
func (f settingsForm) candidate() (config.Config, error) {
	raw := strings.TrimSpace(f.interval.Value())
	if raw == "" {
		return config.Config{}, &config.ValidationError{Field: "poll_interval_seconds", Reason: "must not be empty"}
	}
	secs, err := strconv.Atoi(raw)
	if err != nil {
		return config.Config{}, &config.ValidationError{Field: "poll_interval_seconds", Reason: "must be a whole number of seconds"}
	}
	return config.Config{
		BaseURL:             f.url.Value(),
		APIToken:            f.token.Value(),
		Theme:               f.theme,
		PollIntervalSeconds: secs,
	}, nil
}

// formAction is what the model should do after a key press.
type formAction int

const (
	formNone formAction = iota
	formSubmit
	formCancel
	formOpenTokenPage
)

func (f settingsForm) update(msg tea.KeyMsg) (settingsForm, formAction, tea.Cmd) {
	if f.saving {
		return f, formNone, nil
	}
	switch {
	case key.Matches(msg, f.keys.Cancel):
		if f.wizard {
			return f, formNone, nil
		}
		return f, formCancel, nil
	case key.Matches(msg, f.keys.TokenPage):
		return f, formOpenTokenPage, nil
	case msg.String() == "enter" && f.focus < fieldCount-1:
		f.setFocus(f.focus + 1)
		return f, formNone, nil
	case key.Matches(msg, f.keys.Save):
		return f, formSubmit, nil
	case key.Matches(msg, f.keys.Next):
		f.setFocus(f.focus + 1)
		return f, formNone, nil
	case key.Matches(msg, f.keys.Prev):
		f.setFocus(f.focus - 1)
		return f, formNone, nil
	}

	var cmd tea.Cmd
	switch f.focus {
	case fieldURL:
		f.url, cmd = f.url.Update(msg)
	case fieldToken:
		f.token, cmd = f.token.Update(msg)
	case fieldInterval:
		f.interval, cmd = f.interval.Update(msg)
	case fieldTheme:
		if key.Matches(msg, f.keys.Theme) {
			if msg.String() == "left" {
				f.theme = previousTheme(f.theme)
			} else {
				f.theme = config.NextTheme(f.theme)
			}
		}
	}
	return f, formNone, cmd
}

func previousTheme(current config.Theme) config.Theme {
	themes := config.Themes()
	for i, t := range themes {
		if t == current {
			return themes[(i+len(themes)-1)%len(themes)]
		}
	}
	return themes[0]
}

// tokenPageURL is where Canvas users create access tokens.
func tokenPageURL(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return ""
	}
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return base + "/profile/settings"
}

func (f settingsForm) view(styles Styles) string {
	var b strings.Builder
	if f.wizard {
		b.WriteString(styles.Title.Render("Welcome to gradewidget"))
		b.WriteString("\n\n")
		b.WriteString(styles.MutedText.Render("Enter your Canvas address and an access token. Create a token under\nAccount > Settings > New Access Token (ctrl+o opens the page)."))
		b.WriteString("\n\n")
	} else {
		b.WriteString(styles.Title.Render("Settings"))
		b.WriteString("\n\n")
	}

	row := func(field formField, label, value string) {
		marker := "  "
		style := styles.MutedText
		if f.focus == field {
			marker = "> "
			style = styles.Text.Bold(true)
		}
		b.WriteString(style.Render(marker + padRight(label, 16)))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row(fieldURL, "Canvas URL", f.url.View())
	row(fieldToken, "API token", f.token.View())
	row(fieldTheme, "Theme", themeChoices(f.theme, styles))
	row(fieldInterval, "Refresh (sec)", f.interval.View())

	b.WriteString("\n")
	switch {
	case f.saving:
		b.WriteString(styles.MutedText.Render("Checking connection..."))
	case f.err != "":
		b.WriteString(styles.ErrorText.Render(f.err))
	default:
		b.WriteString(styles.FaintText.Render("Changing the theme restarts the widget."))
	}
	return b.String()
}

func themeChoices(selected config.Theme, styles Styles) string {
	parts := make([]string, 0, len(config.Themes()))
	for _, t := range config.Themes() {
		if t == selected {
			parts = append(parts, styles.Title.Render("["+string(t)+"]"))
		} else {
			parts = append(parts, styles.FaintText.Render(string(t)))
		}
	}
	return strings.Join(parts, " ")
}
