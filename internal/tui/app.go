package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/sabini/internal/command"
	"github.com/1broseidon/sabini/internal/config"
	"github.com/1broseidon/sabini/internal/geom"
	"github.com/1broseidon/sabini/internal/stack"
)

var (
	barActiveStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	barUsedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	previewStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// defaultScreen is the virtual screen the preview arranges windows on.
var defaultScreen = geom.Rect{Width: 1920, Height: 1080}

// formFields holds huh-bound strings. It lives behind a pointer so it
// survives the model being copied between updates.
type formFields struct {
	margin string
	border string
	width  string
	height string
}

// model is a sandbox: a real processor fed with fake windows so layouts and
// settings can be tried without touching the X server.
type model struct {
	cfg  *config.Config
	path string

	proc   *command.Processor
	screen geom.Rect
	nextID stack.WindowID

	keys   keyMap
	help   help.Model
	prompt textinput.Model

	prompting bool
	editing   bool
	form      *huh.Form

	fields *formFields

	message string
	failed  bool

	width  int
	height int
}

func newModel(cfg *config.Config, path string) (model, error) {
	set, err := cfg.NewWorkspaceSet()
	if err != nil {
		return model{}, err
	}

	prompt := textinput.New()
	prompt.Prompt = ": "
	prompt.Placeholder = "resize-master +0.05"
	prompt.CharLimit = 64

	return model{
		cfg:    cfg,
		path:   path,
		proc:   command.New(set),
		screen: defaultScreen,
		keys:   defaultKeyMap(),
		help:   help.New(),
		prompt: prompt,
	}, nil
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		m.help.Width = size.Width
	}

	switch {
	case m.editing:
		return m.updateForm(msg)
	case m.prompting:
		return m.updatePrompt(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	k := m.keys
	switch {
	case key.Matches(keyMsg, k.Quit):
		return m, tea.Quit
	case key.Matches(keyMsg, k.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(keyMsg, k.NewWindow):
		m.nextID++
		m.apply(command.WindowAppeared(m.nextID))
	case key.Matches(keyMsg, k.CloseWindow):
		m.apply(command.CloseFocused())
	case key.Matches(keyMsg, k.FocusNext):
		m.apply(command.FocusNext())
	case key.Matches(keyMsg, k.FocusPrev):
		m.apply(command.FocusPrev())
	case key.Matches(keyMsg, k.SwapNext):
		m.apply(command.Command{Kind: command.KindSwapNext})
	case key.Matches(keyMsg, k.SwapPrev):
		m.apply(command.Command{Kind: command.KindSwapPrev})
	case key.Matches(keyMsg, k.SwapMaster):
		m.apply(command.SwapWithMaster())
	case key.Matches(keyMsg, k.Shrink):
		m.apply(command.ResizeMasterRatio(-m.cfg.ResizeStep))
	case key.Matches(keyMsg, k.Grow):
		m.apply(command.ResizeMasterRatio(m.cfg.ResizeStep))
	case key.Matches(keyMsg, k.FewerMasters):
		m.apply(command.ChangeMasterCount(-1))
	case key.Matches(keyMsg, k.MoreMasters):
		m.apply(command.ChangeMasterCount(1))
	case key.Matches(keyMsg, k.NextLayout):
		m.apply(command.Command{Kind: command.KindNextLayout})
	case key.Matches(keyMsg, k.NextUsed):
		m.apply(command.Command{Kind: command.KindWorkspaceNextUsed})
	case key.Matches(keyMsg, k.PrevUsed):
		m.apply(command.Command{Kind: command.KindWorkspacePrevUsed})
	case key.Matches(keyMsg, k.Switch):
		m.apply(command.SwitchToWorkspace(int(keyMsg.String()[0] - '1')))
	case key.Matches(keyMsg, k.MoveTo):
		m.apply(command.MoveFocusedToWorkspace(strings.IndexByte(moveKeys, keyMsg.String()[0])))
	case key.Matches(keyMsg, k.Prompt):
		m.prompting = true
		m.prompt.SetValue("")
		cmd := m.prompt.Focus()
		return m, cmd
	case key.Matches(keyMsg, k.Edit):
		cmd := m.startEditing()
		return m, cmd
	case key.Matches(keyMsg, k.Save):
		m.save()
	}
	return m, nil
}

func (m *model) apply(cmd command.Command) {
	// Sandbox windows have no client to ask, so they close at once.
	if cmd.Kind == command.KindCloseWindow {
		id, ok := m.proc.Focused()
		if !ok {
			return
		}
		cmd = command.WindowRemoved(id)
	}
	if err := m.proc.Apply(cmd); err != nil {
		m.report(err)
		return
	}
	m.message = cmd.String()
	m.failed = false
}

func (m *model) report(err error) {
	m.message = err.Error()
	m.failed = true
}

func (m *model) save() {
	var err error
	if m.path == "" {
		err = m.cfg.Save()
	} else {
		err = m.cfg.SaveTo(m.path)
	}
	if err != nil {
		m.report(fmt.Errorf("save failed: %w", err))
		return
	}
	m.message = "config saved"
	m.failed = false
}

func (m model) updatePrompt(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.prompting = false
			m.prompt.Blur()
			return m, nil
		case tea.KeyEnter:
			m.prompting = false
			m.prompt.Blur()
			cmd, err := command.Parse(m.prompt.Value())
			if err != nil {
				m.report(err)
				return m, nil
			}
			m.apply(cmd)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *model) startEditing() tea.Cmd {
	m.fields = &formFields{
		margin: strconv.Itoa(m.cfg.Margin),
		border: strconv.Itoa(m.cfg.Border.Top),
		width:  strconv.Itoa(m.screen.Width),
		height: strconv.Itoa(m.screen.Height),
	}

	w := max(m.width-4, 40)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("margin").
				Title("Margin").
				Description("Pixels between the screen edge and the layout").
				Validate(nonNegative).
				Value(&m.fields.margin),
			huh.NewInput().
				Key("border").
				Title("Border").
				Description("Window border width applied on every side").
				Validate(nonNegative).
				Value(&m.fields.border),
		),
		huh.NewGroup(
			huh.NewInput().
				Key("screen_width").
				Title("Preview Screen Width").
				Validate(positive).
				Value(&m.fields.width),
			huh.NewInput().
				Key("screen_height").
				Title("Preview Screen Height").
				Validate(positive).
				Value(&m.fields.height),
		),
	).WithWidth(w).WithShowHelp(true).WithShowErrors(true)

	m.editing = true
	return m.form.Init()
}

func (m model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
		m.editing = false
		m.form = nil
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.applyForm()
		m.editing = false
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// applyForm copies validated form values into the config and screen.
func (m *model) applyForm() {
	margin, _ := strconv.Atoi(strings.TrimSpace(m.fields.margin))
	border, _ := strconv.Atoi(strings.TrimSpace(m.fields.border))
	width, _ := strconv.Atoi(strings.TrimSpace(m.fields.width))
	height, _ := strconv.Atoi(strings.TrimSpace(m.fields.height))

	m.cfg.Margin = margin
	m.cfg.Border = geom.Uniform(border)
	m.screen = geom.Rect{Width: width, Height: height}
	m.message = "settings updated (ctrl+s to save)"
	m.failed = false
}

func nonNegative(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return fmt.Errorf("must be a whole number >= 0")
	}
	return nil
}

func positive(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 {
		return fmt.Errorf("must be a whole number > 0")
	}
	return nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	snap := m.proc.Snapshot()
	bar := renderWorkspaceBar(snap)
	status := m.renderStatus(snap.CurrentWorkspace())

	var footer string
	if m.prompting {
		footer = m.prompt.View()
	} else {
		footer = m.help.View(m.keys)
	}

	if m.editing {
		return lipgloss.JoinVertical(lipgloss.Left, bar, m.form.View(), footer)
	}

	used := lipgloss.Height(bar) + lipgloss.Height(status) + lipgloss.Height(footer)
	focused, _ := m.proc.Focused()
	lines := renderPreview(
		m.proc.Placements(m.cfg.Area(m.screen)),
		m.screen,
		focused,
		m.width,
		max(m.height-used, 1),
	)
	preview := previewStyle.Render(strings.Join(lines, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, bar, preview, status, footer)
}

func renderWorkspaceBar(snap command.Snapshot) string {
	cells := make([]string, len(snap.Workspaces))
	for i, ws := range snap.Workspaces {
		label := fmt.Sprintf("%d:%s", i+1, ws.Name)
		if ws.Name == strconv.Itoa(i+1) {
			label = ws.Name
		}
		switch {
		case ws.Current:
			cells[i] = barActiveStyle.Render(label)
		case len(ws.Windows) > 0:
			cells[i] = barUsedStyle.Render(label)
		default:
			cells[i] = barEmptyStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m model) renderStatus(ws command.WorkspaceState) string {
	l := ws.Layout
	info := fmt.Sprintf("%s  masters %d  ratio %.2f  windows %d  screen %dx%d",
		l.Kind, l.Tall.MasterCount, l.Tall.MasterRatio, len(ws.Windows), m.screen.Width, m.screen.Height)

	line := statusStyle.Render(info)
	switch {
	case m.message == "":
	case m.failed:
		line += "  " + errStyle.Render(m.message)
	default:
		line += "  " + okStyle.Render(m.message)
	}
	return line
}
