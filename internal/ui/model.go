package ui

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"imagefinder/internal/config"
	"imagefinder/internal/intake"
	"imagefinder/internal/logging"
	"imagefinder/internal/search"
	"imagefinder/internal/ui/state"
	"imagefinder/internal/ui/views"
)

// SuccessNotice is shown when a search completes
const SuccessNotice = "Image uploaded successfully, swipe to see the results!"

// Model represents the application state
type Model struct {
	cfg    *config.Config
	zone   *intake.Zone
	client search.Client
	logger *zap.Logger
	pager  PagerOps

	form      *state.FormState
	focus     views.Focus
	neighbors textinput.Model
	picker    filepicker.Model
	picking   bool
	help      help.Model
	keys      KeyMap
	renderer  *views.Renderer

	ctx         context.Context // canceled on quit
	stop        context.CancelFunc
	cancel      context.CancelFunc // cancels the search in flight
	initialDrop []string

	width       int
	height      int
	inPagerMode bool
}

// Option configures a Model
type Option func(*Model)

// WithInitialImage drops path as soon as the program starts
func WithInitialImage(path string) Option {
	return func(m *Model) {
		if path != "" {
			m.initialDrop = []string{path}
		}
	}
}

// NewModel creates a new application model
func NewModel(cfg *config.Config, zone *intake.Zone, client search.Client, logger *zap.Logger, opts ...Option) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	neighbors := textinput.New()
	neighbors.Prompt = ""
	neighbors.Placeholder = strconv.Itoa(cfg.DefaultNeighbors)
	neighbors.CharLimit = 16
	neighbors.Width = 8
	neighbors.SetValue(strconv.Itoa(cfg.DefaultNeighbors))

	picker := filepicker.New()
	picker.AutoHeight = true
	picker.ShowHidden = false
	if cfg.StartDir != "" {
		picker.CurrentDirectory = cfg.StartDir
	}

	ctx, stop := context.WithCancel(context.Background())
	m := &Model{
		cfg:       cfg,
		zone:      zone,
		client:    client,
		logger:    logger,
		form:      state.NewFormState(cfg.DefaultNeighbors),
		focus:     views.FocusZone,
		neighbors: neighbors,
		picker:    picker,
		help:      help.New(),
		keys:      DefaultKeyMap(),
		renderer:  views.NewRenderer(views.NewStyles()),
		ctx:       ctx,
		stop:      stop,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetProgram sets the program reference used to hand the terminal to the pager
func (m *Model) SetProgram(p *tea.Program) {
	m.pager.program = p
}

// State exposes the form state
func (m *Model) State() *state.FormState {
	return m.form
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	if len(m.initialDrop) == 0 {
		return nil
	}
	paths := m.initialDrop
	return func() tea.Msg {
		return dropMsg{paths: paths}
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)

	case dropMsg:
		return m, m.drop(msg.paths)

	case previewMsg:
		m.handlePreview(msg)
		return m, nil

	case searchDoneMsg:
		return m, m.handleSearchDone(msg)

	case dismissNoticeMsg:
		m.form.DismissNotice(msg.id)
		return m, nil

	case resultsPagerMsg:
		if msg.err != nil {
			m.logger.Warn("results pager failed", zap.Error(msg.err))
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, nil
	}

	// Directory listings and other internal picker messages
	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	if m.focus == views.FocusNeighbors {
		var cmd tea.Cmd
		m.neighbors, cmd = m.neighbors.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Terminals deliver dropped files as a bracketed paste
	if msg.Paste && m.focus != views.FocusNeighbors {
		return m, m.drop(m.zone.ParseDrop(string(msg.Runes)))
	}

	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Next):
		return m, m.moveFocus(m.focus.Next())
	case key.Matches(msg, m.keys.Prev):
		return m, m.moveFocus(m.focus.Prev())
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	case key.Matches(msg, m.keys.Cancel):
		m.cancelSearch()
		return m, nil
	}

	if m.focus == views.FocusNeighbors {
		if msg.Type == tea.KeyEnter {
			return m, m.submit()
		}
		var cmd tea.Cmd
		m.neighbors, cmd = m.neighbors.Update(msg)
		m.form.SetNeighbors(m.neighbors.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Results):
		if content := views.RenderResults(m.form.Results, m.renderer.Styles()); content != "" {
			return m, m.openResultsPager(content)
		}
	case key.Matches(msg, m.keys.Activate):
		switch m.focus {
		case views.FocusZone:
			return m, m.openPicker()
		case views.FocusSubmit:
			return m, m.submit()
		}
	}
	return m, nil
}

// moveFocus blurs the current field, running its validation, and focuses next
func (m *Model) moveFocus(next views.Focus) tea.Cmd {
	if field, ok := m.focus.Field(); ok {
		m.form.Blur(field)
	}
	m.neighbors.Blur()
	m.focus = next
	if next == views.FocusNeighbors {
		return m.neighbors.Focus()
	}
	return nil
}

func (m *Model) openPicker() tea.Cmd {
	m.picking = true
	return m.picker.Init()
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, m.quit()
	}
	if key.Matches(msg, m.keys.Cancel) {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		return m, tea.Batch(cmd, m.drop([]string{path}))
	}
	return m, cmd
}

// drop runs a set of paths through the zone. An accepted file replaces the
// held image and starts decoding its preview; a rejection is only recorded.
func (m *Model) drop(paths []string) tea.Cmd {
	input, err := m.zone.Inspect(paths)
	if err != nil {
		var rejection *intake.Rejection
		if errors.As(err, &rejection) {
			m.logger.Info("drop rejected", zap.Error(err))
			m.form.Reject(rejection)
			return nil
		}
		m.logger.Debug("drop ignored", zap.Error(err))
		return nil
	}

	gen := m.form.SetImage(input)
	m.logger.Debug("image accepted",
		zap.String("name", input.Name),
		zap.Int64("size", input.Size),
		zap.String("mime", input.MimeType),
	)

	ctx := m.ctx
	zone := m.zone
	return func() tea.Msg {
		preview, err := zone.Read(ctx, input)
		return previewMsg{gen: gen, preview: preview, err: err}
	}
}

func (m *Model) handlePreview(msg previewMsg) {
	if msg.err != nil {
		if m.form.PreviewFailed(msg.gen) {
			m.logger.Warn("preview failed", zap.Error(msg.err))
		}
		return
	}
	if !m.form.PreviewReady(msg.gen, msg.preview) {
		m.logger.Debug("stale preview ignored", zap.Uint64("generation", msg.gen))
	}
}

// submit validates the form and starts a search. Nothing happens while a
// search is already in flight.
func (m *Model) submit() tea.Cmd {
	m.form.SetNeighbors(m.neighbors.Value())
	sub, ok := m.form.BeginSubmit()
	if !ok {
		return nil
	}

	requestID := uuid.NewString()
	var ctx context.Context
	var cancel context.CancelFunc
	if m.cfg.RequestTimeout > 0 {
		ctx, cancel = context.WithTimeout(m.ctx, m.cfg.RequestTimeout)
	} else {
		ctx, cancel = context.WithCancel(m.ctx)
	}
	m.cancel = cancel

	logging.WithOperation(m.logger, "search", requestID).Info("search started",
		zap.String("image", sub.Image.Name),
		zap.Int("neighbors", sub.Neighbors),
	)

	zone := m.zone
	client := m.client
	return func() tea.Msg {
		defer cancel()
		done := searchDoneMsg{id: sub.ID, requestID: requestID}

		content, err := zone.Open(sub.Image)
		if err != nil {
			done.err = err
			return done
		}
		defer content.Close()

		done.images, done.err = client.Search(ctx, search.Request{
			Image:     sub.Image,
			Content:   content,
			Neighbors: sub.Neighbors,
			RequestID: requestID,
		})
		return done
	}
}

func (m *Model) handleSearchDone(msg searchDoneMsg) tea.Cmd {
	log := logging.WithOperation(m.logger, "search", msg.requestID)

	if msg.err != nil {
		if !m.form.FailSubmit(msg.id) {
			log.Debug("stale search failure ignored", zap.Error(msg.err))
			return nil
		}
		m.cancel = nil
		log.Error("search failed", zap.Error(logging.NewOperationError("search", msg.requestID, msg.err)))
		if m.cfg.Notify.AlwaysSuccess {
			return m.notify(state.SeveritySuccess, SuccessNotice)
		}
		return nil
	}

	if !m.form.CompleteSubmit(msg.id, msg.images) {
		log.Debug("stale search result ignored")
		return nil
	}
	m.cancel = nil
	log.Info("search completed", zap.Int("results", len(msg.images)))
	return m.notify(state.SeveritySuccess, SuccessNotice)
}

func (m *Model) cancelSearch() {
	if m.cancel == nil || !m.form.CancelSubmit() {
		return
	}
	m.cancel()
	m.cancel = nil
	m.logger.Info("search canceled", zap.Int("submission", m.form.SubmissionID))
}

func (m *Model) notify(sev state.Severity, text string) tea.Cmd {
	id := m.form.Notify(sev, text)
	return tea.Tick(m.cfg.Notify.Duration, func(time.Time) tea.Msg {
		return dismissNoticeMsg{id: id}
	})
}

// quit releases everything the form holds before exiting
func (m *Model) quit() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.stop()
	m.form.Reset(m.cfg.DefaultNeighbors)
	return tea.Quit
}

// View renders the UI
func (m *Model) View() string {
	if m.inPagerMode {
		return ""
	}
	if m.picking {
		return m.renderer.RenderPicker(m.picker.View(), m.help.View(m.keys))
	}
	return m.renderer.Render(views.ViewState{
		Form:          m.form,
		Focus:         m.focus,
		NeighborsView: m.neighbors.View(),
		Help:          m.help.View(m.keys),
		Width:         m.width,
		Height:        m.height,
	})
}
