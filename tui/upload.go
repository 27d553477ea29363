package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"whisperform/transcribe"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// focusField is the form control receiving key input
type focusField int

const (
	focusFile focusField = iota
	focusLanguage
	focusModel
	focusSubmit
	focusCount
)

// statusKind selects the style of the status line
type statusKind int

const (
	statusNone statusKind = iota
	statusInfo
	statusSuccess
	statusError
)

const (
	uploadingStatus    = "Uploading and transcribing…"
	uploadingProgress  = "Uploading audio…"
	transcribingStatus = "Transcribing audio…"
	completeStatus     = "Transcription complete"
)

// UploadOptions configures the form
type UploadOptions struct {
	// Models populates the model selector; empty uses the built-in catalog
	Models []transcribe.ModelOption

	// Model preselects a model by value
	Model string

	// Language preselects a language by value
	Language string

	// AudioPath preselects a file
	AudioPath string

	// StartDir is where the file picker opens; defaults to the working directory
	StartDir string

	// Clipboard overrides the system clipboard
	Clipboard ClipboardWriter
}

// responseArrivedMsg is sent when the server has answered but the body is unread
type responseArrivedMsg struct {
	pending *transcribe.PendingResponse
}

// transcribeResultMsg is sent when the request finished, successfully or not
type transcribeResultMsg struct {
	response *transcribe.Response
	err      error
}

// audioInspectedMsg is sent after a selected file has been examined
type audioInspectedMsg struct {
	info *transcribe.AudioInfo
	err  error
}

// subtitlesSavedMsg is sent after segments were written to disk
type subtitlesSavedMsg struct {
	path string
	err  error
}

// UploadModel is the Bubble Tea model for the upload-and-transcribe form
type UploadModel struct {
	client *transcribe.Client

	// UI Components
	filepicker filepicker.Model
	viewport   viewport.Model
	spinner    spinner.Model
	progress   ProgressSimulator
	copy       copyButton

	focus focusField

	// Selection state
	languages     []transcribe.LanguageOption
	languageIndex int
	models        []transcribe.ModelOption
	modelIndex    int
	modelHint     string
	audioPath     string
	audioInfo     *transcribe.AudioInfo

	// Request state
	submitting bool
	startTime  time.Time

	status     string
	statusKind statusKind

	// Results
	transcript   string
	language     string
	segments     []transcribe.Segment
	showOutput   bool
	showSegments bool

	width    int
	height   int
	quitting bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewUploadModel creates the form for the given client
func NewUploadModel(client *transcribe.Client, opts UploadOptions) UploadModel {
	startDir := opts.StartDir
	if startDir == "" {
		startDir, _ = os.Getwd()
	}

	fp := filepicker.New()
	fp.CurrentDirectory = startDir
	fp.AllowedTypes = transcribe.AllowedExtensions
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.ShowHidden = false
	fp.ShowSize = true
	fp.Height = 8

	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	models := opts.Models
	if len(models) == 0 {
		models = transcribe.BuildModelCatalog(nil, "")
	}
	modelIndex := transcribe.DefaultModelIndex(models)
	if i := transcribe.ModelIndex(models, opts.Model); i >= 0 {
		modelIndex = i
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := UploadModel{
		client:        client,
		filepicker:    fp,
		viewport:      viewport.New(70, 10),
		spinner:       s,
		progress:      NewProgressSimulator(),
		copy:          newCopyButton(opts.Clipboard),
		languages:     transcribe.Languages,
		languageIndex: transcribe.LanguageIndex(opts.Language),
		models:        models,
		modelIndex:    modelIndex,
		width:         80,
		height:        24,
		ctx:           ctx,
		cancel:        cancel,
	}
	m.updateModelHint()

	if opts.AudioPath != "" {
		m.audioPath = opts.AudioPath
		m.focus = focusLanguage
	}

	return m
}

// Init starts the file picker and spinner
func (m UploadModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.filepicker.Init(), m.spinner.Tick}
	if m.audioPath != "" {
		cmds = append(cmds, inspectAudio(m.audioPath))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress = m.progress.SetWidth(m.width - 20)
		m.viewport.Width = max(m.width-8, 20)
		m.viewport.Height = max(m.height-28, 5)
		m.refreshResult()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressTickMsg, progressHideMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd

	case responseArrivedMsg:
		m.progress = m.progress.SetMessage(transcribingStatus)
		return m, decodeResponse(msg.pending)

	case transcribeResultMsg:
		return m.handleResult(msg)

	case copyResultMsg:
		if msg.err != nil {
			m.setStatus(copyFailMessage, statusError)
			return m, nil
		}
		var cmd tea.Cmd
		m.copy, cmd = m.copy.acknowledge()
		return m, cmd

	case copyResetMsg:
		m.copy = m.copy.revert(msg)
		return m, nil

	case audioInspectedMsg:
		if msg.err != nil {
			m.audioInfo = nil
			m.setStatus(msg.err.Error(), statusError)
			return m, nil
		}
		m.audioInfo = msg.info
		return m, nil

	case subtitlesSavedMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), statusError)
		} else {
			m.setStatus("Saved subtitles to "+msg.path, statusSuccess)
		}
		return m, nil
	}

	// Everything else (directory listings) belongs to the file picker
	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)
	return m, cmd
}

// handleKey routes key input to the focused control
func (m UploadModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case "tab":
		m.focus = (m.focus + 1) % focusCount
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + focusCount - 1) % focusCount
		return m, nil
	case "ctrl+s":
		return m.submit()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusFile {
		return m.updateFilePicker(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	case "c":
		return m, m.copy.copy(m.transcript)
	case "s":
		if m.showOutput && m.showSegments {
			return m, saveSubtitles(transcribe.SubtitlePath(m.audioPath, transcribe.SubtitleFormatSRT), m.segments)
		}
		return m, nil
	}

	switch m.focus {
	case focusLanguage:
		switch msg.String() {
		case "left", "h", "up", "k":
			if m.languageIndex > 0 {
				m.languageIndex--
			}
		case "right", "l", "down", "j":
			if m.languageIndex < len(m.languages)-1 {
				m.languageIndex++
			}
		case "enter":
			m.focus = focusModel
		}

	case focusModel:
		switch msg.String() {
		case "left", "h", "up", "k":
			if m.modelIndex > 0 {
				m.modelIndex--
				m.updateModelHint()
			}
		case "right", "l", "down", "j":
			if m.modelIndex < len(m.models)-1 {
				m.modelIndex++
				m.updateModelHint()
			}
		case "enter":
			m.focus = focusSubmit
		}

	case focusSubmit:
		if msg.String() == "enter" {
			return m.submit()
		}
	}

	return m, nil
}

func (m UploadModel) updateFilePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.audioPath = path
		m.audioInfo = nil
		m.setStatus("", statusNone)
		m.clearResult()
		m.focus = focusLanguage
		return m, tea.Batch(cmd, inspectAudio(path))
	}
	if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
		m.setStatus(fmt.Sprintf("Unsupported file type: %s", filepath.Base(path)), statusError)
	}
	return m, cmd
}

// submit validates the form and issues the upload
func (m UploadModel) submit() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	if m.audioPath == "" {
		m.setStatus(transcribe.ErrNoFile.Error(), statusError)
		return m, nil
	}

	m.submitting = true
	m.startTime = time.Now()
	m.setStatus(uploadingStatus, statusInfo)

	var progressCmd tea.Cmd
	m.progress, progressCmd = m.progress.Start(uploadingProgress)

	return m, tea.Batch(progressCmd, m.send(m.request()))
}

// request builds the upload from the current selections
func (m UploadModel) request() *transcribe.Request {
	req := &transcribe.Request{
		FilePath: m.audioPath,
		Language: transcribe.DefaultLanguage,
	}
	if len(m.languages) > 0 {
		req.Language = m.languages[m.languageIndex].Value
	}
	if len(m.models) > 0 {
		req.Model = m.models[m.modelIndex].Value
	}
	return req
}

// send uploads the file; a panic is reported as a failed result so the
// submit control is always released.
func (m UploadModel) send(req *transcribe.Request) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() (msg tea.Msg) {
		defer recoverTranscription(&msg)
		if client == nil {
			return transcribeResultMsg{err: errors.New("no transcription server configured")}
		}
		pending, err := client.Send(ctx, req)
		if err != nil {
			return transcribeResultMsg{err: err}
		}
		return responseArrivedMsg{pending: pending}
	}
}

func decodeResponse(pending *transcribe.PendingResponse) tea.Cmd {
	return func() (msg tea.Msg) {
		defer recoverTranscription(&msg)
		resp, err := pending.Decode()
		return transcribeResultMsg{response: resp, err: err}
	}
}

func recoverTranscription(msg *tea.Msg) {
	if r := recover(); r != nil {
		*msg = transcribeResultMsg{err: fmt.Errorf("transcription failed: %v", r)}
	}
}

// handleResult renders the outcome. The submit control is released on
// every path.
func (m UploadModel) handleResult(msg transcribeResultMsg) (next UploadModel, cmd tea.Cmd) {
	defer func() { next.submitting = false }()
	return m.applyResult(msg)
}

func (m UploadModel) applyResult(msg transcribeResultMsg) (UploadModel, tea.Cmd) {
	err := msg.err
	if err == nil && msg.response == nil {
		err = errors.New(transcribe.DefaultErrorMessage)
	}

	if err != nil {
		m.progress = m.progress.Fail()
		m.setStatus(err.Error(), statusError)
		m.clearResult()
		return m, nil
	}

	var cmd tea.Cmd
	m.progress, cmd = m.progress.Finish(completeStatus)
	m.setStatus(completeStatus, statusSuccess)

	resp := msg.response
	m.transcript = resp.DisplayText()
	m.language = resp.Language
	m.showOutput = true
	m.copy = m.copy.reset(resp.Text)

	if len(resp.Segments) > 0 {
		m.segments = resp.Segments
		m.showSegments = true
	} else {
		m.segments = nil
		m.showSegments = false
	}

	m.refreshResult()
	return m, cmd
}

// clearResult drops the previous transcript so nothing from an earlier file
// can be copied or saved.
func (m *UploadModel) clearResult() {
	m.transcript = ""
	m.language = ""
	m.segments = nil
	m.showOutput = false
	m.showSegments = false
	m.copy = m.copy.disable()
	m.refreshResult()
}

func inspectAudio(path string) tea.Cmd {
	return func() tea.Msg {
		info, err := transcribe.InspectAudio(path)
		return audioInspectedMsg{info: info, err: err}
	}
}

func saveSubtitles(path string, segments []transcribe.Segment) tea.Cmd {
	return func() tea.Msg {
		err := transcribe.WriteSubtitleFile(path, segments)
		return subtitlesSavedMsg{path: path, err: err}
	}
}

func (m *UploadModel) setStatus(message string, kind statusKind) {
	m.status = message
	m.statusKind = kind
}

// updateModelHint shows the selected model's hint; options without one
// leave the current hint in place.
func (m *UploadModel) updateModelHint() {
	if len(m.models) == 0 {
		return
	}
	if hint, ok := transcribe.ModelHint(m.models[m.modelIndex]); ok {
		m.modelHint = hint
	}
}

// segmentLines renders one entry per segment: range first, then text
func (m UploadModel) segmentLines() []string {
	if !m.showSegments {
		return nil
	}
	lines := make([]string, 0, len(m.segments))
	for _, seg := range m.segments {
		lines = append(lines, RangeStyle.Render(seg.Range())+" "+BodyStyle.Render(seg.Text))
	}
	return lines
}

func (m *UploadModel) refreshResult() {
	if !m.showOutput {
		m.viewport.SetContent("")
		return
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(m.viewport.Width).Render(m.transcript))
	if lines := m.segmentLines(); len(lines) > 0 {
		b.WriteString("\n\n")
		b.WriteString(LabelStyle.Render(fmt.Sprintf("Segments (%d)", len(lines))))
		b.WriteString("\n")
		b.WriteString(strings.Join(lines, "\n"))
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

// View renders the UI
func (m UploadModel) View() string {
	if m.quitting {
		return MutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder
	b.WriteString(GetHeader())
	b.WriteString("\n")
	b.WriteString(m.renderForm())
	b.WriteString("\n")

	if status := m.renderStatus(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	if m.progress.Visible() {
		b.WriteString(m.renderProgress())
		b.WriteString("\n")
	}
	if m.showOutput {
		b.WriteString(m.renderOutput())
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

func (m UploadModel) renderForm() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Transcribe an audio file"))
	b.WriteString("\n")

	// File
	file := MutedStyle.Render("none selected")
	if m.audioPath != "" {
		file = BodyStyle.Render(filepath.Base(m.audioPath))
		if m.audioInfo != nil {
			details := transcribe.FormatSize(m.audioInfo.Size)
			if m.audioInfo.Duration > 0 {
				details += " · " + transcribe.FormatDuration(m.audioInfo.Duration)
			}
			file += MutedStyle.Render(" (" + details + ")")
		}
	}
	b.WriteString(m.fieldLabel(focusFile, "Audio file") + file + "\n")
	if m.focus == focusFile {
		b.WriteString(m.filepicker.View())
		b.WriteString("\n")
	}

	// Language
	lang := ""
	if len(m.languages) > 0 {
		lang = m.languages[m.languageIndex].Label
	}
	b.WriteString(m.fieldLabel(focusLanguage, "Language") + m.selector(focusLanguage, lang) + "\n")

	// Model
	model := ""
	if len(m.models) > 0 {
		model = m.models[m.modelIndex].Label
	}
	b.WriteString(m.fieldLabel(focusModel, "Model") + m.selector(focusModel, model) + "\n")
	if m.modelHint != "" {
		b.WriteString("            " + MutedStyle.Render(m.modelHint) + "\n")
	}

	// Submit
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(DisabledButtonStyle.Render("Transcribing…"))
	case m.focus == focusSubmit:
		b.WriteString(ActiveButtonStyle.Render("Transcribe"))
	default:
		b.WriteString(ButtonStyle.Render("Transcribe"))
	}

	style := BoxStyle
	if !m.submitting {
		style = FocusedBoxStyle
	}
	return style.Render(b.String())
}

func (m UploadModel) fieldLabel(field focusField, label string) string {
	cursor := "  "
	style := LabelStyle
	if m.focus == field {
		cursor = "> "
		style = SelectedStyle
	}
	return style.Render(fmt.Sprintf("%s%-10s", cursor, label))
}

func (m UploadModel) selector(field focusField, value string) string {
	if m.focus == field {
		return SelectedStyle.Render("‹ " + value + " ›")
	}
	return BodyStyle.Render(value)
}

func (m UploadModel) renderStatus() string {
	if m.status == "" {
		return ""
	}
	switch m.statusKind {
	case statusError:
		return ErrorStyle.Render(m.status)
	case statusSuccess:
		return SuccessStyle.Render(m.status)
	default:
		return InfoStyle.Render(m.status)
	}
}

func (m UploadModel) renderProgress() string {
	view := m.progress.View()
	if m.submitting {
		elapsed := MutedStyle.Render(fmt.Sprintf("Elapsed: %s", formatDuration(time.Since(m.startTime))))
		view = m.spinner.View() + " " + view + "  " + elapsed
	}
	return view
}

func (m UploadModel) renderOutput() string {
	title := TitleStyle.Render("Transcript")
	if m.language != "" {
		title += MutedStyle.Render("  language: " + m.language)
	}
	return BoxStyle.Render(title + "\n" + m.viewport.View() + "\n\n" + m.copy.View())
}

// renderHelp renders context-sensitive help
func (m UploadModel) renderHelp() string {
	keys := []string{"tab", "Next field"}

	switch m.focus {
	case focusFile:
		keys = append(keys, "j/k", "Navigate", "enter", "Select", "h/l", "Go up/down")
	case focusLanguage, focusModel:
		keys = append(keys, "←/→", "Change")
	case focusSubmit:
		keys = append(keys, "enter", "Transcribe")
	}

	keys = append(keys, "ctrl+s", "Transcribe")
	if m.showOutput {
		keys = append(keys, "c", "Copy", "pgup/pgdn", "Scroll")
	}
	if m.showOutput && m.showSegments {
		keys = append(keys, "s", "Save SRT")
	}
	keys = append(keys, "ctrl+c", "Quit")

	return KeyHelp(keys...)
}

// Getter methods for external access
func (m UploadModel) IsQuitting() bool      { return m.quitting }
func (m UploadModel) IsSubmitting() bool    { return m.submitting }
func (m UploadModel) Transcript() string    { return m.transcript }
func (m UploadModel) HasError() bool        { return m.statusKind == statusError }
func (m UploadModel) GetStatus() string     { return m.status }
func (m UploadModel) CopyEnabled() bool     { return m.copy.enabled }
func (m UploadModel) OutputVisible() bool   { return m.showOutput }
func (m UploadModel) SegmentsVisible() bool { return m.showSegments }

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

// RunUploadUI runs the interactive form until the user quits
func RunUploadUI(client *transcribe.Client, opts UploadOptions) error {
	p := tea.NewProgram(NewUploadModel(client, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
