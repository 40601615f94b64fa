package wizard

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/GBeurier/nirspipe/datasets"
	"github.com/GBeurier/nirspipe/detect"
)

const previewRows = 8

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cellStyle     = lipgloss.NewStyle().PaddingRight(2)
)

// Model implements the Bubble Tea import wizard over a Machine.
type Model struct {
	machine  *Machine
	detector detect.Detector
	logger   *zap.Logger

	cursor    int
	output    textinput.Model
	bar       progress.Model
	percent   float64
	importing bool
	errText   string
}

type detectedMsg struct {
	result detect.Result
}

type previewMsg struct {
	preview *datasets.Preview
}

type importDoneMsg struct {
	err error
}

type stepErrMsg struct {
	err error
}

type tickMsg time.Time

// New builds a wizard model over the candidate files in root.
func New(root string, detector detect.Detector, logger *zap.Logger) (*Model, error) {
	files, err := datasets.ScanFolder(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no dataset files found under %s", root)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	output := textinput.New()
	output.Placeholder = "output.db"
	output.CharLimit = 256

	return &Model{
		machine:  NewMachine(files),
		detector: detector,
		logger:   logger,
		output:   output,
		bar:      progress.New(progress.WithDefaultGradient()),
	}, nil
}

// Run starts the wizard program on the current terminal.
func Run(root string, detector detect.Detector, logger *zap.Logger) error {
	m, err := New(root, detector, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	return m.machine.ImportError()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case detectedMsg:
		if err := m.machine.SetDetection(msg.result); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		return m, nil

	case previewMsg:
		if err := m.machine.SetPreview(msg.preview); err != nil {
			m.errText = err.Error()
		}
		return m, nil

	case importDoneMsg:
		m.importing = false
		m.percent = 1.0
		m.machine.FinishImport(msg.err)
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.machine.Next()
		return m, nil

	case stepErrMsg:
		m.importing = false
		m.errText = msg.err.Error()
		return m, nil

	case tickMsg:
		if !m.importing {
			return m, nil
		}
		// Row counts are unknown up front; creep toward the end and let
		// importDoneMsg snap to 100%.
		if m.percent < 0.9 {
			m.percent += 0.05
		}
		return m, tick()
	}

	if m.machine.Step() == StepConfigure {
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	m.errText = ""
	step := m.machine.Step()

	switch msg.String() {
	case "q":
		if step != StepConfigure {
			return m, tea.Quit
		}
	case "esc":
		if step == StepDone || m.importing {
			return m, nil
		}
		if err := m.machine.Back(); err == nil && m.machine.Step() == StepConfigure {
			m.output.Focus()
		}
		return m, nil
	case "up", "k":
		if step == StepSelectSource && m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if step == StepSelectSource && m.cursor < len(m.machine.Files())-1 {
			m.cursor++
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		return m.advance()
	}

	if step == StepConfigure {
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}
	return m, nil
}

// advance runs the current step's action and moves the machine forward.
func (m *Model) advance() (tea.Model, tea.Cmd) {
	switch m.machine.Step() {
	case StepSelectSource:
		if err := m.machine.SelectFile(m.cursor); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		if err := m.machine.Next(); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		return m, m.detectCmd()

	case StepDetect:
		if err := m.machine.Next(); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		return m, m.previewCmd()

	case StepPreview:
		if err := m.machine.Next(); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.output.Focus()
		return m, textinput.Blink

	case StepConfigure:
		if err := m.machine.SetOutputPath(strings.TrimSpace(m.output.Value())); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		if err := m.machine.Next(); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		m.output.Blur()
		m.importing = true
		m.percent = 0
		return m, tea.Batch(m.importCmd(), tick())

	case StepDone:
		return m, tea.Quit
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) detectCmd() tea.Cmd {
	file, _ := m.machine.Selected()
	detector := m.detector
	return func() tea.Msg {
		sample, err := readSample(file.Path)
		if err != nil {
			return stepErrMsg{err}
		}
		res, err := detector.Detect(context.Background(), sample)
		if err != nil {
			return stepErrMsg{err}
		}
		return detectedMsg{res}
	}
}

func (m *Model) previewCmd() tea.Cmd {
	file, _ := m.machine.Selected()
	opts := m.machine.Options()
	return func() tea.Msg {
		f, err := os.Open(file.Path)
		if err != nil {
			return stepErrMsg{err}
		}
		defer f.Close()
		provider, err := datasets.Open(file.Driver, f, &opts)
		if err != nil {
			return stepErrMsg{err}
		}
		tables := provider.TableNames()
		if len(tables) == 0 {
			return stepErrMsg{fmt.Errorf("no tables in %s", file.Name)}
		}
		p, err := datasets.Collect(provider, tables[0], previewRows)
		if err != nil {
			return stepErrMsg{err}
		}
		return previewMsg{p}
	}
}

func (m *Model) importCmd() tea.Cmd {
	file, _ := m.machine.Selected()
	opts := m.machine.Options()
	outputPath := m.machine.OutputPath()
	logger := m.logger
	return func() tea.Msg {
		src, err := os.Open(file.Path)
		if err != nil {
			return importDoneMsg{err}
		}
		defer src.Close()
		provider, err := datasets.Open(file.Driver, src, &opts)
		if err != nil {
			return importDoneMsg{err}
		}
		out, err := os.Create(outputPath)
		if err != nil {
			return importDoneMsg{err}
		}
		defer out.Close()
		err = datasets.ImportToSQLite(provider, out, &datasets.ImportOptions{
			LogErrors:   true,
			ScanTimeout: opts.ScanTimeout,
			Logger:      logger,
		})
		return importDoneMsg{err}
	}
}

func readSample(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	buf := make([]byte, 8192)
	n, err := f.Read(buf)
	if n == 0 && err != nil {
		return "", fmt.Errorf("failed to read sample from %s: %w", path, err)
	}
	return string(buf[:n]), nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("nirspipe import wizard"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  [%s]", m.machine.Step())))
	b.WriteString("\n\n")

	switch m.machine.Step() {
	case StepSelectSource:
		b.WriteString("Select a dataset file:\n\n")
		for i, f := range m.machine.Files() {
			line := fmt.Sprintf("%s  (%s, %d bytes)", f.Name, f.Driver, f.Size)
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString(dimStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
		b.WriteString(dimStyle.Render("\nenter select · q quit"))

	case StepDetect:
		file, _ := m.machine.Selected()
		b.WriteString(fmt.Sprintf("Detecting format of %s\n\n", file.Name))
		if res, ok := m.machine.Detection(); ok {
			b.WriteString(fmt.Sprintf("  delimiter: %s\n  decimal:   %q\n", delimiterLabel(res.Delimiter), res.Decimal))
			b.WriteString(dimStyle.Render("\nenter preview · esc back"))
		} else {
			b.WriteString(dimStyle.Render("  working..."))
		}

	case StepPreview:
		p := m.machine.Preview()
		if p == nil {
			b.WriteString(dimStyle.Render("loading preview..."))
		} else {
			b.WriteString(fmt.Sprintf("Preview of table %s:\n\n", p.Table))
			b.WriteString(renderPreview(p))
			b.WriteString(dimStyle.Render("\nenter configure · esc back"))
		}

	case StepConfigure:
		b.WriteString("Output database path:\n\n  ")
		b.WriteString(m.output.View())
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("\nenter import · esc back"))

	case StepImport:
		b.WriteString("Importing...\n\n  ")
		b.WriteString(m.bar.ViewAs(m.percent))
		b.WriteString("\n")

	case StepDone:
		b.WriteString(fmt.Sprintf("Import complete: %s\n", m.machine.OutputPath()))
		b.WriteString(dimStyle.Render("\nenter or q to exit"))
	}

	if m.errText != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("error: " + m.errText))
	}
	b.WriteString("\n")
	return b.String()
}

func renderPreview(p *datasets.Preview) string {
	var b strings.Builder
	var header strings.Builder
	for i, h := range p.Headers {
		label := h
		if i < len(p.Types) {
			label = fmt.Sprintf("%s (%s)", h, p.Types[i])
		}
		header.WriteString(cellStyle.Render(label))
	}
	b.WriteString(selectedStyle.Render(header.String()))
	b.WriteString("\n")
	for _, row := range p.Rows {
		for _, cell := range row {
			b.WriteString(cellStyle.Render(cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func delimiterLabel(d rune) string {
	switch d {
	case '\t':
		return "TAB"
	case ' ':
		return "SPACE"
	}
	return string(d)
}
