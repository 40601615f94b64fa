// Package wizard implements the dataset import wizard: an explicit step
// machine with defined forward and backward edges, plus a Bubble Tea
// front end that drives it.
package wizard

import (
	"fmt"

	"github.com/GBeurier/nirspipe/datasets"
	"github.com/GBeurier/nirspipe/detect"
)

// Step identifies one wizard screen.
type Step int

const (
	StepSelectSource Step = iota
	StepDetect
	StepPreview
	StepConfigure
	StepImport
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepSelectSource:
		return "select-source"
	case StepDetect:
		return "detect"
	case StepPreview:
		return "preview"
	case StepConfigure:
		return "configure"
	case StepImport:
		return "import"
	case StepDone:
		return "done"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Machine holds the wizard state and enforces its transitions. It performs
// no IO itself; the caller runs detection, preview, and import and records
// the outcomes before advancing.
type Machine struct {
	step Step

	files    []datasets.FileEntry
	selected int

	detection *detect.Result
	preview   *datasets.Preview

	// Per-file parse option overrides, keyed by path. An override survives
	// going back and re-selecting the same file.
	overrides map[string]datasets.ParseOptions

	outputPath string
	imported   bool
	importErr  error
}

// NewMachine starts a wizard over the given candidate files.
func NewMachine(files []datasets.FileEntry) *Machine {
	return &Machine{
		files:     files,
		selected:  -1,
		overrides: make(map[string]datasets.ParseOptions),
	}
}

// Step returns the current step.
func (m *Machine) Step() Step {
	return m.step
}

// Files returns the candidate files.
func (m *Machine) Files() []datasets.FileEntry {
	return m.files
}

// SelectFile marks the file at index as the import source. Selecting a
// different file discards detection and preview state.
func (m *Machine) SelectFile(index int) error {
	if m.step != StepSelectSource {
		return fmt.Errorf("cannot select a file at step %s", m.step)
	}
	if index < 0 || index >= len(m.files) {
		return fmt.Errorf("file index %d out of range", index)
	}
	if index != m.selected {
		m.detection = nil
		m.preview = nil
	}
	m.selected = index
	return nil
}

// Selected returns the chosen file, or false before any selection.
func (m *Machine) Selected() (datasets.FileEntry, bool) {
	if m.selected < 0 {
		return datasets.FileEntry{}, false
	}
	return m.files[m.selected], true
}

// SetDetection records the detection outcome for the selected file.
func (m *Machine) SetDetection(res detect.Result) error {
	if m.step != StepDetect {
		return fmt.Errorf("cannot record detection at step %s", m.step)
	}
	m.detection = &res
	return nil
}

// Detection returns the recorded detection result, or false if none.
func (m *Machine) Detection() (detect.Result, bool) {
	if m.detection == nil {
		return detect.Result{}, false
	}
	return *m.detection, true
}

// SetPreview records the preview rows for the selected file.
func (m *Machine) SetPreview(p *datasets.Preview) error {
	if m.step != StepPreview {
		return fmt.Errorf("cannot record preview at step %s", m.step)
	}
	m.preview = p
	return nil
}

// Preview returns the recorded preview, or nil if none.
func (m *Machine) Preview() *datasets.Preview {
	return m.preview
}

// Options returns the effective parse options for the selected file:
// the recorded override if one exists, otherwise the detection result.
func (m *Machine) Options() datasets.ParseOptions {
	file, ok := m.Selected()
	if ok {
		if o, exists := m.overrides[file.Path]; exists {
			return o
		}
	}
	var o datasets.ParseOptions
	if m.detection != nil {
		o.Delimiter = m.detection.Delimiter
		o.Decimal = m.detection.Decimal
	}
	o.AssessHeaderRow = true
	return o
}

// SetOptions records a parse option override for the selected file.
func (m *Machine) SetOptions(o datasets.ParseOptions) error {
	if m.step != StepConfigure {
		return fmt.Errorf("cannot change options at step %s", m.step)
	}
	file, ok := m.Selected()
	if !ok {
		return fmt.Errorf("no file selected")
	}
	m.overrides[file.Path] = o
	return nil
}

// SetOutputPath records where the imported database is written.
func (m *Machine) SetOutputPath(path string) error {
	if m.step != StepConfigure {
		return fmt.Errorf("cannot change output path at step %s", m.step)
	}
	m.outputPath = path
	return nil
}

// OutputPath returns the configured output path.
func (m *Machine) OutputPath() string {
	return m.outputPath
}

// FinishImport records the import outcome.
func (m *Machine) FinishImport(err error) error {
	if m.step != StepImport {
		return fmt.Errorf("cannot finish import at step %s", m.step)
	}
	m.imported = true
	m.importErr = err
	return nil
}

// ImportError returns the recorded import failure, nil on success.
func (m *Machine) ImportError() error {
	return m.importErr
}

// Next advances to the following step. Each edge has a guard; a failed
// guard leaves the machine where it is.
func (m *Machine) Next() error {
	switch m.step {
	case StepSelectSource:
		if m.selected < 0 {
			return fmt.Errorf("select a file first")
		}
		m.step = StepDetect
	case StepDetect:
		if m.detection == nil {
			return fmt.Errorf("detection has not run")
		}
		m.step = StepPreview
	case StepPreview:
		if m.preview == nil {
			return fmt.Errorf("preview has not loaded")
		}
		m.step = StepConfigure
	case StepConfigure:
		if m.outputPath == "" {
			return fmt.Errorf("output path is not set")
		}
		m.step = StepImport
	case StepImport:
		if !m.imported {
			return fmt.Errorf("import has not finished")
		}
		m.step = StepDone
	case StepDone:
		return fmt.Errorf("wizard is complete")
	}
	return nil
}

// Back returns to the previous step. Once the import ran the wizard can
// no longer rewind past it.
func (m *Machine) Back() error {
	switch m.step {
	case StepSelectSource:
		return fmt.Errorf("already at the first step")
	case StepDetect:
		m.step = StepSelectSource
	case StepPreview:
		m.step = StepDetect
	case StepConfigure:
		m.step = StepPreview
	case StepImport:
		if m.imported {
			return fmt.Errorf("import already ran")
		}
		m.step = StepConfigure
	case StepDone:
		return fmt.Errorf("wizard is complete")
	}
	return nil
}
