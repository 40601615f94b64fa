package datasets

import (
	"io"
	"strings"
	"testing"
)

type stubDriver struct{}

func (stubDriver) Open(source io.Reader, opts *ParseOptions) (RowProvider, error) {
	return sampleProvider(), nil
}

func TestRegistry(t *testing.T) {
	Register("stub", stubDriver{})

	names := Drivers()
	found := false
	for _, n := range names {
		if n == "stub" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Drivers() = %v, missing stub", names)
	}

	p, err := Open("stub", strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got := p.TableNames(); len(got) != 1 || got[0] != "spectra" {
		t.Errorf("TableNames = %v", got)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("missing", strings.NewReader(""), nil); err == nil {
		t.Error("Open should fail for an unregistered driver")
	}
}

func TestRegisterNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register(nil) should panic")
		}
	}()
	Register("nil-driver", nil)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	Register("dup", stubDriver{})
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register should panic")
		}
	}()
	Register("dup", stubDriver{})
}
