package progress

import "testing"

func TestNewReporterCI(t *testing.T) {
	t.Setenv("CI", "true")
	r := NewReporter("Writing workbook")
	ci, ok := r.(*CIReporter)
	if !ok {
		t.Fatalf("expected *CIReporter, got %T", r)
	}
	ci.Start(3)
	ci.Update(1, "row 1")
	ci.Finish()
	if ci.total != 3 {
		t.Errorf("total = %d", ci.total)
	}
}

func TestNewReporterTerminal(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	if _, ok := NewReporter("x").(*TerminalReporter); !ok {
		t.Error("expected *TerminalReporter")
	}
}

func TestNop(t *testing.T) {
	var r Reporter = Nop{}
	r.Start(1)
	r.Update(1, "")
	r.Finish()
}
