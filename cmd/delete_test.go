package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirmDeletePromptAcceptsY(t *testing.T) {
	out := &bytes.Buffer{}
	confirmed, err := confirmDeletePrompt(strings.NewReader("Y\n"), out, []int{4321, 4322})
	if err != nil {
		t.Fatalf("confirmDeletePrompt: %v", err)
	}
	if !confirmed {
		t.Fatal("expected confirmation")
	}
	if !strings.Contains(out.String(), "#4321") || !strings.Contains(out.String(), "#4322") {
		t.Fatalf("prompt should name the targets: %s", out.String())
	}
}

func TestConfirmDeletePromptRejectsOtherInput(t *testing.T) {
	for _, input := range []string{"y\n", "yes\n", "\n", "N\n"} {
		confirmed, err := confirmDeletePrompt(strings.NewReader(input), &bytes.Buffer{}, []int{1})
		if err != nil {
			t.Fatalf("confirmDeletePrompt(%q): %v", input, err)
		}
		if confirmed {
			t.Fatalf("input %q must not confirm", input)
		}
	}
}

func TestConfirmDeletePromptHandlesEOF(t *testing.T) {
	confirmed, err := confirmDeletePrompt(strings.NewReader("Y"), &bytes.Buffer{}, []int{1})
	if err != nil {
		t.Fatalf("confirmDeletePrompt: %v", err)
	}
	if !confirmed {
		t.Fatal("Y without newline should confirm")
	}
}
