package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewTargetForm(t *testing.T) {
	f := NewTargetForm("example.com", 12345)
	got := f.Target()
	if got.Host != "example.com" || got.Port != 12345 {
		t.Errorf("Target = %+v", got)
	}
}

func TestTargetFormTrimsHost(t *testing.T) {
	f := NewTargetForm("  example.com ", 1)
	if got := f.Target().Host; got != "example.com" {
		t.Errorf("Host = %q", got)
	}
}

func TestTargetFormEmptyPortIsZero(t *testing.T) {
	f := NewTargetForm("localhost", 80)
	f.inputs[fieldPort].SetValue("")
	if got := f.Target().Port; got != 0 {
		t.Errorf("Port = %d, want 0", got)
	}
}

func TestTargetFormSetTarget(t *testing.T) {
	f := NewTargetForm("localhost", 80)
	f.SetTarget("10.1.1.1", 9000)
	got := f.Target()
	if got.Host != "10.1.1.1" || got.Port != 9000 {
		t.Errorf("Target = %+v", got)
	}
}

func TestTargetFormSwitchField(t *testing.T) {
	f := NewTargetForm("localhost", 80)
	f.Focus()
	f.switchField()
	if f.focused != fieldPort {
		t.Errorf("focused = %d, want port", f.focused)
	}
	f.switchField()
	if f.focused != fieldHost {
		t.Errorf("focused = %d, want host", f.focused)
	}
}

func TestTargetFormUpdateReportsChange(t *testing.T) {
	f := NewTargetForm("host", 80)
	f.Focus()
	f, _, changed := f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if !changed {
		t.Error("typing should report a change")
	}
	if f.Target().Host != "hosts" {
		t.Errorf("Host = %q", f.Target().Host)
	}
}

func TestTargetFormPortRejectsLetters(t *testing.T) {
	f := NewTargetForm("host", 80)
	f.Focus()
	f.switchField()
	f, _, changed := f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if changed {
		t.Error("letters should be rejected in the port field")
	}
	if f.Target().Port != 80 {
		t.Errorf("Port = %d, want 80", f.Target().Port)
	}
}

func TestTargetFormBlurredIgnoresInput(t *testing.T) {
	f := NewTargetForm("host", 80)
	f.Blur()
	_, _, changed := f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if changed {
		t.Error("blurred form should ignore keys")
	}
}

func TestTargetFormView(t *testing.T) {
	f := NewTargetForm("example.com", 8080)
	view := f.View()
	for _, want := range []string{"Address:", "Port:", "example.com", "8080"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}
