package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

var testAccents = []pickerItem{
	{Value: "com", Label: "Default"},
	{Value: "com", Label: "United States"},
	{Value: "co.uk", Label: "United Kingdom"},
	{Value: "co.in", Label: "India"},
	{Value: "ca", Label: "Canada"},
}

func typeRunes(p picker, s string) picker {
	return p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestPickerInitialSelection(t *testing.T) {
	p := newPicker("Accent", testAccents, "ca")
	if p.Value() != "ca" {
		t.Errorf("Value() = %q, want ca", p.Value())
	}

	// Default and United States share a value; the first one wins.
	p = newPicker("Accent", testAccents, "com")
	if p.selected != 0 {
		t.Errorf("selected = %d, want 0", p.selected)
	}

	p = newPicker("Accent", testAccents, "nope")
	if p.Value() != "com" {
		t.Errorf("unknown value should select the first item, got %q", p.Value())
	}
}

func TestPickerFilter(t *testing.T) {
	tests := []struct {
		filter string
		want   string
	}{
		{"uk", "co.uk"},
		{"kingdom", "co.uk"},
		{"ind", "co.in"},
		{"can", "ca"},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			p := typeRunes(newPicker("Accent", testAccents, "com"), tt.filter)
			if p.Value() != tt.want {
				t.Errorf("filter %q selected %q, want %q", tt.filter, p.Value(), tt.want)
			}
		})
	}
}

func TestPickerNoMatchKeepsSelection(t *testing.T) {
	p := newPicker("Accent", testAccents, "co.in")
	p.focused = true
	p = typeRunes(p, "zzz")

	if p.Value() != "co.in" {
		t.Errorf("Value() = %q, want co.in", p.Value())
	}
	if !strings.Contains(p.View(), "No matches") {
		t.Error("view should say there are no matches")
	}

	p = p.clearFilter()
	if p.filter != "" || len(p.matches) != len(testAccents) {
		t.Errorf("clearFilter left filter %q and %d matches", p.filter, len(p.matches))
	}
	if p.matches[p.cursor] != p.selected {
		t.Error("cursor should return to the selected item")
	}
}

func TestPickerBackspace(t *testing.T) {
	p := typeRunes(newPicker("Accent", testAccents, "com"), "ukx")
	p = p.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if p.filter != "uk" {
		t.Errorf("filter = %q, want uk", p.filter)
	}
	if p.Value() != "co.uk" {
		t.Errorf("Value() = %q, want co.uk", p.Value())
	}

	p = p.clearFilter()
	p = p.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if p.Value() != "co.uk" {
		t.Error("backspace on an empty filter should not change the selection")
	}
}

func TestPickerCursorBounds(t *testing.T) {
	p := newPicker("Accent", testAccents, "com")
	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	p = p.Update(up)
	if p.cursor != 0 || p.Value() != "com" {
		t.Errorf("up at top moved to %d", p.cursor)
	}

	for i := 0; i < len(testAccents)+3; i++ {
		p = p.Update(down)
	}
	if p.cursor != len(testAccents)-1 || p.Value() != "ca" {
		t.Errorf("down past the end: cursor %d, value %q", p.cursor, p.Value())
	}
}
