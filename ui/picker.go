package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

type pickerItem struct {
	Value string
	Label string
}

// pickerSource lets fuzzy match on both the label and the value, so "uk"
// finds co.uk.
type pickerSource []pickerItem

func (s pickerSource) String(i int) string { return s[i].Label + " " + s[i].Value }
func (s pickerSource) Len() int            { return len(s) }

// picker is a filterable single-choice list. Typing narrows the list and
// the best match becomes the selection.
type picker struct {
	title    string
	items    []pickerItem
	filter   string
	matches  []int // indexes into items, best first
	cursor   int   // index into matches
	selected int   // index into items
	focused  bool
	height   int
}

func newPicker(title string, items []pickerItem, value string) picker {
	p := picker{title: title, items: items, height: 7}
	for i, it := range items {
		if it.Value == value {
			p.selected = i
			break
		}
	}
	p.refilter()
	p.cursor = p.matchIndex(p.selected)
	return p
}

// Value returns the selected item's value.
func (p picker) Value() string {
	if len(p.items) == 0 {
		return ""
	}
	return p.items[p.selected].Value
}

func (p *picker) refilter() {
	matches := make([]int, 0, len(p.items))
	if p.filter == "" {
		for i := range p.items {
			matches = append(matches, i)
		}
	} else {
		for _, m := range fuzzy.FindFrom(p.filter, pickerSource(p.items)) {
			matches = append(matches, m.Index)
		}
	}
	p.matches = matches
}

func (p picker) matchIndex(item int) int {
	for i, m := range p.matches {
		if m == item {
			return i
		}
	}
	return 0
}

// clearFilter drops the filter but keeps the selection.
func (p picker) clearFilter() picker {
	p.filter = ""
	p.refilter()
	p.cursor = p.matchIndex(p.selected)
	return p
}

func (p picker) Update(msg tea.KeyMsg) picker {
	switch msg.Type {
	case tea.KeyUp:
		if p.cursor > 0 {
			p.cursor--
		}
	case tea.KeyDown:
		if p.cursor < len(p.matches)-1 {
			p.cursor++
		}
	case tea.KeyBackspace:
		if p.filter == "" {
			return p
		}
		r := []rune(p.filter)
		p.filter = string(r[:len(r)-1])
		p.refilter()
		p.cursor = 0
	case tea.KeyRunes, tea.KeySpace:
		p.filter += string(msg.Runes)
		p.refilter()
		p.cursor = 0
	default:
		return p
	}

	if len(p.matches) > 0 {
		p.selected = p.matches[p.cursor]
	}
	return p
}

func (p picker) View() string {
	var b strings.Builder

	if p.focused {
		b.WriteString(focusedTitleStyle(p.title))
	} else {
		b.WriteString(titleStyle(p.title))
	}
	b.WriteRune('\n')

	if p.focused || p.filter != "" {
		b.WriteString(captionStyle("/ ") + p.filter)
		if p.focused {
			b.WriteString(cursorStyle("█"))
		}
		b.WriteRune('\n')
	}

	if len(p.matches) == 0 {
		b.WriteString(captionStyle("  No matches"))
		return b.String()
	}

	start := max(0, p.cursor-p.height+1)
	end := min(len(p.matches), start+p.height)
	width := sidebarWidth - 6

	for i := start; i < end; i++ {
		item := p.items[p.matches[i]]
		label := runewidth.Truncate(item.Label, width, ellipsis)
		label = runewidth.FillRight(label, width)

		marker := "  "
		if p.focused && i == p.cursor {
			marker = cursorStyle("> ")
		}

		if p.matches[i] == p.selected {
			b.WriteString(marker + selectedStyle("• "+label))
		} else {
			b.WriteString(marker + "  " + label)
		}
		if i+1 < end {
			b.WriteRune('\n')
		}
	}
	return b.String()
}
