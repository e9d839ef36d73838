package clicks

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/odvcencio/panes/pkg/ui/terminal"
)

// Binding matches a key chord such as "esc" or "ctrl+q".
type Binding struct {
	Key  terminal.Key
	Rune rune
	Ctrl bool
	Alt  bool
}

// DefaultQuitKeys returns esc and ctrl+q.
func DefaultQuitKeys() []Binding {
	return []Binding{
		{Key: terminal.KeyEscape},
		{Key: terminal.KeyRune, Rune: 'q', Ctrl: true},
	}
}

// ParseBinding parses "[ctrl+][alt+]key", where key is a key name
// (see terminal.Key.String) or a single character.
func ParseBinding(s string) (Binding, error) {
	var b Binding
	parts := strings.Split(strings.TrimSpace(s), "+")
	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(mod) {
		case "ctrl", "c":
			b.Ctrl = true
		case "alt", "meta", "m":
			b.Alt = true
		default:
			return Binding{}, fmt.Errorf("unknown modifier %q in %q", mod, s)
		}
	}

	name := parts[len(parts)-1]
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		b.Key = terminal.KeyRune
		b.Rune = r
		if b.Ctrl {
			b.Rune = unicode.ToLower(r)
		}
		return b, nil
	}
	key, ok := terminal.KeyByName(strings.ToLower(name))
	if !ok || key == terminal.KeyRune {
		return Binding{}, fmt.Errorf("unknown key %q", s)
	}
	b.Key = key
	return b, nil
}

// ParseBindings parses a list of chords.
func ParseBindings(specs []string) ([]Binding, error) {
	out := make([]Binding, 0, len(specs))
	for _, s := range specs {
		b, err := ParseBinding(s)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// Matches reports whether k is this chord.
func (b Binding) Matches(k terminal.KeyEvent) bool {
	if k.Key != b.Key || k.Ctrl != b.Ctrl || k.Alt != b.Alt {
		return false
	}
	return b.Key != terminal.KeyRune || k.Rune == b.Rune
}

func (b Binding) String() string {
	var sb strings.Builder
	if b.Ctrl {
		sb.WriteString("ctrl+")
	}
	if b.Alt {
		sb.WriteString("alt+")
	}
	if b.Key == terminal.KeyRune {
		sb.WriteRune(b.Rune)
	} else {
		sb.WriteString(b.Key.String())
	}
	return sb.String()
}
