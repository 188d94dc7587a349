package hotkey

import (
	"fmt"
	"strings"
)

// Combo is a parsed key combination: one or more modifiers plus a terminal
// key, e.g. "ctrl+alt+r". The textual grammar is lowercase tokens joined by
// literal '+' with no whitespace; modifiers come from {ctrl, alt, shift, win}
// and the terminal key is a letter, digit, function key f1-f12, or a named
// special key.
type Combo struct {
	Mods []string
	Key  string
}

var validModifiers = map[string]bool{
	"ctrl":  true,
	"alt":   true,
	"shift": true,
	"win":   true,
}

var specialKeys = map[string]bool{
	"space":  true,
	"tab":    true,
	"enter":  true,
	"esc":    true,
	"delete": true,
	"up":     true,
	"down":   true,
	"left":   true,
	"right":  true,
}

// ParseCombo validates a combination string against the grammar and returns
// the parsed form. Malformed input is rejected with a descriptive error
// rather than failing silently at hook registration.
func ParseCombo(s string) (Combo, error) {
	if s == "" {
		return Combo{}, fmt.Errorf("empty hotkey")
	}
	if strings.ContainsAny(s, " \t") {
		return Combo{}, fmt.Errorf("hotkey %q: whitespace not allowed", s)
	}
	if s != strings.ToLower(s) {
		return Combo{}, fmt.Errorf("hotkey %q: tokens must be lowercase", s)
	}

	tokens := strings.Split(s, "+")
	if len(tokens) < 2 {
		return Combo{}, fmt.Errorf("hotkey %q: need at least one modifier and a key", s)
	}

	var c Combo
	seen := map[string]bool{}
	for _, mod := range tokens[:len(tokens)-1] {
		if !validModifiers[mod] {
			return Combo{}, fmt.Errorf("hotkey %q: unknown modifier %q (valid: ctrl, alt, shift, win)", s, mod)
		}
		if seen[mod] {
			return Combo{}, fmt.Errorf("hotkey %q: duplicate modifier %q", s, mod)
		}
		seen[mod] = true
		c.Mods = append(c.Mods, mod)
	}

	key := tokens[len(tokens)-1]
	if !validKey(key) {
		return Combo{}, fmt.Errorf("hotkey %q: unknown key %q", s, key)
	}
	c.Key = key
	return c, nil
}

func validKey(key string) bool {
	if len(key) == 1 {
		ch := key[0]
		return (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
	}
	if strings.HasPrefix(key, "f") && len(key) <= 3 {
		n := 0
		for _, ch := range key[1:] {
			if ch < '0' || ch > '9' {
				return false
			}
			n = n*10 + int(ch-'0')
		}
		return n >= 1 && n <= 12
	}
	return specialKeys[key]
}

// String renders the combo back into its canonical textual form.
func (c Combo) String() string {
	return strings.Join(append(append([]string{}, c.Mods...), c.Key), "+")
}
