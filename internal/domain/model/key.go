// Package model contains the QTE domain values passed between layers.
package model

import "strings"

// Key identifies one discrete input, e.g. "e", "space", "gamepad_face_button_bottom".
type Key string

// Action names an abstract input resolved to concrete keys by a mapper.
type Action string

// NoKey is the invalid key.
const NoKey Key = ""

// NormalizeKey lowercases and trims a raw key name.
func NormalizeKey(raw string) Key {
	return Key(strings.ToLower(strings.TrimSpace(raw)))
}

// NormalizeAction lowercases and trims a raw action name.
func NormalizeAction(raw string) Action {
	return Action(strings.ToLower(strings.TrimSpace(raw)))
}

// Valid reports whether k names a key.
func (k Key) Valid() bool { return k != NoKey }

// NormalizeKeys normalizes raw names, dropping empties.
func NormalizeKeys(raw []string) []Key {
	out := make([]Key, 0, len(raw))
	for _, r := range raw {
		if k := NormalizeKey(r); k.Valid() {
			out = append(out, k)
		}
	}
	return out
}

// ContainsKey reports whether k is in keys.
func ContainsKey(keys []Key, k Key) bool {
	for _, c := range keys {
		if c == k {
			return true
		}
	}
	return false
}
