// Package b2bua implements the blind-transfer back-to-back user agent: a
// static transfer directory, the bridge that routes inbound SIP messages
// for a B-leg Call-ID back to the coordinator that spawned it, and the
// outbound INVITE construction for the B-leg itself.
package b2bua

import (
	"errors"
	"strings"
)

// ErrPersonNotFound is returned when a transfer target cannot be resolved.
var ErrPersonNotFound = errors.New("b2bua: transfer target not found in directory")

// Directory resolves a spoken/typed person name or alias to an E.164
// number. It is a static in-memory map built at startup, not backed by a
// file or database: spec.md treats the directory as internal to the core
// to keep the dialog layer free of filesystem coupling.
type Directory struct {
	byKey map[string]string
}

// NewDirectory builds a Directory from a display-name/alias -> E.164 map.
// Keys are normalized with Normalize before insertion, so lookups ignore
// case and half/full-width space differences.
func NewDirectory(entries map[string]string) *Directory {
	d := &Directory{byKey: make(map[string]string, len(entries))}
	for name, number := range entries {
		d.byKey[Normalize(name)] = number
	}
	return d
}

// Resolve looks up person (a display name or alias) and returns its E.164
// number.
func (d *Directory) Resolve(person string) (string, error) {
	number, ok := d.byKey[Normalize(person)]
	if !ok {
		return "", ErrPersonNotFound
	}
	return number, nil
}

// Normalize lowercases person and strips both half-width (U+0020) and
// full-width (U+3000) spaces, so "Yamada Taro", "yamada taro", and
// "山田　太郎"-style full-width-spaced entries all key the same lookup.
func Normalize(person string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(person) {
		if r == ' ' || r == '　' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
