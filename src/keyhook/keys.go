package keyhook

import (
	"sort"
	"strings"
)

// Virtual key codes reported by gohook (libuiohook VC_* values). They are
// the same on every platform, unlike Rawcode.
const (
	KeycodeEnter       uint16 = 0x001C
	KeycodeNumpadEnter uint16 = 0x0E1C
)

var keycodes = map[string][]uint16{
	"ctrl":  {0x001D, 0x0E1D},
	"alt":   {0x0038, 0x0E38},
	"shift": {0x002A, 0x0036},
	"cmd":   {0x0E5B, 0x0E5C},

	"q": {0x10}, "w": {0x11}, "e": {0x12}, "r": {0x13}, "t": {0x14},
	"y": {0x15}, "u": {0x16}, "i": {0x17}, "o": {0x18}, "p": {0x19},
	"a": {0x1E}, "s": {0x1F}, "d": {0x20}, "f": {0x21}, "g": {0x22},
	"h": {0x23}, "j": {0x24}, "k": {0x25}, "l": {0x26},
	"z": {0x2C}, "x": {0x2D}, "c": {0x2E}, "v": {0x2F}, "b": {0x30},
	"n": {0x31}, "m": {0x32},

	"1": {0x02}, "2": {0x03}, "3": {0x04}, "4": {0x05}, "5": {0x06},
	"6": {0x07}, "7": {0x08}, "8": {0x09}, "9": {0x0A}, "0": {0x0B},

	"f1": {0x3B}, "f2": {0x3C}, "f3": {0x3D}, "f4": {0x3E}, "f5": {0x3F},
	"f6": {0x40}, "f7": {0x41}, "f8": {0x42}, "f9": {0x43}, "f10": {0x44},
	"f11": {0x57}, "f12": {0x58}, "f13": {0x5B}, "f14": {0x5C},
	"f15": {0x5D}, "f16": {0x63}, "f17": {0x64}, "f18": {0x65},
	"f19": {0x66}, "f20": {0x67}, "f21": {0x68}, "f22": {0x69},
	"f23": {0x6A}, "f24": {0x6B},

	"space":       {0x39},
	"enter":       {KeycodeEnter},
	"numpadenter": {KeycodeNumpadEnter},
	"esc":         {0x01},
	"tab":         {0x0F},
	"backspace":   {0x0E},
	"delete":      {0x0E53},
	"insert":      {0x0E52},
	"home":        {0x0E47},
	"end":         {0x0E4F},
	"pageup":      {0x0E49},
	"pagedown":    {0x0E51},
	"left":        {0xE04B},
	"up":          {0xE048},
	"right":       {0xE04D},
	"down":        {0xE050},
}

var aliases = map[string]string{
	"control": "ctrl",
	"option":  "alt",
	"win":     "cmd",
	"super":   "cmd",
	"meta":    "cmd",
	"return":  "enter",
	"kpenter": "numpadenter",
	"escape":  "esc",
	"del":     "delete",
	"ins":     "insert",
	"pgup":    "pageup",
	"pgdn":    "pagedown",
}

// Normalize lowercases a key name and resolves aliases.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// Keycodes returns every keycode that produces the named key, nil if unknown.
func Keycodes(name string) []uint16 {
	return keycodes[Normalize(name)]
}

// Name returns the canonical name for a keycode. Modifiers map to their
// side-less name.
func Name(code uint16) string {
	for name, codes := range keycodes {
		for _, c := range codes {
			if c == code {
				return name
			}
		}
	}
	return ""
}

// Names lists every canonical key name, sorted.
func Names() []string {
	names := make([]string, 0, len(keycodes))
	for name := range keycodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
