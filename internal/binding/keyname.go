package binding

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var namedKeys = map[string]string{
	"space":       "Space",
	"spacebar":    "Space",
	"shift":       "Shift",
	"lshift":      "Shift",
	"leftshift":   "Shift",
	"shiftleft":   "Shift",
	"rshift":      "RShift",
	"rightshift":  "RShift",
	"shiftright":  "RShift",
	"ctrl":        "Ctrl",
	"control":     "Ctrl",
	"lctrl":       "Ctrl",
	"leftctrl":    "Ctrl",
	"controlleft": "Ctrl",
	"alt":         "Alt",
	"lalt":        "Alt",
	"altleft":     "Alt",
	"tab":         "Tab",
	"enter":       "Enter",
	"return":      "Enter",
	"esc":         "Escape",
	"escape":      "Escape",
	"up":          "Up",
	"arrowup":     "Up",
	"down":        "Down",
	"arrowdown":   "Down",
	"left":        "Left",
	"arrowleft":   "Left",
	"right":       "Right",
	"arrowright":  "Right",
	"backspace":   "Backspace",
	"capslock":    "CapsLock",
}

// KeyName canonicalizes a key identifier from any raw source so that bindings
// and events compare equal. Single characters are upper-cased, DOM-style codes
// like "KeyA" and "Digit1" are stripped, and a few named keys are mapped to a
// fixed spelling. Unknown names are returned trimmed, first letter upper-cased.
func KeyName(raw string) string {
	if raw == " " {
		return "Space"
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) == 1 {
		return strings.ToUpper(s)
	}
	if rest, ok := strings.CutPrefix(s, "Key"); ok && utf8.RuneCountInString(rest) == 1 {
		return strings.ToUpper(rest)
	}
	if rest, ok := strings.CutPrefix(s, "Digit"); ok && utf8.RuneCountInString(rest) == 1 {
		return rest
	}
	if name, ok := namedKeys[strings.ToLower(s)]; ok {
		return name
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
