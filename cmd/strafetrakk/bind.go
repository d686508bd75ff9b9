package main

import (
	"errors"
	"fmt"

	"github.com/eiannone/keyboard"
)

var errCaptureCancelled = errors.New("key capture cancelled")

var keyboardNames = map[keyboard.Key]string{
	keyboard.KeySpace:      " ",
	keyboard.KeyTab:        "Tab",
	keyboard.KeyEnter:      "Enter",
	keyboard.KeyBackspace:  "Backspace",
	keyboard.KeyBackspace2: "Backspace",
	keyboard.KeyArrowUp:    "ArrowUp",
	keyboard.KeyArrowDown:  "ArrowDown",
	keyboard.KeyArrowLeft:  "ArrowLeft",
	keyboard.KeyArrowRight: "ArrowRight",
	keyboard.KeyInsert:     "Insert",
	keyboard.KeyDelete:     "Delete",
	keyboard.KeyHome:       "Home",
	keyboard.KeyEnd:        "End",
	keyboard.KeyPgup:       "PageUp",
	keyboard.KeyPgdn:       "PageDown",
}

// captureKey reads one raw key press from the terminal.
func captureKey() (string, error) {
	if err := keyboard.Open(); err != nil {
		return "", fmt.Errorf("failed to open keyboard: %w", err)
	}
	defer func() {
		// Best-effort terminal restore.
		_ = keyboard.Close()
	}()
	char, key, err := keyboard.GetKey()
	if err != nil {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return keyboardKeyName(char, key)
}

func keyboardKeyName(char rune, key keyboard.Key) (string, error) {
	switch {
	case key == keyboard.KeyEsc || key == keyboard.KeyCtrlC:
		return "", errCaptureCancelled
	case char != 0:
		return string(char), nil
	}
	if name, ok := keyboardNames[key]; ok {
		return name, nil
	}
	return "", fmt.Errorf("unsupported key code %d", key)
}
