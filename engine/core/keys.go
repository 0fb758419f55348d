package core

import "fmt"

// Key code definitions. Printable keys use their ASCII value, everything
// else lives in the extended range starting at 0x100.
type KeyCode uint16

const (
	KEY_NONE         KeyCode = 0
	KEY_SPACE        KeyCode = ' '
	KEY_A            KeyCode = 'a'
	KEY_B            KeyCode = 'b'
	KEY_C            KeyCode = 'c'
	KEY_D            KeyCode = 'd'
	KEY_E            KeyCode = 'e'
	KEY_F            KeyCode = 'f'
	KEY_G            KeyCode = 'g'
	KEY_H            KeyCode = 'h'
	KEY_I            KeyCode = 'i'
	KEY_J            KeyCode = 'j'
	KEY_K            KeyCode = 'k'
	KEY_L            KeyCode = 'l'
	KEY_M            KeyCode = 'm'
	KEY_N            KeyCode = 'n'
	KEY_O            KeyCode = 'o'
	KEY_P            KeyCode = 'p'
	KEY_Q            KeyCode = 'q'
	KEY_R            KeyCode = 'r'
	KEY_S            KeyCode = 's'
	KEY_T            KeyCode = 't'
	KEY_U            KeyCode = 'u'
	KEY_V            KeyCode = 'v'
	KEY_W            KeyCode = 'w'
	KEY_X            KeyCode = 'x'
	KEY_Y            KeyCode = 'y'
	KEY_Z            KeyCode = 'z'
	KEY_COMMA        KeyCode = ','
	KEY_PERIOD       KeyCode = '.'
	KEY_SLASH        KeyCode = '/'
	KEY_BACKTICK     KeyCode = '`'
	KEY_LEFTPAREN    KeyCode = '('
	KEY_RIGHTPAREN   KeyCode = ')'
	KEY_LEFTBRACE    KeyCode = '{'
	KEY_RIGHTBRACE   KeyCode = '}'
	KEY_LEFTBRACKET  KeyCode = '['
	KEY_RIGHTBRACKET KeyCode = ']'
	KEY_BACKSLASH    KeyCode = '\\'
	KEY_MINUS        KeyCode = '-'
	KEY_PLUS         KeyCode = '+'
	KEY_UNDERSCORE   KeyCode = '_'
	KEY_EQUALS       KeyCode = '='
	KEY_QUESTION     KeyCode = '?'
	KEY_TILDE        KeyCode = '~'
	KEY_DIGIT0       KeyCode = '0'
	KEY_DIGIT1       KeyCode = '1'
	KEY_DIGIT2       KeyCode = '2'
	KEY_DIGIT3       KeyCode = '3'
	KEY_DIGIT4       KeyCode = '4'
	KEY_DIGIT5       KeyCode = '5'
	KEY_DIGIT6       KeyCode = '6'
	KEY_DIGIT7       KeyCode = '7'
	KEY_DIGIT8       KeyCode = '8'
	KEY_DIGIT9       KeyCode = '9'
)

const (
	KEY_LEFT KeyCode = 0x100 + iota
	KEY_RIGHT
	KEY_UP
	KEY_DOWN
	KEY_ENTER
	KEY_CTRL
	KEY_SHIFT
	KEY_ALT
	KEY_COMMAND
	KEY_TAB
	KEY_INSERT
	KEY_DELETE
	KEY_BACKSPACE
	KEY_HOME
	KEY_END
	KEY_PAGEUP
	KEY_PAGEDOWN
	KEY_ESCAPE
	KEY_F1
	KEY_F2
	KEY_F3
	KEY_F4
	KEY_F5
	KEY_F6
	KEY_F7
	KEY_F8
	KEY_F9
	KEY_F10
	KEY_F11
	KEY_F12
	KEY_NUMPAD0
	KEY_NUMPAD1
	KEY_NUMPAD2
	KEY_NUMPAD3
	KEY_NUMPAD4
	KEY_NUMPAD5
	KEY_NUMPAD6
	KEY_NUMPAD7
	KEY_NUMPAD8
	KEY_NUMPAD9
	KEY_NUMPAD_DIV
	KEY_NUMPAD_MUL
	KEY_NUMPAD_SUB
	KEY_NUMPAD_ADD
	KEY_NUMPAD_ENTER
	KEY_NUMPAD_PERIOD
	// Size of the key state table. Not a key.
	KEYS_MAX_KEYS KeyCode = 0x200
)

var extendedKeyNames = [...]string{
	"left", "right", "up", "down", "enter", "ctrl", "shift", "alt", "command", "tab",
	"insert", "delete", "backspace", "home", "end", "pageup", "pagedown", "escape",
	"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12",
	"numpad0", "numpad1", "numpad2", "numpad3", "numpad4", "numpad5", "numpad6",
	"numpad7", "numpad8", "numpad9", "numpad_div", "numpad_mul", "numpad_sub",
	"numpad_add", "numpad_enter", "numpad_period",
}

var asciiKeyNames = map[KeyCode]string{
	KEY_NONE:         "none",
	KEY_SPACE:        "space",
	KEY_COMMA:        "comma",
	KEY_PERIOD:       "period",
	KEY_SLASH:        "slash",
	KEY_BACKTICK:     "backtick",
	KEY_LEFTPAREN:    "left_paren",
	KEY_RIGHTPAREN:   "right_paren",
	KEY_LEFTBRACE:    "left_brace",
	KEY_RIGHTBRACE:   "right_brace",
	KEY_LEFTBRACKET:  "left_bracket",
	KEY_RIGHTBRACKET: "right_bracket",
	KEY_BACKSLASH:    "backslash",
	KEY_MINUS:        "minus",
	KEY_PLUS:         "plus",
	KEY_UNDERSCORE:   "underscore",
	KEY_EQUALS:       "equals",
	KEY_QUESTION:     "question",
	KEY_TILDE:        "tilde",
}

// IsValid reports whether k is one of the defined key codes.
func (k KeyCode) IsValid() bool {
	switch {
	case k >= KEY_A && k <= KEY_Z, k >= KEY_DIGIT0 && k <= KEY_DIGIT9:
		return true
	case k >= KEY_LEFT && k <= KEY_NUMPAD_PERIOD:
		return true
	}
	_, ok := asciiKeyNames[k]
	return ok
}

func (k KeyCode) String() string {
	switch {
	case k >= KEY_A && k <= KEY_Z:
		return string(rune(k))
	case k >= KEY_DIGIT0 && k <= KEY_DIGIT9:
		return "digit" + string(rune(k))
	case k >= KEY_LEFT && k <= KEY_NUMPAD_PERIOD:
		return extendedKeyNames[k-KEY_LEFT]
	}
	if name, ok := asciiKeyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KeyCode(%#x)", uint16(k))
}

// AllKeys lists every defined key code in ascending order.
func AllKeys() []KeyCode {
	keys := make([]KeyCode, 0, 128)
	for k := KeyCode(0); k < KEYS_MAX_KEYS; k++ {
		if k.IsValid() {
			keys = append(keys, k)
		}
	}
	return keys
}

type MouseButton uint8

const (
	BUTTON_LEFT MouseButton = iota
	BUTTON_MIDDLE
	BUTTON_RIGHT
	BUTTON_MAX_BUTTONS
)

func (b MouseButton) String() string {
	switch b {
	case BUTTON_LEFT:
		return "left"
	case BUTTON_MIDDLE:
		return "middle"
	case BUTTON_RIGHT:
		return "right"
	}
	return fmt.Sprintf("MouseButton(%d)", uint8(b))
}
