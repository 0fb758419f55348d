package desktop

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/bacon/engine/core"
)

var keyMap = map[glfw.Key]core.KeyCode{
	glfw.KeySpace:        core.KEY_SPACE,
	glfw.KeyComma:        core.KEY_COMMA,
	glfw.KeyPeriod:       core.KEY_PERIOD,
	glfw.KeySlash:        core.KEY_SLASH,
	glfw.KeyGraveAccent:  core.KEY_BACKTICK,
	glfw.KeyLeftBracket:  core.KEY_LEFTBRACKET,
	glfw.KeyRightBracket: core.KEY_RIGHTBRACKET,
	glfw.KeyBackslash:    core.KEY_BACKSLASH,
	glfw.KeyMinus:        core.KEY_MINUS,
	glfw.KeyEqual:        core.KEY_EQUALS,

	glfw.KeyLeft:         core.KEY_LEFT,
	glfw.KeyRight:        core.KEY_RIGHT,
	glfw.KeyUp:           core.KEY_UP,
	glfw.KeyDown:         core.KEY_DOWN,
	glfw.KeyEnter:        core.KEY_ENTER,
	glfw.KeyLeftControl:  core.KEY_CTRL,
	glfw.KeyRightControl: core.KEY_CTRL,
	glfw.KeyLeftShift:    core.KEY_SHIFT,
	glfw.KeyRightShift:   core.KEY_SHIFT,
	glfw.KeyLeftAlt:      core.KEY_ALT,
	glfw.KeyRightAlt:     core.KEY_ALT,
	glfw.KeyLeftSuper:    core.KEY_COMMAND,
	glfw.KeyRightSuper:   core.KEY_COMMAND,
	glfw.KeyTab:          core.KEY_TAB,
	glfw.KeyInsert:       core.KEY_INSERT,
	glfw.KeyDelete:       core.KEY_DELETE,
	glfw.KeyBackspace:    core.KEY_BACKSPACE,
	glfw.KeyHome:         core.KEY_HOME,
	glfw.KeyEnd:          core.KEY_END,
	glfw.KeyPageUp:       core.KEY_PAGEUP,
	glfw.KeyPageDown:     core.KEY_PAGEDOWN,
	glfw.KeyEscape:       core.KEY_ESCAPE,

	glfw.KeyKPDivide:   core.KEY_NUMPAD_DIV,
	glfw.KeyKPMultiply: core.KEY_NUMPAD_MUL,
	glfw.KeyKPSubtract: core.KEY_NUMPAD_SUB,
	glfw.KeyKPAdd:      core.KEY_NUMPAD_ADD,
	glfw.KeyKPEnter:    core.KEY_NUMPAD_ENTER,
	glfw.KeyKPDecimal:  core.KEY_NUMPAD_PERIOD,
}

func translateKey(key glfw.Key) (core.KeyCode, bool) {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return core.KEY_A + core.KeyCode(key-glfw.KeyA), true
	case key >= glfw.Key0 && key <= glfw.Key9:
		return core.KEY_DIGIT0 + core.KeyCode(key-glfw.Key0), true
	case key >= glfw.KeyF1 && key <= glfw.KeyF12:
		return core.KEY_F1 + core.KeyCode(key-glfw.KeyF1), true
	case key >= glfw.KeyKP0 && key <= glfw.KeyKP9:
		return core.KEY_NUMPAD0 + core.KeyCode(key-glfw.KeyKP0), true
	}
	k, ok := keyMap[key]
	return k, ok
}

func translateMouseButton(button glfw.MouseButton) (core.MouseButton, bool) {
	switch button {
	case glfw.MouseButtonLeft:
		return core.BUTTON_LEFT, true
	case glfw.MouseButtonMiddle:
		return core.BUTTON_MIDDLE, true
	case glfw.MouseButtonRight:
		return core.BUTTON_RIGHT, true
	}
	return 0, false
}
