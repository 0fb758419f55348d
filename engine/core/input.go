package core

// Mouse state structure
type MouseState struct {
	X       float32
	Y       float32
	Buttons [BUTTON_MAX_BUTTONS]bool // button states (pressed/released)
}

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// Live state of one controller slot.
type ControllerState struct {
	Connected bool
	Info      ControllerInfo
	Buttons   ControllerButtons
	Axes      [16]float32
}

// Input state structure that holds current and previous states for keyboard and mouse
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState
	Controllers      [MaxControllerCount]ControllerState
}

func NewInputState() *InputState {
	LogInfo("Input subsystem initialized.")
	return &InputState{}
}

// InputUpdate copies the current states to the previous states. Called once
// per tick before new events are processed.
func (is *InputState) InputUpdate() {
	is.KeyboardPrevious = is.KeyboardCurrent
	is.MousePrevious = is.MouseCurrent
}

// Process applies an event to the polled state.
func (is *InputState) Process(context EventContext) {
	switch data := context.Data.(type) {
	case *KeyEvent:
		is.InputProcessKey(data.KeyCode, data.Pressed)
	case *MouseEvent:
		switch context.Type {
		case EVENT_CODE_BUTTON:
			is.InputProcessButton(data.Button, data.Pressed)
		case EVENT_CODE_MOUSE_MOVED:
			is.InputProcessMouseMove(data.PosX, data.PosY)
		}
	case *ControllerEvent:
		is.InputProcessController(context.Type, data)
	}
}

// keyboard input
func (is *InputState) InputIsKeyDown(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	return is.KeyboardCurrent.Keys[key]
}

func (is *InputState) InputIsKeyUp(key KeyCode) bool {
	return !is.InputIsKeyDown(key)
}

func (is *InputState) InputWasKeyDown(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	return is.KeyboardPrevious.Keys[key]
}

func (is *InputState) InputProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	is.KeyboardCurrent.Keys[key] = pressed
}

// mouse input
func (is *InputState) InputIsButtonDown(button MouseButton) bool {
	if button >= BUTTON_MAX_BUTTONS {
		return false
	}
	return is.MouseCurrent.Buttons[button]
}

func (is *InputState) InputWasButtonDown(button MouseButton) bool {
	if button >= BUTTON_MAX_BUTTONS {
		return false
	}
	return is.MousePrevious.Buttons[button]
}

func (is *InputState) InputGetMousePosition() (float32, float32) {
	return is.MouseCurrent.X, is.MouseCurrent.Y
}

func (is *InputState) InputGetPreviousMousePosition() (float32, float32) {
	return is.MousePrevious.X, is.MousePrevious.Y
}

func (is *InputState) InputProcessButton(button MouseButton, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS {
		return
	}
	is.MouseCurrent.Buttons[button] = pressed
}

func (is *InputState) InputProcessMouseMove(x, y float32) {
	is.MouseCurrent.X = x
	is.MouseCurrent.Y = y
}

// controller input
func (is *InputState) InputProcessController(code EventCode, ev *ControllerEvent) {
	if ev.Controller < 0 || ev.Controller >= MaxControllerCount {
		return
	}
	c := &is.Controllers[ev.Controller]
	switch code {
	case EVENT_CODE_CONTROLLER_CONNECTED:
		if ev.Connected {
			*c = ControllerState{Connected: true, Info: ev.Info}
		} else {
			*c = ControllerState{}
		}
	case EVENT_CODE_CONTROLLER_BUTTON:
		if ev.Pressed {
			c.Buttons |= ev.Button
		} else {
			c.Buttons &^= ev.Button
		}
	case EVENT_CODE_CONTROLLER_AXIS:
		if i := ev.Axis.Index(); i >= 0 && i < len(c.Axes) {
			c.Axes[i] = ev.Value
		}
	}
}

func (is *InputState) InputGetController(index int) (*ControllerState, bool) {
	if index < 0 || index >= MaxControllerCount || !is.Controllers[index].Connected {
		return nil, false
	}
	return &is.Controllers[index], true
}

func (is *InputState) InputIsControllerButtonDown(index int, button ControllerButtons) bool {
	c, ok := is.InputGetController(index)
	return ok && c.Buttons&button == button
}

func (is *InputState) InputGetControllerAxis(index int, axis ControllerAxes) float32 {
	c, ok := is.InputGetController(index)
	if !ok {
		return 0
	}
	if i := axis.Index(); i >= 0 && i < len(c.Axes) {
		return c.Axes[i]
	}
	return 0
}
