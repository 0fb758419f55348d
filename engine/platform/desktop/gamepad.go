package desktop

import (
	"encoding/hex"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/bacon/engine/core"
)

var gamepadButtons = [...]core.ControllerButtons{
	glfw.ButtonA:           core.CONTROLLER_BUTTON_ACTION_DOWN,
	glfw.ButtonB:           core.CONTROLLER_BUTTON_ACTION_RIGHT,
	glfw.ButtonX:           core.CONTROLLER_BUTTON_ACTION_LEFT,
	glfw.ButtonY:           core.CONTROLLER_BUTTON_ACTION_UP,
	glfw.ButtonLeftBumper:  core.CONTROLLER_BUTTON_LEFT_SHOULDER,
	glfw.ButtonRightBumper: core.CONTROLLER_BUTTON_RIGHT_SHOULDER,
	glfw.ButtonBack:        core.CONTROLLER_BUTTON_BACK,
	glfw.ButtonStart:       core.CONTROLLER_BUTTON_START,
	glfw.ButtonGuide:       core.CONTROLLER_BUTTON_SELECT,
	glfw.ButtonLeftThumb:   core.CONTROLLER_BUTTON_LEFT_THUMB,
	glfw.ButtonRightThumb:  core.CONTROLLER_BUTTON_RIGHT_THUMB,
	glfw.ButtonDpadUp:      core.CONTROLLER_BUTTON_DPAD_UP,
	glfw.ButtonDpadRight:   core.CONTROLLER_BUTTON_DPAD_RIGHT,
	glfw.ButtonDpadDown:    core.CONTROLLER_BUTTON_DPAD_DOWN,
	glfw.ButtonDpadLeft:    core.CONTROLLER_BUTTON_DPAD_LEFT,
}

var gamepadAxes = [...]core.ControllerAxes{
	glfw.AxisLeftX:        core.CONTROLLER_AXIS_LEFT_THUMB_X,
	glfw.AxisLeftY:        core.CONTROLLER_AXIS_LEFT_THUMB_Y,
	glfw.AxisRightX:       core.CONTROLLER_AXIS_RIGHT_THUMB_X,
	glfw.AxisRightY:       core.CONTROLLER_AXIS_RIGHT_THUMB_Y,
	glfw.AxisLeftTrigger:  core.CONTROLLER_AXIS_LEFT_TRIGGER,
	glfw.AxisRightTrigger: core.CONTROLLER_AXIS_RIGHT_TRIGGER,
}

type gamepad struct {
	connected bool
	buttons   core.ControllerButtons
	axes      [len(gamepadAxes)]float32
}

// controllerInfo reads the identity of a joystick. Vendor and product ids
// come from the SDL GUID.
func controllerInfo(joy glfw.Joystick) core.ControllerInfo {
	info := core.ControllerInfo{
		Name:    joy.GetName(),
		Profile: core.CONTROLLER_PROFILE_GENERIC,
	}
	if joy.IsGamepad() {
		info.Name = joy.GetGamepadName()
		info.Profile = core.CONTROLLER_PROFILE_STANDARD
		for _, b := range gamepadButtons {
			info.SupportedButtonsMask |= b
		}
		for _, a := range gamepadAxes {
			info.SupportedAxesMask |= a
		}
	}
	if guid, err := hex.DecodeString(joy.GetGUID()); err == nil && len(guid) >= 10 {
		info.VendorID = int32(guid[4]) | int32(guid[5])<<8
		info.ProductID = int32(guid[8]) | int32(guid[9])<<8
	}
	return info
}

// pollGamepads compares every joystick slot with the last poll and fires
// the differences.
func (d *Desktop) pollGamepads() {
	for i := range d.gamepads {
		joy := glfw.Joystick1 + glfw.Joystick(i)
		pad := &d.gamepads[i]

		present := joy.Present()
		if present != pad.connected {
			*pad = gamepad{connected: present}
			ev := &core.ControllerEvent{Controller: i, Connected: present}
			if present {
				ev.Info = controllerInfo(joy)
				core.LogInfo("Controller %d connected: %s", i, ev.Info.Name)
			} else {
				core.LogInfo("Controller %d disconnected", i)
			}
			d.fire(core.EventContext{Type: core.EVENT_CODE_CONTROLLER_CONNECTED, Data: ev})
		}
		if !present || !joy.IsGamepad() {
			continue
		}

		state := joy.GetGamepadState()
		if state == nil {
			continue
		}
		for b, mask := range gamepadButtons {
			pressed := state.Buttons[b] == glfw.Press
			if pressed == (pad.buttons&mask != 0) {
				continue
			}
			if pressed {
				pad.buttons |= mask
			} else {
				pad.buttons &^= mask
			}
			d.fire(core.EventContext{
				Type: core.EVENT_CODE_CONTROLLER_BUTTON,
				Data: &core.ControllerEvent{Controller: i, Button: mask, Pressed: pressed},
			})
		}
		for a, axis := range gamepadAxes {
			value := state.Axes[a]
			if value == pad.axes[a] {
				continue
			}
			pad.axes[a] = value
			d.fire(core.EventContext{
				Type: core.EVENT_CODE_CONTROLLER_AXIS,
				Data: &core.ControllerEvent{Controller: i, Axis: axis, Value: value},
			})
		}
	}
}
