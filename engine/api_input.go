package engine

import (
	"fmt"

	"github.com/spaghettifunk/bacon/engine/core"
)

type WindowResizeEventHandler func(width, height int)
type KeyEventHandler func(key core.KeyCode, pressed bool)
type MouseButtonEventHandler func(button core.MouseButton, pressed bool)
type MouseScrollEventHandler func(dx, dy float32)
type ControllerConnectedEventHandler func(controller int, connected bool)
type ControllerButtonEventHandler func(controller int, button core.ControllerButtons, pressed bool)
type ControllerAxisEventHandler func(controller int, axis core.ControllerAxes, value float32)

// Handlers run on the logic thread during event dispatch, after the polled
// state has been updated. A nil handler discards the events.

func (e *Engine) SetKeyEventHandler(fn KeyEventHandler) {
	e.onKey = fn
}

func (e *Engine) SetMouseButtonEventHandler(fn MouseButtonEventHandler) {
	e.onMouseButton = fn
}

func (e *Engine) SetMouseScrollEventHandler(fn MouseScrollEventHandler) {
	e.onMouseScroll = fn
}

func (e *Engine) SetControllerConnectedEventHandler(fn ControllerConnectedEventHandler) {
	e.onControllerConnected = fn
}

func (e *Engine) SetControllerButtonEventHandler(fn ControllerButtonEventHandler) {
	e.onControllerButton = fn
}

func (e *Engine) SetControllerAxisEventHandler(fn ControllerAxisEventHandler) {
	e.onControllerAxis = fn
}

// GetKeyState reports whether key is held down.
func (e *Engine) GetKeyState(key core.KeyCode) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	if key >= core.KEYS_MAX_KEYS {
		return false, fmt.Errorf("key code %#x: %w", uint16(key), core.ErrInvalidArgument)
	}
	return e.input.InputIsKeyDown(key), nil
}

func (e *Engine) GetMousePosition() (float32, float32) {
	if e.ready() != nil {
		return 0, 0
	}
	return e.input.InputGetMousePosition()
}

func (e *Engine) controller(index int) (*core.ControllerState, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	c, ok := e.input.InputGetController(index)
	if !ok {
		return nil, fmt.Errorf("controller %d: %w", index, core.ErrInvalidHandle)
	}
	return c, nil
}

// GetControllerPropertyInt queries a numeric controller property.
func (e *Engine) GetControllerPropertyInt(index int, property core.ControllerProperty) (int64, error) {
	c, err := e.controller(index)
	if err != nil {
		return 0, err
	}
	switch property {
	case core.CONTROLLER_PROPERTY_SUPPORTED_AXES_MASK:
		return int64(c.Info.SupportedAxesMask), nil
	case core.CONTROLLER_PROPERTY_SUPPORTED_BUTTONS_MASK:
		return int64(c.Info.SupportedButtonsMask), nil
	case core.CONTROLLER_PROPERTY_VENDOR_ID:
		return int64(c.Info.VendorID), nil
	case core.CONTROLLER_PROPERTY_PRODUCT_ID:
		return int64(c.Info.ProductID), nil
	case core.CONTROLLER_PROPERTY_PROFILE:
		return int64(c.Info.Profile), nil
	}
	return 0, fmt.Errorf("property %s is not an integer: %w", property, core.ErrInvalidArgument)
}

// GetControllerPropertyString queries a string controller property.
func (e *Engine) GetControllerPropertyString(index int, property core.ControllerProperty) (string, error) {
	c, err := e.controller(index)
	if err != nil {
		return "", err
	}
	if !property.IsString() {
		return "", fmt.Errorf("property %s is not a string: %w", property, core.ErrInvalidArgument)
	}
	return c.Info.Name, nil
}

func (e *Engine) GetControllerButtonState(index int, button core.ControllerButtons) (bool, error) {
	if _, err := e.controller(index); err != nil {
		return false, err
	}
	return e.input.InputIsControllerButtonDown(index, button), nil
}

func (e *Engine) GetControllerAxisValue(index int, axis core.ControllerAxes) (float32, error) {
	if _, err := e.controller(index); err != nil {
		return 0, err
	}
	return e.input.InputGetControllerAxis(index, axis), nil
}

func (e *Engine) onKeyEvent(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok || e.onKey == nil {
		return false
	}
	e.onKey(ke.KeyCode, ke.Pressed)
	return true
}

func (e *Engine) onMouseButtonEvent(context core.EventContext) bool {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok || e.onMouseButton == nil {
		return false
	}
	e.onMouseButton(me.Button, me.Pressed)
	return true
}

func (e *Engine) onMouseScrollEvent(context core.EventContext) bool {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok || e.onMouseScroll == nil {
		return false
	}
	e.onMouseScroll(me.ScrollX, me.ScrollY)
	return true
}

func (e *Engine) onControllerConnectedEvent(context core.EventContext) bool {
	ce, ok := context.Data.(*core.ControllerEvent)
	if !ok || e.onControllerConnected == nil {
		return false
	}
	e.onControllerConnected(ce.Controller, ce.Connected)
	return true
}

func (e *Engine) onControllerButtonEvent(context core.EventContext) bool {
	ce, ok := context.Data.(*core.ControllerEvent)
	if !ok || e.onControllerButton == nil {
		return false
	}
	e.onControllerButton(ce.Controller, ce.Button, ce.Pressed)
	return true
}

func (e *Engine) onControllerAxisEvent(context core.EventContext) bool {
	ce, ok := context.Data.(*core.ControllerEvent)
	if !ok || e.onControllerAxis == nil {
		return false
	}
	e.onControllerAxis(ce.Controller, ce.Axis, ce.Value)
	return true
}
