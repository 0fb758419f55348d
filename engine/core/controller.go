package core

import (
	"fmt"
	"math/bits"
	"strings"
)

// Maximum number of simultaneously connected controllers.
const MaxControllerCount = 4

type ControllerProfile int32

const (
	CONTROLLER_PROFILE_GENERIC ControllerProfile = iota
	CONTROLLER_PROFILE_STANDARD
	CONTROLLER_PROFILE_EXTENDED
)

func (p ControllerProfile) String() string {
	switch p {
	case CONTROLLER_PROFILE_GENERIC:
		return "generic"
	case CONTROLLER_PROFILE_STANDARD:
		return "standard"
	case CONTROLLER_PROFILE_EXTENDED:
		return "extended"
	}
	return fmt.Sprintf("ControllerProfile(%d)", int32(p))
}

type ControllerProperty int32

const (
	CONTROLLER_PROPERTY_SUPPORTED_AXES_MASK ControllerProperty = iota
	CONTROLLER_PROPERTY_SUPPORTED_BUTTONS_MASK
	CONTROLLER_PROPERTY_VENDOR_ID
	CONTROLLER_PROPERTY_PRODUCT_ID
	CONTROLLER_PROPERTY_NAME
	CONTROLLER_PROPERTY_PROFILE
)

func (p ControllerProperty) String() string {
	switch p {
	case CONTROLLER_PROPERTY_SUPPORTED_AXES_MASK:
		return "supported_axes_mask"
	case CONTROLLER_PROPERTY_SUPPORTED_BUTTONS_MASK:
		return "supported_buttons_mask"
	case CONTROLLER_PROPERTY_VENDOR_ID:
		return "vendor_id"
	case CONTROLLER_PROPERTY_PRODUCT_ID:
		return "product_id"
	case CONTROLLER_PROPERTY_NAME:
		return "name"
	case CONTROLLER_PROPERTY_PROFILE:
		return "profile"
	}
	return fmt.Sprintf("ControllerProperty(%d)", int32(p))
}

// IsString reports whether the property is queried as a string.
func (p ControllerProperty) IsString() bool {
	return p == CONTROLLER_PROPERTY_NAME
}

// ControllerButtons is a bitmask of controller buttons (33 bits in use).
type ControllerButtons uint64

const (
	CONTROLLER_BUTTON_START ControllerButtons = 1 << iota
	CONTROLLER_BUTTON_BACK
	CONTROLLER_BUTTON_SELECT
	CONTROLLER_BUTTON_ACTION_UP
	CONTROLLER_BUTTON_ACTION_DOWN
	CONTROLLER_BUTTON_ACTION_LEFT
	CONTROLLER_BUTTON_ACTION_RIGHT
	CONTROLLER_BUTTON_DPAD_UP
	CONTROLLER_BUTTON_DPAD_DOWN
	CONTROLLER_BUTTON_DPAD_LEFT
	CONTROLLER_BUTTON_DPAD_RIGHT
	CONTROLLER_BUTTON_LEFT_SHOULDER
	CONTROLLER_BUTTON_RIGHT_SHOULDER
	CONTROLLER_BUTTON_LEFT_THUMB
	CONTROLLER_BUTTON_RIGHT_THUMB
	CONTROLLER_BUTTON_BUTTON1
)

// CONTROLLER_BUTTON_BUTTON1 through BUTTON18 are consecutive bits.
func ControllerButtonN(n int) ControllerButtons {
	if n < 1 || n > 18 {
		return 0
	}
	return CONTROLLER_BUTTON_BUTTON1 << (n - 1)
}

var controllerButtonNames = [...]string{
	"start", "back", "select", "action_up", "action_down", "action_left", "action_right",
	"dpad_up", "dpad_down", "dpad_left", "dpad_right", "left_shoulder", "right_shoulder",
	"left_thumb", "right_thumb",
}

func controllerButtonBitName(bit int) string {
	if bit < len(controllerButtonNames) {
		return controllerButtonNames[bit]
	}
	return fmt.Sprintf("button%d", bit-len(controllerButtonNames)+1)
}

func (b ControllerButtons) String() string {
	if b == 0 {
		return "0"
	}
	items := []string{}
	for v := uint64(b); v != 0; v &= v - 1 {
		items = append(items, controllerButtonBitName(bits.TrailingZeros64(v)))
	}
	return strings.Join(items, " | ")
}

// ControllerAxes is a bitmask of controller axes.
type ControllerAxes uint32

const (
	CONTROLLER_AXIS_LEFT_THUMB_X  ControllerAxes = 1 << 0
	CONTROLLER_AXIS_LEFT_THUMB_Y  ControllerAxes = 1 << 1
	CONTROLLER_AXIS_RIGHT_THUMB_X ControllerAxes = 1 << 2
	CONTROLLER_AXIS_RIGHT_THUMB_Y ControllerAxes = 1 << 3
	CONTROLLER_AXIS_LEFT_TRIGGER  ControllerAxes = 1 << 4
	CONTROLLER_AXIS_RIGHT_TRIGGER ControllerAxes = 1 << 5
	CONTROLLER_AXIS_AXIS1         ControllerAxes = 1 << 8
	CONTROLLER_AXIS_AXIS2         ControllerAxes = 1 << 9
	CONTROLLER_AXIS_AXIS3         ControllerAxes = 1 << 10
	CONTROLLER_AXIS_AXIS4         ControllerAxes = 1 << 11
	CONTROLLER_AXIS_AXIS5         ControllerAxes = 1 << 12
	CONTROLLER_AXIS_AXIS6         ControllerAxes = 1 << 13
	CONTROLLER_AXIS_AXIS7         ControllerAxes = 1 << 14
	CONTROLLER_AXIS_AXIS8         ControllerAxes = 1 << 15
)

var controllerAxisNames = map[int]string{
	0: "left_thumb_x", 1: "left_thumb_y", 2: "right_thumb_x", 3: "right_thumb_y",
	4: "left_trigger", 5: "right_trigger",
	8: "axis1", 9: "axis2", 10: "axis3", 11: "axis4", 12: "axis5", 13: "axis6", 14: "axis7", 15: "axis8",
}

func (a ControllerAxes) String() string {
	if a == 0 {
		return "0"
	}
	items := []string{}
	for v := uint32(a); v != 0; v &= v - 1 {
		bit := bits.TrailingZeros32(v)
		name, ok := controllerAxisNames[bit]
		if !ok {
			name = fmt.Sprintf("bit%d", bit)
		}
		items = append(items, name)
	}
	return strings.Join(items, " | ")
}

// Index returns the bit position of a single-axis value, or -1.
func (a ControllerAxes) Index() int {
	if a == 0 || a&(a-1) != 0 {
		return -1
	}
	return bits.TrailingZeros32(uint32(a))
}

// ControllerInfo holds the read-only properties of a connected device.
type ControllerInfo struct {
	Name                 string
	VendorID             int32
	ProductID            int32
	Profile              ControllerProfile
	SupportedAxesMask    ControllerAxes
	SupportedButtonsMask ControllerButtons
}
