package interceptor

import "fmt"

// Windows virtual-key codes for the names keyhook knows. Kept free of build
// tags so the table is checked on every platform.
const (
	vkReturn      = 0x0D
	llkhfExtended = 0x01
)

var vkNames = buildVKNames()

func buildVKNames() map[uint32]string {
	m := map[uint32]string{
		0x10: "shift", 0xA0: "shift", 0xA1: "shift",
		0x11: "ctrl", 0xA2: "ctrl", 0xA3: "ctrl",
		0x12: "alt", 0xA4: "alt", 0xA5: "alt",
		0x5B: "cmd", 0x5C: "cmd",

		0x20: "space",
		0x1B: "esc",
		0x09: "tab",
		0x08: "backspace",
		0x2E: "delete",
		0x2D: "insert",
		0x24: "home",
		0x23: "end",
		0x21: "pageup",
		0x22: "pagedown",
		0x25: "left",
		0x26: "up",
		0x27: "right",
		0x28: "down",
	}
	for c := 'a'; c <= 'z'; c++ {
		m[uint32('A'+(c-'a'))] = string(c)
	}
	for d := '0'; d <= '9'; d++ {
		m[uint32(d)] = string(d)
	}
	for n := 1; n <= 24; n++ {
		m[uint32(0x70+n-1)] = fmt.Sprintf("f%d", n)
	}
	return m
}

// vkName maps a low-level hook event to a keyhook key name. Enter on the
// numeric keypad arrives as VK_RETURN with the extended flag.
func vkName(vk, flags uint32) string {
	if vk == vkReturn {
		if flags&llkhfExtended != 0 {
			return "numpadenter"
		}
		return "enter"
	}
	if name, ok := vkNames[vk]; ok {
		return name
	}
	return fmt.Sprintf("vk:%d", vk)
}
