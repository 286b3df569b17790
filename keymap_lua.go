// keymap_lua.go - User keymaps written as Lua tables
//
// A script returns a table (or assigns the global "keymap") whose keys are
// key names ("Q", "Key1", "MouseLeft") or scan codes and whose values are
// MIDI note numbers. Optional globals:
//
//	layout = "piano"   -- start from a built-in keymap
//	base = "index"     -- values are note indices instead of MIDI numbers
//	extra = 57         -- note for both mouse buttons
//
// A value of false removes a key inherited from the layout.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

func LoadKeymapScript(path string) (*Keymap, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keymap script: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseKeymapScript(name, string(src))
}

func ParseKeymapScript(name, src string) (*Keymap, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("keymap %s: %w", name, err)
	}

	var ret lua.LValue = lua.LNil
	if L.GetTop() > 0 {
		ret = L.Get(-1)
	}
	if ret == lua.LNil {
		ret = L.GetGlobal("keymap")
	}
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("keymap %s: script must return a table, got %s", name, ret.Type())
	}

	km := NewKeymap(name)
	if layout, ok := L.GetGlobal("layout").(lua.LString); ok {
		builtin, err := BuiltinKeymap(string(layout))
		if err != nil {
			return nil, fmt.Errorf("keymap %s: %w", name, err)
		}
		builtin.Name = name
		km = builtin
	}

	offset := MIDI_BASE_NOTE
	switch base := L.GetGlobal("base").(type) {
	case *lua.LNilType:
	case lua.LString:
		switch string(base) {
		case "midi":
		case "index":
			offset = 0
		default:
			return nil, fmt.Errorf("keymap %s: base must be \"midi\" or \"index\", got %q", name, string(base))
		}
	default:
		return nil, fmt.Errorf("keymap %s: base must be a string", name)
	}

	var errs []error
	tbl.ForEach(func(k, v lua.LValue) {
		code, err := scriptKeyCode(k)
		if err != nil {
			errs = append(errs, err)
			return
		}
		switch val := v.(type) {
		case lua.LBool:
			if !bool(val) {
				km.Unset(code)
				return
			}
			errs = append(errs, fmt.Errorf("key %s: true is not a note", KeyName(code)))
		case lua.LNumber:
			if err := km.Set(code, int(val)-offset); err != nil {
				errs = append(errs, err)
			}
		default:
			errs = append(errs, fmt.Errorf("key %s: note must be a number, got %s", KeyName(code), v.Type()))
		}
	})

	switch extra := L.GetGlobal("extra").(type) {
	case *lua.LNilType:
		if _, ok := km.Note(CODE_MOUSE_LEFT); !ok {
			errs = append(errs, km.SetExtra(DEFAULT_EXTRA_MIDI-MIDI_BASE_NOTE))
		}
	case lua.LNumber:
		errs = append(errs, km.SetExtra(int(extra)-offset))
	default:
		errs = append(errs, fmt.Errorf("extra must be a number, got %s", extra.Type()))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("keymap %s: %w", name, err)
	}
	if km.Mapped() == 0 {
		return nil, fmt.Errorf("keymap %s: no keys mapped", name)
	}
	return km, nil
}

func scriptKeyCode(k lua.LValue) (KeyCode, error) {
	switch key := k.(type) {
	case lua.LString:
		code, ok := KeyCodeByName(string(key))
		if !ok {
			return 0, fmt.Errorf("unknown key name %q", string(key))
		}
		return code, nil
	case lua.LNumber:
		n := int(key)
		if float64(n) != float64(key) || n < 0 || n >= MAX_KEY_CODES {
			return 0, fmt.Errorf("scan code %v out of range", key)
		}
		return KeyCode(n), nil
	}
	return 0, fmt.Errorf("keymap key must be a name or scan code, got %s", k.Type())
}
