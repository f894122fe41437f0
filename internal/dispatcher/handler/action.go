package handler

import "fmt"

// Action is a named command with arguments.
type Action struct {
	// Name is the full action name, e.g. "dokd.buildAll".
	Name string

	// Args are the action arguments.
	Args Args
}

// Args holds action arguments by name.
type Args map[string]any

// GetString returns a string argument, or "" if absent.
func (a Args) GetString(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

// GetBool returns a bool argument, or false if absent.
func (a Args) GetBool(key string) bool {
	v, _ := a[key].(bool)
	return v
}

// Has reports whether the argument is set.
func (a Args) Has(key string) bool {
	_, ok := a[key]
	return ok
}
