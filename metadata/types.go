// Package metadata holds the catalogue of known ForgeScript functions,
// enumerations, and events, aggregated from registered sources. The
// catalogue is an explicit value passed into validation, not process
// state, so independent catalogues can coexist.
package metadata

// Function describes one callable function.
type Function struct {
	Name        string    `json:"name"`
	Aliases     []string  `json:"aliases,omitempty"`
	Args        []ArgSpec `json:"args,omitempty"`
	Description string    `json:"description,omitempty"`
	// Extension records which source contributed the definition.
	Extension string `json:"extension,omitempty"`
}

// ArgSpec describes one argument slot of a function.
type ArgSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
	Required bool   `json:"required,omitempty"`
	// Enum names the enumeration whose keys this slot accepts.
	Enum string `json:"enum,omitempty"`
	// Variadic is only legal on the last slot and accepts any count.
	Variadic bool `json:"rest,omitempty"`
}

// Arity returns the required argument count and the maximum count.
// Max is -1 when the trailing slot is variadic.
func (f *Function) Arity() (required, max int) {
	for _, a := range f.Args {
		if a.Required && !a.Variadic {
			required++
		}
	}
	max = len(f.Args)
	if n := len(f.Args); n > 0 && f.Args[n-1].Variadic {
		max = -1
	}
	return required, max
}

// EnumValue is one ordered key/display pair of an enumeration.
type EnumValue struct {
	Key     string `json:"key"`
	Display string `json:"display,omitempty"`
}

// Enum is a named enumeration with ordered, unique keys.
type Enum struct {
	Name   string      `json:"name"`
	Values []EnumValue `json:"values"`
}

// Has reports whether key is one of the enum's keys.
func (e *Enum) Has(key string) bool {
	for _, v := range e.Values {
		if v.Key == key {
			return true
		}
	}
	return false
}

// Keys returns the enum keys in declaration order.
func (e *Enum) Keys() []string {
	keys := make([]string, len(e.Values))
	for i, v := range e.Values {
		keys[i] = v.Key
	}
	return keys
}

// Event describes one event definition.
type Event struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
