// Package config holds process-wide ambient constants and the
// bitsysim.yaml project configuration format, mirroring the shape of
// funxy's internal/config package (built-in name tables, guard constants).
package config

// BuiltinCallNames are the call targets the resolver treats as built-in
// rather than looking up in fn_ctx (spec.md §4.3 step 1).
var BuiltinCallNames = map[string]bool{
	"cat":     true,
	"mux":     true,
	"sext":    true,
	"zext":    true,
	"trycast": true,
	"word":    true,
}

// IsBuiltinCallName reports whether name is a built-in call target: one of
// BuiltinCallNames, or any name starting with "@" (Valid/Invalid/Alt
// constructors).
func IsBuiltinCallName(name string) bool {
	if len(name) > 0 && name[0] == '@' {
		return true
	}
	return BuiltinCallNames[name]
}

// DefaultCombinationalLoopGuard bounds broadcast_update recursion depth
// before a CombinationalLoop error is reported (spec.md §4.8 "Termination").
const DefaultCombinationalLoopGuard = 10000
