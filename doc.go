// Package config implements the strict typed configuration schema used by
// MaiBot. Configuration records are plain Go structs whose field types are
// restricted to a closed set of kinds, carry at most one behavioral method
// (the PostLoad validation hook), and are populated from a generic
// key-value tree produced by parsing a TOML, JSON, or YAML document.
//
// Record fields may be:
//   - text (string), integer (any int/uint width, time.Duration),
//     real (float32/float64), boolean
//   - ordered sequences ([]T), mappings (map[string]V),
//     sets (map[K]struct{})
//   - other records (nested structs), directly, through containers,
//     or through a pointer (the optional form)
//
// Union-shaped fields, fixed-arity tuples (arrays), interface fields,
// and nested containers are rejected when the record type is defined,
// before any data is loaded.
//
// Quick Start:
//
//	type Range struct {
//	    Min int `toml:"min"`
//	    Max int `toml:"max"`
//	}
//
//	func (r *Range) PostLoad() error {
//	    if r.Min > r.Max {
//	        return &config.ValidationError{Field: "max", Reason: "min <= max violated"}
//	    }
//	    return nil
//	}
//
//	s := config.New()
//	if _, err := s.Define(&Range{Min: 0, Max: 100}); err != nil {
//	    log.Fatal(err)
//	}
//
//	tree, err := config.LoadFile("range.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var r Range
//	if err := s.Load(tree, &r); err != nil {
//	    log.Fatal(err) // missing field, type mismatch, or hook failure
//	}
//
// Loading is a one-shot, eager transformation: it either produces a fully
// populated, fully validated record graph or fails with a structured error
// naming the offending field path. Hooks run bottom-up, so a parent's
// PostLoad may rely on invariants its children already enforced. Schema
// definitions are read-only after definition and safe to share across
// concurrent loads.
package config
