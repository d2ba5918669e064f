package config

import "reflect"

// Kind classifies a field's declared type into the closed set of kinds a
// configuration record may use.
type Kind int

const (
	KindInvalid Kind = iota
	KindText
	KindInteger
	KindReal
	KindBool
	KindSequence
	KindMapping
	KindSet
	KindRecord
)

var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindText:     "text",
	KindInteger:  "integer",
	KindReal:     "real",
	KindBool:     "boolean",
	KindSequence: "sequence",
	KindMapping:  "mapping",
	KindSet:      "set",
	KindRecord:   "record",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

var emptyStructType = reflect.TypeOf(struct{}{})

// kindOf maps a Go type onto a schema kind. Types outside the closed set
// map to KindInvalid; the guard in schema.go turns that into
// ErrDisallowedType with a reason.
func kindOf(t reflect.Type) Kind {
	switch t.Kind() {
	case reflect.String:
		return KindText
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInteger
	case reflect.Float32, reflect.Float64:
		return KindReal
	case reflect.Bool:
		return KindBool
	case reflect.Slice:
		return KindSequence
	case reflect.Map:
		// A mapping to the empty struct carries no values: it is the
		// idiomatic Go set.
		if t.Elem() == emptyStructType {
			return KindSet
		}
		return KindMapping
	case reflect.Struct:
		return KindRecord
	default:
		return KindInvalid
	}
}

// isScalar reports whether k is one of the four leaf kinds permitted as
// container elements and set members.
func isScalar(k Kind) bool {
	switch k {
	case KindText, KindInteger, KindReal, KindBool:
		return true
	}
	return false
}

// disallowedReason names why a Go type falls outside the closed kind set.
// Returns "" for types that have a kind.
func disallowedReason(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Interface:
		return "interface types express a union of shapes; use a nested record with a discriminant field"
	case reflect.Array:
		return "fixed-arity arrays express tuples; use a nested record with named fields"
	case reflect.Pointer:
		return "double or non-record pointers are not permitted"
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return "type " + t.Kind().String() + " cannot be expressed in configuration"
	case reflect.Complex64, reflect.Complex128:
		return "complex numbers are not a permitted atomic kind"
	default:
		if kindOf(t) == KindInvalid {
			return "type " + t.String() + " is outside the permitted kind set"
		}
		return ""
	}
}
