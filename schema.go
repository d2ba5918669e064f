package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// hookName is the single method a record type may declare.
const hookName = "PostLoad"

// PostLoader is the single permitted behavioral extension point on a
// configuration record. PostLoad is invoked exactly once per loaded
// instance, after every field (including nested records) has been
// populated and validated. It may normalize or fill derived fields on the
// receiver but must not re-trigger parsing.
type PostLoader interface {
	PostLoad() error
}

var (
	postLoaderType = reflect.TypeOf((*PostLoader)(nil)).Elem()
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
)

// FieldSpec describes one declared field of a record type. Specs are
// immutable once the record is defined.
type FieldSpec struct {
	Name     string       // Go field name
	Key      string       // tree key, from the toml tag or the field name
	Doc      string       // documentation string, from the help tag
	Kind     Kind         // declared kind (pointer stripped)
	Elem     Kind         // element kind for containers, KindInvalid otherwise
	Type     reflect.Type // declared Go type, including any pointer
	Optional bool         // pointer field: absent leaves it nil
	Required bool         // absent key fails the load
	Record   *RecordSpec  // spec of the nested record, if any

	index int
	def   reflect.Value // default, captured from the prototype
}

// RecordSpec is the schema of one record type: its name and ordered
// field specs.
type RecordSpec struct {
	Name   string
	Type   reflect.Type
	Fields []FieldSpec

	hasHook bool
}

// Field returns the spec of the field stored under the given tree key.
func (r *RecordSpec) Field(key string) (*FieldSpec, bool) {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			return &r.Fields[i], true
		}
	}
	return nil, false
}

// Schema is a registry of record specs. Definitions are checked and
// cached once; after that the schema is read-only and safe to share
// across concurrent loads.
type Schema struct {
	mu      sync.RWMutex
	records map[reflect.Type]*RecordSpec
}

// New creates an empty schema.
func New() *Schema {
	return &Schema{
		records: make(map[reflect.Type]*RecordSpec),
	}
}

// Define registers the record type of prototype, recursively defining
// every record type reachable from it. Field defaults are captured from
// the prototype's current values. Defining an already-defined type is a
// no-op returning the existing spec: the first definition wins, so item
// types can be defined with their own defaults before a parent reaches
// them with zero values.
//
// Define performs every schema-level check: the atomic type guard,
// cyclic-nesting detection, and the single-method rule. A rejected type
// is reported before any data is loaded.
func (s *Schema) Define(prototype any) (*RecordSpec, error) {
	v := reflect.ValueOf(prototype)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("Define requires a non-nil struct pointer or value, got %T", prototype)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("Define requires a struct or struct pointer, got %T", prototype)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.define(v.Type(), v, make(map[reflect.Type]bool))
}

// MustDefine is like Define but panics on error. Intended for package-level
// schema construction where a malformed record type is a programming error.
func (s *Schema) MustDefine(prototype any) *RecordSpec {
	spec, err := s.Define(prototype)
	if err != nil {
		panic(fmt.Sprintf("config: schema definition failed: %v", err))
	}
	return spec
}

// specFor returns the cached spec for a record type.
func (s *Schema) specFor(t reflect.Type) (*RecordSpec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spec, ok := s.records[t]
	return spec, ok
}

// define is the recursive worker behind Define. visiting tracks the
// definition stack for cycle detection; completed types land in s.records.
// Caller holds s.mu.
func (s *Schema) define(t reflect.Type, proto reflect.Value, visiting map[reflect.Type]bool) (*RecordSpec, error) {
	if spec, ok := s.records[t]; ok {
		return spec, nil
	}
	if visiting[t] {
		return nil, &SchemaError{Record: t.Name(), Err: ErrCyclicNesting}
	}
	visiting[t] = true
	defer delete(visiting, t)

	if !proto.IsValid() {
		proto = reflect.New(t).Elem()
	}

	if err := checkMethods(t); err != nil {
		return nil, err
	}

	spec := &RecordSpec{
		Name:    t.Name(),
		Type:    t,
		hasHook: reflect.PointerTo(t).Implements(postLoaderType),
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get("toml")
		if tag == "-" {
			continue
		}
		key := field.Name
		required := false
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				key = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "required" {
					required = true
				}
			}
		}
		if !isValidKeySegment(key) {
			return nil, fmt.Errorf("record %q field %q: invalid tree key %q", t.Name(), field.Name, key)
		}

		fs := FieldSpec{
			Name:     field.Name,
			Key:      key,
			Doc:      field.Tag.Get("help"),
			Type:     field.Type,
			Required: required,
			index:    i,
			def:      deepCopy(proto.Field(i)),
		}

		ft := field.Type
		if ft.Kind() == reflect.Pointer {
			fs.Optional = true
			ft = ft.Elem()
			switch kindOf(ft) {
			case KindSequence, KindMapping, KindSet:
				return nil, &SchemaError{Record: t.Name(), Field: field.Name, Err: ErrDisallowedType,
					Detail: "pointers to containers are not permitted; containers are already optional"}
			}
		}
		if reason := disallowedReason(ft); reason != "" {
			return nil, &SchemaError{Record: t.Name(), Field: field.Name, Err: ErrDisallowedType, Detail: reason}
		}
		fs.Kind = kindOf(ft)

		var err error
		switch fs.Kind {
		case KindRecord:
			sub := reflect.Value{}
			if !fs.Optional {
				sub = proto.Field(i)
			} else if !proto.Field(i).IsNil() {
				sub = proto.Field(i).Elem()
			}
			fs.Record, err = s.define(ft, sub, visiting)

		case KindSequence:
			fs.Elem, fs.Record, err = s.defineElem(t.Name(), field.Name, ft.Elem(), visiting)

		case KindSet:
			member := kindOf(ft.Key())
			if !isScalar(member) {
				err = &SchemaError{Record: t.Name(), Field: field.Name, Err: ErrDisallowedType,
					Detail: "set members must be scalar atoms"}
			}
			fs.Elem = member

		case KindMapping:
			if kindOf(ft.Key()) != KindText {
				err = &SchemaError{Record: t.Name(), Field: field.Name, Err: ErrDisallowedType,
					Detail: "mapping keys must be text"}
				break
			}
			fs.Elem, fs.Record, err = s.defineMapValue(t.Name(), field.Name, ft.Elem(), visiting)
		}
		if err != nil {
			if se, ok := err.(*SchemaError); ok && se.Field == "" && errors.Is(se.Err, ErrCyclicNesting) {
				// Cycle detected below this field: attribute it here.
				se.Field = field.Name
			}
			return nil, err
		}

		spec.Fields = append(spec.Fields, fs)
	}

	s.records[t] = spec
	return spec, nil
}

// defineElem checks a sequence element type: a scalar atom or a record,
// never another container.
func (s *Schema) defineElem(record, field string, et reflect.Type, visiting map[reflect.Type]bool) (Kind, *RecordSpec, error) {
	if reason := disallowedReason(et); reason != "" {
		return KindInvalid, nil, &SchemaError{Record: record, Field: field, Err: ErrDisallowedType, Detail: reason}
	}
	ek := kindOf(et)
	switch {
	case ek == KindRecord:
		sub, err := s.define(et, reflect.Value{}, visiting)
		return ek, sub, err
	case isScalar(ek):
		return ek, nil, nil
	default:
		return KindInvalid, nil, &SchemaError{Record: record, Field: field, Err: ErrDisallowedType,
			Detail: "nested containers are not permitted; use a named record"}
	}
}

// defineMapValue checks a mapping value type. Scalars and records are
// permitted, plus one carve-out: a sequence or set of scalars.
func (s *Schema) defineMapValue(record, field string, vt reflect.Type, visiting map[reflect.Type]bool) (Kind, *RecordSpec, error) {
	if reason := disallowedReason(vt); reason != "" {
		return KindInvalid, nil, &SchemaError{Record: record, Field: field, Err: ErrDisallowedType, Detail: reason}
	}
	vk := kindOf(vt)
	switch vk {
	case KindRecord:
		sub, err := s.define(vt, reflect.Value{}, visiting)
		return vk, sub, err
	case KindSequence:
		if !isScalar(kindOf(vt.Elem())) {
			return KindInvalid, nil, &SchemaError{Record: record, Field: field, Err: ErrDisallowedType,
				Detail: "mapping values may only nest sequences of scalar atoms"}
		}
		return vk, nil, nil
	case KindSet:
		if !isScalar(kindOf(vt.Key())) {
			return KindInvalid, nil, &SchemaError{Record: record, Field: field, Err: ErrDisallowedType,
				Detail: "mapping values may only nest sets of scalar atoms"}
		}
		return vk, nil, nil
	default:
		if isScalar(vk) {
			return vk, nil, nil
		}
		return KindInvalid, nil, &SchemaError{Record: record, Field: field, Err: ErrDisallowedType,
			Detail: "mapping values must be scalar atoms, records, or sequences/sets of scalar atoms"}
	}
}

// checkMethods enforces the single-method rule: a record type declares no
// methods beyond the PostLoad hook, and the hook has the right shape.
func checkMethods(t reflect.Type) error {
	pt := reflect.PointerTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if m.Name != hookName {
			return &SchemaError{Record: t.Name(), Err: ErrDisallowedMethod,
				Detail: fmt.Sprintf("method %s; records carry data plus at most a %s hook", m.Name, hookName)}
		}
		// NumIn counts the receiver.
		if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 || m.Type.Out(0) != errorType {
			return &SchemaError{Record: t.Name(), Err: ErrDisallowedMethod,
				Detail: hookName + " must have signature func() error"}
		}
	}
	return nil
}
