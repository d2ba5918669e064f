package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Load populates target, a non-nil pointer to a record struct, from a
// generic key-value tree. The tree is never mutated. On any failure the
// whole load is aborted and target must be considered unusable: a
// partially populated record is never handed out as success.
//
// If target's type has not been defined yet, it is defined on the fly
// using target's current contents as the defaults.
func (s *Schema) Load(tree map[string]any, target any) error {
	dst, spec, err := s.loadTarget(target)
	if err != nil {
		return err
	}
	return s.loadRecord(spec, tree, dst, "")
}

// LoadSection is Load scoped to the table at a dotted path of the tree.
// An absent section loads pure defaults; a non-table node is an error.
func (s *Schema) LoadSection(tree map[string]any, basePath string, target any) error {
	dst, spec, err := s.loadTarget(target)
	if err != nil {
		return err
	}

	node := navigateToPath(tree, basePath)
	if node == nil {
		node = map[string]any{}
	}
	section, ok := asTable(node)
	if !ok {
		return fmt.Errorf("configuration path %q does not refer to a table, but to %T", basePath, node)
	}
	return s.loadRecord(spec, section, dst, basePath)
}

// loadTarget validates the target pointer and resolves (or lazily
// defines) its record spec.
func (s *Schema) loadTarget(target any) (reflect.Value, *RecordSpec, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, nil, fmt.Errorf("load target must be a non-nil record pointer, got %T", target)
	}
	dst := rv.Elem()
	if dst.Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("load target must point to a record struct, got %T", target)
	}

	spec, ok := s.specFor(dst.Type())
	if !ok {
		var err error
		if spec, err = s.Define(target); err != nil {
			return reflect.Value{}, nil, err
		}
	}
	return dst, spec, nil
}

// loadRecord populates one record from its table, then runs its hook.
// Nested records complete (fields plus hook) before the parent's hook
// runs, so parents may rely on child invariants.
func (s *Schema) loadRecord(spec *RecordSpec, tree map[string]any, dst reflect.Value, path string) error {
	for i := range spec.Fields {
		f := &spec.Fields[i]
		fpath := joinPath(path, f.Key)
		fv := dst.Field(f.index)

		raw, present := tree[f.Key]
		if !present {
			if f.Required {
				return &LoadError{Path: fpath, Err: ErrMissingField}
			}
			if err := s.applyDefault(f, fv, fpath); err != nil {
				return err
			}
			continue
		}

		if err := s.loadField(f, raw, fv, fpath); err != nil {
			return err
		}
	}

	// Keys with no matching field are warned about, never fatal.
	for key := range tree {
		if _, known := spec.Field(key); !known {
			logger.Warn("unknown configuration key", "path", joinPath(path, key))
		}
	}

	return s.runHook(spec, dst, path)
}

// loadField populates a single field from its raw tree value.
func (s *Schema) loadField(f *FieldSpec, raw any, fv reflect.Value, fpath string) error {
	if f.Optional {
		p := reflect.New(f.Type.Elem())
		if err := s.loadValue(f, raw, p.Elem(), fpath); err != nil {
			return err
		}
		fv.Set(p)
		return nil
	}
	return s.loadValue(f, raw, fv, fpath)
}

// loadValue dispatches on the field's kind. fv is always addressable.
func (s *Schema) loadValue(f *FieldSpec, raw any, fv reflect.Value, fpath string) error {
	switch {
	case f.Kind == KindRecord:
		table, ok := asTable(raw)
		if !ok {
			return s.mismatch(f, raw, fpath)
		}
		return s.loadRecord(f.Record, table, fv, fpath)

	case f.Kind == KindSequence && f.Record != nil:
		items, ok := asList(raw)
		if !ok {
			return s.mismatch(f, raw, fpath)
		}
		et := fv.Type().Elem()
		out := reflect.MakeSlice(fv.Type(), 0, len(items))
		for i, item := range items {
			table, ok := asTable(item)
			if !ok {
				return s.mismatch(f, item, fmt.Sprintf("%s[%d]", fpath, i))
			}
			ev := reflect.New(et)
			if err := s.loadRecord(f.Record, table, ev.Elem(), fmt.Sprintf("%s[%d]", fpath, i)); err != nil {
				return err
			}
			out = reflect.Append(out, ev.Elem())
		}
		fv.Set(out)
		return nil

	case f.Kind == KindMapping && f.Record != nil:
		table, ok := asTable(raw)
		if !ok {
			return s.mismatch(f, raw, fpath)
		}
		vt := fv.Type().Elem()
		out := reflect.MakeMapWithSize(fv.Type(), len(table))
		for key, item := range table {
			sub, ok := asTable(item)
			if !ok {
				return s.mismatch(f, item, joinPath(fpath, key))
			}
			ev := reflect.New(vt)
			if err := s.loadRecord(f.Record, sub, ev.Elem(), joinPath(fpath, key)); err != nil {
				return err
			}
			out.SetMapIndex(reflect.ValueOf(key), ev.Elem())
		}
		fv.Set(out)
		return nil

	case f.Kind == KindSet:
		items, ok := asList(raw)
		if !ok {
			return s.mismatch(f, raw, fpath)
		}
		kt := fv.Type().Key()
		out := reflect.MakeMapWithSize(fv.Type(), len(items))
		for _, item := range items {
			mv := reflect.New(kt)
			if err := coerce(item, mv.Elem()); err != nil {
				return s.mismatch(f, item, fpath)
			}
			out.SetMapIndex(mv.Elem(), reflect.Zero(emptyStructType))
		}
		fv.Set(out)
		return nil

	default:
		// Scalars, scalar sequences, and mappings of scalars coerce in
		// one shot, the same way the merged tree is decoded elsewhere.
		if err := coerce(raw, fv); err != nil {
			return s.mismatch(f, raw, fpath)
		}
		return nil
	}
}

// mismatch builds the TypeMismatch load error for a field.
func (s *Schema) mismatch(f *FieldSpec, raw any, fpath string) error {
	return &LoadError{
		Path:     fpath,
		Err:      ErrTypeMismatch,
		Expected: f.kindLabel(),
		Actual:   fmt.Sprintf("%T", raw),
	}
}

// kindLabel renders the declared kind for error messages.
func (f *FieldSpec) kindLabel() string {
	switch f.Kind {
	case KindRecord:
		return "table (" + f.Record.Name + ")"
	case KindSequence:
		if f.Record != nil {
			return "sequence of " + f.Record.Name + " tables"
		}
		return "sequence of " + f.Elem.String()
	case KindMapping:
		if f.Record != nil {
			return "mapping of " + f.Record.Name + " tables"
		}
		return "mapping of " + f.Elem.String()
	case KindSet:
		return "set of " + f.Elem.String()
	default:
		return f.Kind.String()
	}
}

// coerce decodes a raw tree value into dst using weakly typed
// mapstructure conversion plus the string-to-duration hook.
func coerce(raw any, dst reflect.Value) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst.Addr().Interface(),
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	return decoder.Decode(raw)
}

// applyDefault fills an absent field. An absent record table behaves as
// an empty one: the record's own defaults apply, its required fields are
// still enforced, and its hook still runs. Every other kind gets a deep
// copy of the prototype default, so loads never share state; container
// defaults holding records run their hooks bottom-up, keeping the
// constructed-and-validated-once rule.
func (s *Schema) applyDefault(f *FieldSpec, fv reflect.Value, fpath string) error {
	if f.Kind == KindRecord && !f.Optional {
		return s.loadRecord(f.Record, map[string]any{}, fv, fpath)
	}
	if !f.def.IsValid() {
		return nil
	}
	fv.Set(deepCopy(f.def))
	if f.Record != nil {
		return s.runHooksDeep(fv, fpath)
	}
	return nil
}

// runHooksDeep walks a defaulted value bottom-up invoking PostLoad on
// every record it contains.
func (s *Schema) runHooksDeep(v reflect.Value, path string) error {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return s.runHooksDeep(v.Elem(), path)

	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if err := s.runHooksDeep(v.Index(i), fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if kindOf(v.Type()) == KindSet {
			return nil
		}
		iter := v.MapRange()
		for iter.Next() {
			// Map values are not addressable: copy out, validate, store back.
			ev := reflect.New(v.Type().Elem())
			ev.Elem().Set(iter.Value())
			key := fmt.Sprintf("%v", iter.Key().Interface())
			if err := s.runHooksDeep(ev.Elem(), joinPath(path, key)); err != nil {
				return err
			}
			v.SetMapIndex(iter.Key(), ev.Elem())
		}
		return nil

	case reflect.Struct:
		spec, ok := s.specFor(v.Type())
		if !ok {
			return nil
		}
		for i := range spec.Fields {
			f := &spec.Fields[i]
			if f.Record == nil {
				continue
			}
			if err := s.runHooksDeep(v.Field(f.index), joinPath(path, f.Key)); err != nil {
				return err
			}
		}
		return s.runHook(spec, v, path)

	default:
		return nil
	}
}

// runHook invokes the record's PostLoad hook, translating failures into
// ErrValidationFailed with the record's field path.
func (s *Schema) runHook(spec *RecordSpec, dst reflect.Value, path string) error {
	if !spec.hasHook {
		return nil
	}
	if err := dst.Addr().Interface().(PostLoader).PostLoad(); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return &LoadError{Path: joinPath(path, ve.Field), Err: ErrValidationFailed, Reason: ve.Reason}
		}
		le := &LoadError{Path: path, Err: ErrValidationFailed, Reason: err.Error()}
		if path == "" {
			le.Path = spec.Name
		}
		return le
	}
	return nil
}

// asTable normalizes the map shapes the format parsers produce.
func asTable(raw any) (map[string]any, bool) {
	if m, ok := raw.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asList normalizes the slice shapes the format parsers produce. The TOML
// parser yields typed slices for arrays of tables; JSON and YAML yield
// []any.
func asList(raw any) ([]any, bool) {
	if l, ok := raw.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// deepCopy clones a default value so loaded records never alias the
// prototype's containers.
func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(deepCopy(v.Elem()))
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if out.Field(i).CanSet() {
				out.Field(i).Set(deepCopy(v.Field(i)))
			}
		}
		return out
	default:
		return v
	}
}
