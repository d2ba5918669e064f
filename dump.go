package config

import (
	"fmt"
	"reflect"
	"sort"
)

// Dump re-serializes a record graph to a generic key-value tree, the
// inverse of Load. Sets come out as sorted sequences so the result is
// deterministic; nil optional fields are omitted. Dumping and reloading
// a record graph yields a field-wise equal graph.
func (s *Schema) Dump(source any) (map[string]any, error) {
	rv := reflect.ValueOf(source)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("dump source must be a non-nil record, got %T", source)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("dump source must be a record struct, got %T", source)
	}

	spec, ok := s.specFor(rv.Type())
	if !ok {
		var err error
		if spec, err = s.Define(source); err != nil {
			return nil, err
		}
	}
	return s.dumpRecord(spec, rv), nil
}

func (s *Schema) dumpRecord(spec *RecordSpec, v reflect.Value) map[string]any {
	tree := make(map[string]any, len(spec.Fields))
	for i := range spec.Fields {
		f := &spec.Fields[i]
		fv := v.Field(f.index)
		if f.Optional {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}

		switch {
		case f.Kind == KindRecord:
			tree[f.Key] = s.dumpRecord(f.Record, fv)

		case f.Kind == KindSequence && f.Record != nil:
			items := make([]any, fv.Len())
			for j := 0; j < fv.Len(); j++ {
				items[j] = s.dumpRecord(f.Record, fv.Index(j))
			}
			tree[f.Key] = items

		case f.Kind == KindMapping && f.Record != nil:
			m := make(map[string]any, fv.Len())
			iter := fv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = s.dumpRecord(f.Record, iter.Value())
			}
			tree[f.Key] = m

		case f.Kind == KindSet:
			members := make([]any, 0, fv.Len())
			iter := fv.MapRange()
			for iter.Next() {
				members = append(members, iter.Key().Interface())
			}
			sort.Slice(members, func(a, b int) bool {
				return fmt.Sprint(members[a]) < fmt.Sprint(members[b])
			})
			tree[f.Key] = members

		default:
			tree[f.Key] = fv.Interface()
		}
	}
	return tree
}
