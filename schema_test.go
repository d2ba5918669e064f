package config

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Record types for the type guard tests. Each carries exactly one
// offending field.

type anyFieldRec struct {
	Value any `toml:"value"`
}

type ifaceFieldRec struct {
	Source io.Reader `toml:"source"`
}

type arrayFieldRec struct {
	Pair [2]int `toml:"pair"`
}

type nestedSeqRec struct {
	Grid [][]int `toml:"grid"`
}

type seqOfMapsRec struct {
	Rows []map[string]string `toml:"rows"`
}

type intKeyMapRec struct {
	ByID map[int]string `toml:"by_id"`
}

type chanFieldRec struct {
	Events chan string `toml:"events"`
}

type funcFieldRec struct {
	Filter func(string) bool `toml:"filter"`
}

type setOfStructsRec struct {
	Members map[point]struct{} `toml:"members"`
}

type point struct {
	X int `toml:"x"`
	Y int `toml:"y"`
}

type doublePtrRec struct {
	Level **int `toml:"level"`
}

type ptrSliceRec struct {
	Names *[]string `toml:"names"`
}

type ptrMapRec struct {
	Labels *map[string]string `toml:"labels"`
}

type mapOfSeqOfMapsRec struct {
	Routes map[string][]map[string]string `toml:"routes"`
}

func TestDefineDisallowedTypes(t *testing.T) {
	tests := []struct {
		name      string
		prototype any
		detail    string
	}{
		{"any field", &anyFieldRec{}, "union"},
		{"interface field", &ifaceFieldRec{}, "union"},
		{"array field", &arrayFieldRec{}, "tuple"},
		{"nested sequence", &nestedSeqRec{}, "nested containers"},
		{"sequence of maps", &seqOfMapsRec{}, "nested containers"},
		{"non-text map key", &intKeyMapRec{}, "keys must be text"},
		{"channel field", &chanFieldRec{}, ""},
		{"func field", &funcFieldRec{}, ""},
		{"set of records", &setOfStructsRec{}, "scalar atoms"},
		{"double pointer", &doublePtrRec{}, ""},
		{"pointer to sequence", &ptrSliceRec{}, "already optional"},
		{"pointer to mapping", &ptrMapRec{}, "already optional"},
		{"mapping of sequences of maps", &mapOfSeqOfMapsRec{}, "scalar atoms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_, err := s.Define(tt.prototype)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDisallowedType)
			if tt.detail != "" {
				assert.Contains(t, err.Error(), tt.detail)
			}
		})
	}
}

type fullKindsRec struct {
	Name     string              `toml:"name,required" help:"display name"`
	Count    int64               `toml:"count"`
	Ratio    float64             `toml:"ratio"`
	Enabled  bool                `toml:"enabled"`
	Tags     []string            `toml:"tags"`
	Labels   map[string]string   `toml:"labels"`
	Exts     map[string][]string `toml:"exts"`
	Seen     map[string]struct{} `toml:"seen"`
	Inner    point               `toml:"inner"`
	MaxDepth *int                `toml:"max_depth"`
	Fallback *point              `toml:"fallback"`
	ignored  string
	Skipped  string `toml:"-"`
}

func TestDefineFullKinds(t *testing.T) {
	s := New()
	spec, err := s.Define(&fullKindsRec{Count: 7, Tags: []string{"a"}})
	require.NoError(t, err)
	require.NotNil(t, spec)

	// Unexported and "-" tagged fields never become part of the schema.
	assert.Len(t, spec.Fields, 11)
	_, ok := spec.Field("ignored")
	assert.False(t, ok)
	_, ok = spec.Field("Skipped")
	assert.False(t, ok)

	name, ok := spec.Field("name")
	require.True(t, ok)
	assert.Equal(t, KindText, name.Kind)
	assert.True(t, name.Required)
	assert.Equal(t, "display name", name.Doc)

	tags, ok := spec.Field("tags")
	require.True(t, ok)
	assert.Equal(t, KindSequence, tags.Kind)
	assert.Equal(t, KindText, tags.Elem)

	seen, ok := spec.Field("seen")
	require.True(t, ok)
	assert.Equal(t, KindSet, seen.Kind)

	inner, ok := spec.Field("inner")
	require.True(t, ok)
	assert.Equal(t, KindRecord, inner.Kind)
	require.NotNil(t, inner.Record)
	assert.Equal(t, "point", inner.Record.Name)

	maxDepth, ok := spec.Field("max_depth")
	require.True(t, ok)
	assert.True(t, maxDepth.Optional)
	assert.Equal(t, KindInteger, maxDepth.Kind)

	fallback, ok := spec.Field("fallback")
	require.True(t, ok)
	assert.True(t, fallback.Optional)
	assert.Equal(t, KindRecord, fallback.Kind)
}

type selfCycleRec struct {
	Name  string        `toml:"name"`
	Child *selfCycleRec `toml:"child"`
}

type cycleA struct {
	B cycleB `toml:"b"`
}

type cycleB struct {
	Items []cycleA `toml:"items"`
}

func TestDefineCyclicNesting(t *testing.T) {
	tests := []struct {
		name      string
		prototype any
	}{
		{"self reference through pointer", &selfCycleRec{}},
		{"mutual reference through sequence", &cycleA{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_, err := s.Define(tt.prototype)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCyclicNesting)
		})
	}
}

type extraMethodRec struct {
	Name string `toml:"name"`
}

func (r *extraMethodRec) DisplayName() string { return r.Name }

type badHookRec struct {
	Name string `toml:"name"`
}

func (r *badHookRec) PostLoad() {}

type badHookArgsRec struct {
	Name string `toml:"name"`
}

func (r *badHookArgsRec) PostLoad(strict bool) error { return nil }

type nestedBadMethodRec struct {
	Inner extraMethodRec `toml:"inner"`
}

func TestDefineDisallowedMethods(t *testing.T) {
	tests := []struct {
		name      string
		prototype any
		detail    string
	}{
		{"extra method", &extraMethodRec{}, "DisplayName"},
		{"hook without error return", &badHookRec{}, "func() error"},
		{"hook with arguments", &badHookArgsRec{}, "func() error"},
		{"extra method on nested record", &nestedBadMethodRec{}, "DisplayName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_, err := s.Define(tt.prototype)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDisallowedMethod)
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

type badKeyRec struct {
	Name string `toml:"bad key"`
}

func TestDefineRejectsInvalidKey(t *testing.T) {
	s := New()
	_, err := s.Define(&badKeyRec{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tree key")
}

type defaultedItem struct {
	Weight float64 `toml:"weight"`
}

type itemParent struct {
	Items []defaultedItem `toml:"items"`
}

func TestDefineFirstDefinitionWins(t *testing.T) {
	s := New()
	first, err := s.Define(&defaultedItem{Weight: 0.5})
	require.NoError(t, err)

	parent, err := s.Define(&itemParent{})
	require.NoError(t, err)

	items, ok := parent.Field("items")
	require.True(t, ok)
	// The parent's zero-valued reachability pass must not replace the
	// spec captured from the item's own prototype.
	assert.Same(t, first, items.Record)

	again, err := s.Define(&defaultedItem{Weight: 0.9})
	require.NoError(t, err)
	assert.Same(t, first, again)
}

func TestDefineRejectsNonStruct(t *testing.T) {
	s := New()

	_, err := s.Define(42)
	assert.Error(t, err)

	var nilRec *point
	_, err = s.Define(nilRec)
	assert.Error(t, err)
}
