package sqljson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbadmin/internal/errs"
)

func TestJSONScalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", "to_json('hello')"},
		{"string with quote", "it's", "to_json('it''s')"},
		{"int", 42, "to_json(42)"},
		{"negative int", -7, "to_json(-7)"},
		{"float", 1.5, "to_json(1.5)"},
		{"bool true", true, "to_json(true)"},
		{"bool false", false, "to_json(false)"},
		{"nil", nil, "NULL"},
		{"bytes", []byte("raw"), "to_json('raw')"},
		{"expression", Expr("now()"), "now()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONObjects(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"empty map", map[string]any{}, "json_build_object()"},
		{"single pair", map[string]any{"a": 1}, "json_build_object('a', 1)"},
		{
			"keys sorted",
			map[string]any{"b": 2, "a": 1, "c": 3},
			"json_build_object('a', 1, 'b', 2, 'c', 3)",
		},
		{
			"nested scalars stay bare",
			map[string]any{"name": "jack", "age": 33, "ok": true, "gone": nil},
			"json_build_object('age', 33, 'gone', NULL, 'name', 'jack', 'ok', true)",
		},
		{
			"nested object",
			map[string]any{"attrs": map[string]any{"lat": 78, "lon": 36}},
			"json_build_object('attrs', json_build_object('lat', 78, 'lon', 36))",
		},
		{
			"nested array",
			map[string]any{"tags": []any{"a", 2}},
			"json_build_object('tags', json_build_array('a', 2))",
		},
		{
			"expression value",
			map[string]any{"updated": Expr("now()")},
			"json_build_object('updated', now())",
		},
		{
			"typed map",
			map[string]int{"n": 5},
			"json_build_object('n', 5)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONArrays(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"empty", []any{}, "json_build_array()"},
		{"scalars", []any{1, "two", true, nil}, "json_build_array(1, 'two', true, NULL)"},
		{"typed slice", []int{1, 2, 3}, "json_build_array(1, 2, 3)"},
		{
			"objects inside",
			[]any{map[string]any{"a": 1}},
			"json_build_array(json_build_object('a', 1))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSON(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONB(t *testing.T) {
	got, err := JSONB(map[string]any{"a": 1, "b": []any{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "jsonb_build_object('a', 1, 'b', jsonb_build_array('x'))", got)

	got, err = JSONB("s")
	require.NoError(t, err)
	assert.Equal(t, "to_jsonb('s')", got)

	got, err = JSONB(nil)
	require.NoError(t, err)
	assert.Equal(t, "NULL", got)
}

func TestJSONPointers(t *testing.T) {
	n := 7
	got, err := JSON(&n)
	require.NoError(t, err)
	assert.Equal(t, "to_json(7)", got)

	var missing *int
	got, err = JSON(map[string]any{"v": missing})
	require.NoError(t, err)
	assert.Equal(t, "json_build_object('v', NULL)", got)
}

func TestJSONUnsupported(t *testing.T) {
	type opaque struct{ X int }

	_, err := JSON(opaque{1})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = JSON(map[string]any{"f": func() {}})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = JSON(map[int]string{1: "x"})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}
