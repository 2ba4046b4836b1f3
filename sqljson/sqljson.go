// Package sqljson renders Go values as PostgreSQL JSON construction
// expressions: json_build_object, json_build_array, to_json, and their
// jsonb twins (PostgreSQL 9.4+).
//
// Maps become json_build_object calls with keys in sorted order, slices
// become json_build_array calls, scalars at the top level are wrapped in
// to_json, and nil becomes the SQL NULL literal:
//
//	expr, _ := sqljson.JSON(map[string]any{"a": 1, "b": "x"})
//	// json_build_object('a', 1, 'b', 'x')
//
// An Expr value passes through verbatim, for embedding column references
// or function calls:
//
//	sqljson.JSON(map[string]any{"updated": sqljson.Expr("now()")})
//	// json_build_object('updated', now())
package sqljson

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/koustreak/dbadmin/internal/errs"
)

// Expr is a raw SQL fragment. It is emitted into the generated expression
// verbatim, without quoting. Values implementing fmt.Stringer behave the
// same way.
type Expr string

// JSON renders v as a json construction expression.
func JSON(v any) (string, error) {
	return build(v, "json", true)
}

// JSONB renders v as a jsonb construction expression.
func JSONB(v any) (string, error) {
	return build(v, "jsonb", true)
}

// build walks v recursively. wrap is true only at the top level: a bare
// scalar handed to JSON gets a to_json wrapper, while scalars nested in
// build_object/build_array arguments are already in JSON context and stay
// bare.
func build(v any, family string, wrap bool) (string, error) {
	if v == nil {
		return "NULL", nil
	}
	if e, ok := v.(Expr); ok {
		return string(e), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL", nil
		}
		return build(rv.Elem().Interface(), family, wrap)

	case reflect.String:
		return scalar(quote(rv.String()), family, wrap), nil

	case reflect.Bool:
		return scalar(strconv.FormatBool(rv.Bool()), family, wrap), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return scalar(strconv.FormatInt(rv.Int(), 10), family, wrap), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return scalar(strconv.FormatUint(rv.Uint(), 10), family, wrap), nil

	case reflect.Float32:
		return scalar(strconv.FormatFloat(rv.Float(), 'g', -1, 32), family, wrap), nil

	case reflect.Float64:
		return scalar(strconv.FormatFloat(rv.Float(), 'g', -1, 64), family, wrap), nil

	case reflect.Map:
		return buildObject(rv, family)

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return scalar(quote(string(rv.Bytes())), family, wrap), nil
		}
		return buildArray(rv, family)

	case reflect.Array:
		return buildArray(rv, family)

	default:
		if s, ok := v.(fmt.Stringer); ok {
			return scalar(s.String(), family, wrap), nil
		}
		return "", errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("cannot render %T as a JSON SQL expression", v))
	}
}

// buildObject renders a map as <family>_build_object('k1', v1, 'k2', v2, …).
// Keys are emitted in sorted order so the output is deterministic.
func buildObject(rv reflect.Value, family string) (string, error) {
	keyType := rv.Type().Key()
	if keyType.Kind() != reflect.String {
		return "", errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("map keys must be strings, got %s", keyType))
	}

	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		val := rv.MapIndex(reflect.ValueOf(k).Convert(keyType))
		rendered, err := build(val.Interface(), family, false)
		if err != nil {
			return "", err
		}
		parts = append(parts, quote(k), rendered)
	}
	return family + "_build_object(" + strings.Join(parts, ", ") + ")", nil
}

// buildArray renders a slice or array as <family>_build_array(v1, v2, …).
func buildArray(rv reflect.Value, family string) (string, error) {
	parts := make([]string, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		rendered, err := build(rv.Index(i).Interface(), family, false)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	return family + "_build_array(" + strings.Join(parts, ", ") + ")", nil
}

func scalar(expr, family string, wrap bool) string {
	if !wrap {
		return expr
	}
	return "to_" + family + "(" + expr + ")"
}

// quote single-quotes a SQL string literal, doubling embedded quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
