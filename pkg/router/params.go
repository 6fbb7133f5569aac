package router

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var uuidType = reflect.TypeOf(uuid.UUID{})

// Decode populates a struct from the route state. Fields tagged
// `param:"name"` read pathname parameters and fields tagged `query:"name"`
// read query parameters. Pathname parameters are unescaped before
// conversion.
//
//	var p struct {
//	    ID   int       `param:"id"`
//	    Ref  uuid.UUID `param:"ref"`
//	    Page int       `query:"page"`
//	}
//	err := state.Decode(&p)
func (s RouteState) Decode(target any) error {
	return decodeInto(target, []paramSource{
		{tag: "param", values: s.Params, escaped: true},
		{tag: "query", values: s.QueryParams},
	})
}

// paramSource is one tagged set of values Decode reads from.
type paramSource struct {
	tag     string
	values  map[string]string
	escaped bool
}

func decodeInto(target any, sources []paramSource) error {
	if target == nil {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer, got %s", v.Kind())
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("target must be a pointer to struct, got pointer to %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		for _, src := range sources {
			name := field.Tag.Get(src.tag)
			if name == "" {
				continue
			}

			value, ok := src.values[name]
			if !ok {
				continue
			}

			fieldValue := v.Field(i)
			if !fieldValue.CanSet() {
				continue
			}

			if src.escaped {
				if unescaped, err := url.PathUnescape(value); err == nil {
					value = unescaped
				}
			}
			if err := setField(fieldValue, value); err != nil {
				return fmt.Errorf("parsing %s %q: %w", src.tag, name, err)
			}
		}
	}

	return nil
}

// setField sets a field value from a string.
func setField(field reflect.Value, value string) error {
	if field.Type() == uuidType {
		id, err := uuid.Parse(value)
		if err != nil {
			return fmt.Errorf("invalid UUID: %s", value)
		}
		field.Set(reflect.ValueOf(id))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer: %s", value)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer: %s", value)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(value, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float: %s", value)
		}
		field.SetFloat(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %s", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Repeated-segment params: "a/b/c" → ["a", "b", "c"]
			var parts []string
			if value != "" {
				parts = strings.Split(value, "/")
			}
			field.Set(reflect.ValueOf(parts))
		} else {
			return fmt.Errorf("unsupported slice element type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported type: %s", field.Kind())
	}

	return nil
}
