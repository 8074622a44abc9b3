package mcp

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is an interface for getting arguments from a request
type ArgumentGetter interface {
	GetArguments() map[string]any
}

// bindArguments binds MCP request arguments to a target struct with type
// coercion. Some clients send every parameter as a string, so "12" binds to
// an int field and "true" to a bool field.
func bindArguments[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}

// jsonStringHook decodes JSON-encoded strings into numbers and booleans.
func jsonStringHook(f reflect.Type, t reflect.Type, data any) (any, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch {
	case t.Kind() == reflect.Bool:
		var b bool
		if err := json.Unmarshal([]byte(raw), &b); err == nil {
			return b, nil
		}
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Float64:
		var n json.Number
		if err := json.Unmarshal([]byte(raw), &n); err == nil {
			return n, nil
		}
	}
	return data, nil
}
