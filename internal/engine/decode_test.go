package engine

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecode_Shapes(t *testing.T) {
	v, err := Decode([]byte(`{"a":[1,"x",true,null,{"b":2.5}]}`), Limits{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{"a": []any{1.0, "x", true, nil, map[string]any{"b": 2.5}}}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("got %#v", v)
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		lim  Limits
		code string
		path string
	}{
		{"empty", ``, Limits{}, "parse_error", "/"},
		{"trailing", `{} {}`, Limits{}, "parse_error", "/"},
		{"unterminated", `{"a":1`, Limits{}, "parse_error", "/"},
		{"duplicate", `{"a":{"k":1,"k":2}}`, Limits{RejectDuplicateKeys: true}, "duplicate_key", "/a/k"},
		{"depth", `{"a":{"b":{}}}`, Limits{MaxDepth: 2}, "parse_error", "/a/b"},
		{"bytes", `{"a":1}`, Limits{MaxBytes: 3}, "truncated", "/"},
	}
	for _, c := range cases {
		_, err := Decode([]byte(c.in), c.lim)
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("%s: want *DecodeError, got %v", c.name, err)
		}
		if de.Code != c.code || de.Path != c.path {
			t.Fatalf("%s: got code=%s path=%s (%v)", c.name, de.Code, de.Path, de)
		}
	}
}

func TestDecode_DuplicatesAllowedByDefault(t *testing.T) {
	v, err := Decode([]byte(`{"k":1,"k":2}`), Limits{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.(map[string]any)["k"] != 2.0 {
		t.Fatalf("last duplicate wins, got %v", v)
	}
}
