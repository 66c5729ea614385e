package jsonmodel_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	jsonmodel "github.com/reoring/jsonmodel"
)

func richDoc() map[string]any {
	return map[string]any{
		"user":  map[string]any{"name": "John", "age": 30.0, "tags": []any{"a", "b"}},
		"flag":  true,
		"empty": nil,
		"a/b":   "slash",
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	src := jsonmodel.New(richDoc())
	b, err := src.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	if !strings.Contains(string(b), "\n  \"") {
		t.Fatalf("output should be indented with two spaces:\n%s", b)
	}
	dst := jsonmodel.New(nil)
	if err := dst.FromJSON(b); err != nil {
		t.Fatalf("from json: %v", err)
	}
	if !reflect.DeepEqual(dst.Data(), richDoc()) {
		t.Fatalf("round trip: %#v", dst.Data())
	}
}

func TestJSON_ShallowMerge(t *testing.T) {
	m := jsonmodel.New(map[string]any{
		"keep": 1.0,
		"user": map[string]any{"name": "John", "age": 30.0},
	})
	if err := m.FromJSON([]byte(`{"user":{"name":"Jane"},"extra":true}`)); err != nil {
		t.Fatalf("from json: %v", err)
	}
	if v, _ := m.Get("/keep"); v != 1.0 {
		t.Fatalf("untouched keys survive, got %v", v)
	}
	if m.Has("/user/age") {
		t.Fatalf("nested objects are replaced, not merged")
	}
	if v, _ := m.Get("/extra"); v != true {
		t.Fatalf("new keys are added, got %v", v)
	}
	if m.Metadata().ChangeCount != 1 {
		t.Fatalf("import counts once")
	}
}

func TestJSON_Malformed(t *testing.T) {
	m := jsonmodel.New(map[string]any{"a": 1.0})
	for _, in := range []string{`{"a":`, `[1,2]`, `"str"`, ``, `{"a":1} trailing`} {
		err := m.FromJSON([]byte(in))
		if !errors.Is(err, jsonmodel.ErrMalformedDocument) {
			t.Fatalf("%q: want ErrMalformedDocument, got %v", in, err)
		}
		if _, ok := jsonmodel.AsIssues(err); !ok {
			t.Fatalf("%q: want Issues, got %v", in, err)
		}
	}
	if !reflect.DeepEqual(m.Data(), map[string]any{"a": 1.0}) || m.Metadata().ChangeCount != 0 {
		t.Fatalf("malformed input must leave the model untouched")
	}
}

func TestJSON_Limits(t *testing.T) {
	m := jsonmodel.New(nil, jsonmodel.Options{Limits: jsonmodel.ImportLimits{RejectDuplicateKeys: true, MaxDepth: 3}})
	err := m.FromJSON([]byte(`{"a":{"b":1,"b":2}}`))
	iss, ok := jsonmodel.AsIssues(err)
	if !ok || iss[0].Code != jsonmodel.CodeDuplicateKey || iss[0].Path != "/a/b" {
		t.Fatalf("duplicate key: %v", err)
	}
	err = m.FromJSON([]byte(`{"a":{"b":{"c":{}}}}`))
	if !errors.Is(err, jsonmodel.ErrMalformedDocument) {
		t.Fatalf("depth limit: %v", err)
	}
}

func TestYAML_RoundTrip(t *testing.T) {
	src := jsonmodel.New(richDoc())
	b, err := src.ToYAML()
	if err != nil {
		t.Fatalf("to yaml: %v", err)
	}
	dst := jsonmodel.New(nil)
	if err := dst.FromYAML(b); err != nil {
		t.Fatalf("from yaml: %v", err)
	}
	if !reflect.DeepEqual(dst.Data(), richDoc()) {
		t.Fatalf("round trip: %#v", dst.Data())
	}
	if err := dst.FromYAML([]byte("- a\n- b\n")); !errors.Is(err, jsonmodel.ErrMalformedDocument) {
		t.Fatalf("sequences are not documents: %v", err)
	}
}

func TestClone_Independent(t *testing.T) {
	src := jsonmodel.New(richDoc(), jsonmodel.Options{EnableValidation: true})
	_ = src.AddValidator("/user/name", jsonmodel.Rule{Check: func(any) (bool, string) { return false, "" }})
	src.On(jsonmodel.EventPropertyChanged, func(jsonmodel.Event) {})

	cp, err := src.Clone()
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if !reflect.DeepEqual(cp.Data(), src.Data()) {
		t.Fatalf("clone differs: %#v", cp.Data())
	}
	if !cp.Options().EnableValidation {
		t.Fatalf("options are copied")
	}
	if len(cp.ValidatorPaths()) != 0 || cp.ListenerCount(jsonmodel.EventPropertyChanged) != 0 {
		t.Fatalf("validators and listeners are not copied")
	}

	_ = cp.Set("/user/name", "Jane")
	_ = cp.AddToArray("/user/tags", "c")
	if v, _ := src.Get("/user/name"); v != "John" {
		t.Fatalf("source changed: %v", v)
	}
	if src.ArrayLen("/user/tags") != 2 {
		t.Fatalf("source array changed")
	}
	_ = src.RemoveFromArray("/user/tags", 0)
	if cp.ArrayLen("/user/tags") != 3 {
		t.Fatalf("clone array changed")
	}
}

type fakeDriver struct{ calls int }

func (d *fakeDriver) Marshal(v any) ([]byte, error) { d.calls++; return []byte(`{}`), nil }
func (d *fakeDriver) MarshalIndent(v any, _, _ string) ([]byte, error) {
	d.calls++
	return []byte(`{}`), nil
}
func (d *fakeDriver) Name() string { return "fake" }

func TestJSONDriver_Swap(t *testing.T) {
	if jsonmodel.CurrentJSONDriver().Name() != "go-json" {
		t.Fatalf("default driver: %s", jsonmodel.CurrentJSONDriver().Name())
	}
	d := &fakeDriver{}
	jsonmodel.SetJSONDriver(d)
	defer jsonmodel.UseDefaultJSONDriver()

	b, _ := jsonmodel.New(map[string]any{"a": 1.0}).ToJSON()
	if string(b) != `{}` || d.calls != 1 {
		t.Fatalf("driver not used: %s calls=%d", b, d.calls)
	}
	jsonmodel.SetJSONDriver(nil)
	if jsonmodel.CurrentJSONDriver().Name() != "fake" {
		t.Fatalf("nil drivers are ignored")
	}
}
