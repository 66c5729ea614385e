package jsonmodel_test

import (
	"strings"
	"testing"

	jsonmodel "github.com/reoring/jsonmodel"
	"github.com/reoring/jsonmodel/rules"
)

func hasAt() jsonmodel.Rule {
	return jsonmodel.Rule{
		Name: "has-at",
		Check: func(v any) (bool, string) {
			s, _ := v.(string)
			if !strings.Contains(s, "@") {
				return false, "Invalid email"
			}
			return true, ""
		},
	}
}

func TestValidation_EmailScenario(t *testing.T) {
	m := jsonmodel.New(map[string]any{"email": "old@x.com"}, jsonmodel.Options{EnableValidation: true})
	if err := m.AddValidator("/email", hasAt()); err != nil {
		t.Fatalf("add validator: %v", err)
	}
	var verrs, changes []jsonmodel.Event
	m.On(jsonmodel.EventValidationError, func(ev jsonmodel.Event) { verrs = append(verrs, ev) })
	m.On(jsonmodel.EventPropertyChanged, func(ev jsonmodel.Event) { changes = append(changes, ev) })

	err := m.Set("/email", "bad")
	iss, ok := jsonmodel.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("want Issues, got %v", err)
	}
	if iss[0].Path != "/email" || iss[0].Code != jsonmodel.CodeBusinessRule || iss[0].Message != "Invalid email" || iss[0].Rule != "has-at" {
		t.Fatalf("issue: %+v", iss[0])
	}
	if v, _ := m.Get("/email"); v != "old@x.com" {
		t.Fatalf("rejected write must keep the prior value, got %v", v)
	}
	if len(verrs) != 1 || verrs[0].Path != "/email" || len(verrs[0].Errors) != 1 || len(changes) != 0 {
		t.Fatalf("validation-error only: verrs=%+v changes=%+v", verrs, changes)
	}
	if m.Metadata().ChangeCount != 0 {
		t.Fatalf("rejected writes do not count")
	}

	if err := m.Set("/email", "a@b.com"); err != nil {
		t.Fatalf("valid write: %v", err)
	}
	if v, _ := m.Get("/email"); v != "a@b.com" {
		t.Fatalf("got %v", v)
	}
	if len(changes) != 1 || changes[0].OldValue != "old@x.com" || changes[0].NewValue != "a@b.com" || changes[0].Source != jsonmodel.SourceUser {
		t.Fatalf("property-changed: %+v", changes)
	}
}

func TestValidation_DisabledStillReports(t *testing.T) {
	m := jsonmodel.New(nil)
	_ = m.AddValidator("/email", hasAt())
	if err := m.Set("/email", "bad"); err != nil {
		t.Fatalf("writes are not validated when disabled: %v", err)
	}
	if m.ValidatePath("/email") {
		t.Fatalf("explicit validation still runs")
	}
}

func TestValidation_Transitions(t *testing.T) {
	m := jsonmodel.New(map[string]any{"name": ""})
	if !m.ValidatePath("/name") || !m.ValidatePath("/unregistered") {
		t.Fatalf("paths without rules are valid")
	}

	_ = m.AddValidator("/name", rules.Required())
	if m.ValidatePath("/name") || len(m.Errors("/name")) == 0 {
		t.Fatalf("empty name should fail")
	}
	_ = m.Set("/name", "John")
	if !m.ValidatePath("/name") || len(m.Errors("/name")) != 0 {
		t.Fatalf("corrected value should pass: %v", m.Errors("/name"))
	}

	_ = m.Set("/name", "")
	if err := m.RemoveValidator("/name"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !m.ValidatePath("/name") {
		t.Fatalf("removing rules makes the path valid")
	}
	if v, _ := m.Get("/name"); v != "" {
		t.Fatalf("value must not change, got %v", v)
	}
}

func TestValidation_AllAndOrder(t *testing.T) {
	m := jsonmodel.New(map[string]any{"age": 200.0, "email": "x"})
	_ = m.AddValidator("/email", rules.Email())
	_ = m.AddValidator("/age", rules.Min(0))
	_ = m.AddValidator("/age", rules.Max(150))

	if m.ValidateAll() {
		t.Fatalf("document has invalid values")
	}
	if got := m.ValidatorPaths(); len(got) != 2 || got[0] != "/email" || got[1] != "/age" {
		t.Fatalf("registration order: %v", got)
	}
	iss := m.Issues()
	if len(iss) != 2 || iss[0].Path != "/email" || iss[1].Code != jsonmodel.CodeTooBig {
		t.Fatalf("issues: %+v", iss)
	}
	if all := m.AllErrors(); len(all) != 2 {
		t.Fatalf("all errors: %v", all)
	}

	_ = m.Set("/age", 40.0)
	_ = m.Set("/email", "a@b.c")
	if !m.ValidateAll() || len(m.AllErrors()) != 0 {
		t.Fatalf("document should be valid: %v", m.AllErrors())
	}
}

func TestValidation_RulesAreNotInherited(t *testing.T) {
	m := jsonmodel.New(map[string]any{"user": map[string]any{"email": "bad"}}, jsonmodel.Options{EnableValidation: true})
	_ = m.AddValidator("/user", jsonmodel.Rule{Check: func(any) (bool, string) { return false, "" }})
	if err := m.Set("/user/email", "still bad"); err != nil {
		t.Fatalf("parent rules do not apply to children: %v", err)
	}
	err := m.Set("/user", map[string]any{})
	iss, ok := jsonmodel.AsIssues(err)
	if !ok || iss[0].Message != "Validation failed" {
		t.Fatalf("rules without any message fall back to a generic one, got %v", err)
	}
}

func TestValidation_MessageSources(t *testing.T) {
	m := jsonmodel.New(nil)
	_ = m.AddValidator("/a", jsonmodel.Rule{Message: "custom", Check: func(any) (bool, string) { return false, "" }})
	_ = m.AddValidator("/b", jsonmodel.Rule{Code: jsonmodel.CodeRequired, Check: func(any) (bool, string) { return false, "" }})
	if got := m.Errors("/a"); len(got) != 1 || got[0] != "custom" {
		t.Fatalf("rule message: %v", got)
	}
	if got := m.Errors("/b"); len(got) != 1 || got[0] != "value is required" {
		t.Fatalf("catalogue message: %v", got)
	}
}
