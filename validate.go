package jsonmodel

import "github.com/reoring/jsonmodel/i18n"

// Rule is a pure predicate over the value at one path.
//
// Check returns ok=false to reject the value. The issue message is the
// string Check returned, else Message, else the catalogue text for Code.
type Rule struct {
	Name    string
	Code    string
	Message string
	Check   func(value any) (ok bool, msg string)
}

// AddValidator appends rule to the rule list of path. Rules are not
// inherited by parent or child paths.
func (m *Model) AddValidator(path string, rule Rule) error {
	if m.destroyed {
		return ErrDestroyed
	}
	if _, ok := m.validators[path]; !ok {
		m.ruleOrder = append(m.ruleOrder, path)
	}
	m.validators[path] = append(m.validators[path], rule)
	return nil
}

// RemoveValidator drops every rule registered for path.
func (m *Model) RemoveValidator(path string) error {
	if m.destroyed {
		return ErrDestroyed
	}
	if _, ok := m.validators[path]; !ok {
		return nil
	}
	delete(m.validators, path)
	for i, p := range m.ruleOrder {
		if p == path {
			m.ruleOrder = append(m.ruleOrder[:i:i], m.ruleOrder[i+1:]...)
			break
		}
	}
	return nil
}

// ValidatorPaths returns the paths with at least one rule, in registration order.
func (m *Model) ValidatorPaths() []string { return append([]string(nil), m.ruleOrder...) }

// ValidatePath checks the current value at path. Paths without rules are valid.
func (m *Model) ValidatePath(path string) bool { return len(m.IssuesAt(path)) == 0 }

// ValidateAll checks every path that has rules registered. Paths of the
// document without rules are not visited.
func (m *Model) ValidateAll() bool {
	for _, p := range m.ruleOrder {
		if !m.ValidatePath(p) {
			return false
		}
	}
	return true
}

// Errors returns the failure messages for the current value at path.
func (m *Model) Errors(path string) []string { return m.IssuesAt(path).Messages() }

// AllErrors returns the failure messages of every path with rules, grouped
// by path in registration order.
func (m *Model) AllErrors() []string { return m.Issues().Messages() }

// IssuesAt evaluates the rules of path against its current value.
func (m *Model) IssuesAt(path string) Issues {
	v, _ := m.Get(path)
	return m.check(path, v)
}

// Issues evaluates every registered rule against the current document.
func (m *Model) Issues() Issues {
	var out Issues
	for _, p := range m.ruleOrder {
		out = append(out, m.IssuesAt(p)...)
	}
	return out
}

func (m *Model) check(path string, value any) Issues {
	var out Issues
	for _, r := range m.validators[path] {
		if r.Check == nil {
			continue
		}
		ok, msg := r.Check(value)
		if ok {
			continue
		}
		code := r.Code
		if code == "" {
			code = CodeBusinessRule
		}
		out = AppendIssues(out, Issue{Path: path, Code: code, Message: ruleMessage(r, code, msg), Rule: r.Name})
	}
	return out
}

func ruleMessage(r Rule, code, msg string) string {
	if msg != "" {
		return msg
	}
	if r.Message != "" {
		return r.Message
	}
	if t := i18n.T(code, nil); t != code {
		return t
	}
	return "Validation failed"
}
