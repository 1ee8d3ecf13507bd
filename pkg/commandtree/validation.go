package commandtree

import (
	"fmt"
	"strings"
)

// ValidationError is a single structural problem in a command tree.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the load-time invariants: unique resource names, unique
// operation names per resource, and path placeholders that match the declared
// path parameters exactly. Methods and content types are checked lazily when
// an operation is invoked.
func (t *CommandTree) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	resources := make(map[string]bool, len(t.Resources))
	for i, res := range t.Resources {
		if res == nil {
			add(fmt.Sprintf("resources[%d]", i), "is null")
			continue
		}
		if res.Name == "" {
			add(fmt.Sprintf("resources[%d].name", i), "is required")
		}
		if resources[res.Name] {
			add(fmt.Sprintf("resources[%d].name", i), "duplicate resource %q", res.Name)
		}
		resources[res.Name] = true

		ops := make(map[string]bool, len(res.Operations))
		for j, op := range res.Operations {
			field := fmt.Sprintf("%s.ops[%d]", res.Name, j)
			if op == nil {
				add(field, "is null")
				continue
			}
			if op.Name == "" {
				add(field+".name", "is required")
			}
			if ops[op.Name] {
				add(field+".name", "duplicate operation %q", op.Name)
			}
			ops[op.Name] = true

			validatePlaceholders(op, field, add)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validatePlaceholders(op *Operation, field string, add func(string, string, ...any)) {
	placeholders := make(map[string]bool)
	for _, name := range Placeholders(op.Path) {
		placeholders[name] = true
	}

	declared := make(map[string]bool)
	for _, p := range op.ParamsIn(LocationPath) {
		declared[p.Name] = true
		if !placeholders[p.Name] {
			add(field+".path", "path parameter %q has no placeholder in %s", p.Name, op.Path)
		}
	}
	for name := range placeholders {
		if !declared[name] {
			add(field+".path", "placeholder {%s} has no path parameter", name)
		}
	}
}
