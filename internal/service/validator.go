package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// validator accumulates field-level problems so a single 400 response can
// enumerate everything wrong with a request body at once.
type validator struct {
	fields map[string]string
}

func newValidator() *validator {
	return &validator{fields: make(map[string]string)}
}

// check records msg under field when cond is false. The first problem
// reported for a field wins.
func (v *validator) check(cond bool, field, msg string) {
	if cond {
		return
	}
	if _, ok := v.fields[field]; !ok {
		v.fields[field] = msg
	}
}

func (v *validator) checkEmail(email string) {
	v.check(email != "", "email", "must be provided")
	v.check(emailRegexp.MatchString(email), "email", "must be a valid email address")
}

func (v *validator) checkPassword(password string) {
	v.check(password != "", "password", "must be provided")
	v.check(len(password) >= 8, "password", "must be at least 8 characters long")
	v.check(len(password) <= 72, "password", "must be at most 72 characters long")
}

func (v *validator) valid() bool {
	return len(v.fields) == 0
}

// err returns the accumulated problems as a *ValidationError, or nil when
// everything checked out.
func (v *validator) err() error {
	if v.valid() {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// ValidationError carries the per-field problems of a rejected request body.
// It is always produced before anything touches the database.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
