// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package form is a declarative form controller: a field list with
// per-field validation, bound from submitted values and handed to a submit
// function only when every field is valid.
package form

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
)

var (
	// ErrInvalid is returned by Submit when at least one field fails.
	ErrInvalid = errors.New("form: invalid input")
	// ErrBusy is returned by Submit while a previous submit is running.
	ErrBusy = errors.New("form: submit in progress")
)

// Kind selects the input widget a field renders as.
type Kind string

const (
	Text     Kind = "text"
	Email    Kind = "email"
	Password Kind = "password"
	Tel      Kind = "tel"
	URL      Kind = "url"
	TextArea Kind = "textarea"
	Select   Kind = "select"
)

// Option is an entry of a Select field.
type Option struct {
	Label string
	Value string
}

// Field declares one input.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
	// RequiredMessage replaces the default "<Label> is required".
	RequiredMessage string
	// Validate returns "" when the value is valid.
	Validate func(string) string
	Options  []Option
}

// Values are the submitted field values keyed by field name.
type Values map[string]string

// Get returns the trimmed value of name.
func (v Values) Get(name string) string {
	return strings.TrimSpace(v[name])
}

// Raw returns the value of name as submitted. Passwords are read with Raw.
func (v Values) Raw(name string) string {
	return v[name]
}

// Form holds field values, errors and the submit state.
type Form struct {
	fields  []Field
	mu      sync.Mutex
	values  Values
	errs    map[string]string
	loading atomic.Bool
}

// New creates a form over fields.
func New(fields ...Field) *Form {
	return &Form{
		fields: fields,
		values: make(Values, len(fields)),
		errs:   make(map[string]string),
	}
}

// Set stores value and re-validates only that field.
func (f *Form) Set(name, value string) {
	fld, ok := f.field(name)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = value
	if msg := check(fld, value); msg != "" {
		f.errs[name] = msg
	} else {
		delete(f.errs, name)
	}
}

// Bind sets every declared field from submitted form values.
func (f *Form) Bind(src url.Values) {
	for _, fld := range f.fields {
		f.Set(fld.Name, src.Get(fld.Name))
	}
}

// Fill sets values without validating, for pre-populated forms.
func (f *Form) Fill(values Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range values {
		f.values[k] = v
	}
}

// Value returns the raw value of name.
func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

// Values returns a copy of all values.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(Values, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Error returns the current error of name, or "".
func (f *Form) Error(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[name]
}

// Errors returns a copy of the current field errors.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

// Valid reports whether no field currently carries an error.
func (f *Form) Valid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errs) == 0
}

// Loading reports whether Submit is running its handler.
func (f *Form) Loading() bool {
	return f.loading.Load()
}

// Fields returns the declared fields in order.
func (f *Form) Fields() []Field {
	return f.fields
}

// Submit validates every field. If any fails it returns ErrInvalid with all
// errors set and fn is not called. Otherwise fn runs with Loading true.
func (f *Form) Submit(ctx context.Context, fn func(context.Context, Values) error) error {
	if !f.loading.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer f.loading.Store(false)

	f.mu.Lock()
	for _, fld := range f.fields {
		if msg := check(fld, f.values[fld.Name]); msg != "" {
			f.errs[fld.Name] = msg
		} else {
			delete(f.errs, fld.Name)
		}
	}
	invalid := len(f.errs) > 0
	f.mu.Unlock()
	if invalid {
		return ErrInvalid
	}
	return fn(ctx, f.Values())
}

func (f *Form) field(name string) (Field, bool) {
	for _, fld := range f.fields {
		if fld.Name == name {
			return fld, true
		}
	}
	return Field{}, false
}

// check returns the first error of value for fld. Values are checked
// trimmed, the way Get hands them to the submit function, except passwords.
func check(fld Field, value string) string {
	if fld.Kind != Password {
		value = strings.TrimSpace(value)
	}
	if fld.Required && blank(value) {
		if fld.RequiredMessage != "" {
			return fld.RequiredMessage
		}
		return fld.Label + " is required"
	}
	if fld.Validate == nil {
		return ""
	}
	msg := fld.Validate(value)
	if msg == "" {
		return ""
	}
	if r := []rune(msg); unicode.IsLower(r[0]) {
		return fld.Label + " " + msg
	}
	return msg
}
