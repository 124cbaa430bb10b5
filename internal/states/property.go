package states

import (
	"errors"
	"strings"

	"github.com/dustin/go-humanize"
)

var (
	ErrPropertyRequired = errors.New("state property is required")
	ErrUnknownProperty  = errors.New("invalid state property")
)

// Property is a single resolved field of a Record.
type Property struct {
	State string
	Label string
	Value any
}

// JSON returns the response body {"state": ..., <label>: ...}.
func (p Property) JSON() map[string]any {
	return map[string]any{
		"state": p.State,
		p.Label: p.Value,
	}
}

// aliases maps informal names onto canonical field names.
var aliases = map[string]string{
	"capital":   "capital_city",
	"admission": "admission_date",
	"admitted":  "admission_date",
}

// labels maps canonical field names onto output keys.
var labels = map[string]string{
	"capital_city":   "capital",
	"admission_date": "admitted",
}

type field func(r Record) (any, bool)

var fields = map[string]field{
	"state":            func(r Record) (any, bool) { return r.State, r.State != "" },
	"code":             func(r Record) (any, bool) { return r.Code, r.Code != "" },
	"nickname":         func(r Record) (any, bool) { return r.Nickname, r.Nickname != "" },
	"capital_city":     func(r Record) (any, bool) { return r.CapitalCity, r.CapitalCity != "" },
	"population":       func(r Record) (any, bool) { return r.Population, true },
	"admission_date":   func(r Record) (any, bool) { return r.AdmissionDate, r.AdmissionDate != "" },
	"admission_number": func(r Record) (any, bool) { return r.AdmissionNumber, r.AdmissionNumber != 0 },
	"funfacts":         func(r Record) (any, bool) { return r.Funfacts, len(r.Funfacts) > 0 },
}

var formatters = map[string]func(any) any{
	"population": func(v any) any { return humanize.Comma(v.(int64)) },
}

// Canonical returns the field name raw refers to.
func Canonical(raw string) string {
	name := strings.ToLower(raw)
	if c, ok := aliases[name]; ok {
		return c
	}
	return name
}

// Resolve looks up a loosely named property on r.
func Resolve(r Record, raw string) (Property, error) {
	if strings.TrimSpace(raw) == "" {
		return Property{}, ErrPropertyRequired
	}

	name := Canonical(raw)
	get, ok := fields[name]
	if !ok {
		return Property{}, ErrUnknownProperty
	}
	value, ok := get(r)
	if !ok {
		return Property{}, ErrUnknownProperty
	}

	if format, ok := formatters[name]; ok {
		value = format(value)
	}
	label, ok := labels[name]
	if !ok {
		label = name
	}
	return Property{State: r.State, Label: label, Value: value}, nil
}
