package domain

import "strings"

// Missing is how an absent upstream field is rendered.
const Missing = "-"

// Opt is an upstream text field that may be absent from the payload.
type Opt struct {
	value string
	ok    bool
}

// Some returns a present field.
func Some(v string) Opt { return Opt{value: v, ok: true} }

// OptFrom converts a decoded pointer field. Nil and blank values are absent.
func OptFrom(p *string) Opt {
	if p == nil {
		return Opt{}
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return Opt{}
	}
	return Some(v)
}

// Get returns the value and whether it was present.
func (o Opt) Get() (string, bool) { return o.value, o.ok }

// Present reports whether the field was present.
func (o Opt) Present() bool { return o.ok }

// Or returns the value, or def when absent.
func (o Opt) Or(def string) string {
	if !o.ok {
		return def
	}
	return o.value
}

// String returns the value, or Missing when absent.
func (o Opt) String() string { return o.Or(Missing) }

// MarshalText encodes the field as its String form. Escaping is left to the
// enclosing encoder.
func (o Opt) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
