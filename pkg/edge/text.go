package edge

import "fmt"

// Text forms keep telemetry JSON readable.

func (s Side) MarshalText() ([]byte, error)      { return []byte(s.String()), nil }
func (s State) MarshalText() ([]byte, error)     { return []byte(s.String()), nil }
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }
func (k MoveKind) MarshalText() ([]byte, error)  { return []byte(k.String()), nil }
func (r Reason) MarshalText() ([]byte, error)    { return []byte(r.String()), nil }

func (s *Side) UnmarshalText(b []byte) error      { return parseName(s, b) }
func (s *State) UnmarshalText(b []byte) error     { return parseName(s, b) }
func (d *Direction) UnmarshalText(b []byte) error { return parseName(d, b) }
func (k *MoveKind) UnmarshalText(b []byte) error  { return parseName(k, b) }
func (r *Reason) UnmarshalText(b []byte) error    { return parseName(r, b) }

type named interface {
	~int
	String() string
}

// maxEnum bounds the values tried when parsing a name.
const maxEnum = 8

func parseName[T named](dst *T, b []byte) error {
	name := string(b)
	for i := 0; i < maxEnum; i++ {
		if v := T(i); v.String() == name {
			*dst = v
			return nil
		}
	}
	return fmt.Errorf("unknown %T %q", *dst, name)
}
