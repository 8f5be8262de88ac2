// Package flow provides the core of the actor/dataflow network model. It
// defines token layouts, the strobe/acknowledge endpoint handshake, the
// actor abstraction, and the three scheduling models that derive control
// logic from a declared timing behavior.
package flow

import "fmt"

// A Shape describes one fixed-width scalar: a bit width and a signedness.
type Shape struct {
	Width  int
	Signed bool
}

// Unsigned returns the shape of an unsigned scalar of the given width.
func Unsigned(width int) Shape {
	return Shape{Width: width}
}

// Signed returns the shape of a signed scalar of the given width.
func Signed(width int) Shape {
	return Shape{Width: width, Signed: true}
}

// A Field is one named entry of a Layout. It is either a scalar, when Sub is
// nil, or a nested record, when Sub is not nil.
type Field struct {
	Name  string
	Shape Shape
	Sub   Layout
}

// Scalar creates a scalar field.
func Scalar(name string, shape Shape) Field {
	return Field{Name: name, Shape: shape}
}

// Record creates a nested-record field.
func Record(name string, sub Layout) Field {
	return Field{Name: name, Sub: sub}
}

// IsRecord reports whether the field is a nested record.
func (f Field) IsRecord() bool {
	return f.Sub != nil
}

// BitWidth returns the total number of bits of the field.
func (f Field) BitWidth() int {
	if f.IsRecord() {
		return f.Sub.BitWidth()
	}

	return f.Shape.Width
}

// A Layout is an ordered sequence of named fields describing the shape of a
// token. Field names are unique within a layout. Layouts are pure value
// descriptions and are freely shareable.
type Layout []Field

// NewLayout validates the fields and assembles them into a Layout. It panics
// on duplicate or invalid field names and on non-positive scalar widths, as
// a malformed layout is a programming error.
func NewLayout(fields ...Field) Layout {
	seen := make(map[string]bool)

	for _, f := range fields {
		NameMustBeValid(f.Name)

		if seen[f.Name] {
			panic("duplicate field name " + f.Name)
		}
		seen[f.Name] = true

		if f.IsRecord() {
			continue
		}

		if f.Shape.Width <= 0 {
			panic("field " + f.Name + " must have a positive width")
		}
	}

	return Layout(fields)
}

// BitWidth returns the total number of bits of the layout, recursing into
// nested records.
func (l Layout) BitWidth() int {
	total := 0
	for _, f := range l {
		total += f.BitWidth()
	}

	return total
}

// Field returns the field with the given name.
func (l Layout) Field(name string) (Field, bool) {
	for _, f := range l {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// FieldNames returns the names of all fields in layout order.
func (l Layout) FieldNames() []string {
	names := make([]string, 0, len(l))
	for _, f := range l {
		names = append(names, f.Name)
	}

	return names
}

// Project returns the sub-layout holding only the named fields, in layout
// order. A nil name list selects all fields.
func (l Layout) Project(names []string) (Layout, error) {
	if names == nil {
		return l, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := l.Field(n); !ok {
			return nil, NewError(ErrLayoutMismatch,
				"field %s is not part of the layout", n)
		}
		wanted[n] = true
	}

	sub := make(Layout, 0, len(names))
	for _, f := range l {
		if wanted[f.Name] {
			sub = append(sub, f)
		}
	}

	return sub, nil
}

// Equal reports whether the two layouts are identical, including field
// names.
func (l Layout) Equal(other Layout) bool {
	if len(l) != len(other) {
		return false
	}

	for i, f := range l {
		o := other[i]

		if f.Name != o.Name || f.IsRecord() != o.IsRecord() {
			return false
		}

		if f.IsRecord() {
			if !f.Sub.Equal(o.Sub) {
				return false
			}
		} else if f.Shape != o.Shape {
			return false
		}
	}

	return true
}

// BitIdentical reports whether the two layouts flatten to the same scalar
// sequence, ignoring field names. Two bit-identical layouts can be connected
// directly; differing ones need a Cast.
func (l Layout) BitIdentical(other Layout) bool {
	a := l.flatten()
	b := other.flatten()

	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func (l Layout) flatten() []Shape {
	var shapes []Shape
	for _, f := range l {
		if f.IsRecord() {
			shapes = append(shapes, f.Sub.flatten()...)
		} else {
			shapes = append(shapes, f.Shape)
		}
	}

	return shapes
}

func (l Layout) String() string {
	s := "{"
	for i, f := range l {
		if i > 0 {
			s += ", "
		}

		if f.IsRecord() {
			s += f.Name + ": " + f.Sub.String()
		} else {
			sign := "u"
			if f.Shape.Signed {
				sign = "s"
			}
			s += fmt.Sprintf("%s: %s%d", f.Name, sign, f.Shape.Width)
		}
	}

	return s + "}"
}
