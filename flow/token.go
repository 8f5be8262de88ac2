package flow

import (
	"fmt"
	"math/big"
)

// A Token is one atomic unit of structured data transferred between actors.
// It maps field names to either an int64 scalar value or a nested Token.
// Tokens are treated as immutable at transfer time; actors that keep a
// received token across cycles must Clone it.
type Token map[string]interface{}

// Clone returns a deep copy of the token.
func (t Token) Clone() Token {
	if t == nil {
		return nil
	}

	c := make(Token, len(t))
	for name, v := range t {
		if sub, ok := v.(Token); ok {
			c[name] = sub.Clone()
		} else {
			c[name] = v
		}
	}

	return c
}

// Equal reports whether two tokens carry the same fields with the same
// values.
func (t Token) Equal(other Token) bool {
	if len(t) != len(other) {
		return false
	}

	for name, v := range t {
		ov, ok := other[name]
		if !ok {
			return false
		}

		sub, isRecord := v.(Token)
		osub, oIsRecord := ov.(Token)

		if isRecord != oIsRecord {
			return false
		}

		if isRecord {
			if !sub.Equal(osub) {
				return false
			}
		} else if v.(int64) != ov.(int64) {
			return false
		}
	}

	return true
}

// ConformsTo checks that the token's field set exactly matches the layout,
// recursing into nested records, and that every scalar value fits its
// field's width and signedness.
func (t Token) ConformsTo(l Layout) error {
	if len(t) != len(l) {
		return NewError(ErrLayoutMismatch,
			"token has %d fields, layout %s has %d", len(t), l, len(l))
	}

	for _, f := range l {
		v, ok := t[f.Name]
		if !ok {
			return NewError(ErrLayoutMismatch,
				"token misses field %s of layout %s", f.Name, l)
		}

		if f.IsRecord() {
			sub, isRecord := v.(Token)
			if !isRecord {
				return NewError(ErrLayoutMismatch,
					"field %s must be a nested token", f.Name)
			}

			if err := sub.ConformsTo(f.Sub); err != nil {
				return err
			}

			continue
		}

		n, isScalar := v.(int64)
		if !isScalar {
			return NewError(ErrLayoutMismatch,
				"field %s must be an int64 scalar", f.Name)
		}

		if !fitsShape(n, f.Shape) {
			return NewError(ErrLayoutMismatch,
				"value %d does not fit field %s", n, f.Name)
		}
	}

	return nil
}

// Project returns a token holding only the named fields. A nil name list
// selects all fields.
func (t Token) Project(names []string) Token {
	if names == nil {
		return t
	}

	sub := make(Token, len(names))
	for _, n := range names {
		if v, ok := t[n]; ok {
			sub[n] = v
		}
	}

	return sub
}

func fitsShape(n int64, s Shape) bool {
	if s.Signed {
		min := -(int64(1) << uint(s.Width-1))
		max := (int64(1) << uint(s.Width-1)) - 1
		return n >= min && n <= max
	}

	if s.Width >= 64 {
		return n >= 0
	}

	return n >= 0 && n < (int64(1)<<uint(s.Width))
}

// PackBits flattens the token into a single bit vector per the layout. The
// first field of the layout occupies the least significant bits. Signed
// scalars are stored in two's complement within their field width.
func (t Token) PackBits(l Layout) (*big.Int, error) {
	if err := t.ConformsTo(l); err != nil {
		return nil, err
	}

	bits := big.NewInt(0)
	offset := 0

	for _, f := range l {
		var fieldBits *big.Int

		if f.IsRecord() {
			sub, err := t[f.Name].(Token).PackBits(f.Sub)
			if err != nil {
				return nil, err
			}
			fieldBits = sub
		} else {
			fieldBits = scalarBits(t[f.Name].(int64), f.Shape)
		}

		fieldBits.Lsh(fieldBits, uint(offset))
		bits.Or(bits, fieldBits)
		offset += f.BitWidth()
	}

	return bits, nil
}

// UnpackBits rebuilds a token of the given layout from a flat bit vector
// produced by PackBits on a bit-identical layout.
func UnpackBits(bits *big.Int, l Layout) Token {
	t := make(Token, len(l))
	offset := 0

	for _, f := range l {
		width := f.BitWidth()
		fieldBits := extractBits(bits, offset, width)

		if f.IsRecord() {
			t[f.Name] = UnpackBits(fieldBits, f.Sub)
		} else {
			t[f.Name] = scalarFromBits(fieldBits, f.Shape)
		}

		offset += width
	}

	return t
}

func scalarBits(n int64, s Shape) *big.Int {
	bits := new(big.Int)

	if n < 0 {
		// two's complement within the field width
		bits.SetInt64(n)
		mask := new(big.Int).Lsh(big.NewInt(1), uint(s.Width))
		bits.Add(bits, mask)
	} else {
		bits.SetInt64(n)
	}

	return bits
}

func scalarFromBits(bits *big.Int, s Shape) int64 {
	n := bits.Int64()

	if s.Signed && s.Width < 64 {
		signBit := int64(1) << uint(s.Width-1)
		if n&signBit != 0 {
			n -= int64(1) << uint(s.Width)
		}
	}

	return n
}

func extractBits(bits *big.Int, offset, width int) *big.Int {
	out := new(big.Int).Rsh(bits, uint(offset))
	mask := new(big.Int).Lsh(big.NewInt(1), uint(width))
	mask.Sub(mask, big.NewInt(1))
	out.And(out, mask)

	return out
}

func (t Token) String() string {
	return fmt.Sprintf("%v", map[string]interface{}(t))
}
