package symcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGuaranteedNeverClaimsAVariable verifies a bare Variable never
// guarantees any attribute - Guaranteed is conservative, and nothing is
// known about an unconstrained variable.
func TestGuaranteedNeverClaimsAVariable(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)

	assert.False(t, ex.Guaranteed(AttrPositive))
	assert.False(t, ex.Guaranteed(AttrNonzero))
	assert.False(t, ex.Guaranteed(AttrDefined))

	ex.Release()
}

// TestGuaranteedConstant verifies constants report their own sign and
// range attributes directly.
func TestGuaranteedConstant(t *testing.T) {
	ctx := NewContext()
	five := FromFloat(ctx, 5)
	assert.True(t, five.Guaranteed(AttrPositive))
	assert.True(t, five.Guaranteed(AttrNonzero))
	assert.False(t, five.Guaranteed(AttrNegative))
	five.Release()

	negHalf := FromFloat(ctx, -0.5)
	assert.True(t, negHalf.Guaranteed(AttrOpenUnitRange))
	assert.True(t, negHalf.Guaranteed(AttrNegative))
	negHalf.Release()
}

// TestGuaranteedAbsIsNonnegative verifies abs(f) is always guaranteed
// nonnegative once f is guaranteed defined, regardless of what f is.
func TestGuaranteedAbsIsNonnegative(t *testing.T) {
	ctx := NewContext()
	x := NewVariable(ctx)
	ex := FromVariable(ctx, x)
	a := ex.Abs()

	assert.False(t, a.Guaranteed(AttrNonnegative), "abs(variable) is not guaranteed defined, so nothing else can be claimed")

	defined := FromFloat(ctx, -3).Abs()
	assert.True(t, defined.Guaranteed(AttrNonnegative))
	assert.True(t, defined.Guaranteed(AttrDefined))

	a.Release()
	defined.Release()
	ex.Release()
}

// TestGuaranteedSquareIsNonnegative mirrors TestGuaranteedAbsIsNonnegative
// for square(f).
func TestGuaranteedSquareIsNonnegative(t *testing.T) {
	ctx := NewContext()
	sq := FromFloat(ctx, -4).Square()
	assert.True(t, sq.Guaranteed(AttrNonnegative))
	sq.Release()
}
