package ptx

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/gogpu/vir/ir"
)

func TestConvertOpcode(t *testing.T) {
	tests := []struct {
		dst, src DataType
		want     ir.Opcode
	}{
		// Float to float is decided by width.
		{F32, F32, ir.OpBitcast},
		{F32, F64, ir.OpFptrunc},
		{F64, F32, ir.OpFpext},
		{F64, F64, ir.OpBitcast},

		// Integer to float follows the source signedness. Bit-pattern
		// types convert as unsigned.
		{F32, S32, ir.OpSitofp},
		{F64, S8, ir.OpSitofp},
		{F32, U32, ir.OpUitofp},
		{F32, B64, ir.OpUitofp},
		{F64, Predicate, ir.OpUitofp},

		// Float to integer follows the destination signedness.
		{S32, F32, ir.OpFptosi},
		{S64, F64, ir.OpFptosi},
		{U32, F32, ir.OpFptoui},
		{B64, F64, ir.OpFptoui},

		// Integer to signed integer.
		{S32, S64, ir.OpTrunc},
		{S32, U64, ir.OpTrunc},
		{S32, S32, ir.OpBitcast},
		{S32, U32, ir.OpBitcast},
		{S32, B32, ir.OpBitcast},
		{S64, S32, ir.OpSext},
		{S16, S8, ir.OpSext},
		{S64, U32, ir.OpZext},
		{S64, B32, ir.OpZext},
		{S32, Predicate, ir.OpZext},

		// Integer to unsigned integer widens without sign.
		{U32, S64, ir.OpTrunc},
		{U32, U32, ir.OpBitcast},
		{U64, U32, ir.OpZext},
		{U64, S32, ir.OpZext},
		{B32, S16, ir.OpZext},
		{Predicate, U64, ir.OpTrunc},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, convertOpcode(tt.dst, tt.src), "cvt %v <- %v", tt.dst, tt.src)
	}
}

func TestConvertOpcodeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("result is a conversion opcode", prop.ForAll(
		func(dst, src DataType) bool {
			switch convertOpcode(dst, src) {
			case ir.OpBitcast, ir.OpFpext, ir.OpFptosi, ir.OpFptoui, ir.OpFptrunc,
				ir.OpSext, ir.OpSitofp, ir.OpTrunc, ir.OpUitofp, ir.OpZext:
				return true
			}
			return false
		},
		genScalarType(), genScalarType(),
	))

	properties.Property("equal width and kind bitcasts", prop.ForAll(
		func(dst, src DataType) bool {
			if dst.Bytes() != src.Bytes() || dst.IsFloat() != src.IsFloat() {
				return true
			}
			return convertOpcode(dst, src) == ir.OpBitcast
		},
		genScalarType(), genScalarType(),
	))

	properties.Property("float sources never integer-convert", prop.ForAll(
		func(dst, src DataType) bool {
			if !src.IsFloat() {
				return true
			}
			switch convertOpcode(dst, src) {
			case ir.OpSext, ir.OpZext, ir.OpTrunc, ir.OpSitofp, ir.OpUitofp:
				return false
			}
			return true
		},
		genScalarType(), genScalarType(),
	))

	properties.Property("narrowing integer conversions truncate", prop.ForAll(
		func(dst, src DataType) bool {
			if dst.IsFloat() || src.IsFloat() || src.Bytes() <= dst.Bytes() {
				return true
			}
			return convertOpcode(dst, src) == ir.OpTrunc
		},
		genScalarType(), genScalarType(),
	))

	properties.Property("sign extension needs signed ends", prop.ForAll(
		func(dst, src DataType) bool {
			if convertOpcode(dst, src) != ir.OpSext {
				return true
			}
			return dst.IsSigned() && src.IsSigned() && src.Bytes() < dst.Bytes()
		},
		genScalarType(), genScalarType(),
	))

	properties.TestingRun(t)
}

func genScalarType() gopter.Gen {
	return gen.OneConstOf(
		S8, S16, S32, S64,
		U8, U16, U32, U64,
		B8, B16, B32, B64,
		F32, F64,
		Predicate,
	)
}
