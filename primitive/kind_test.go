package primitive_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kamilors/modelmapper/primitive"
)

func Example() {
	type IntEnum int
	type StringEnum string
	type Empty struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(IntEnum(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(StringEnum(""))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Time{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindInt
	// KindString
	// KindDuration
	// KindTime
	// KindEnum(0)
}

func TestKindPredicates(t *testing.T) {
	tests := []struct {
		kind                                     primitive.KindEnum
		number, integer, signed, unsigned, float bool
	}{
		{primitive.KindInt, true, true, true, false, false},
		{primitive.KindUint16, true, true, false, true, false},
		{primitive.KindFloat32, true, false, false, false, true},
		{primitive.KindBool, false, false, false, false, false},
		{primitive.KindDuration, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.number, tt.kind.IsNumber())
			assert.Equal(t, tt.integer, tt.kind.IsInteger())
			assert.Equal(t, tt.signed, tt.kind.IsSigned())
			assert.Equal(t, tt.unsigned, tt.kind.IsUnsigned())
			assert.Equal(t, tt.float, tt.kind.IsFloat())
		})
	}

	assert.Equal(t, 8, primitive.KindUint8.Bits())
	assert.Equal(t, 32, primitive.KindFloat32.Bits())
	assert.Equal(t, "KindEnum(42)", primitive.KindEnum(42).String())
	assert.Panics(t, func() { primitive.KindString.Bits() })
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		from, to primitive.KindEnum
		expected primitive.CategoryEnum
	}{
		{primitive.KindInt8, primitive.KindInt64, primitive.CategorySafeNumber},
		{primitive.KindInt64, primitive.KindInt8, primitive.CategoryUnsafeNumber},
		{primitive.KindInt32, primitive.KindFloat32, primitive.CategoryUnsafeNumber},
		{primitive.KindString, primitive.KindFloat64, primitive.CategoryTextNumber},
		{primitive.KindUint8, primitive.KindBool, primitive.CategoryNumericBool},
		{primitive.KindBool, primitive.KindString, primitive.CategoryTextualBool},
		{primitive.KindTime, primitive.KindString, primitive.CategoryDatetime},
		{primitive.KindInt64, primitive.KindTime, primitive.CategoryTimestamp},
		{primitive.KindString, primitive.KindDuration, primitive.CategoryDuration},
		{primitive.KindDuration, primitive.KindInt64, primitive.CategoryNanoseconds},
		{primitive.KindFloat64, primitive.KindDuration, primitive.CategorySeconds},
		{primitive.KindBool, primitive.KindTime, primitive.CategoryNone},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"_"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, primitive.CategoryOf(tt.from, tt.to))
		})
	}
}

func TestPairs(t *testing.T) {
	pairs := primitive.Pairs(primitive.CategoryDatetime | primitive.CategoryDuration)

	assert.Len(t, pairs, 4)
	assert.Contains(t, pairs, primitive.ConversionPair{From: primitive.KindString, To: primitive.KindTime})
	assert.Empty(t, primitive.Pairs(primitive.CategoryNone))
}
