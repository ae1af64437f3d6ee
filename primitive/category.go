package primitive

// CategoryEnum is a bit set of conversion families.
type CategoryEnum int

// ConversionPair is a directed conversion between two kinds.
type ConversionPair struct {
	From, To KindEnum
}

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // number -> number, every source value is representable
	CategoryUnsafeNumber                          // number -> number, range checked at runtime
	CategoryTextNumber                            // number <-> string
	CategoryNumericBool                           // integer <-> bool as 0 and 1
	CategoryTextualBool                           // string <-> bool as yes/no, on/off, true/false
	CategoryDatetime                              // string (RFC 3339) <-> time.Time
	CategoryTimestamp                             // integer (Unix seconds) <-> time.Time
	CategoryDuration                              // string (2h45m) <-> time.Duration
	CategoryNanoseconds                           // integer (nanoseconds) <-> time.Duration
	CategorySeconds                               // float (seconds) <-> time.Duration

	CategoryAll  = (1 << iota) - 1
	CategoryNone = 0
)

// categories lists the membership test of every category, in bit order.
var categories = [...]struct {
	category CategoryEnum
	contains func(from, to KindEnum) bool
}{
	{CategorySafeNumber, func(from, to KindEnum) bool {
		return from.IsNumber() && to.IsNumber() && widens(from, to)
	}},
	{CategoryUnsafeNumber, func(from, to KindEnum) bool {
		return from.IsNumber() && to.IsNumber() && !widens(from, to)
	}},
	{CategoryTextNumber, func(from, to KindEnum) bool {
		return either(from, to, KindString, KindEnum.IsNumber)
	}},
	{CategoryNumericBool, func(from, to KindEnum) bool {
		return either(from, to, KindBool, KindEnum.IsInteger)
	}},
	{CategoryTextualBool, func(from, to KindEnum) bool {
		return either(from, to, KindBool, is(KindString))
	}},
	{CategoryDatetime, func(from, to KindEnum) bool {
		return either(from, to, KindTime, is(KindString))
	}},
	{CategoryTimestamp, func(from, to KindEnum) bool {
		return either(from, to, KindTime, KindEnum.IsInteger)
	}},
	{CategoryDuration, func(from, to KindEnum) bool {
		return either(from, to, KindDuration, is(KindString))
	}},
	{CategoryNanoseconds, func(from, to KindEnum) bool {
		// uint64 nanoseconds overflow time.Duration in both directions
		return either(from, to, KindDuration, func(k KindEnum) bool { return k.IsInteger() && k != KindUint64 })
	}},
	{CategorySeconds, func(from, to KindEnum) bool {
		return either(from, to, KindDuration, KindEnum.IsFloat)
	}},
}

func is(kind KindEnum) func(KindEnum) bool {
	return func(k KindEnum) bool { return k == kind }
}

// either reports whether one side of the pair is anchor and the other satisfies other.
func either(from, to, anchor KindEnum, other func(KindEnum) bool) bool {
	return (from == anchor && other(to)) || (to == anchor && other(from))
}

// widens reports whether every value of from fits into to without loss.
// int and uint are taken as 64 bits wide when read and 32 bits wide when written,
// so the answer holds on every platform.
func widens(from, to KindEnum) bool {
	if from == to {
		return true
	}

	switch {
	case from.IsFloat():
		return to.IsFloat() && from.Bits() < to.Bits()
	case to.IsFloat():
		return fromBits(from) <= mantissa(to)
	case from.IsSigned():
		return to.IsSigned() && fromBits(from) <= toBits(to)
	case to.IsUnsigned():
		return fromBits(from) <= toBits(to)
	default:
		// unsigned into signed needs a spare bit for the sign
		return fromBits(from) < toBits(to)
	}
}

func fromBits(k KindEnum) int {
	if k == KindInt || k == KindUint {
		return 64
	}

	return k.Bits()
}

func toBits(k KindEnum) int {
	if k == KindInt || k == KindUint {
		return 32
	}

	return k.Bits()
}

func mantissa(k KindEnum) int {
	if k == KindFloat32 {
		return 24
	}

	return 53
}

// CategoryOf returns the category containing the conversion from -> to, or CategoryNone.
// Every pair belongs to at most one category.
func CategoryOf(from, to KindEnum) CategoryEnum {
	for _, c := range categories {
		if c.contains(from, to) {
			return c.category
		}
	}

	return CategoryNone
}

// Pairs returns every conversion pair of the allowed categories.
func Pairs(allowed CategoryEnum) map[ConversionPair]struct{} {
	res := map[ConversionPair]struct{}{}

	for from := KindEnum(1); int(from) < KindTotal; from++ {
		for to := KindEnum(1); int(to) < KindTotal; to++ {
			if CategoryOf(from, to)&allowed != 0 {
				res[ConversionPair{from, to}] = struct{}{}
			}
		}
	}

	return res
}
