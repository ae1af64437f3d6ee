package primitive

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrOutOfRange is returned when a value does not fit the destination type.
	ErrOutOfRange = errors.New("value out of range")

	// ErrUnsupported is returned when no category covers the conversion.
	ErrUnsupported = errors.New("unsupported conversion")
)

// Convert converts the scalar v to type to. Conversions follow the categories of
// CategoryOf; narrowing checks the destination range and fails with ErrOutOfRange.
func Convert(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	from := FromReflectType(v.Type())
	toKind := FromReflectType(to)
	out := reflect.New(to).Elem()

	var err error

	switch CategoryOf(from, toKind) {
	case CategorySafeNumber, CategoryUnsafeNumber:
		err = setNumber(out, v, from, toKind)
	case CategoryTextNumber:
		err = convertTextNumber(out, v, from, toKind)
	case CategoryNumericBool:
		err = convertNumericBool(out, v, from)
	case CategoryTextualBool:
		err = convertTextualBool(out, v, from)
	case CategoryDatetime:
		err = convertDatetime(out, v, from)
	case CategoryTimestamp:
		err = convertTimestamp(out, v, from, toKind)
	case CategoryDuration:
		err = convertDuration(out, v, from)
	case CategoryNanoseconds:
		if from == KindDuration {
			err = setNumber(out, v, KindInt64, toKind)
		} else {
			err = setNumber(out, v, from, KindInt64)
		}
	case CategorySeconds:
		if from == KindDuration {
			err = setFloat(out, time.Duration(v.Int()).Seconds())
		} else {
			err = setSeconds(out, v.Float())
		}
	default:
		return reflect.Value{}, fmt.Errorf("%w: %s to %s", ErrUnsupported, v.Type(), to)
	}

	if err != nil {
		return reflect.Value{}, fmt.Errorf("convert %s to %s: %w", v.Type(), to, err)
	}

	return out, nil
}

// setNumber stores the number v, read as kind from, into out read as kind to.
func setNumber(out, v reflect.Value, from, to KindEnum) error {
	switch {
	case from.IsSigned():
		return setFromInt(out, v.Int(), to)
	case from.IsUnsigned():
		return setFromUint(out, v.Uint(), to)
	default:
		return setFromFloat(out, v.Float(), to)
	}
}

func setFromInt(out reflect.Value, n int64, to KindEnum) error {
	switch {
	case to.IsSigned():
		if out.OverflowInt(n) {
			return rangeError(n, out.Type())
		}

		out.SetInt(n)
	case to.IsUnsigned():
		if n < 0 || out.OverflowUint(uint64(n)) {
			return rangeError(n, out.Type())
		}

		out.SetUint(uint64(n))
	default:
		out.SetFloat(float64(n))
	}

	return nil
}

func setFromUint(out reflect.Value, n uint64, to KindEnum) error {
	switch {
	case to.IsSigned():
		if n > math.MaxInt64 || out.OverflowInt(int64(n)) {
			return rangeError(n, out.Type())
		}

		out.SetInt(int64(n))
	case to.IsUnsigned():
		if out.OverflowUint(n) {
			return rangeError(n, out.Type())
		}

		out.SetUint(n)
	default:
		out.SetFloat(float64(n))
	}

	return nil
}

// setFromFloat truncates towards zero when the destination is an integer.
func setFromFloat(out reflect.Value, f float64, to KindEnum) error {
	if to.IsFloat() {
		return setFloat(out, f)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return rangeError(f, out.Type())
	}

	t := math.Trunc(f)

	switch {
	case to.IsSigned():
		if t < -0x1p63 || t >= 0x1p63 || out.OverflowInt(int64(t)) {
			return rangeError(f, out.Type())
		}

		out.SetInt(int64(t))
	default:
		if t < 0 || t >= 0x1p64 || out.OverflowUint(uint64(t)) {
			return rangeError(f, out.Type())
		}

		out.SetUint(uint64(t))
	}

	return nil
}

func setFloat(out reflect.Value, f float64) error {
	if !math.IsInf(f, 0) && out.OverflowFloat(f) {
		return rangeError(f, out.Type())
	}

	out.SetFloat(f)

	return nil
}

func convertTextNumber(out, v reflect.Value, from, to KindEnum) error {
	if to == KindString {
		switch {
		case from.IsSigned():
			out.SetString(strconv.FormatInt(v.Int(), 10))
		case from.IsUnsigned():
			out.SetString(strconv.FormatUint(v.Uint(), 10))
		default:
			out.SetString(strconv.FormatFloat(v.Float(), 'f', -1, from.Bits()))
		}

		return nil
	}

	s := strings.TrimSpace(v.String())

	switch {
	case to.IsSigned():
		n, err := strconv.ParseInt(s, 10, to.Bits())
		if err != nil {
			return translateNumError(err)
		}

		out.SetInt(n)
	case to.IsUnsigned():
		n, err := strconv.ParseUint(s, 10, to.Bits())
		if err != nil {
			return translateNumError(err)
		}

		out.SetUint(n)
	default:
		f, err := strconv.ParseFloat(s, to.Bits())
		if err != nil {
			return translateNumError(err)
		}

		out.SetFloat(f)
	}

	return nil
}

// convertNumericBool maps 0 and 1 to false and true; other numbers are rejected.
func convertNumericBool(out, v reflect.Value, from KindEnum) error {
	if from == KindBool {
		var n int64
		if v.Bool() {
			n = 1
		}

		if FromReflectType(out.Type()).IsSigned() {
			out.SetInt(n)
		} else {
			out.SetUint(uint64(n))
		}

		return nil
	}

	var n int64

	if from.IsSigned() {
		n = v.Int()
	} else if v.Uint() > 1 {
		return fmt.Errorf("only numbers 0 and 1 are allowed for bool, got: %d", v.Uint())
	} else {
		n = int64(v.Uint())
	}

	if n != 0 && n != 1 {
		return fmt.Errorf("only numbers 0 and 1 are allowed for bool, got: %d", n)
	}

	out.SetBool(n == 1)

	return nil
}

func convertTextualBool(out, v reflect.Value, from KindEnum) error {
	if from == KindBool {
		out.SetString(strconv.FormatBool(v.Bool()))

		return nil
	}

	switch strings.ToLower(strings.TrimSpace(v.String())) {
	default:
		return fmt.Errorf("only strings true/false, yes/no, on/off are allowed for bool, got: %s", v.String())
	case "true", "yes", "on":
		out.SetBool(true)
	case "false", "no", "off":
		out.SetBool(false)
	}

	return nil
}

func convertDatetime(out, v reflect.Value, from KindEnum) error {
	if from == KindTime {
		out.SetString(v.Interface().(time.Time).Format(time.RFC3339Nano))

		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(v.String()))
	if err != nil {
		return err
	}

	out.Set(reflect.ValueOf(t))

	return nil
}

func convertTimestamp(out, v reflect.Value, from, to KindEnum) error {
	if from == KindTime {
		return setFromInt(out, v.Interface().(time.Time).Unix(), to)
	}

	var sec int64

	if from.IsSigned() {
		sec = v.Int()
	} else {
		if v.Uint() > math.MaxInt64 {
			return rangeError(v.Uint(), timeType)
		}

		sec = int64(v.Uint())
	}

	out.Set(reflect.ValueOf(time.Unix(sec, 0).UTC()))

	return nil
}

func convertDuration(out, v reflect.Value, from KindEnum) error {
	if from == KindDuration {
		out.SetString(time.Duration(v.Int()).String())

		return nil
	}

	d, err := time.ParseDuration(strings.TrimSpace(v.String()))
	if err != nil {
		return err
	}

	out.SetInt(int64(d))

	return nil
}

func setSeconds(out reflect.Value, sec float64) error {
	ns := sec * float64(time.Second)
	if math.IsNaN(ns) || ns < math.MinInt64 || ns >= 0x1p63 {
		return rangeError(sec, durationType)
	}

	out.SetInt(int64(ns))

	return nil
}

func rangeError(v any, t reflect.Type) error {
	return fmt.Errorf("%w: %v overflows %s", ErrOutOfRange, v, t)
}

func translateNumError(err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}

	return err
}
