package resolve

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/espsec/espc/internal/types"
)

// rawOf extracts the Go-native payload behind a Value so spf13/cast can
// operate on it.
func rawOf(v types.Value) any {
	switch v.Type {
	case types.TypeInt:
		return v.Int
	case types.TypeFloat:
		return v.Float
	case types.TypeString, types.TypeVersion, types.TypeEvrString:
		return v.Str
	case types.TypeBoolean:
		return v.Bool
	default:
		return nil
	}
}

// coerce converts v to the declared type want, used when a variable's
// literal initializer or a referenced operand doesn't already carry the
// declared DataType (e.g. a string literal assigned to a `version`
// variable). Coercion failures are ResolutionError/type-coercion-failure
// (§7).
func coerce(v types.Value, want types.DataType) (types.Value, error) {
	if v.Type == want {
		return v, nil
	}
	if v.Missing {
		return types.MissingValue(want), nil
	}
	raw := rawOf(v)
	switch want {
	case types.TypeInt:
		n, err := cast.ToInt64E(raw)
		if err != nil {
			return types.Value{}, fmt.Errorf("cannot coerce %s value %q to int: %w", v.Type, v, err)
		}
		return types.Int64(n), nil
	case types.TypeFloat:
		f, err := cast.ToFloat64E(raw)
		if err != nil {
			return types.Value{}, fmt.Errorf("cannot coerce %s value %q to float: %w", v.Type, v, err)
		}
		return types.Float64(f), nil
	case types.TypeBoolean:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return types.Value{}, fmt.Errorf("cannot coerce %s value %q to boolean: %w", v.Type, v, err)
		}
		return types.Bool_(b), nil
	case types.TypeString:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return types.Value{}, fmt.Errorf("cannot coerce %s value %q to string: %w", v.Type, v, err)
		}
		return types.String(s), nil
	case types.TypeVersion:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return types.Value{}, fmt.Errorf("cannot coerce %s value %q to version: %w", v.Type, v, err)
		}
		return types.Version(s), nil
	case types.TypeEvrString:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return types.Value{}, fmt.Errorf("cannot coerce %s value %q to evr_string: %w", v.Type, v, err)
		}
		return types.EvrString(s), nil
	default:
		return types.Value{}, fmt.Errorf("cannot coerce %s value to %s", v.Type, want)
	}
}
