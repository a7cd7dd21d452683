package link

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"
)

// NormalizeScalar maps a decoded value onto the scalar set a SimpleLink may
// carry: string, bool, int64, uint64 (only above MaxInt64), *big.Int (only
// outside 64 bits), float64 or time.Time.
//
// json.Number is resolved to the narrowest integer type that holds it, and to
// float64 otherwise.
func NormalizeScalar(v any) (any, error) {
	switch val := v.(type) {
	case string, bool, float64, time.Time:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return normalizeUint(uint64(val)), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return normalizeUint(val), nil
	case *big.Int:
		if val == nil {
			break
		}
		return normalizeBig(val), nil
	case json.Number:
		return normalizeNumber(val)
	}
	return nil, fmt.Errorf("%w: %T", errNotScalar, v)
}

func normalizeUint(u uint64) any {
	if u > math.MaxInt64 {
		return u
	}
	return int64(u)
}

func normalizeBig(n *big.Int) any {
	if n.IsInt64() {
		return n.Int64()
	}
	if n.IsUint64() {
		return n.Uint64()
	}
	return new(big.Int).Set(n)
}

func normalizeNumber(n json.Number) (any, error) {
	s := n.String()
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	if !strings.ContainsAny(s, ".eE") {
		b, ok := new(big.Int).SetString(s, 10)
		if ok {
			return normalizeBig(b), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid number %q", errNotScalar, s)
	}
	return f, nil
}

// lpgValue returns the property value written for a scalar in the labeled
// property graph. Integers outside (-MaxInt64, MaxInt64] become their decimal
// string so they survive stores limited to signed 64-bit integers.
func lpgValue(v any) any {
	switch val := v.(type) {
	case int64:
		if val == math.MinInt64 {
			return fmt.Sprint(val)
		}
		return val
	case uint64:
		if val > math.MaxInt64 {
			return fmt.Sprint(val)
		}
		return int64(val)
	case *big.Int:
		if val.IsInt64() && val.Int64() != math.MinInt64 {
			return val.Int64()
		}
		return val.String()
	case int:
		return lpgValue(int64(val))
	}
	return v
}
