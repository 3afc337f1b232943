package types

// ToInt64 converts a numeric value decoded by a driver (BSON documents report
// sizes as int32, int64 or double depending on magnitude) to int64.
// The second result is false for non-numeric values.
func ToInt64(v interface{}) (int64, bool) {
	switch i := v.(type) {
	case int64:
		return i, true
	case int:
		return int64(i), true
	case int32:
		return int64(i), true
	case int16:
		return int64(i), true
	case int8:
		return int64(i), true
	case uint:
		return int64(i), true
	case uint64:
		return int64(i), true
	case uint32:
		return int64(i), true
	case uint16:
		return int64(i), true
	case uint8:
		return int64(i), true
	case float64:
		return int64(i), true
	case float32:
		return int64(i), true
	default:
		return 0, false
	}
}
