package listing

import (
	"math"
	"reflect"
	"strings"
)

var (
	amountType = reflect.TypeOf((*float64)(nil))
	emailsType = reflect.TypeOf([]string(nil))
)

// optionalAmountHook maps blanks and NaN to a missing amount instead of zero.
func optionalAmountHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != amountType {
		return data, nil
	}

	switch v := data.(type) {
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(v))
		if trimmed == "" || trimmed == "nan" || trimmed == "none" || trimmed == "null" {
			return nil, nil
		}
	case float64:
		if math.IsNaN(v) {
			return nil, nil
		}
	case float32:
		if math.IsNaN(float64(v)) {
			return nil, nil
		}
	}

	return data, nil
}

// emailsHook accepts a comma separated string where a list of addresses is expected.
func emailsHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != emailsType {
		return data, nil
	}

	s, ok := data.(string)
	if !ok {
		return data, nil
	}

	return strings.Split(s, ","), nil
}
