package repository

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/deppfellow/training-registry/internal/model"
	"github.com/deppfellow/training-registry/internal/validation"
)

type fieldType int

const (
	textField fieldType = iota
	emailField
	idField
	dateField
)

// personFields are the an_user columns any role may edit.
var personFields = map[string]fieldType{
	"pw_hash":   textField,
	"vorname":   textField,
	"nachname":  textField,
	"email":     emailField,
	"abteilung": textField,
}

// columnRules holds the validator tags create applies to the same columns.
var columnRules = map[string]string{
	"vorname":          "max=100",
	"nachname":         "max=100",
	"email":            "email,max=254",
	"abteilung":        "max=100",
	"ausbildungsberuf": "max=100",
}

// splitChanges checks changes against the allow-lists and converts each
// value to its column type. Unknown keys and badly typed values are all
// collected into one *InvalidFieldsError.
func splitChanges(changes map[string]any, roleFields map[string]fieldType) (person, role map[string]any, err error) {
	if len(changes) == 0 {
		return nil, nil, ErrNoChanges
	}

	person = make(map[string]any)
	role = make(map[string]any)
	invalid := make(map[string]string)

	for key, raw := range changes {
		target := person
		ft, ok := personFields[key]
		if !ok {
			ft, ok = roleFields[key]
			target = role
		}
		if !ok {
			invalid[key] = "is not an editable field"
			continue
		}

		value, convErr := convertField(key, ft, raw)
		if convErr != nil {
			invalid[key] = convErr.Error()
			continue
		}
		target[key] = value
	}

	if len(invalid) > 0 {
		return nil, nil, &InvalidFieldsError{Fields: invalid}
	}

	return person, role, nil
}

func convertField(key string, ft fieldType, raw any) (any, error) {
	switch ft {
	case textField, emailField:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a string")
		}
		if s == "" {
			return nil, fmt.Errorf("must not be empty")
		}
		if rule, ok := columnRules[key]; ok {
			if err := validation.Var(s, rule); err != nil {
				return nil, err
			}
		}
		return s, nil

	case idField:
		id, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		if id < 1 {
			return nil, fmt.Errorf("must be a positive integer")
		}
		return id, nil

	case dateField:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("must be a date string in YYYY-MM-DD format")
		}
		d, err := model.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("must be a date in YYYY-MM-DD format")
		}
		return d, nil
	}

	return nil, fmt.Errorf("unsupported field type")
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case json.Number:
		id, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer")
		}
		return id, nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, fmt.Errorf("must be an integer")
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("must be an integer")
	}
}
