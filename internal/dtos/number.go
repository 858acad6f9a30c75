package dtos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Number is a float that also decodes from a numeric string. Browser form
// inputs send "50000" rather than 50000.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s, err := numericText(b)
	if err != nil || s == "" {
		return err
	}
	return n.UnmarshalParam(s)
}

// UnmarshalParam lets gin bind the value from a form field.
func (n *Number) UnmarshalParam(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	*n = Number(v)
	return nil
}

// Integer is an int that also decodes from a numeric string.
type Integer int

func (i *Integer) UnmarshalJSON(b []byte) error {
	s, err := numericText(b)
	if err != nil || s == "" {
		return err
	}
	return i.UnmarshalParam(s)
}

func (i *Integer) UnmarshalParam(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*i = 0
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%q is not a whole number", s)
	}
	*i = Integer(v)
	return nil
}

// numericText returns the literal or the contents of a JSON string; null
// yields "".
func numericText(b []byte) (string, error) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return "", nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		if strings.TrimSpace(s) == "" {
			return "0", nil
		}
		return s, nil
	}
	return string(b), nil
}
