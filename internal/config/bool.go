// SPDX-License-Identifier: MIT
package config

import (
	"fmt"
	"strings"
)

// truthyValues are the recognized truthy string forms (case-insensitive).
var truthyValues = map[string]bool{
	"1": true, "y": true, "t": true,
	"yes": true, "true": true, "on": true, "ok": true,
	"enable": true, "enabled": true,
}

// falsyValues are the recognized falsy string forms (case-insensitive).
var falsyValues = map[string]bool{
	"0": true, "n": true, "f": true,
	"no": true, "false": true, "off": true,
	"disable": true, "disabled": true,
}

// ParseBoolWithDefault parses s into a boolean using the truthy/falsy
// tables. An empty string returns defaultVal; anything else
// unrecognized is an error.
func ParseBoolWithDefault(s string, defaultVal bool) (bool, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return defaultVal, nil
	}
	if truthyValues[s] {
		return true, nil
	}
	if falsyValues[s] {
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value: %q", s)
}

// IsTruthy returns true if s is a recognized truthy value.
func IsTruthy(s string) bool {
	return truthyValues[strings.TrimSpace(strings.ToLower(s))]
}

// IsFalsy returns true if s is a recognized falsy value.
func IsFalsy(s string) bool {
	return falsyValues[strings.TrimSpace(strings.ToLower(s))]
}

// ParseBool parses s into a boolean: true for a recognized truthy
// value, false for everything else (empty, falsy, unrecognized).
func ParseBool(s string) bool {
	return IsTruthy(s)
}
