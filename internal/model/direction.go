// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"fmt"
	"strings"
)

// Direction is the flow direction of a rule argument.
type Direction string

const (
	DirectionInput  Direction = "INPUT"
	DirectionReturn Direction = "RETURN"
)

// ParseDirection accepts either spelling case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(DirectionInput):
		return DirectionInput, nil
	case string(DirectionReturn):
		return DirectionReturn, nil
	default:
		return "", fmt.Errorf("unknown argument direction %q", s)
	}
}
