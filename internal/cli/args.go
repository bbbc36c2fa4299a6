// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// FLAG SPECS
// =============================================================================

// FlagKind says how a flag consumes its value.
type FlagKind int

const (
	// FlagBool takes no value (--session). --flag=false is accepted.
	FlagBool FlagKind = iota
	// FlagValue always takes the next argument (--file main.go).
	FlagValue
	// FlagOptionalInt takes the next argument only when it is an integer
	// (--history, --history 5).
	FlagOptionalInt
)

// FlagSpec declares one accepted flag. Short is optional.
type FlagSpec struct {
	Name  string
	Short string
	Kind  FlagKind
}

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser parses flags against a fixed set of FlagSpecs:
//   - Long flags: --flag value or --flag=value
//   - Short flags: -f value
//   - Boolean flags: --flag (no value needed)
//   - Positional arguments: everything from the first non-flag argument on
//
// Once the first positional argument is seen, every remaining argument is
// positional, so prompts such as "what does ls -la do" survive intact. "--"
// also ends flag parsing.
type ArgParser struct {
	flags      map[string]string // value flags by long name
	boolFlags  map[string]bool   // boolean flags by long name
	positional []string
}

// NewArgParser parses raw against specs. Unknown flags and value flags
// without a value are usage errors.
//
// Example:
//
//	args, _ := NewArgParser([]string{"-f", "main.go", "explain", "this"}, specs)
//	args.Flag("file")            // "main.go"
//	args.PositionalFrom(0)       // []string{"explain", "this"}
func NewArgParser(raw []string, specs []FlagSpec) (*ArgParser, error) {
	parser := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0),
	}

	byLong := make(map[string]FlagSpec, len(specs))
	byShort := make(map[string]FlagSpec, len(specs))
	for _, spec := range specs {
		byLong[spec.Name] = spec
		if spec.Short != "" {
			byShort[spec.Short] = spec
		}
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if arg == "--" {
			parser.positional = append(parser.positional, raw[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			parser.positional = append(parser.positional, raw[i:]...)
			break
		}

		// Handle --flag=value format
		name, value, hasValue := strings.Cut(arg, "=")
		var (
			spec  FlagSpec
			known bool
		)
		if strings.HasPrefix(name, "--") {
			spec, known = byLong[name[2:]]
		} else {
			spec, known = byShort[name[1:]]
		}
		if !known {
			return nil, NewValidationErrorWithExample("flag", arg, "unknown flag", "hint --help")
		}

		switch spec.Kind {
		case FlagBool:
			if hasValue {
				b, err := ParseBoolString(value)
				if err != nil {
					return nil, NewValidationError(spec.Name, value, "expected true or false")
				}
				parser.boolFlags[spec.Name] = b
			} else {
				parser.boolFlags[spec.Name] = true
			}
			i++

		case FlagValue:
			if hasValue {
				parser.flags[spec.Name] = value
				i++
				continue
			}
			if i+1 >= len(raw) {
				return nil, NewValidationError(spec.Name, "", "flag needs an argument")
			}
			parser.flags[spec.Name] = raw[i+1]
			i += 2

		case FlagOptionalInt:
			switch {
			case hasValue:
				parser.flags[spec.Name] = value
				i++
			case i+1 < len(raw) && isInt(raw[i+1]):
				parser.flags[spec.Name] = raw[i+1]
				i += 2
			default:
				parser.flags[spec.Name] = ""
				i++
			}
		}
	}

	return parser, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// Flag returns the value of a value flag, or "" if absent.
func (p *ArgParser) Flag(name string) string {
	return p.flags[strings.TrimLeft(name, "-")]
}

// BoolFlag returns the value of a boolean flag, false if absent.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[strings.TrimLeft(name, "-")]
}

// HasFlag returns true if the flag was given in any form.
func (p *ArgParser) HasFlag(name string) bool {
	name = strings.TrimLeft(name, "-")
	_, hasString := p.flags[name]
	_, hasBool := p.boolFlags[name]
	return hasString || hasBool
}

// PositionalFrom returns all positional arguments starting from index.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return []string{}
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// =============================================================================
// HELPER FUNCTIONS FOR COMMON ARG PATTERNS
// =============================================================================

// ParseIntWithValidation parses an integer from a string and validates it's positive.
func ParseIntWithValidation(s string, fieldName string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%s is required", fieldName)
	}

	val, err := strconv.Atoi(s)
	if err != nil {
		return 0, NewValidationError(fieldName, s, "must be a valid integer")
	}
	if val <= 0 {
		return 0, NewValidationError(fieldName, s, "must be positive")
	}
	return val, nil
}

// ParseBoolString parses a boolean from various string representations.
// Accepts: true/false, yes/no, y/n, 1/0, on/off (case-insensitive)
func ParseBoolString(s string) (bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "true", "yes", "y", "1", "on":
		return true, nil
	case "false", "no", "n", "0", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value: %s", s)
	}
}

// JoinPositionalArgs joins positional arguments from the given index into a single string.
func JoinPositionalArgs(parser *ArgParser, startIndex int) string {
	return strings.Join(parser.PositionalFrom(startIndex), " ")
}
