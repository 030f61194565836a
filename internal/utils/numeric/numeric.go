// Package numeric recognizes and parses integer literal spellings.
package numeric

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Regex pattern components for number formats. Underscores may separate digits.
const (
	HexDigits = `[0-9a-fA-F]`
	HexNumber = `0[xX]` + HexDigits + `(?:` + HexDigits + `|_` + HexDigits + `)*`

	OctDigits = `[0-7]`
	OctNumber = `0[oO]` + OctDigits + `(?:` + OctDigits + `|_` + OctDigits + `)*`

	BinDigits = `[01]`
	BinNumber = `0[bB]` + BinDigits + `(?:` + BinDigits + `|_` + BinDigits + `)*`

	DecDigits = `[0-9]`
	DecNumber = DecDigits + `(?:` + DecDigits + `|_` + DecDigits + `)*`

	// IntegerPattern matches any unsigned integer literal; prefixed forms
	// are tried before plain decimals.
	IntegerPattern = `(?:` + HexNumber + `|` + OctNumber + `|` + BinNumber + `|` + DecNumber + `)`
)

var (
	decimalRegex = regexp.MustCompile(`^` + DecNumber + `$`)
	hexRegex     = regexp.MustCompile(`^` + HexNumber + `$`)
	octalRegex   = regexp.MustCompile(`^` + OctNumber + `$`)
	binaryRegex  = regexp.MustCompile(`^` + BinNumber + `$`)
)

// IsDecimal checks if the string represents a decimal
func IsDecimal(s string) bool {
	return decimalRegex.MatchString(s)
}

// IsHexadecimal checks if the string represents a hexadecimal integer
func IsHexadecimal(s string) bool {
	return hexRegex.MatchString(s)
}

// IsOctal checks if the string represents an octal integer
func IsOctal(s string) bool {
	return octalRegex.MatchString(s)
}

// IsBinary checks if the string represents a binary integer
func IsBinary(s string) bool {
	return binaryRegex.MatchString(s)
}

// StringToInteger parses a literal in any supported base. Values that do
// not fit in an int64 are an error.
func StringToInteger(s string) (int64, error) {
	base, digits := 10, s
	switch {
	case IsHexadecimal(s):
		base, digits = 16, s[2:]
	case IsOctal(s):
		base, digits = 8, s[2:]
	case IsBinary(s):
		base, digits = 2, s[2:]
	case !IsDecimal(s):
		return 0, fmt.Errorf("invalid integer literal: %s", s)
	}
	return strconv.ParseInt(strings.ReplaceAll(digits, "_", ""), base, 64)
}
