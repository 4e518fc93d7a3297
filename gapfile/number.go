package gapfile

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxDecimals is the maximum number of decimal places a number can have.
const MaxDecimals = 9

// ErrInvalidNumber is returned when a number cannot be represented exactly.
var ErrInvalidNumber = errors.New("invalid number")

// A Number is a decimal number, as written in a problem file.
// Its value is exact: 0.1 is one tenth, not the closest float64.
// The zero Number is 0.
type Number struct {
	text string
}

// ParseNumber parses a decimal number such as "3", "-0.25" or "1.5e2".
func ParseNumber(s string) (Number, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok || strings.Contains(s, "/") {
		return Number{}, fmt.Errorf("%q: %w", s, ErrInvalidNumber)
	}
	if _, err := decimals(r); err != nil {
		return Number{}, fmt.Errorf("%q: %w", s, err)
	}
	return Number{text: s}, nil
}

// num is used for numbers known to be valid.
func num(s string) Number { return Number{text: s} }

func (n Number) String() string {
	if n.text == "" {
		return "0"
	}
	return n.text
}

func (n Number) rat() *big.Rat {
	r, ok := new(big.Rat).SetString(n.String())
	if !ok {
		return new(big.Rat)
	}
	return r
}

// Decimals returns the number of decimal places needed to write n.
func (n Number) Decimals() int {
	d, _ := decimals(n.rat())
	return d
}

// Float64 returns the closest float64 to n.
func (n Number) Float64() float64 {
	f, _ := n.rat().Float64()
	return f
}

// Scaled returns n multiplied by 10^decimals, which must be an integer that fits in an int64.
func (n Number) Scaled(decimals int) (int64, error) {
	r := n.rat()
	r.Mul(r, new(big.Rat).SetInt(pow10(decimals)))
	if !r.IsInt() || !r.Num().IsInt64() {
		return 0, fmt.Errorf("%s cannot be scaled by 10^%d: %w", n, decimals, ErrInvalidNumber)
	}
	return r.Num().Int64(), nil
}

// unscaled returns the number v / 10^decimals.
func unscaled(v int64, decimals int) Number {
	if decimals == 0 {
		return Number{text: strconv.FormatInt(v, 10)}
	}
	s := new(big.Rat).SetFrac(big.NewInt(v), pow10(decimals)).FloatString(decimals)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	return Number{text: s}
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// decimals returns the smallest k such that r * 10^k is an integer.
func decimals(r *big.Rat) (int, error) {
	p := big.NewInt(1)
	ten := big.NewInt(10)
	var rem big.Int
	for k := 0; k <= MaxDecimals; k++ {
		if rem.Mod(p, r.Denom()).Sign() == 0 {
			return k, nil
		}
		p.Mul(p, ten)
	}
	return 0, fmt.Errorf("more than %d decimal places: %w", MaxDecimals, ErrInvalidNumber)
}

// UnmarshalYAML reads the number from the text of a YAML scalar, so that no precision is lost.
func (n *Number) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	if tag := node.ShortTag(); tag != "!!int" && tag != "!!float" {
		return fmt.Errorf("line %d: %q: %w", node.Line, node.Value, ErrInvalidNumber)
	}
	res, err := ParseNumber(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*n = res
	return nil
}

// MarshalYAML writes the number as it was read.
func (n Number) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: n.String()}, nil
}

// numberValue lets the validator compare numbers with thresholds such as gte=0.
func numberValue(field reflect.Value) any {
	return field.Interface().(Number).Float64()
}

// A Scale tells how the decimal numbers of a file are turned into integers:
// budgets and costs are multiplied by 10^CostDecimals, profits by 10^ProfitDecimals.
type Scale struct {
	CostDecimals   int
	ProfitDecimals int
}

// Cost returns the decimal value of a scaled budget or cost.
func (s Scale) Cost(c int64) Number { return unscaled(c, s.CostDecimals) }

// Profit returns the decimal value of a scaled profit.
func (s Scale) Profit(p int64) Number { return unscaled(p, s.ProfitDecimals) }

// Format returns a representation of the assignment with its decimal profit, like "{a:[1] b:[1 2]} 2.3".
func (s Scale) Format(as *Assignment) string {
	str := as.String()
	return str[:strings.LastIndexByte(str, ' ')+1] + s.Profit(as.Profit()).String()
}
