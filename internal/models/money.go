package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Money - денежная сумма с фиксированной точкой, хранится в копейках (2 знака).
type Money int64

// maxMoneyUnits - наибольшая целая часть, помещающаяся в NUMERIC(18,2).
const maxMoneyUnits = 1e16 - 1

// ParseMoney разбирает сумму вида "1500", "1500.5" или "1500.50".
func ParseMoney(value string) (Money, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, Validationf("money value is empty")
	}

	negative := strings.HasPrefix(value, "-")
	digits := strings.TrimPrefix(value, "-")

	whole, fraction, hasFraction := strings.Cut(digits, ".")
	if whole == "" || (hasFraction && (fraction == "" || len(fraction) > 2)) {
		return 0, Validationf("invalid money value %q", value)
	}
	for len(fraction) < 2 {
		fraction += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, Validationf("invalid money value %q", value)
	}
	if units > maxMoneyUnits {
		return 0, Validationf("money value %q exceeds %d", value, int64(maxMoneyUnits))
	}
	cents, err := strconv.ParseInt(fraction, 10, 64)
	if err != nil || cents < 0 {
		return 0, Validationf("invalid money value %q", value)
	}

	total := units*100 + cents
	if negative {
		total = -total
	}
	return Money(total), nil
}

// Cents возвращает сумму в минимальных единицах.
func (m Money) Cents() int64 {
	return int64(m)
}

func (m Money) String() string {
	sign := ""
	cents := int64(m)
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON кодирует сумму как число с двумя знаками после точки.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON принимает как число, так и строку.
func (m *Money) UnmarshalJSON(data []byte) error {
	parsed, err := ParseMoney(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
