package presenter

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"portfolio-analyzer/pkg/utils"
)

// FormatMoney renders amount in currency, e.g. "$1,234.50". Unknown or
// empty currency codes fall back to a plain two-decimal amount followed by
// the code.
func FormatMoney(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	cur := money.GetCurrency(code)
	if code == "" || cur == nil {
		return strings.TrimSpace(utils.FormatAmount(amount) + " " + code)
	}

	factor := decimal.New(1, int32(cur.Fraction))
	minor := amount.Mul(factor).Round(0).IntPart()
	return money.New(minor, code).Display()
}
