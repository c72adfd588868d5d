package pawsoft

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseMoney parses an exported amount into dollars. Cloud exports use
// plain decimal points ("1234.56"); desktop installs in European locales
// write "1.234,56". The last separator in the string is taken as the
// decimal point.
func parseMoney(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(s, "$"))
	if s == "" {
		return 0, nil
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	clean := s

	if lastComma > lastDot {
		// European: dots group thousands, comma is the decimal point.
		clean = strings.ReplaceAll(s, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	} else {
		// US: commas group thousands.
		clean = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	f, _ := d.Float64()

	return f, nil
}
