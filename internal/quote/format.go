package quote

import (
	"strconv"
	"strings"
	"time"
)

// FormatMoney renders v as Argentine pesos with "." thousands and "," decimals.
func FormatMoney(v float64, decimals int) string {
	negative := v < 0
	if negative {
		v = -v
	}

	raw := strconv.FormatFloat(v, 'f', decimals, 64)
	intPart, fracPart, _ := strings.Cut(raw, ".")

	var b strings.Builder
	if negative && strings.Trim(intPart+fracPart, "0") != "" {
		b.WriteByte('-')
	}
	b.WriteString("$ ")
	b.WriteString(groupThousands(intPart))
	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

// FormatScreen is the whole-peso form used for on-screen totals.
func FormatScreen(v float64) string {
	return FormatMoney(v, 0)
}

// FormatPrint is the two-decimal form used on printed documents.
func FormatPrint(v float64) string {
	return FormatMoney(v, 2)
}

// FormatPercent renders a percentage with a decimal comma and no trailing zeros.
func FormatPercent(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}

// FormatDate turns YYYY-MM-DD into DD/MM/YYYY. Empty input renders as "-".
func FormatDate(iso string) string {
	if strings.TrimSpace(iso) == "" {
		return "-"
	}
	t, err := time.Parse(dateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
