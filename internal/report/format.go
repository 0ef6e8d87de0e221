package report

import (
	"fmt"
	"strconv"
	"strings"
)

// Money formats a currency amount the same way in every renderer so the
// three outputs always agree on headline numbers.
func Money(v float64) string {
	return "$" + groupThousands(fmt.Sprintf("%.0f", v))
}

// Money2 formats a currency amount with cents.
func Money2(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.Index(s, ".")
	return "$" + groupThousands(s[:dot]) + s[dot:]
}

// Pct formats a ratio as a percentage with one decimal.
func Pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// Count formats a float total that is semantically an integer count.
func Count(v float64) string {
	return groupThousands(strconv.FormatFloat(v, 'f', 0, 64))
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	n := len(digits)
	if n <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 && !(neg && b.Len() == 1) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
