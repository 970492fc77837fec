// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pmdash/pmdash/internal/model"
)

// FormatMoney formats a currency amount with thousands separators.
// e.g., 1234.5 -> "$1,234.50"
func FormatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	whole := int64(v)
	cents := int64((v-float64(whole))*100 + 0.5)
	if cents >= 100 {
		whole++
		cents -= 100
	}

	s := fmt.Sprintf("$%s.%02d", FormatNumber(whole), cents)
	if neg {
		return "-" + s
	}
	return s
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a percentage value already on the 0-100 scale.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f)
}

// FormatDate renders a wire date or timestamp as YYYY-MM-DD, or "—" when
// absent.
func FormatDate(s string) string {
	if s == "" {
		return "—"
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02")
	}
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

// FormatPageFooter renders the pagination line under a listing.
// e.g., "page 2/3 · 15 total"
func FormatPageFooter(p model.Pagination) string {
	pages := p.TotalPages()
	if pages <= 0 {
		return fmt.Sprintf("%d total", p.Total)
	}
	return fmt.Sprintf("page %d/%d · %s total", p.Page, pages, FormatNumber(int64(p.Total)))
}

// StatusLabel renders an enum value for display: "on_hold" -> "On Hold".
func StatusLabel(s string) string {
	parts := strings.Split(s, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// Truncate shortens s to max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}

// Dash returns s, or "—" when empty.
func Dash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
