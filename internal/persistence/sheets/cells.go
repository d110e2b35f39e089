package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// splitCells cuts s into pieces of at most limit bytes without breaking a
// UTF-8 sequence.
func splitCells(s string, limit int) ([]string, error) {
	var cells []string
	for len(s) > 0 {
		end := limit
		if end >= len(s) {
			cells = append(cells, s)
			break
		}
		for end > 0 && !utf8.RuneStart(s[end]) {
			end--
		}
		if end == 0 {
			_, end = utf8.DecodeRuneInString(s)
		}
		cells = append(cells, s[:end])
		s = s[end:]
	}
	if len(cells) > valueCells {
		return nil, fmt.Errorf("%w: %d cells needed", ErrValueTooLarge, len(cells))
	}
	return cells, nil
}

func joinCells(cells []any) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(fmt.Sprint(c))
	}
	return b.String()
}

func cellString(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

// rowFromRange extracts the first row number of an A1 range such as
// "'Ledger'!A7:Z7".
func rowFromRange(rng string) (int, bool) {
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		rng = rng[i+1:]
	}
	if i := strings.Index(rng, ":"); i >= 0 {
		rng = rng[:i]
	}
	digits := strings.TrimLeft(rng, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$")
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
