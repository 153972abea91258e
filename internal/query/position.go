package query

import (
	"strconv"
	"strings"

	"github.com/codellm-devkit/typeextractor-go/internal/errors"
)

// ParsePosition parses "line,column". Both parts are required and must be
// non-negative integers.
func ParsePosition(s string) (line, column int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, errors.New(errors.CodeUsage, "missing position, expected -pos=<line>,<column>")
	}
	l, c, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errors.Newf(errors.CodeUsage, "malformed position %q, expected <line>,<column>", s)
	}
	line, err = parseCoord(l)
	if err != nil {
		return 0, 0, errors.Newf(errors.CodeUsage, "malformed line in position %q", s)
	}
	column, err = parseCoord(c)
	if err != nil {
		return 0, 0, errors.Newf(errors.CodeUsage, "malformed column in position %q", s)
	}
	return line, column, nil
}

func parseCoord(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
