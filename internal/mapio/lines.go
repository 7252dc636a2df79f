package mapio

import (
	"bufio"
	"io"
	"strings"

	"forgery/internal/diagnostic"
)

// maxLine bounds a single record; official tables stay far below it.
const maxLine = 1 << 20

// eachLine calls fn for every line of r with its 1-based number. Carriage
// returns are dropped.
func eachLine(r io.Reader, fn func(lineNo int, line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	n := 0
	for sc.Scan() {
		n++

		if err := fn(n, strings.TrimRight(sc.Text(), "\r")); err != nil {
			return err
		}
	}

	return sc.Err()
}

// depth counts leading tabs.
func depth(line string) int {
	n := 0
	for n < len(line) && line[n] == '\t' {
		n++
	}

	return n
}

// stripComment removes a '#' comment and trailing blanks.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}

	return strings.TrimRight(line, " \t")
}

func parseErr(lineNo int, text, format string, args ...any) error {
	return diagnostic.NewParseError(lineNo, text, format, args...)
}
