package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// codeSequencer hands out rule codes of the form PREFIX + YYMMDD + a
// 4-digit sequence that restarts each day. It is seeded from the highest
// persisted code so sequences survive restarts.
type codeSequencer struct {
	prefix string
	day    string
	next   int
}

func newCodeSequencer(prefix, lastCode string, now time.Time) *codeSequencer {
	day := now.Format("060102")
	seq := 1
	datePrefix := prefix + day
	if strings.HasPrefix(lastCode, datePrefix) && len(lastCode) == len(datePrefix)+4 {
		if n, err := strconv.Atoi(lastCode[len(datePrefix):]); err == nil {
			seq = n + 1
		}
	}
	return &codeSequencer{prefix: prefix, day: day, next: seq}
}

// Next returns the next code in the sequence.
func (c *codeSequencer) Next() string {
	code := fmt.Sprintf("%s%s%04d", c.prefix, c.day, c.next)
	c.next++
	return code
}
