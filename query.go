package schedbot

import (
	"fmt"
	"strings"
)

// QueryKind selects how a lookup is framed to the user.
// It does not change the matching algorithm.
type QueryKind int

// Supported query kinds. The zero value means no kind has been chosen.
const (
	QueryGroup QueryKind = iota + 1
	QueryTeacher
	QueryDay
)

// QueryKinds lists every supported kind in menu order.
var QueryKinds = []QueryKind{QueryGroup, QueryTeacher, QueryDay}

// String returns the kind's identifier ("group", "teacher", "day").
func (k QueryKind) String() string {
	switch k {
	case QueryGroup:
		return "group"
	case QueryTeacher:
		return "teacher"
	case QueryDay:
		return "day"
	default:
		return ""
	}
}

// Valid reports whether k is one of the supported kinds.
func (k QueryKind) Valid() bool {
	return k >= QueryGroup && k <= QueryDay
}

// ParseQueryKind parses a kind identifier as returned by String.
func ParseQueryKind(s string) (QueryKind, error) {
	for _, k := range QueryKinds {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, Errorf(EINVALID, "unknown query kind %q", s)
}

// NotFoundMessage returns the reply used when value matches no document.
func (k QueryKind) NotFoundMessage(value string) string {
	switch k {
	case QueryGroup:
		return fmt.Sprintf("Расписание для группы %s не найдено.", value)
	case QueryTeacher:
		return fmt.Sprintf("Расписание для преподавателя %s не найдено.", value)
	case QueryDay:
		return fmt.Sprintf("Расписание на дату %s не найдено.", value)
	default:
		return fmt.Sprintf("Расписание %s не найдено.", value)
	}
}

// FormatLookup formats lookup matches for display.
// Each match becomes a "Источник: <filename>" block; blocks are separated by
// a blank line. No matches yields the kind's not-found message.
func FormatLookup(kind QueryKind, value string, matches []IndexEntry) string {
	if len(matches) == 0 {
		return kind.NotFoundMessage(value)
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, "Источник: "+m.Key+"\n"+m.Text)
	}
	return strings.Join(parts, "\n\n")
}

// Lookup searches idx for value and formats the result for kind.
func Lookup(idx *Index, kind QueryKind, value string) string {
	return FormatLookup(kind, value, idx.Lookup(value))
}
