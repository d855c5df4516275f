// Package gedcomdate parses source-format date strings and normalized ISO
// forms into year/month/day components. It exists so that year extraction
// for temporal bucketing is a pure function of the date text.
package gedcomdate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Parsed is the interpreted form of a date string.
type Parsed struct {
	Year     int
	Month    int
	Day      int
	Modifier string // qualifier such as "ABT" or "BEF", if present
}

// Precision returns 1 (year), 2 (month) or 3 (day).
func (p *Parsed) Precision() int {
	switch {
	case p.Day > 0:
		return 3
	case p.Month > 0:
		return 2
	default:
		return 1
	}
}

// Normalized returns the ISO form at the parsed precision:
// "1789", "1789-07" or "1789-07-14".
func (p *Parsed) Normalized() string {
	switch p.Precision() {
	case 3:
		return fmt.Sprintf("%04d-%02d-%02d", p.Year, p.Month, p.Day)
	case 2:
		return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	default:
		return fmt.Sprintf("%04d", p.Year)
	}
}

// modifiers are the recognized date qualifiers. Qualified dates still carry
// a usable year; the qualifier is preserved for scoring.
var modifiers = map[string]bool{
	"ABT":   true,
	"ABOUT": true,
	"BEF":   true,
	"AFT":   true,
	"BET":   true,
	"EST":   true,
	"CAL":   true,
	"CALC":  true,
}

// months maps source-format month abbreviations to month numbers.
var months = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// connectives are range keywords permitted inside a structured date
// ("BET 1850 AND 1855", "FROM 1900 TO 1910").
var connectives = map[string]bool{
	"AND": true, "TO": true, "FROM": true,
}

// dateGrammar tokenizes a date string into an ordered part sequence.
// Interpretation happens after parsing: the same grammar accepts both
// source-format dates ("14 JUL 1789", "ABT 1850") and ISO normalized
// forms ("1789-07-14").
//
//nolint:govet // participle grammar tags are not standard struct tags
type dateGrammar struct {
	Parts []*datePart `@@+`
}

type datePart struct {
	Number *int   `  @Int`
	Word   string `| @Ident`
	Sep    string `| @Punct`
}

// dateLexer defines the lexer for date strings.
var dateLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[/\-.,]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// dateParser is the participle parser for date strings.
var dateParser = participle.MustBuild[dateGrammar](
	participle.Lexer(dateLexer),
	participle.Elide("Whitespace"),
)

// Parse interprets a date string. It returns ok=false when no year can be
// derived from the text.
func Parse(raw string) (*Parsed, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}

	parsed, err := dateParser.ParseString("", raw)
	if err != nil {
		return nil, false
	}

	out := &Parsed{}
	var numbers []int
	for _, part := range parsed.Parts {
		switch {
		case part.Number != nil:
			numbers = append(numbers, *part.Number)
		case part.Word != "":
			word := strings.ToUpper(part.Word)
			switch {
			case modifiers[word]:
				if out.Modifier == "" {
					out.Modifier = word
				}
			case months[word] != 0:
				if out.Month == 0 {
					out.Month = months[word]
				}
			case connectives[word]:
			default:
				// Free text is not a structured date; callers fall back
				// to scanning the value for a bare year.
				return nil, false
			}
		}
	}

	// The year is the first plausible 4-digit number; remaining numbers are
	// interpreted positionally (day before the month word, ISO order after
	// the year).
	yearIdx := -1
	for i, n := range numbers {
		if n >= 1000 && n <= 9999 {
			out.Year = n
			yearIdx = i
			break
		}
	}
	if yearIdx < 0 {
		return nil, false
	}

	rest := make([]int, 0, len(numbers)-1)
	rest = append(rest, numbers[:yearIdx]...)
	rest = append(rest, numbers[yearIdx+1:]...)

	if out.Month == 0 && len(rest) > 0 && rest[0] >= 1 && rest[0] <= 12 {
		// ISO order: year-month[-day]
		out.Month = rest[0]
		rest = rest[1:]
	}
	if out.Month > 0 && out.Day == 0 {
		for _, n := range rest {
			if n >= 1 && n <= 31 {
				out.Day = n
				break
			}
		}
	}

	return out, true
}

// Year returns the year derived from a date string.
func Year(s string) (int, bool) {
	p, ok := Parse(s)
	if !ok {
		return 0, false
	}
	return p.Year, true
}

// standaloneYear matches a 4-digit run not adjacent to other digits.
var standaloneYear = regexp.MustCompile(`(?:^|[^0-9])([0-9]{4})(?:[^0-9]|$)`)

// ScanYear is the last-resort year extraction: the first standalone 4-digit
// number anywhere in the string.
func ScanYear(s string) (int, bool) {
	m := standaloneYear.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	year := 0
	for _, c := range m[1] {
		year = year*10 + int(c-'0')
	}
	if year == 0 {
		return 0, false
	}
	return year, true
}
