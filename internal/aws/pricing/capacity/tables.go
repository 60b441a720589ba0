// Package capacity reads the EBS-optimized limits page and merges its
// bandwidth, throughput and IOPS ceilings into instance type records.
package capacity

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"rdsinfo/internal/logging"
)

// TableSelector locates the limit tables on the page
const TableSelector = "div.table-contents table"

const (
	defaultOptimizedTables = 5
	expectedTables         = defaultOptimizedTables + 1
)

// ErrUnexpectedLayout is returned when the page does not carry the six limit tables
var ErrUnexpectedLayout = errors.New("unexpected capacity page layout")

var footnote = regexp.MustCompile(`\*\d$`)

// NumberParser converts a table cell to a number
type NumberParser func(string) (decimal.Decimal, error)

// ParseNumber parses figures such as "4,750" or " 18 750 " independently of
// the process locale.
func ParseNumber(s string) (decimal.Decimal, error) {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '\t', '\n', '\r', '\u00a0':
			return -1
		}
		return r
	}, s)
	if compact == "" {
		return decimal.Decimal{}, fmt.Errorf("empty number %q", s)
	}
	n, err := decimal.NewFromString(compact)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return n, nil
}

// Row is one instance type's EBS limits. Four column rows carry a single set
// of figures, which is used for both baseline and maximum.
type Row struct {
	InstanceType       string
	BaselineBandwidth  decimal.Decimal
	MaxBandwidth       decimal.Decimal
	BaselineThroughput decimal.Decimal
	MaxThroughput      decimal.Decimal
	BaselineIOPS       decimal.Decimal
	MaxIOPS            decimal.Decimal
}

// Rejected describes a table row that could not be parsed
type Rejected struct {
	Table  int
	Cells  []string
	Reason string
}

// Tables holds the rows of the six limit tables
type Tables struct {
	// DefaultOptimized combines the five tables of instance types that are
	// EBS-optimized by default.
	DefaultOptimized []Row
	// NonDefault lists instance types that support but do not default to
	// EBS optimization. Only maximum figures are set.
	NonDefault []Row
	Rejected   []Rejected
}

// ParseTables extracts the limit tables from the page. Tables are consumed by
// position: the first five are default-optimized, the sixth non-default.
func ParseTables(r io.Reader, parse NumberParser) (*Tables, error) {
	if parse == nil {
		parse = ParseNumber
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse capacity page: %w", err)
	}

	tables := doc.Find(TableSelector)
	if tables.Length() < expectedTables {
		return nil, fmt.Errorf("%w: found %d tables matching %q, need %d",
			ErrUnexpectedLayout, tables.Length(), TableSelector, expectedTables)
	}

	out := &Tables{}
	tables.Slice(0, expectedTables).Each(func(i int, table *goquery.Selection) {
		for _, cells := range dataRows(table) {
			var (
				row Row
				err error
			)
			if i < defaultOptimizedTables {
				row, err = parseDefaultRow(cells, parse)
			} else {
				row, err = parseNonDefaultRow(cells, parse)
			}
			if err != nil {
				out.Rejected = append(out.Rejected, Rejected{Table: i, Cells: cells, Reason: err.Error()})
				logging.Warn("Ignoring capacity row", map[string]interface{}{
					"table":  i,
					"cells":  strings.Join(cells, " | "),
					"reason": err.Error(),
				})
				continue
			}
			if i < defaultOptimizedTables {
				out.DefaultOptimized = append(out.DefaultOptimized, row)
			} else {
				out.NonDefault = append(out.NonDefault, row)
			}
		}
	})

	logging.Debug("Parsed capacity tables", map[string]interface{}{
		"default_optimized": len(out.DefaultOptimized),
		"non_default":       len(out.NonDefault),
		"rejected":          len(out.Rejected),
	})
	return out, nil
}

// dataRows returns the cleaned cell text of every row that is not a header
func dataRows(table *goquery.Selection) [][]string {
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.Find("th").Length() > 0 {
			return
		}
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, cellText(td.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}

func cellText(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(footnote.ReplaceAllString(s, ""))
}

func typeCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "*", ""))
}

func parseDefaultRow(cells []string, parse NumberParser) (Row, error) {
	switch len(cells) {
	case 4:
		n, err := parseAll(parse, cells[1:])
		if err != nil {
			return Row{}, err
		}
		return Row{
			InstanceType:       typeCell(cells[0]),
			BaselineBandwidth:  n[0],
			MaxBandwidth:       n[0],
			BaselineThroughput: n[1],
			MaxThroughput:      n[1],
			BaselineIOPS:       n[2],
			MaxIOPS:            n[2],
		}, nil
	case 7:
		n, err := parseAll(parse, cells[1:])
		if err != nil {
			return Row{}, err
		}
		return Row{
			InstanceType:       typeCell(cells[0]),
			BaselineBandwidth:  n[0],
			MaxBandwidth:       n[1],
			BaselineThroughput: n[2],
			MaxThroughput:      n[3],
			BaselineIOPS:       n[4],
			MaxIOPS:            n[5],
		}, nil
	default:
		return Row{}, fmt.Errorf("unsupported column count %d", len(cells))
	}
}

func parseNonDefaultRow(cells []string, parse NumberParser) (Row, error) {
	if len(cells) != 4 {
		return Row{}, fmt.Errorf("unsupported column count %d", len(cells))
	}
	n, err := parseAll(parse, cells[1:])
	if err != nil {
		return Row{}, err
	}
	return Row{
		InstanceType:  typeCell(cells[0]),
		MaxBandwidth:  n[0],
		MaxThroughput: n[1],
		MaxIOPS:       n[2],
	}, nil
}

func parseAll(parse NumberParser, cells []string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(cells))
	for i, c := range cells {
		n, err := parse(c)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}
