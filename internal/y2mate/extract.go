package y2mate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// TableLayout describes the option tables rendered by the remote service.
// The site has shifted its markup before, so the offsets live here.
type TableLayout struct {
	HeaderRows  int
	FooterRows  int
	SizeCell    int
	DetailsCell int
}

// DefaultLayout matches the current y2mate markup.
var DefaultLayout = TableLayout{
	HeaderRows:  1,
	FooterRows:  1,
	SizeCell:    1,
	DetailsCell: 2,
}

// ExtractOptions reads the option rows of one format tab.
// A nil tab yields no options. Rows that do not match the layout are
// skipped and reported through the returned error, which wraps
// ErrMalformedRow; the options that did parse are still returned.
func ExtractOptions(tab *html.Node) ([]Option, error) {
	return DefaultLayout.Extract(tab)
}

// Extract is ExtractOptions with an explicit layout.
func (l TableLayout) Extract(tab *html.Node) ([]Option, error) {
	if tab == nil {
		return []Option{}, nil
	}

	rows := findAll(tab, byTag("tr"))
	start, end := l.HeaderRows, len(rows)-l.FooterRows
	if start >= end {
		return []Option{}, nil
	}

	options := make([]Option, 0, end-start)
	var errs []error
	for i, row := range rows[start:end] {
		option, err := l.parseRow(row)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", start+i, err))
			continue
		}
		options = append(options, option)
	}
	return options, errors.Join(errs...)
}

func (l TableLayout) parseRow(row *html.Node) (Option, error) {
	cells := childrenByTag(row, "td")
	if len(cells) <= l.SizeCell || len(cells) <= l.DetailsCell {
		return Option{}, fmt.Errorf("%w: expected %d cells, got %d", ErrMalformedRow, l.DetailsCell+1, len(cells))
	}

	// The audio tab renders a button before the link carrying the data.
	children := elementChildren(cells[l.DetailsCell])
	index := 0
	if len(children) == 2 {
		index = 1
	}
	if len(children) <= index {
		return Option{}, fmt.Errorf("%w: details cell is empty", ErrMalformedRow)
	}
	target := children[index]

	ftype, ok := attr(target, "data-ftype")
	if !ok {
		return Option{}, fmt.Errorf("%w: missing data-ftype", ErrMalformedRow)
	}
	rawQuality, ok := attr(target, "data-fquality")
	if !ok {
		return Option{}, fmt.Errorf("%w: missing data-fquality", ErrMalformedRow)
	}
	quality, err := ParseQuality(rawQuality)
	if err != nil {
		return Option{}, fmt.Errorf("%w: %v", ErrMalformedRow, err)
	}

	return Option{
		Quality: quality,
		Size:    strings.TrimSpace(textContent(cells[l.SizeCell])),
		Type:    ftype,
	}, nil
}

// ParseQuality strips the "p" and "HFR" suffixes and parses the number.
func ParseQuality(raw string) (int, error) {
	cleaned := strings.ReplaceAll(raw, "p", "")
	cleaned = strings.ReplaceAll(cleaned, "HFR", "")
	quality, err := strconv.Atoi(strings.TrimSpace(cleaned))
	if err != nil {
		return 0, fmt.Errorf("invalid quality %q", raw)
	}
	return quality, nil
}

const mp3TypeCall = "changeMp3Type("

// extractConverterOptions reads the bitrate list of the MP3 converter.
func extractConverterOptions(doc *html.Node) ([]Option, error) {
	list := find(doc, byTag("ul"))
	if list == nil {
		return nil, fmt.Errorf("%w: no bitrate list", ErrMalformedRow)
	}

	var qualities []int
	var errs []error
	for i, item := range childrenByTag(list, "li") {
		children := elementChildren(item)
		if len(children) == 0 {
			errs = append(errs, fmt.Errorf("item %d: %w: empty list item", i, ErrMalformedRow))
			continue
		}
		onclick, _ := attr(children[0], "onclick")
		arg := strings.TrimSpace(onclick)
		if j := strings.Index(arg, mp3TypeCall); j >= 0 {
			arg = arg[j+len(mp3TypeCall):]
		}
		arg, _, _ = strings.Cut(arg, ",")
		quality, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w: onclick %q", i, ErrMalformedRow, onclick))
			continue
		}
		qualities = append(qualities, quality)
	}
	sort.Ints(qualities)

	options := make([]Option, 0, len(qualities))
	for _, q := range qualities {
		options = append(options, Option{Quality: q, Type: "mp3"})
	}
	return options, errors.Join(errs...)
}
