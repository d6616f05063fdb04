package adapters

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// CSV format errors
var (
	ErrEmptyFile       = errors.New("csv file is empty")
	ErrInvalidEncoding = errors.New("csv file is not valid UTF-8")
	ErrMissingHeader   = errors.New("csv file has no header row")
)

// headerAliases maps accepted column names onto the canonical ones
var headerAliases = map[string]string{
	"name":                    "name",
	"business_name":           "name",
	"company":                 "name",
	"company_name":            "name",
	"island":                  "island",
	"location":                "island",
	"city":                    "island",
	"industry":                "industry",
	"category":                "industry",
	"address":                 "address",
	"street_address":          "address",
	"phone":                   "phone",
	"phone_number":            "phone",
	"telephone":               "phone",
	"website":                 "website",
	"url":                     "website",
	"employee_count":          "employee_count",
	"employees":               "employee_count",
	"employee_count_estimate": "employee_count",
	"description":             "description",
	"source_url":              "source_url",
}

// csvParser reads a CSV export row by row, keyed by canonical header
type csvParser struct {
	reader  *csv.Reader
	headers []string
	line    int
}

type csvRow struct {
	Line int
	Data map[string]string
}

func (r csvRow) get(col string) string { return r.Data[col] }

func (r csvRow) empty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// newCSVParser strips a UTF-8 BOM, checks the encoding and reads the header
func newCSVParser(r io.Reader, delimiter rune) (*csvParser, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(strings.TrimSpace(string(head))) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(trimPartialRune(head)) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(br)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	p := &csvParser{reader: cr}
	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	p.line = 1
	p.headers = make([]string, len(record))
	for i, h := range record {
		key := strings.ToLower(strings.Join(strings.Fields(strings.TrimSpace(h)), "_"))
		if canon, ok := headerAliases[key]; ok {
			key = canon
		}
		p.headers[i] = key
	}
	return p, nil
}

func (p *csvParser) hasHeader(name string) bool {
	for _, h := range p.headers {
		if h == name {
			return true
		}
	}
	return false
}

// next returns the next row, or io.EOF
func (p *csvParser) next() (csvRow, error) {
	record, err := p.reader.Read()
	if errors.Is(err, io.EOF) {
		return csvRow{}, io.EOF
	}
	p.line++
	if err != nil {
		return csvRow{Line: p.line}, fmt.Errorf("line %d: %w", p.line, err)
	}
	row := csvRow{Line: p.line, Data: make(map[string]string, len(p.headers))}
	for i, h := range p.headers {
		if i < len(record) && row.Data[h] == "" {
			row.Data[h] = strings.TrimSpace(record[i])
		}
	}
	return row, nil
}

// trimPartialRune drops a multi-byte rune cut off at the end of a peek buffer
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && i < len(b); i++ {
		end := len(b) - i
		if utf8.Valid(b[:end]) {
			return b[:end]
		}
	}
	return b
}
