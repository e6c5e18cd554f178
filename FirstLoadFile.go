package enulog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/15226124477/coord"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var errNotFinite = errors.New("not a finite number")

// Supported input encodings.
const (
	EncodingUTF8 = "utf-8"
	EncodingGBK  = "gbk"
)

// day-first layouts first, ISO last
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2006-1-2",
	"2006/1/2",
}

var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"150405",
}

type loadOptions struct {
	encoding string
}

// LoadOption customizes LoadFile.
type LoadOption func(*loadOptions)

// WithEncoding selects the input text encoding (utf-8 or gbk).
func WithEncoding(enc string) LoadOption {
	return func(o *loadOptions) {
		o.encoding = strings.ToLower(strings.TrimSpace(enc))
	}
}

// LoadFile reads an ENU log into memory. The file is read once; any missing
// column or malformed value aborts the load.
func LoadFile(filePath string, opts ...LoadOption) (*Dataset, error) {
	o := loadOptions{encoding: EncodingUTF8}
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filePath)
		}
		return nil, fmt.Errorf("stat %s: %w", filePath, err)
	}
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}
	content, err = decode(content, o.encoding)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}

	ds, err := readCsv(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	ds.Path = filePath
	log.Infof("Loaded %d records from %s", ds.Len(), filePath)
	return ds, nil
}

// decode converts the raw file to UTF-8.
func decode(content []byte, enc string) ([]byte, error) {
	var decoder transform.Transformer
	switch enc {
	case EncodingGBK:
		decoder = simplifiedchinese.GBK.NewDecoder()
	case EncodingUTF8, "utf8", "":
		decoder = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
	return io.ReadAll(transform.NewReader(bytes.NewReader(content), decoder))
}

// readCsv parses the decoded table.
func readCsv(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &SchemaError{Expected: RequiredColumns, Missing: RequiredColumns}
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	missing := make([]string, 0)
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Expected: RequiredColumns, Missing: missing}
	}
	ttffCol, hasTTFF := index[ColTTFF]

	ds := &Dataset{
		Records: make([]Record, 0),
		HasTTFF: hasTTFF,
	}
	seen := make(map[string]bool)
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		field := func(col string) string {
			return strings.TrimSpace(fields[index[col]])
		}
		number := func(col string) (float64, error) {
			v, err := parseFinite(field(col))
			if err != nil {
				return 0, &ParseError{Column: col, Row: row, Value: field(col), Err: err}
			}
			return v, nil
		}

		eValue, err := number(ColE)
		if err != nil {
			return nil, err
		}
		nValue, err := number(ColN)
		if err != nil {
			return nil, err
		}
		uValue, err := number(ColU)
		if err != nil {
			return nil, err
		}
		ttsf, err := number(ColTTSF)
		if err != nil {
			return nil, err
		}
		ttff := math.NaN()
		if hasTTFF {
			raw := strings.TrimSpace(fields[ttffCol])
			if raw != "" {
				ttff, err = parseFinite(raw)
				if err != nil {
					return nil, &ParseError{Column: ColTTFF, Row: row, Value: raw, Err: err}
				}
			}
		}
		posTime, err := parseDateTime(field(ColDate), field(ColUTC), row)
		if err != nil {
			return nil, err
		}

		rec := Record{
			GpstTime:   coord.GpstTime{GPST: posTime},
			Coordinate: coord.Coordinate{ConvertBefore: coord.NEZ, ConvertAfter: coord.NEZ},
			Date:       field(ColDate),
			UTC:        field(ColUTC),
			Cycle:      cycleID(field(ColCycle)),
			TTFF:       ttff,
			TTSF:       ttsf,
		}
		rec.Coordinate.CoordinateNEZ.E = eValue
		rec.Coordinate.CoordinateNEZ.N = nValue
		rec.Coordinate.CoordinateNEZ.Z = uValue
		ds.Records = append(ds.Records, rec)

		if !seen[rec.Cycle] {
			seen[rec.Cycle] = true
			ds.Cycles = append(ds.Cycles, rec.Cycle)
		}
	}
	sortCycles(ds.Cycles)
	return ds, nil
}

// parseFinite parses a float, rejecting NaN and infinities.
func parseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// cycleID canonicalizes numeric ids so that 1, 01 and 1.0 name one cycle.
func cycleID(raw string) string {
	v, err := parseFinite(raw)
	if err != nil {
		return raw
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseDateTime combines the date and time-of-day fields, day first.
func parseDateTime(date, utc string, row int) (time.Time, error) {
	var day, clock time.Time
	var err error
	for _, layout := range dateLayouts {
		if day, err = time.Parse(layout, date); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, &ParseError{Column: ColDate, Row: row, Value: date, Err: err}
	}
	for _, layout := range timeLayouts {
		if clock, err = time.Parse(layout, utc); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, &ParseError{Column: ColUTC, Row: row, Value: utc, Err: err}
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), time.UTC), nil
}

// sortCycles orders ids numerically when every id is a number.
func sortCycles(cycles []string) {
	numeric := true
	for _, c := range cycles {
		if _, err := parseFinite(c); err != nil {
			numeric = false
			break
		}
	}
	if !numeric {
		sort.Strings(cycles)
		return
	}
	sort.SliceStable(cycles, func(i, j int) bool {
		a, _ := strconv.ParseFloat(cycles[i], 64)
		b, _ := strconv.ParseFloat(cycles[j], 64)
		return a < b
	})
}
