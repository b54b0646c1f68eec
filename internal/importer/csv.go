// Package importer turns batch-import CSV files into validated
// model.BatchRequest rows.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
	"github.com/Freeeeeet/table_timeline/internal/timeline"
)

const (
	MinPartySize = 1
	MaxPartySize = 20
)

var (
	ErrEmptyFile     = errors.New("csv file is empty")
	ErrNoRows        = errors.New("csv file has no data rows")
	ErrMissingColumn = errors.New("csv header is missing a required column")
)

const (
	ColCustomerName    = "customer_name"
	ColCustomerPhone   = "customer_phone"
	ColCustomerEmail   = "customer_email"
	ColPartySize       = "party_size"
	ColDate            = "date"
	ColStartTime       = "start_time"
	ColDurationMinutes = "duration_minutes"
	ColSpecialRequests = "special_requests"
	ColPriority        = "priority"
	ColPreferredSector = "preferred_sector"
)

// Columns is the canonical header order.
var Columns = []string{
	ColCustomerName,
	ColCustomerPhone,
	ColCustomerEmail,
	ColPartySize,
	ColDate,
	ColStartTime,
	ColDurationMinutes,
	ColSpecialRequests,
	ColPriority,
	ColPreferredSector,
}

var requiredColumns = []string{ColCustomerName, ColCustomerPhone, ColPartySize, ColDate, ColStartTime}

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-+()]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	timePattern  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// Issue is a row-level error or warning. Row is 1-based and counts the
// header, so it matches what a spreadsheet shows.
type Issue struct {
	Row     int    `json:"row"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type Result struct {
	Rows     []model.BatchRequest `json:"rows"`
	Errors   []Issue              `json:"errors"`
	Warnings []Issue              `json:"warnings"`
}

// OK reports whether every row parsed without errors.
func (r Result) OK() bool {
	return len(r.Errors) == 0
}

type options struct {
	sectors []string
	now     func() time.Time
	loc     *time.Location
}

type Option func(*options)

// WithSectors lists the known sector names. A preferred sector outside the
// list produces a warning and is dropped from the row.
func WithSectors(names ...string) Option {
	return func(o *options) { o.sectors = names }
}

// WithClock sets the clock and location used to warn about past dates.
func WithClock(now func() time.Time, loc *time.Location) Option {
	return func(o *options) {
		o.now = now
		o.loc = loc
	}
}

// Parse reads a CSV with a header row. Columns are matched by name, case and
// separator insensitive, so both customer_name and customerName work. Rows
// with errors are left out of Result.Rows; the file-level errors are
// ErrEmptyFile, ErrNoRows and ErrMissingColumn.
func Parse(r io.Reader, opts ...Option) (Result, error) {
	o := options{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("read csv: %w", err)
	}
	records = dropBlank(records)
	if len(records) == 0 {
		return Result{}, ErrEmptyFile
	}

	index := headerIndex(records[0])
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return Result{}, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	if len(records) == 1 {
		return Result{}, ErrNoRows
	}

	res := Result{
		Rows:     []model.BatchRequest{},
		Errors:   []Issue{},
		Warnings: []Issue{},
	}
	for i, record := range records[1:] {
		p := rowParser{row: i + 2, record: record, index: index, opts: o}
		req, ok := p.parse()
		res.Errors = append(res.Errors, p.errors...)
		res.Warnings = append(res.Warnings, p.warnings...)
		if ok {
			res.Rows = append(res.Rows, req)
		}
	}
	return res, nil
}

// Template returns a ready-to-fill CSV with the header and one example row.
func Template() string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(Columns)
	_ = w.Write([]string{
		"Juan Pérez", "+54 9 11 1234-5678", "juan@example.com", "4",
		"2025-10-15", "20:00", "90", "Window table, birthday", "VIP", "Terrace",
	})
	w.Flush()
	return b.String()
}

type rowParser struct {
	row      int
	record   []string
	index    map[string]int
	opts     options
	errors   []Issue
	warnings []Issue
}

func (p *rowParser) parse() (model.BatchRequest, bool) {
	req := model.BatchRequest{
		CustomerName:    p.field(ColCustomerName),
		CustomerPhone:   p.field(ColCustomerPhone),
		CustomerEmail:   p.field(ColCustomerEmail),
		Date:            p.field(ColDate),
		StartTime:       p.field(ColStartTime),
		SpecialRequests: p.field(ColSpecialRequests),
		Priority:        model.PriorityStandard,
	}

	if req.CustomerName == "" {
		p.fail(ColCustomerName, "customer name is required")
	}

	switch {
	case req.CustomerPhone == "":
		p.fail(ColCustomerPhone, "phone is required")
	case !validPhone(req.CustomerPhone):
		p.fail(ColCustomerPhone, "invalid phone format")
	}

	if req.CustomerEmail != "" && !emailPattern.MatchString(req.CustomerEmail) {
		p.fail(ColCustomerEmail, "invalid email format")
	}

	if raw := p.field(ColPartySize); raw == "" {
		p.fail(ColPartySize, "party size is required")
	} else if n, err := strconv.Atoi(raw); err != nil {
		p.fail(ColPartySize, "party size must be a number")
	} else if n < MinPartySize || n > MaxPartySize {
		p.fail(ColPartySize, fmt.Sprintf("party size must be between %d and %d", MinPartySize, MaxPartySize))
	} else {
		req.PartySize = n
	}

	switch {
	case req.Date == "":
		p.fail(ColDate, "date is required")
	default:
		day, err := time.ParseInLocation("2006-01-02", req.Date, p.opts.loc)
		if err != nil {
			p.fail(ColDate, "invalid date format (use YYYY-MM-DD)")
		} else if day.Before(timeline.StartOfDay(p.opts.now(), p.opts.loc)) {
			p.warn(ColDate, "date is in the past")
		}
	}

	switch {
	case req.StartTime == "":
		p.fail(ColStartTime, "start time is required")
	case !timePattern.MatchString(req.StartTime):
		p.fail(ColStartTime, "invalid time format (use HH:MM)")
	}

	req.DurationMinutes = timeline.DefaultDurationMinutes
	if raw := p.field(ColDurationMinutes); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			p.fail(ColDurationMinutes, "duration must be a number")
		case !timeline.ValidDuration(n):
			p.fail(ColDurationMinutes, fmt.Sprintf("duration must be between %d and %d minutes", timeline.MinDurationMinutes, timeline.MaxDurationMinutes))
		default:
			req.DurationMinutes = n
		}
	}

	if raw := p.field(ColPriority); raw != "" {
		priority := model.Priority(strings.ToUpper(raw))
		if priority.Valid() {
			req.Priority = priority
		} else {
			p.warn(ColPriority, fmt.Sprintf("unknown priority %q, using %s", raw, model.PriorityStandard))
		}
	}

	if raw := p.field(ColPreferredSector); raw != "" {
		if name, ok := p.sector(raw); ok {
			req.PreferredSector = name
		} else {
			p.warn(ColPreferredSector, fmt.Sprintf("unknown sector %q, ignored", raw))
		}
	}

	return req, len(p.errors) == 0
}

func (p *rowParser) field(col string) string {
	i, ok := p.index[col]
	if !ok || i >= len(p.record) {
		return ""
	}
	return strings.TrimSpace(p.record[i])
}

// sector resolves raw against the known sector names. Without a list every
// name is accepted as is.
func (p *rowParser) sector(raw string) (string, bool) {
	if len(p.opts.sectors) == 0 {
		return raw, true
	}
	for _, name := range p.opts.sectors {
		if strings.EqualFold(name, raw) {
			return name, true
		}
	}
	return "", false
}

func (p *rowParser) fail(field, msg string) {
	p.errors = append(p.errors, Issue{Row: p.row, Field: field, Message: msg})
}

func (p *rowParser) warn(field, msg string) {
	p.warnings = append(p.warnings, Issue{Row: p.row, Field: field, Message: msg})
}

func validPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			digits++
		}
	}
	return digits >= 8
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalize(h)
		for _, col := range Columns {
			if normalize(col) == key {
				if _, seen := index[col]; !seen {
					index[col] = i
				}
			}
		}
	}
	return index
}

func normalize(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "\ufeff")
	s = strings.ToLower(s)
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(s)
}

func dropBlank(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		for _, f := range rec {
			if strings.TrimSpace(f) != "" {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
