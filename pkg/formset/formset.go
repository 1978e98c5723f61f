// Package formset encodes and decodes flat keyed-row form submissions.
//
// A formset with prefix "form" carries two management fields, form-TOTAL_FORMS and
// form-INITIAL_FORMS, and one group of fields per row named form-{index}-{field}.
// Keys outside the prefix are kept verbatim as extra values.
package formset

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultPrefix is the row prefix used by labeling forms.
const DefaultPrefix = "form"

var (
	// ErrMissingManagement indicates the TOTAL_FORMS or INITIAL_FORMS field is absent or invalid.
	ErrMissingManagement = errors.New("formset management data missing or invalid")
	// ErrTooManyRows indicates the submission declares more rows than allowed.
	ErrTooManyRows = errors.New("formset declares too many rows")
)

// MaxRows bounds TOTAL_FORMS to keep malformed submissions from allocating unbounded rows.
const MaxRows = 1000

// Row is one form of the set. Fields are keyed by the short field name ("id", "label").
type Row struct {
	Fields map[string]string
}

// Get returns the value of field, or "" when absent.
func (r Row) Get(field string) string {
	return r.Fields[field]
}

// Has reports whether field was submitted for this row.
func (r Row) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// Formset is a decoded submission. Rows are ordered by their submitted index.
type Formset struct {
	Prefix  string
	Total   int
	Initial int
	Rows    []Row
	Extra   url.Values
}

// TotalKey returns the management key holding the row count.
func TotalKey(prefix string) string { return prefix + "-TOTAL_FORMS" }

// InitialKey returns the management key holding the bound row count.
func InitialKey(prefix string) string { return prefix + "-INITIAL_FORMS" }

// FieldKey returns the key of field for the row at index.
func FieldKey(prefix string, index int, field string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, index, field)
}

// Parse decodes data into a Formset. Rows at indexes at or beyond TOTAL_FORMS are ignored
// and rows without any submitted field are skipped.
func Parse(prefix string, data url.Values) (*Formset, error) {
	total, err := managementInt(data, TotalKey(prefix))
	if err != nil {
		return nil, err
	}
	initial, err := managementInt(data, InitialKey(prefix))
	if err != nil {
		return nil, err
	}
	if total > MaxRows {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRows, total, MaxRows)
	}

	fs := &Formset{
		Prefix:  prefix,
		Total:   total,
		Initial: initial,
		Extra:   url.Values{},
	}

	rows := make(map[int]Row)
	rowPrefix := prefix + "-"

	for key, values := range data {
		if key == TotalKey(prefix) || key == InitialKey(prefix) {
			continue
		}

		rest, isRow := strings.CutPrefix(key, rowPrefix)
		index, field, ok := splitRowKey(rest)
		if !isRow || !ok {
			fs.Extra[key] = slices.Clone(values)
			continue
		}
		if index >= total {
			continue
		}

		row, exists := rows[index]
		if !exists {
			row = Row{Fields: make(map[string]string)}
			rows[index] = row
		}
		if len(values) > 0 {
			row.Fields[field] = values[0]
		} else {
			row.Fields[field] = ""
		}
	}

	indexes := make([]int, 0, len(rows))
	for i := range rows {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	fs.Rows = make([]Row, 0, len(indexes))
	for _, i := range indexes {
		fs.Rows = append(fs.Rows, rows[i])
	}

	return fs, nil
}

// Encode serializes the formset, numbering rows contiguously from 0.
// TOTAL_FORMS and INITIAL_FORMS are written from the Total and Initial fields.
func (f *Formset) Encode() url.Values {
	out := make(url.Values, len(f.Extra)+2+len(f.Rows)*2)
	for key, values := range f.Extra {
		out[key] = slices.Clone(values)
	}

	out.Set(TotalKey(f.Prefix), strconv.Itoa(f.Total))
	out.Set(InitialKey(f.Prefix), strconv.Itoa(f.Initial))

	for i, row := range f.Rows {
		for field, value := range row.Fields {
			out.Set(FieldKey(f.Prefix, i, field), value)
		}
	}

	return out
}

// Filter keeps the rows for which keep returns true and resets both counts to the kept length.
func (f *Formset) Filter(keep func(Row) bool) {
	f.Rows = slices.DeleteFunc(f.Rows, func(r Row) bool { return !keep(r) })
	f.Total = len(f.Rows)
	f.Initial = len(f.Rows)
}

func managementInt(data url.Values, key string) (int, error) {
	raw, ok := data[key]
	if !ok || len(raw) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrMissingManagement, key)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw[0]))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrMissingManagement, key, raw[0])
	}
	return n, nil
}

// splitRowKey splits "{index}-{field}".
func splitRowKey(rest string) (int, string, bool) {
	idx, field, ok := strings.Cut(rest, "-")
	if !ok || field == "" {
		return 0, "", false
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 {
		return 0, "", false
	}
	return n, field, true
}
