package labeling

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/pkg/formset"
)

// FormRow is one evidence row of a labeling form.
type FormRow struct {
	Prefix   string
	Evidence evidences.Evidence
	Label    string
}

// IDKey returns the input name holding the row's evidence id.
func (r FormRow) IDKey() string { return r.Prefix + "-id" }

// LabelKey returns the input name holding the row's label.
func (r FormRow) LabelKey() string { return r.Prefix + "-label" }

// Form is a labeling formset over a set of evidences.
type Form struct {
	Prefix  string
	Rows    []FormRow
	Errors  []string
	Options []evidences.Option
}

// TotalKey returns the input name of the row count.
func (f *Form) TotalKey() string { return formset.TotalKey(f.Prefix) }

// InitialKey returns the input name of the bound row count.
func (f *Form) InitialKey() string { return formset.InitialKey(f.Prefix) }

// Total returns the number of rows.
func (f *Form) Total() int { return len(f.Rows) }

// NewForm builds an unbound form showing the stored labels of evs.
func NewForm(evs []evidences.Evidence) *Form {
	f := &Form{
		Prefix:  formset.DefaultPrefix,
		Rows:    make([]FormRow, len(evs)),
		Options: evidences.Options,
	}
	for i, e := range evs {
		f.Rows[i] = FormRow{
			Prefix:   rowPrefix(f.Prefix, i),
			Evidence: e,
			Label:    e.LabelValue(),
		}
	}
	return f
}

// Binding controls how a submission is applied to a form.
type Binding struct {
	// Judge is stamped on every changed evidence.
	Judge string
	// DefaultLabel is given to rows submitted without a label. Empty leaves them unset.
	DefaultLabel string
}

// Bind validates a submission against the authoritative evidences and returns the bound
// form along with the label changes it carries. A form with errors carries no changes.
func Bind(data url.Values, evs []evidences.Evidence, b Binding) (*Form, []evidences.Change) {
	form := NewForm(evs)

	fs, err := formset.Parse(form.Prefix, data)
	if err != nil {
		form.Errors = append(form.Errors, err.Error())
		return form, nil
	}

	if b.DefaultLabel != "" && !evidences.ValidLabel(b.DefaultLabel) {
		form.Errors = append(form.Errors, fmt.Sprintf("%q is not a valid label for the remaining evidences", b.DefaultLabel))
	}

	byID := make(map[string]evidences.Evidence, len(evs))
	for _, e := range evs {
		byID[strconv.FormatInt(e.ID, 10)] = e
	}

	rows := make([]FormRow, 0, len(fs.Rows))
	changes := make([]evidences.Change, 0, len(fs.Rows))
	seen := make(map[int64]bool, len(fs.Rows))

	for i, row := range fs.Rows {
		e, ok := byID[row.Get("id")]
		if !ok {
			form.Errors = append(form.Errors, fmt.Sprintf("row %d: evidence %q is not part of this form", i, row.Get("id")))
			continue
		}
		if seen[e.ID] {
			form.Errors = append(form.Errors, fmt.Sprintf("row %d: evidence %d submitted twice", i, e.ID))
			continue
		}
		seen[e.ID] = true

		label := row.Get("label")
		if label != "" && !evidences.ValidLabel(label) {
			form.Errors = append(form.Errors, fmt.Sprintf("row %d: %q is not a valid label", i, label))
		}
		if label == "" {
			label = b.DefaultLabel
		}

		rows = append(rows, FormRow{Prefix: rowPrefix(form.Prefix, len(rows)), Evidence: e, Label: label})

		if label == e.LabelValue() {
			continue
		}
		change := evidences.Change{ID: e.ID, Judge: b.Judge}
		if label != "" {
			change.Label = &label
		}
		changes = append(changes, change)
	}

	form.Rows = rows
	if len(form.Errors) > 0 {
		return form, nil
	}
	return form, changes
}

func rowPrefix(prefix string, i int) string {
	return prefix + "-" + strconv.Itoa(i)
}
