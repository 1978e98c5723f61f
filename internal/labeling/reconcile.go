package labeling

import (
	"net/url"

	"github.com/JaimeStill/labeler/pkg/formset"
)

// Submission fields outside the evidence rows.
const (
	PartialSaveField = "partial_save"
	ForOthersField   = "for_others-label"
)

// IsPartialSave reports whether the submission asks for a partial save.
func IsPartialSave(data url.Values) bool {
	return data.Get(PartialSaveField) == "enabled"
}

// Reconcile drops submitted rows whose evidence id is not in authoritative, renumbers the
// kept rows from 0 and rewrites both row counts to the kept count. It only applies to
// partial saves; any other submission, or one without readable management fields, is
// returned unchanged.
func Reconcile(data url.Values, authoritative []string) url.Values {
	if !IsPartialSave(data) {
		return data
	}

	fs, err := formset.Parse(formset.DefaultPrefix, data)
	if err != nil {
		return data
	}

	keep := make(map[string]struct{}, len(authoritative))
	for _, id := range authoritative {
		keep[id] = struct{}{}
	}

	fs.Filter(func(row formset.Row) bool {
		if !row.Has("id") {
			return false
		}
		_, ok := keep[row.Get("id")]
		return ok
	})

	return fs.Encode()
}
