package labeling

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/JaimeStill/labeler/internal/documents"
	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/internal/segments"
	"github.com/JaimeStill/labeler/pkg/formatting"
)

// Context is the display context handed to a labeling template.
type Context map[string]any

// SegmentTokens is one segment of a document form with its display tokens.
type SegmentTokens struct {
	ID         int64                `json:"id"`
	RichTokens []segments.RichToken `json:"rich_tokens"`
}

// EOProperties are the client-side selection flags of an entity occurrence.
type EOProperties struct {
	Selectable bool `json:"selectable"`
	Selected   bool `json:"selected"`
}

// RelationInstance describes one evidence for the client-side labeling tool.
type RelationInstance struct {
	Relation [2]int64 `json:"relation"`
	FormID   string   `json:"form_id"`
	Info     string   `json:"info"`
}

// LabelField is a standalone label selector rendered outside the evidence rows.
type LabelField struct {
	Prefix  string
	Options []evidences.Option
}

// Name returns the input name of the selector.
func (f LabelField) Name() string { return f.Prefix + "-label" }

// Title renders the page title for labeling rel.
func Title(rel *relations.Relation) string {
	return "Labeling Evidence for Relation " + rel.String()
}

// Info renders the labeling history line of an evidence.
func Info(e evidences.Evidence, loc *time.Location) string {
	label := "None"
	if e.Label != nil {
		label = *e.Label
	}
	judge := "unknown"
	if e.Judge != nil && *e.Judge != "" {
		judge = *e.Judge
	}
	return fmt.Sprintf("Labeled as %s by %s on %s", label, judge, formatting.ShortDateTime(e.ModificationDate, loc))
}

// SegmentContext builds the context of the segment labeling page.
func SegmentContext(rel *relations.Relation, doc *documents.Document, seg *segments.Hydrated, form *Form) Context {
	return Context{
		"title":               Title(rel),
		"subtitle":            fmt.Sprintf("For Document \"%s\", Text Segment id %d", doc.HumanIdentifier, seg.ID),
		"segment":             seg,
		"segment_rich_tokens": seg.RichTokens(),
		"relation":            rel,
		"formset":             form,
	}
}

// DocumentContext builds the context of the document labeling page. segs holds the
// document's segments with evidence for the relation; without any, the context only
// carries the title, document and relation.
func DocumentContext(
	rel *relations.Relation,
	doc *documents.Document,
	segs []segments.Hydrated,
	form *Form,
	loc *time.Location,
) (Context, error) {
	title := Title(rel)

	if len(segs) == 0 {
		return Context{
			"title":    title,
			"document": doc,
			"relation": rel,
		}, nil
	}

	withTokens := make([]SegmentTokens, len(segs))
	for i, s := range segs {
		withTokens[i] = SegmentTokens{ID: s.ID, RichTokens: s.RichTokens()}
	}

	eos := make(map[string]EOProperties)
	instances := make([]RelationInstance, 0, len(form.Rows))
	values := make(map[string]*string, len(form.Rows))

	for _, row := range form.Rows {
		e := row.Evidence
		instances = append(instances, RelationInstance{
			Relation: [2]int64{e.LeftEOID, e.RightEOID},
			FormID:   row.Prefix,
			Info:     Info(e, loc),
		})
		if row.Label != "" {
			values[row.Prefix] = &row.Label
		} else {
			values[row.Prefix] = nil
		}

		for _, id := range []int64{e.LeftEOID, e.RightEOID} {
			key := strconv.FormatInt(id, 10)
			if _, ok := eos[key]; !ok {
				eos[key] = EOProperties{Selectable: true}
			}
		}
	}

	eosJSON, err := marshalJS(eos)
	if err != nil {
		return nil, err
	}
	instancesJSON, err := marshalJS(instances)
	if err != nil {
		return nil, err
	}
	valuesJSON, err := marshalJS(values)
	if err != nil {
		return nil, err
	}

	options := make([]string, len(evidences.Options))
	for i, o := range evidences.Options {
		options[i] = o.Value
	}

	return Context{
		"title":            title,
		"subtitle":         fmt.Sprintf("For Document \"%s\"", doc.HumanIdentifier),
		"document":         doc,
		"segments":         withTokens,
		"relation":         rel,
		"formset":          form,
		"form_for_others":  LabelField{Prefix: "for_others", Options: evidences.Options},
		"form_toolbox":     LabelField{Prefix: "toolbox", Options: evidences.Options},
		"initial_tool":     evidences.YesRelation,
		"eos_properties":   eosJSON,
		"relations_list":   instancesJSON,
		"forms_values":     valuesJSON,
		"question_options": options,
	}, nil
}

// marshalJS encodes v for embedding in a script element. json.Marshal escapes <, > and &.
func marshalJS(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode view payload: %w", err)
	}
	return template.JS(b), nil
}
