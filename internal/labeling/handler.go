package labeling

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JaimeStill/labeler/internal/documents"
	"github.com/JaimeStill/labeler/internal/evidences"
	"github.com/JaimeStill/labeler/internal/relations"
	"github.com/JaimeStill/labeler/internal/segments"
	"github.com/JaimeStill/labeler/pkg/routes"
	"github.com/JaimeStill/labeler/pkg/session"
	"github.com/JaimeStill/labeler/pkg/web"
)

// Page templates.
const (
	Layout       = "app"
	RelationsTpl = "relations.html"
	SegmentTpl   = "segment.html"
	DocumentTpl  = "document.html"
	MessageTpl   = "message.html"
	ErrorTpl     = "error.html"
)

// ExhaustedMessage is shown when a relation has nothing left to label.
const ExhaustedMessage = "There are no more evidence to label"

var errNotFound = errors.New("page not found")

// Domain holds the corpus systems the labeling pages read and write.
type Domain struct {
	Relations relations.System
	Documents documents.System
	Segments  segments.System
	Evidences evidences.System
}

// Options configures rendering and submission limits.
type Options struct {
	// Location renders modification dates. Nil keeps stored times.
	Location *time.Location
	// MaxFormSize bounds submitted form bodies in bytes.
	MaxFormSize int64
}

// Handler serves the labeling pages.
type Handler struct {
	domain  Domain
	views   *web.TemplateSet
	metrics *Metrics
	logger  *slog.Logger
	opts    Options
}

// NewHandler creates a Handler rendering with views.
func NewHandler(domain Domain, views *web.TemplateSet, metrics *Metrics, logger *slog.Logger, opts Options) *Handler {
	return &Handler{
		domain:  domain,
		views:   views,
		metrics: metrics,
		logger:  logger.With("handler", "labeling"),
		opts:    opts,
	}
}

// Routes returns the labeling page routes.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{$}", Handler: h.Relations},
		},
		Children: []routes.Group{
			{
				Prefix: "/relations/{relationID}",
				Routes: []routes.Route{
					{Method: "GET", Pattern: "/next-segment", Handler: h.NextSegment},
					{Method: "GET", Pattern: "/next-document", Handler: h.NextDocument},
					{Method: "GET", Pattern: "/segments/{segmentID}", Handler: h.SegmentForm},
					{Method: "POST", Pattern: "/segments/{segmentID}", Handler: h.SaveSegment},
					{Method: "GET", Pattern: "/segments/{segmentID}/{direction}", Handler: h.NavigateSegments},
					{Method: "GET", Pattern: "/documents/{documentID}", Handler: h.DocumentForm},
					{Method: "POST", Pattern: "/documents/{documentID}", Handler: h.SaveDocument},
					{Method: "GET", Pattern: "/documents/{documentID}/{direction}", Handler: h.NavigateDocuments},
				},
			},
		},
	}
}

// SegmentRoute returns the segment labeling form path.
func (h *Handler) SegmentRoute(relationID, segmentID int64) string {
	return web.JoinPath(h.views.BasePath(), "relations", relationID, "segments", segmentID)
}

// DocumentRoute returns the document labeling form path.
func (h *Handler) DocumentRoute(relationID, documentID int64) string {
	return web.JoinPath(h.views.BasePath(), "relations", relationID, "documents", documentID)
}

func (h *Handler) nextSegmentRoute(relationID int64) string {
	return web.JoinPath(h.views.BasePath(), "relations", relationID, "next-segment")
}

func (h *Handler) nextDocumentRoute(relationID int64) string {
	return web.JoinPath(h.views.BasePath(), "relations", relationID, "next-document")
}

func (h *Handler) segmentKind() Kind {
	return Kind{
		Name:  "segment",
		Route: h.SegmentRoute,
		Find: func(ctx context.Context, id int64) error {
			_, err := h.domain.Segments.Find(ctx, id)
			return err
		},
		LabeledIDs: h.domain.Relations.LabeledSegmentIDs,
	}
}

func (h *Handler) documentKind() Kind {
	return Kind{
		Name:  "document",
		Route: h.DocumentRoute,
		Find: func(ctx context.Context, id int64) error {
			_, err := h.domain.Documents.Find(ctx, id)
			return err
		},
		LabeledIDs: h.domain.Relations.LabeledDocumentIDs,
	}
}

// RelationSummary is a relation with its labeling progress.
type RelationSummary struct {
	relations.Relation
	Progress relations.Progress
}

// Relations lists every relation with its labeling progress.
func (h *Handler) Relations(w http.ResponseWriter, r *http.Request) {
	all, err := h.domain.Relations.All(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	progress, err := h.domain.Relations.Progress(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	summaries := make([]RelationSummary, len(all))
	for i, rel := range all {
		p, ok := progress[rel.ID]
		if !ok {
			p = relations.Progress{RelationID: rel.ID}
		}
		summaries[i] = RelationSummary{Relation: rel, Progress: p}
	}

	h.render(w, r, http.StatusOK, RelationsTpl, web.ViewData{Title: "Relations", Data: summaries})
}

// NextSegment redirects to the next segment to label, or shows the exhaustion message.
func (h *Handler) NextSegment(w http.ResponseWriter, r *http.Request) {
	p := newPage(h, r)
	rel, err := p.Relation()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	id, err := h.domain.Relations.NextSegment(r.Context(), rel)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if id == nil {
		h.metrics.exhaustedFor("segment")
		h.message(w, r, ExhaustedMessage)
		return
	}

	http.Redirect(w, r, h.SegmentRoute(rel.ID, *id), http.StatusFound)
}

// NextDocument redirects to the next document to label, or shows the exhaustion message.
func (h *Handler) NextDocument(w http.ResponseWriter, r *http.Request) {
	p := newPage(h, r)
	rel, err := p.Relation()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	id, err := h.domain.Relations.NextDocument(r.Context(), rel)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if id == nil {
		h.metrics.exhaustedFor("document")
		h.message(w, r, ExhaustedMessage)
		return
	}

	http.Redirect(w, r, h.DocumentRoute(rel.ID, *id), http.StatusFound)
}

// NavigateSegments moves back or forward among the relation's labeled segments.
func (h *Handler) NavigateSegments(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.segmentKind(), "segmentID")
}

// NavigateDocuments moves back or forward among the relation's labeled documents.
func (h *Handler) NavigateDocuments(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, h.documentKind(), "documentID")
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request, kind Kind, param string) {
	p := newPage(h, r)
	rel, err := p.Relation()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	current, err := pathID(r, param)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	back := strings.EqualFold(r.PathValue("direction"), "back")
	direction := "forward"
	if back {
		direction = "back"
	}

	move, err := Navigate(r.Context(), kind, rel.ID, current, back)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.navigated(kind.Name, direction, move)
	if move.Warning != "" {
		if sess := session.FromContext(r.Context()); sess != nil {
			sess.Warning(move.Warning)
		}
	}

	http.Redirect(w, r, move.URL, http.StatusFound)
}

// SegmentForm shows the labeling form for a segment, first materializing its candidates.
func (h *Handler) SegmentForm(w http.ResponseWriter, r *http.Request) {
	p := newPage(h, r)
	rel, err := p.Relation()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	seg, err := p.Segment()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.domain.Evidences.EnsureForSegment(r.Context(), rel, seg.ID); err != nil {
		h.fail(w, r, err)
		return
	}

	evs, err := p.SegmentEvidences()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.renderSegment(w, r, p, http.StatusOK, NewForm(evs))
}

// SaveSegment applies a segment form submission and moves on to the next segment.
func (h *Handler) SaveSegment(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		h.fail(w, r, err)
		return
	}

	p := newPage(h, r)
	rel, err := p.Relation()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	seg, err := p.Segment()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	evs, err := p.SegmentEvidences()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	form, changes := Bind(r.PostForm, evs, Binding{Judge: session.User(r.Context())})
	if len(form.Errors) > 0 {
		h.metrics.submitted("segment", "full", "invalid")
		h.renderSegment(w, r, p, http.StatusBadRequest, form)
		return
	}

	if err := h.save(r.Context(), rel.ID, changes); err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.submitted("segment", "full", "saved")
	if sess := session.FromContext(r.Context()); sess != nil {
		sess.Info("Changes saved for segment " + strconv.FormatInt(seg.ID, 10) + ".")
	}

	http.Redirect(w, r, h.nextSegmentRoute(rel.ID), http.StatusSeeOther)
}

// DocumentForm shows the labeling form for a whole document, first materializing its candidates.
func (h *Handler) DocumentForm(w http.ResponseWriter, r *http.Request) {
	p := newPage(h, r)
	rel, err := p.Relation()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	doc, err := p.Document()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.domain.Evidences.EnsureForDocument(r.Context(), rel, doc.ID); err != nil {
		h.fail(w, r, err)
		return
	}

	evs, err := p.DocumentEvidences()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.renderDocument(w, r, p, http.StatusOK, NewForm(evs))
}

// SaveDocument applies a document form submission. A partial save keeps only rows still
// backed by evidence and returns to the referring page; a full save gives unset rows the
// "for others" label and moves on to the next document.
func (h *Handler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(w, r); err != nil {
		h.fail(w, r, err)
		return
	}

	p := newPage(h, r)
	rel, err := p.Relation()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	doc, err := p.Document()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	evs, err := p.DocumentEvidences()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	partial := IsPartialSave(r.PostForm)
	mode := "full"
	binding := Binding{Judge: session.User(r.Context())}
	data := r.PostForm

	if partial {
		mode = "partial"
		ids := make([]string, len(evs))
		for i, e := range evs {
			ids[i] = strconv.FormatInt(e.ID, 10)
		}
		data = Reconcile(r.PostForm, ids)
		h.metrics.droppedRows(submittedRows(r.PostForm) - submittedRows(data))
	} else {
		binding.DefaultLabel = r.PostForm.Get(ForOthersField)
	}

	form, changes := Bind(data, evs, binding)
	if len(form.Errors) > 0 {
		h.metrics.submitted("document", mode, "invalid")
		h.renderDocument(w, r, p, http.StatusBadRequest, form)
		return
	}

	if err := h.save(r.Context(), rel.ID, changes); err != nil {
		h.fail(w, r, err)
		return
	}

	h.metrics.submitted("document", mode, "saved")

	if partial {
		http.Redirect(w, r, h.referer(r, h.DocumentRoute(rel.ID, doc.ID)), http.StatusSeeOther)
		return
	}

	if sess := session.FromContext(r.Context()); sess != nil {
		sess.Info("Changes saved for document " + strconv.FormatInt(doc.ID, 10) + ".")
	}
	http.Redirect(w, r, h.nextDocumentRoute(rel.ID), http.StatusSeeOther)
}

func (h *Handler) save(ctx context.Context, relationID int64, changes []evidences.Change) error {
	if len(changes) == 0 {
		return nil
	}
	if err := h.domain.Evidences.SaveLabels(ctx, changes); err != nil {
		return err
	}
	for _, c := range changes {
		h.metrics.saved(relationID, c.Label)
	}
	return nil
}

func (h *Handler) renderSegment(w http.ResponseWriter, r *http.Request, p *page, status int, form *Form) {
	rel, _ := p.Relation()
	seg, err := p.Segment()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	doc, err := p.Document()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := SegmentContext(rel, doc, seg, form)
	h.render(w, r, status, SegmentTpl, web.ViewData{
		Title:    ctx["title"].(string),
		Subtitle: ctx["subtitle"].(string),
		Data:     ctx,
	})
}

func (h *Handler) renderDocument(w http.ResponseWriter, r *http.Request, p *page, status int, form *Form) {
	rel, _ := p.Relation()
	doc, err := p.Document()
	if err != nil {
		h.fail(w, r, err)
		return
	}

	segs, err := h.domain.Segments.WithEvidence(r.Context(), doc.ID, rel.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	hydrated, err := h.domain.Segments.HydrateAll(r.Context(), doc, segs)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, err := DocumentContext(rel, doc, hydrated, form, h.opts.Location)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	data := web.ViewData{Title: ctx["title"].(string), Data: ctx}
	if subtitle, ok := ctx["subtitle"].(string); ok {
		data.Subtitle = subtitle
	}
	h.render(w, r, status, DocumentTpl, data)
}

func (h *Handler) message(w http.ResponseWriter, r *http.Request, msg string) {
	h.render(w, r, http.StatusOK, MessageTpl, web.ViewData{Title: "Labeler", Data: msg})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "uri", r.URL.RequestURI(), "error", err)
	} else {
		h.logger.Warn("request rejected", "status", status, "uri", r.URL.RequestURI(), "error", err)
	}
	h.render(w, r, status, ErrorTpl, web.ViewData{Title: http.StatusText(status), Data: http.StatusText(status)})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, tpl string, data web.ViewData) {
	if sess := session.FromContext(r.Context()); sess != nil {
		data.User = sess.User
		for _, m := range sess.PopMessages() {
			data.Messages = append(data.Messages, web.Message{Level: m.Level, Text: m.Text})
		}
	}

	if err := h.views.Render(w, status, Layout, tpl, data); err != nil {
		h.logger.Error("render failed", "template", tpl, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) error {
	if h.opts.MaxFormSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxFormSize)
	}
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errFormTooLarge
		}
		return errBadForm
	}
	return nil
}

// referer returns the submitting page when it belongs to this site, else fallback.
func (h *Handler) referer(r *http.Request, fallback string) string {
	ref := r.Referer()
	if ref == "" {
		return fallback
	}
	if i := strings.Index(ref, "://"); i >= 0 {
		rest := ref[i+3:]
		host, path, _ := strings.Cut(rest, "/")
		if host != r.Host {
			return fallback
		}
		ref = "/" + path
	}
	if !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return fallback
	}
	return ref
}

var (
	errBadForm      = errors.New("malformed form submission")
	errFormTooLarge = errors.New("form submission too large")
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, errNotFound),
		errors.Is(err, relations.ErrNotFound),
		errors.Is(err, documents.ErrNotFound),
		errors.Is(err, segments.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, evidences.ErrNotFound):
		return http.StatusConflict
	case errors.Is(err, errBadForm), errors.Is(err, evidences.ErrInvalidLabel):
		return http.StatusBadRequest
	case errors.Is(err, errFormTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errNotFound
	}
	return id, nil
}

func submittedRows(data map[string][]string) int {
	n := 0
	for key := range data {
		if strings.HasPrefix(key, "form-") && strings.HasSuffix(key, "-id") {
			n++
		}
	}
	return n
}
