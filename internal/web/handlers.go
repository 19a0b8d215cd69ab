package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"memo-cli/internal/memo"
	"memo-cli/internal/present"

	"go.uber.org/zap"
)

type labelVM struct {
	ID     string
	Title  string
	Active bool
}

type homeVM struct {
	View    present.View
	Labels  []labelVM
	Preview template.HTML
	Count   int
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	v := present.Project(s.session.Snapshot(), notices[r.URL.Query().Get("notice")])
	preview := s.previewHTML(r, v)
	s.mu.Unlock()

	vm := homeVM{View: v, Preview: preview, Count: len(v.Labels)}
	for _, l := range v.Labels {
		vm.Labels = append(vm.Labels, labelVM{ID: l.ID, Title: l.Title, Active: l.Active})
	}
	s.writeHTMLTemplate(w, "index.html", vm)
}

// previewHTML renders the active memo's preview. A failed render keeps the
// previous preview for that memo. Callers hold s.mu.
func (s *Server) previewHTML(r *http.Request, v present.View) template.HTML {
	if !v.PreviewVisible || v.MemoID == "" {
		return ""
	}
	prev, ok := s.previews[v.MemoID]
	if ok && prev.source == v.PreviewSource {
		return prev.html
	}
	out, err := s.markdown.Render(r.Context(), v.PreviewSource)
	if err != nil {
		s.log.Warn("web: preview render failed; keeping previous preview", zap.String("memoId", v.MemoID), zap.Error(err))
		return prev.html
	}
	// Renderer output is sanitized HTML.
	html := template.HTML(out)
	s.previews[v.MemoID] = renderedPreview{source: v.PreviewSource, html: html}
	return html
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	created, err := s.session.Add(r.Context())
	s.mu.Unlock()
	if err != nil {
		s.metrics.observe("add", "error")
		s.fail(w, "add", err)
		return
	}
	s.metrics.observe("add", "ok")
	s.log.Info("web: memo added", zap.String("memoId", created.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PostFormValue("id"))
	s.mu.Lock()
	err := s.session.Select(id)
	s.mu.Unlock()

	var nf memo.NotFoundError
	switch {
	case errors.As(err, &nf):
		s.metrics.observe("select", "rejected")
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		s.metrics.observe("select", "error")
		s.fail(w, "select", err)
		return
	}
	s.metrics.observe("select", "ok")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.session.Edit()
	s.mu.Unlock()
	s.metrics.observe("edit", "ok")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	formID := strings.TrimSpace(r.PostForm.Get("id"))
	title := r.PostForm.Get("title")
	body := strings.ReplaceAll(r.PostForm.Get("body"), "\r\n", "\n")

	s.mu.Lock()
	id := s.session.Active().ID
	if formID != id {
		s.mu.Unlock()
		s.metrics.observe("save", "rejected")
		s.log.Warn("web: save for a memo that is no longer active", zap.String("formId", formID), zap.String("memoId", id))
		http.Error(w, "memo changed since this page was loaded; reload and try again", http.StatusConflict)
		return
	}
	err := s.session.Save(r.Context(), title, body)
	s.mu.Unlock()
	if err != nil {
		s.metrics.observe("save", "error")
		s.fail(w, "save", err)
		return
	}
	s.metrics.observe("save", "ok")
	s.log.Info("web: memo saved", zap.String("memoId", id))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	id := s.session.Active().ID
	err := s.session.Delete(r.Context())
	if err == nil {
		delete(s.previews, id)
	}
	s.mu.Unlock()

	var last *memo.LastMemoError
	switch {
	case errors.As(err, &last):
		s.metrics.observe("delete", "rejected")
		http.Redirect(w, r, "/?notice="+noticeLastMemo, http.StatusSeeOther)
		return
	case err != nil:
		s.metrics.observe("delete", "error")
		s.fail(w, "delete", err)
		return
	}
	s.metrics.observe("delete", "ok")
	s.log.Info("web: memo deleted", zap.String("memoId", id))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	exp, err := present.ExportActive(s.session.Snapshot())
	s.mu.Unlock()
	if err != nil {
		s.fail(w, "download", err)
		return
	}
	w.Header().Set("Content-Type", exp.MIMEType)
	w.Header().Set("Content-Disposition", contentDisposition(exp.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Data)
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	s.log.Error("web: "+op+" failed", zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
