package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"primefit/internal/application/listutil"
	"primefit/internal/application/projections"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var funcMap = template.FuncMap{
	"renderMarkdown": func(md string) template.HTML {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(md))
		}
		return template.HTML(buf.String())
	},
	"money": formatMoney,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02 Jan 2006")
	},
	"datetime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02 Jan 2006 15:04")
	},
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	// pageQuery renders the list query for page n.
	"pageQuery": func(p listutil.Params, n int) template.URL {
		p.Page = n
		return template.URL(p.Query().Encode())
	},
	// sortQuery renders the list query that sorts by col, toggling direction
	// when col is already active.
	"sortQuery": func(p listutil.Params, col string) template.URL {
		p.Desc = p.Sort == col && !p.Desc
		p.Sort = col
		p.Page = 1
		return template.URL(p.Query().Encode())
	},
}

// pages holds each page parsed together with the layout.
var pages = mustParsePages()

func mustParsePages() map[string]*template.Template {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}
	out := make(map[string]*template.Template, len(names))
	for _, path := range names {
		name := strings.TrimPrefix(path, "templates/")
		if name == "layout.html" {
			continue
		}
		out[name] = template.Must(template.New("layout.html").Funcs(funcMap).
			ParseFS(templateFS, "templates/layout.html", path))
	}
	return out
}

// pageData is what every page template receives.
type pageData struct {
	Title     string
	CSRFField template.HTML
	Identity  projections.IdentityResult
	DevLogin  bool
	DevAnchor string
	Error     string
	Notice    string
	Data      any
}

func (s *server) page(r *http.Request, title string, res projections.IdentityResult, data any) pageData {
	return pageData{
		Title:     title,
		CSRFField: csrf.TemplateField(r),
		Identity:  res,
		DevLogin:  s.opts.DevLogin,
		DevAnchor: s.opts.DevAnchor,
		Notice:    r.URL.Query().Get("notice"),
		Data:      data,
	}
}

func renderTemplate(w http.ResponseWriter, status int, templateName string, data pageData) {
	tpl, ok := pages[templateName]
	if !ok {
		internalError(w, fmt.Errorf("unknown template %q", templateName))
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		slog.Error("render_failed", "template", templateName, "error", err)
		http.Error(w, "Render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// formatMoney renders a whole-unit amount with thousands separators.
func formatMoney(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
