// SPDX-License-Identifier: MIT
package server

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/apimgr/metaseek/internal/config"
	"github.com/apimgr/metaseek/internal/engine"
	"github.com/apimgr/metaseek/internal/executor"
	"github.com/apimgr/metaseek/internal/registry"
	"github.com/apimgr/metaseek/internal/results"
)

// jsonResult is the wire shape spec.md §6 documents for format=json
// results[] items.
type jsonResult struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	Content   string   `json:"content,omitempty"`
	Engine    string   `json:"engine"`
	Engines   []string `json:"engines"`
	Score     float64  `json:"score"`
	Category  string   `json:"category,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}

// searchResponse is the top-level format=json document spec.md §6
// defines.
type searchResponse struct {
	Query               string       `json:"query"`
	NumberOfResults     int          `json:"number_of_results"`
	Results             []jsonResult `json:"results"`
	Answers             []string     `json:"answers"`
	Suggestions         []string     `json:"suggestions"`
	Infoboxes           []engine.Infobox `json:"infoboxes"`
	UnresponsiveEngines []string     `json:"unresponsive_engines"`
}

// paginateResults returns results[(page-1)*perPage : page*perPage], capped
// at the slice's length, mirroring results.Container.Page's semantics for a
// slice that has already been through the plugin pipeline.
func paginateResults(all []engine.Result, page, perPage int) []engine.Result {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	start := (page - 1) * perPage
	if start >= len(all) {
		return []engine.Result{}
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func toSearchResponse(cleanQuery string, c *results.Container, all []engine.Result, page int) searchResponse {
	resultsPage := paginateResults(all, page, 10)
	out := make([]jsonResult, 0, len(resultsPage))
	for _, r := range resultsPage {
		out = append(out, jsonResult{
			URL:       r.URL,
			Title:     r.Title,
			Content:   r.Content,
			Engine:    r.Engine,
			Engines:   r.Engines,
			Score:     r.Score,
			Category:  r.Category,
			Thumbnail: r.Metadata.Thumbnail,
		})
	}

	answers := make([]string, 0, len(c.Answers()))
	for _, a := range c.Answers() {
		answers = append(answers, a.Text)
	}
	suggestions := make([]string, 0, len(c.Suggestions()))
	for _, sg := range c.Suggestions() {
		suggestions = append(suggestions, sg.Text)
	}
	unresponsive := make([]string, 0, len(c.Unresponsive()))
	for _, u := range c.Unresponsive() {
		unresponsive = append(unresponsive, u.Name)
	}

	return searchResponse{
		Query:               cleanQuery,
		NumberOfResults:     len(all),
		Results:             out,
		Answers:             answers,
		Suggestions:         suggestions,
		Infoboxes:           c.Infoboxes(),
		UnresponsiveEngines: unresponsive,
	}
}

// renderResults dispatches to the requested format=html|json|csv. all is
// the container's result list after the plugin pipeline's on_result/
// post_search hooks have run.
func (s *Server) renderResults(w http.ResponseWriter, r *http.Request, sq executor.SearchQuery, c *results.Container, all []engine.Result) {
	format := r.URL.Query().Get("format")
	resp := toSearchResponse(sq.CleanQuery, c, all, sq.Page)

	switch format {
	case "csv":
		writeCSV(w, resp)
	case "html", "":
		writeSearchHTML(w, resp)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) renderSearchEmpty(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	resp := searchResponse{Results: []jsonResult{}, Answers: []string{}, Suggestions: []string{}}
	if format == "csv" {
		writeCSV(w, resp)
		return
	}
	writeSearchHTML(w, resp)
}

func (s *Server) renderAnswerOnly(w http.ResponseWriter, r *http.Request, answer *engine.Answer, cleanQuery string) {
	resp := searchResponse{
		Query:       cleanQuery,
		Results:     []jsonResult{},
		Suggestions: []string{},
	}
	if answer != nil {
		resp.Answers = []string{answer.Text}
	} else {
		resp.Answers = []string{}
	}
	format := r.URL.Query().Get("format")
	if format == "json" {
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeSearchHTML(w, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeCSV(w http.ResponseWriter, resp searchResponse) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"title", "url", "engine", "score", "category"})
	for _, r := range resp.Results {
		_ = cw.Write([]string{r.Title, r.URL, r.Engine, strconv.FormatFloat(r.Score, 'f', 4, 64), r.Category})
	}
	cw.Flush()
}

var searchTemplate = template.Must(template.New("search").Parse(`<!DOCTYPE html>
<html><head><title>{{.Query}} - metaseek</title></head>
<body>
<h1>metaseek</h1>
<p>{{.NumberOfResults}} results for "{{.Query}}"</p>
{{range .Answers}}<div class="answer">{{.}}</div>{{end}}
<ul>
{{range .Results}}<li><a href="{{.URL}}">{{.Title}}</a> — {{.Content}} <small>({{.Engine}})</small></li>
{{end}}
</ul>
{{if .UnresponsiveEngines}}<p>Unresponsive: {{range .UnresponsiveEngines}}{{.}} {{end}}</p>{{end}}
</body></html>`))

func writeSearchHTML(w http.ResponseWriter, resp searchResponse) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var buf bytes.Buffer
	if err := searchTemplate.Execute(&buf, resp); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html><head><title>{{.Title}} - metaseek</title></head>
<body>{{.Body}}</body></html>`))

func renderPage(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = pageTemplate.Execute(w, map[string]string{"Title": title, "Body": body})
}

func indexBody() string {
	return `<h1>metaseek</h1><form action="/search"><input type="text" name="q" autofocus></form>`
}

func aboutBody() string {
	return `<h1>About metaseek</h1><p>A privacy-respecting metasearch aggregator. No search history, no tracking cookies, no third-party analytics.</p>`
}

// locales is the small static language table SPEC_FULL.md §6 names for
// /preferences, grounded on original_source's locale list rather than a
// full i18n system.
var locales = []string{"en", "de", "fr", "es", "ja", "pt", "ru", "zh"}

func renderPreferences(w http.ResponseWriter, cfg *config.Config, reg *registry.Registry) {
	var buf bytes.Buffer
	buf.WriteString("<h1>Preferences</h1><form method=\"get\" action=\"/search\">")
	buf.WriteString("<select name=\"language\">")
	for _, l := range locales {
		selected := ""
		if l == cfg.Search.DefaultLang {
			selected = " selected"
		}
		fmt.Fprintf(&buf, "<option value=\"%s\"%s>%s</option>", l, selected, l)
	}
	buf.WriteString("</select>")
	buf.WriteString("<fieldset><legend>Engines</legend>")
	for _, name := range reg.ListEngines() {
		fmt.Fprintf(&buf, "<label><input type=\"checkbox\" name=\"engines\" value=\"%s\" checked> %s</label>", name, name)
	}
	buf.WriteString("</fieldset></form>")
	renderPage(w, "Preferences", buf.String())
}
