// SPDX-License-Identifier: MIT

// Package engine defines the contract every search source implements: a pure
// build_request/parse_response pair plus static metadata. It is the lowest
// layer of the pipeline — it has no dependency on the registry, container, or
// executor that consume it.
package engine

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// ResultType classifies what kind of hit a Result represents.
type ResultType string

const (
	ResultDefault  ResultType = "default"
	ResultImage    ResultType = "image"
	ResultVideo    ResultType = "video"
	ResultMap      ResultType = "map"
	ResultNews     ResultType = "news"
	ResultPaper    ResultType = "paper"
	ResultFile     ResultType = "file"
	ResultCode     ResultType = "code"
	ResultAnswer   ResultType = "answer"
	ResultInfobox  ResultType = "infobox"
)

// Metadata carries the optional per-result fields spec.md lists. Using a
// struct instead of a map keeps JSON output typed; every field is omitted
// when zero.
type Metadata struct {
	Thumbnail     string `json:"thumbnail,omitempty"`
	ImgSrc        string `json:"img_src,omitempty"`
	Author        string `json:"author,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	Duration      string `json:"duration,omitempty"`
	Views         string `json:"views,omitempty"`
	IframeSrc     string `json:"iframe_src,omitempty"`
	AudioSrc      string `json:"audio_src,omitempty"`
	IsOfficial    bool   `json:"is_official,omitempty"`
	FileType      string `json:"file_type,omitempty"`
	FileSize      string `json:"file_size,omitempty"`
	Template      string `json:"template,omitempty"`
}

// Result is a single hit as produced by one engine's parse_response, before
// it is merged into the container. Engine and Engines are set once per
// engine at production time; the container unions them across merges.
type Result struct {
	URL      string `json:"url"`
	Host     string `json:"host"`
	Title    string `json:"title"`
	Content  string `json:"content,omitempty"`
	Category string `json:"category,omitempty"`

	Engine  string   `json:"engine"`
	Engines []string `json:"engines"`

	// Positions holds the 1-indexed rank this result held within each
	// engine that returned it, one entry per engine (see invariant in
	// spec.md §3: len(Engines) == len(Positions)).
	Positions []int `json:"positions"`

	Score float64 `json:"score"`

	ResultType ResultType `json:"result_type"`
	Metadata   Metadata   `json:"metadata,omitempty"`
}

// Answer is an instant answer, either from a plugin or from an engine.
type Answer struct {
	Text   string `json:"text"`
	Engine string `json:"engine"`
}

// Suggestion is an alternate-spelling-style hint.
type Suggestion struct {
	Text   string `json:"text"`
	Engine string `json:"engine"`
}

// Correction is a "did you mean" hint, same shape as Suggestion.
type Correction struct {
	Text   string `json:"text"`
	Engine string `json:"engine"`
}

// Infobox is a structured side-panel entry, typically from an encyclopedic
// engine.
type Infobox struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Content    string            `json:"content,omitempty"`
	ImgSrc     string            `json:"img_src,omitempty"`
	URL        string            `json:"url,omitempty"`
	Engine     string            `json:"engine"`
	Attributes []InfoboxAttr     `json:"attributes,omitempty"`
	URLs       []InfoboxURL      `json:"urls,omitempty"`
}

// InfoboxAttr is a label/value pair shown inside an Infobox.
type InfoboxAttr struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// InfoboxURL is a related link shown inside an Infobox.
type InfoboxURL struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Timing records how long one engine took and how many results it returned.
type Timing struct {
	Engine      string        `json:"engine"`
	Elapsed     time.Duration `json:"elapsed_ms"`
	ResultCount int           `json:"result_count"`
}

// EngineResults is what an engine's parse_response returns synchronously.
type EngineResults struct {
	Results     []Result
	Answers     []Answer
	Suggestions []Suggestion
	Corrections []Correction
	Infoboxes   []Infobox
	// TotalResults is an optional estimate of the engine's full result
	// count, when the engine's response exposes one.
	TotalResults *int
}

// RequestParams is what the executor hands an engine to build its outbound
// request. It is read-only to the engine: build_request must be a pure
// function of these fields plus engine-local configuration.
type RequestParams struct {
	Query        string
	Page         int
	Language     string
	SafeSearch   int
	TimeRange    string
	Category     string
	// EngineData is opaque per-engine carry-over state threaded through a
	// single SearchQuery; engines are stateless across calls (spec.md §4.2).
	EngineData map[string]any
}

// Method is the outbound HTTP verb an EngineRequest may use.
type Method string

const (
	MethodGET  Method = http.MethodGet
	MethodPOST Method = http.MethodPost
)

// BodyKind tags which payload an EngineRequest carries, standing in for the
// {none | form | json | raw bytes} sum type spec.md describes — Go has no
// tagged unions, so the kind plus three optional fields serve the same role.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyForm
	BodyJSON
	BodyRaw
)

// EngineRequest is a language-neutral description of the outbound HTTP call
// an engine wants made. The executor (via internal/httpclient) is the only
// thing that ever turns this into a real *http.Request.
type EngineRequest struct {
	URL     string
	Method  Method
	Headers http.Header
	Query   url.Values
	Cookies map[string]string

	BodyKind BodyKind
	Form     url.Values
	JSON     any
	Raw      []byte
}

// NewEngineRequest returns a GET request with an empty header set, the
// common case for every engine in internal/engines.
func NewEngineRequest(rawURL string) *EngineRequest {
	return &EngineRequest{
		URL:     rawURL,
		Method:  MethodGET,
		Headers: make(http.Header),
		Query:   make(url.Values),
	}
}

// EngineResponse is the language-neutral result of executing an
// EngineRequest: status, headers, and the body as both text and the final
// URL reached after redirects.
type EngineResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	FinalURL   string
}

// Feature is an optional engine capability bit.
type Feature int

const (
	FeaturePaging Feature = iota
	FeatureTimeRange
	FeatureSafeSearch
)

// Capabilities declares which optional request dimensions an engine honors.
type Capabilities struct {
	SupportsPaging     bool
	SupportsTimeRange  bool
	SupportsSafeSearch bool
}

// Engine is the contract every search source implements: two pure functions
// plus static metadata. It is explicitly stateless across calls — anything
// that must survive between build_request and parse_response travels inside
// RequestParams.EngineData, never in engine-local fields.
type Engine interface {
	Name() string
	About() string
	Categories() []string
	Capabilities() Capabilities
	Weight() float64
	TimeoutSeconds() int
	ResultsPerPage() int

	BuildRequest(params RequestParams) (*EngineRequest, error)
	ParseResponse(resp *EngineResponse) (*EngineResults, error)
}

// Configurable is implemented by engines that accept startup configuration
// and validation, per spec.md §4.2's optional initialize/validate hooks.
type Configurable interface {
	Initialize(config map[string]any) error
	Validate(config map[string]any) error
}

// Fetcher is the collaborator an engine's outbound request is executed
// through. internal/httpclient implements it; tests substitute a stub.
type Fetcher interface {
	Do(ctx context.Context, req *EngineRequest) (*EngineResponse, error)
}
