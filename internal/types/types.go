package types

import (
	"time"
)

// FiscalYear is a four digit filing year.
type FiscalYear int

// DocumentRef locates one retrieved filing document.
// Name is relative to the entity's filing-type directory, e.g.
// "0000320193-19-000119/full-submission.txt".
type DocumentRef struct {
	Path string
	Name string
}

type Document struct {
	DocumentRef
	RawText string
}

type Keyword struct {
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance"`
	Count     int     `json:"count"`
}

type Sentiment struct {
	DocumentScore float64 `json:"document_score"`
	Label         string  `json:"label,omitempty"`
}

// Relation is a (predicate, subject, object) triple.
type Relation struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Object  string `json:"object"`
}

// AnnotationRequest is one year's cleaned text submitted for annotation.
type AnnotationRequest struct {
	Entity string
	Year   FiscalYear
	Text   string
}

type AnnotationResult struct {
	Keywords  []Keyword  `json:"keywords"`
	Sentiment Sentiment  `json:"sentiment"`
	Relations []Relation `json:"relations"`
}

// DocumentFailure records a document skipped while building a corpus.
type DocumentFailure struct {
	Name   string    `json:"name"`
	Kind   ErrorKind `json:"kind"`
	Reason string    `json:"reason"`
}

// YearFailure records a year dropped from the aligned sequences.
type YearFailure struct {
	Year   FiscalYear `json:"year"`
	Reason string     `json:"reason"`
}

type SeriesPoint struct {
	Year  FiscalYear `json:"year"`
	Value float64    `json:"value"`
}

type KeywordPoint struct {
	Text        string  `json:"text"`
	Relevance   float64 `json:"relevance"`
	Count       int     `json:"count"`
	Readability float64 `json:"readability"`
}

type GraphNode struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type GraphEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Label  string  `json:"label"`
	X0     float64 `json:"x0"`
	Y0     float64 `json:"y0"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
}

type RelationGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Analysis is the cross-year result of one pipeline run.
type Analysis struct {
	RunID       string             `json:"run_id"`
	Entity      string             `json:"entity"`
	GeneratedAt time.Time          `json:"generated_at"`
	Years       []FiscalYear       `json:"years"`
	CorpusSizes map[FiscalYear]int `json:"corpus_sizes"`
	Sentiment   []SeriesPoint      `json:"sentiment"`
	KeywordYear FiscalYear         `json:"keyword_year"`
	Keywords    []KeywordPoint     `json:"keywords"`
	GraphYear   FiscalYear         `json:"graph_year"`
	Graph       *RelationGraph     `json:"graph,omitempty"`
	GraphError  string             `json:"graph_error,omitempty"`
	Skipped     []DocumentFailure  `json:"skipped_documents,omitempty"`
	Failures    []YearFailure      `json:"failed_years,omitempty"`
}
