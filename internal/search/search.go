package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultDocument ResultType = "document"
	ResultGap      ResultType = "gap"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type       ResultType `json:"type"`
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Snippet    string     `json:"snippet"`
	DocumentID string     `json:"documentId"`
	Status     string     `json:"status,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text         string
	FilterType   ResultType // empty = all types
	FilterStatus string
	Limit        int
	Offset       int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push entities into a search index. Gap entries have
// deterministic IDs, so callers pass the IDs that disappeared since the last
// indexing pass and they are removed alongside the upsert.
type Indexer interface {
	IndexDocument(doc DocumentRecord) error
	IndexGaps(removed []string, gaps []GapEntry) error
	DeleteDocument(id string, gapIDs []string) error
}

// DocumentRecord is the data we index for a document.
type DocumentRecord struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	GapCount int    `json:"gapCount"`
}

// GapEntry is the data we index for one unresolved gap, powering the gap
// panel search.
type GapEntry struct {
	ID          string `json:"id"`
	DocumentID  string `json:"documentId"`
	TableName   string `json:"tableName"`
	FieldName   string `json:"fieldName"`
	Description string `json:"description"`
	Status      string `json:"status"`
}
