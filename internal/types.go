package internal

import "time"

// Term is a single terminology entry within a language-pair scope.
// Identity is the Original text; a Term is written back to the remote
// knowledge base only when Confirmed is true and FromDatabase is false.
type Term struct {
	Original     string `json:"original"`
	Translation  string `json:"translation"`
	Confirmed    bool   `json:"confirmed"`
	FromDatabase bool   `json:"from_database"`
}

// DocumentInfo describes the document being translated. It is produced by
// the analysis step and embedded verbatim into translation prompts.
type DocumentInfo struct {
	Domain  string `json:"domain"`
	Style   string `json:"style"`
	Purpose string `json:"purpose"`
}

// Usage accounts tokens consumed by completion calls. Chunked operations
// sum the per-call counters.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add accumulates another usage record into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// TranslationResult is the final output of a translation call or of a
// chunked translation sequence.
type TranslationResult struct {
	TranslatedText string    `json:"translated_text"`
	Usage          Usage     `json:"usage"`
	TranslatedAt   time.Time `json:"translated_at"`
}
