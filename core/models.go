package core

import (
	"strings"
	"time"
)

// QARecord is a single curated question/answer pair from the knowledge file.
// The exact question text is the record's identity key.
type QARecord struct {
	Question  string   `json:"q"`
	Answer    string   `json:"a"`
	VariantEN string   `json:"q_en,omitempty"`
	VariantJA string   `json:"q_ja,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// EmbedText returns the text used for semantic embedding: the question plus
// any localized variants. Keywords are deliberately excluded; they serve
// lexical matching and pollute the semantic signal.
func (r *QARecord) EmbedText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.Question, r.VariantEN, r.VariantJA} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// KnowledgeSnapshot is a complete, consistent view of the loaded knowledge
// base. Snapshots are immutable once published; a reload replaces the whole
// snapshot, never parts of it.
type KnowledgeSnapshot struct {
	Records     []QARecord
	CompanyInfo map[string]string
	LoadedAt    time.Time
}

// LexicalResult is a keyword/exact-text search hit.
type LexicalResult struct {
	Question string
	Answer   string
	Score    float64
	Exact    bool
}

// VectorMatch is a nearest-neighbor search hit. Rank is 1-based within the
// sub-ranking that produced it.
type VectorMatch struct {
	Question string
	Answer   string
	Score    float64
	Rank     int
}

// FusedResult is a hybrid search hit after rank fusion of the lexical and
// vector sub-rankings. All scores are in [0, 1].
type FusedResult struct {
	Question     string
	Answer       string
	LexicalScore float64
	VectorScore  float64
	FusedScore   float64
	Exact        bool
}

// DirectAnswer is a high-confidence knowledge base answer returned without
// involving the generation provider.
type DirectAnswer struct {
	Answer string
	Source string
	Score  float64
}

// Usage is the token consumption reported by a generation call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}
