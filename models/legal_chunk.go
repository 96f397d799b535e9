package models

// LegalChunk represents one citable unit of segmented legal text, normally a
// single article of a zoning plan. Chunks are immutable once emitted by the
// segmenter: the text is a contiguous slice of the normalized source document,
// and concatenating all chunks of a document in emission order reproduces that
// document losslessly.
type LegalChunk struct {
	DocID           string  `json:"doc_id"`
	DocTitle        string  `json:"doc_title"`
	DocumentType    string  `json:"document_type"`
	EstablishedDate *string `json:"established_date,omitempty"`

	// ArticleID is nil when no article boundary was detected in the document.
	ArticleID *string `json:"article_id,omitempty"`
	// Heading is the verbatim matched boundary line, or a placeholder for
	// unsegmented documents.
	Heading string `json:"heading"`
	Text    string `json:"text"`
}

// ChunkKey identifies a chunk for duplicate suppression during selection.
type ChunkKey struct {
	DocID     string
	ArticleID string
	Heading   string
}

// Key returns the duplicate-suppression key for the chunk.
func (c LegalChunk) Key() ChunkKey {
	k := ChunkKey{DocID: c.DocID, Heading: c.Heading}
	if c.ArticleID != nil {
		k.ArticleID = *c.ArticleID
	}
	return k
}

// ArticleLabel returns the article identifier or "N/A" for unsegmented chunks.
func (c LegalChunk) ArticleLabel() string {
	if c.ArticleID == nil || *c.ArticleID == "" {
		return "N/A"
	}
	return *c.ArticleID
}
