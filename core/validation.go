package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//
// NOT validated:
//   - Content (an empty note is still a note and simply ranks low)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocumentID)
	}

	return nil
}

// ValidateDocuments validates every document and checks that IDs are unique.
func ValidateDocuments(docs []Document) error {
	seen := make(map[string]int, len(docs))
	for i := range docs {
		if err := ValidateDocument(&docs[i]); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
		if prev, ok := seen[docs[i].ID]; ok {
			return fmt.Errorf("%w: %w: %q at %d and %d",
				ErrInvalidDocument, ErrDuplicateDocumentID, docs[i].ID, prev, i)
		}
		seen[docs[i].ID] = i
	}
	return nil
}
