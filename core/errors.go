package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyDocumentID indicates the ID field is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrDuplicateDocumentID indicates two documents share an ID.
	ErrDuplicateDocumentID = errors.New("duplicate document id")
)
