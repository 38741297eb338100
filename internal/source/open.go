package source

import "fmt"

// Open returns the source for the named text backend.
func Open(path, backend string) (Source, error) {
	switch backend {
	case "fitz", "":
		return NewFitzPDFSource(path)
	case "tabula":
		return NewTabulaSource(path)
	default:
		return nil, fmt.Errorf("unknown text backend: %s", backend)
	}
}
