package output

import "io"

// Handler renders command results in one output format.
type Handler[T any] interface {
	// Writer returns the io.Writer this Handler will write to.
	Writer() io.Writer

	// HandleResult renders a single result.
	HandleResult(item T) error

	// HandleResults renders a collection of results.
	HandleResults(items ...T) error

	// HandleError renders the error, returning a non-nil error when the format has nowhere to put it.
	HandleError(err error) error
}

// WriteFunc writes output around a collection of items of type T, such as a header or summary.
//
// The function receives the io.Writer to write to and the number of items being printed.
type WriteFunc[T any] func(w io.Writer, count int)

// Printer renders items as human-readable text.
type Printer[T any] interface {
	// Header should be called once before the Item.
	Header(w io.Writer, count int)

	// SetHeader can be used to configure the Header function.
	SetHeader(fn WriteFunc[T])

	// Item prints one element.
	Item(w io.Writer, elem T) error

	// Footer should be called once after the Item.
	Footer(w io.Writer, count int)

	// SetFooter can be used to configure the Footer function.
	SetFooter(fn WriteFunc[T])
}

// ResultsPayload wraps multiple results under the key "results".
type ResultsPayload[T any] struct {
	Results []T `json:"results" yaml:"results"`
}

// ResultPayload wraps a single result under the key "result".
type ResultPayload[T any] struct {
	Result T `json:"result" yaml:"result"`
}

// ErrorPayload wraps an error message under the key "error".
type ErrorPayload struct {
	Error string `json:"error" yaml:"error"`
}
