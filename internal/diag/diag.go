// Package diag implements the structured diagnostic format shared by
// every collaborator that reports errors out of the core: lex/parse,
// resolve, type, ownership, and fragment-emit failures.
package diag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity distinguishes hard failures from advisory findings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind enumerates the error taxonomy buckets. It is informational (used
// for filtering/reporting), not load-bearing for correctness.
type Kind string

const (
	KindLex          Kind = "lex"
	KindParse        Kind = "parse"
	KindResolve      Kind = "resolve"
	KindType         Kind = "type"
	KindOwnership    Kind = "ownership"
	KindEvaluation   Kind = "evaluation"
	KindFragmentEmit Kind = "fragment_emit"
)

// Span is a labelled byte range into a named source.
type Span struct {
	Source string `json:"source"`
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Label  string `json:"label,omitempty"`
}

// Diagnostic is one reported finding.
type Diagnostic struct {
	Severity   Severity `json:"severity"`
	Kind       Kind     `json:"kind"`
	Message    string   `json:"message"`
	Spans      []Span   `json:"spans,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

func (d Diagnostic) Error() string { return d.Message }

// New constructs an error-severity diagnostic.
func New(kind Kind, message string, spans ...Span) Diagnostic {
	return Diagnostic{Severity: SeverityError, Kind: kind, Message: message, Spans: spans}
}

// Warning constructs a warning-severity diagnostic.
func Warning(kind Kind, message string, spans ...Span) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Kind: kind, Message: message, Spans: spans}
}

// Ownership builds the two-span diagnostic shape used by every
// ownership-rule violation (use-after-move, borrow conflict, outlives
// violation): an origin span for where the value was bound or last
// borrowed, and a site span for where the violation occurred.
func Ownership(message string, origin, site Span) Diagnostic {
	origin.Label = "origin"
	site.Label = "site"
	return New(KindOwnership, message, origin, site)
}

// Diagnostics is an ordered collection accumulated across one
// collect-and-continue pass (lex, parse, resolve, type, ownership).
type Diagnostics struct {
	items []Diagnostic
}

// Add appends one diagnostic.
func (d *Diagnostics) Add(diags ...Diagnostic) {
	d.items = append(d.items, diags...)
}

// HasErrors reports whether any item is error-severity.
func (d *Diagnostics) HasErrors() bool {
	for _, it := range d.items {
		if it.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Len reports the number of diagnostics collected.
func (d *Diagnostics) Len() int { return len(d.items) }

// All returns the collected diagnostics in report order.
func (d *Diagnostics) All() []Diagnostic { return d.items }

// Envelope is the MultipleErrors wire/display shape used whenever more
// than one diagnostic is collected in a single pass.
type Envelope struct {
	Count  int          `json:"count"`
	Errors []Diagnostic `json:"errors"`
}

// AsEnvelope wraps the collected diagnostics in the MultipleErrors shape.
func (d *Diagnostics) AsEnvelope() Envelope {
	return Envelope{Count: len(d.items), Errors: d.items}
}

// JSON renders the collected diagnostics as the MultipleErrors envelope.
func (d *Diagnostics) JSON() string {
	b, _ := json.Marshal(d.AsEnvelope())
	return string(b)
}

// Render produces a numbered list of diagnostics, each annotated with
// source context extracted around its labelled span. sources maps a
// Span.Source name to its full text so the context can be sliced out.
func (d *Diagnostics) Render(sources map[string]string) string {
	var b strings.Builder
	for i, it := range d.items {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, it.Severity, it.Message)
		for _, sp := range it.Spans {
			label := sp.Label
			if label == "" {
				label = "at"
			}
			ctx := sourceContext(sources[sp.Source], sp.Offset, sp.Length)
			fmt.Fprintf(&b, "   %s %s:%d: %s\n", label, sp.Source, sp.Offset, ctx)
		}
		if it.Suggestion != "" {
			fmt.Fprintf(&b, "   suggestion: %s\n", it.Suggestion)
		}
	}
	return b.String()
}

func sourceContext(src string, offset, length int) string {
	if src == "" || offset < 0 || offset > len(src) {
		return ""
	}
	end := offset + length
	if end > len(src) {
		end = len(src)
	}
	// Extend to enclosing line boundaries for readability.
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	lineEndRel := strings.IndexByte(src[end:], '\n')
	lineEnd := len(src)
	if lineEndRel >= 0 {
		lineEnd = end + lineEndRel
	}
	return strings.TrimRight(src[lineStart:lineEnd], "\r")
}
