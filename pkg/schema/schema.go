// Package schema definisce i tipi JSON prodotti da typeextractor-go.
package schema

import "fmt"

type Position struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// IsValid reports whether the position carries a line.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// ============================================================================
// Query result
// ============================================================================

// TypeQuery è la struttura root dell'output di una query.
type TypeQuery struct {
	Metadata Metadata `json:"metadata"`
	Query    Query    `json:"query"`
	Match    *Match   `json:"match"` // null quando nessun nome tipizzato copre la posizione
	Issues   []Issue  `json:"issues"`
}

// Metadata contiene informazioni sulla query eseguita.
type Metadata struct {
	Tool             string `json:"tool"`
	Version          string `json:"version"`
	Language         string `json:"language"`
	Backend          string `json:"backend"`
	Timestamp        string `json:"timestamp"`
	GoVersion        string `json:"go_version"`
	LoadDurationMs   int64  `json:"load_duration_ms"`
	ResolveDuration  string `json:"resolve_duration"`
	TreeSize         int    `json:"tree_size"`
	CompilationUnits int    `json:"compilation_units"`
}

// Query echoes the request.
type Query struct {
	Unit   string `json:"unit"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// Match is the typed name found at the queried position.
type Match struct {
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	Kind       string    `json:"kind,omitempty"` // var|param|field|const|func|method
	DeclaredAt *Position `json:"declared_at,omitempty"`
}

// String formats the match the way the CLI prints it.
func (m Match) String() string {
	return m.Name + " : " + m.Type
}

// Issue rappresenta un problema rilevato durante il caricamento.
type Issue struct {
	Severity string    `json:"severity"` // error|warning|info
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Position *Position `json:"position,omitempty"`
}

func (i Issue) String() string {
	if i.Position != nil && i.Position.IsValid() {
		return fmt.Sprintf("%s: %s", i.Position, i.Message)
	}
	return i.Message
}
