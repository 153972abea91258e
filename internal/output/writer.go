// Package output gestisce la scrittura del risultato di una query.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/codellm-devkit/typeextractor-go/pkg/schema"
)

// Format rappresenta il formato di output supportato.
type Format string

const (
	FormatText Format = "text" // "<name> : <type>", niente in caso di no-match
	FormatJSON Format = "json"
)

// Config configura l'output writer.
type Config struct {
	OutputDir string // directory output (vuoto = stdout)
	Format    Format // text|json (default: text)
	Indent    bool   // indentazione JSON
}

// FileName returns the name written under OutputDir for format f.
func FileName(f Format) string {
	if f == FormatJSON {
		return "type_query.json"
	}
	return "type_query.txt"
}

// Write scrive il risultato nel formato richiesto, su stdout se OutputDir è vuoto.
func Write(q *schema.TypeQuery, cfg Config, stdout io.Writer) error {
	if cfg.Format == "" {
		cfg.Format = FormatText
	}
	if cfg.Format != FormatText && cfg.Format != FormatJSON {
		return fmt.Errorf("unsupported format: %s", cfg.Format)
	}

	w := stdout
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		f, err := os.Create(filepath.Join(cfg.OutputDir, FileName(cfg.Format)))
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if cfg.Format == FormatJSON {
		return encodeJSON(w, q, cfg.Indent)
	}
	return writeText(w, q)
}

func writeText(w io.Writer, q *schema.TypeQuery) error {
	if q.Match == nil {
		return nil
	}
	if _, err := fmt.Fprintln(w, q.Match.String()); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func encodeJSON(w io.Writer, data interface{}, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	// i tipi generici contengono < e >, niente escape HTML
	enc.SetEscapeHTML(false)

	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ToJSON converte il risultato in JSON string, senza newline finale.
func ToJSON(q *schema.TypeQuery, indent bool) (string, error) {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, q, indent); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
