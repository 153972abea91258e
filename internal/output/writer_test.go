package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codellm-devkit/typeextractor-go/pkg/schema"
)

func sample(match bool) *schema.TypeQuery {
	q := &schema.TypeQuery{
		Metadata: schema.Metadata{Tool: "typeextractor-go", Backend: "types"},
		Query:    schema.Query{Unit: "/src/a.go", Line: 3, Column: 5},
		Issues:   []schema.Issue{},
	}
	if match {
		q.Match = &schema.Match{Name: "m", Type: "map[string]<-chan int", Kind: "var"}
	}
	return q
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(sample(true), Config{}, &buf))
	assert.Equal(t, "m : map[string]<-chan int\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(sample(false), Config{Format: FormatText}, &buf))
	assert.Empty(t, buf.String())
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(sample(true), Config{Format: FormatJSON, Indent: true}, &buf))
	assert.Contains(t, buf.String(), `"type": "map[string]<-chan int"`)

	var back schema.TypeQuery
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	require.NotNil(t, back.Match)
	assert.Equal(t, "m", back.Match.Name)

	buf.Reset()
	require.NoError(t, Write(sample(false), Config{Format: FormatJSON}, &buf))
	assert.Contains(t, buf.String(), `"match":null`)
}

func TestWrite_OutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var buf bytes.Buffer
	require.NoError(t, Write(sample(true), Config{OutputDir: dir, Format: FormatJSON}, &buf))
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(filepath.Join(dir, "type_query.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"m"`)

	require.NoError(t, Write(sample(true), Config{OutputDir: dir}, &buf))
	data, err = os.ReadFile(filepath.Join(dir, "type_query.txt"))
	require.NoError(t, err)
	assert.Equal(t, "m : map[string]<-chan int\n", string(data))
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	err := Write(sample(true), Config{Format: "msgpack"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestToJSON(t *testing.T) {
	s, err := ToJSON(sample(true), false)
	require.NoError(t, err)
	assert.Contains(t, s, `"kind":"var"`)
	assert.Contains(t, s, `<-chan int`)
	assert.NotContains(t, s, "\n")

	s, err = ToJSON(sample(false), true)
	require.NoError(t, err)
	assert.Contains(t, s, "\n  \"match\": null")
}
