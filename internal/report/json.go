package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/strin/HeteroSampler/internal/compare"
)

//go:embed report.schema.json
var reportSchema []byte

// Schema returns the JSON Schema that exported comparison reports satisfy.
func Schema() []byte {
	return reportSchema
}

// WriteJSON writes rep as indented JSON. The encoded report is checked
// against Schema first; nothing is written when it does not conform.
func WriteJSON(w io.Writer, rep *compare.Report) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := ValidateJSON(buf.Bytes()); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ValidateJSON checks an exported report against Schema.
func ValidateJSON(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(reportSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("report failed validation: %s", strings.Join(details, "; "))
}
