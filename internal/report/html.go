// Package report renders comparison reports and run summaries as HTML,
// coloured terminal text, JSON and tables.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/strin/HeteroSampler/internal/compare"
)

type htmlReportData struct {
	Title       string
	RunNames    []string
	SelectedHex string
	Rows        []htmlRow
}

type htmlRow struct {
	Index   int
	Columns []htmlColumn
}

type htmlColumn struct {
	Word  string
	Truth string
	Cells []htmlCell
}

type htmlCell struct {
	Tag     string
	Color   string
	Tooltip string
	Style   template.CSS
}

// GenerateHTML renders rep as a standalone page with one table per example.
func GenerateHTML(rep *compare.Report, title string) (string, error) {
	data := htmlReportData{
		Title:       title,
		RunNames:    rep.RunNames,
		SelectedHex: compare.SelectedHex,
	}
	for _, row := range rep.Rows {
		hr := htmlRow{Index: row.Index}
		for j, word := range row.Words {
			col := htmlColumn{Word: word, Truth: row.TruthTags[j]}
			for r, rr := range row.Runs {
				style := "color: " + rr.Colors[j].Hex()
				if rr.Selected[j] {
					style += "; background-color: " + compare.SelectedHex
				}
				col.Cells = append(col.Cells, htmlCell{
					Tag:     rr.Tags[j],
					Color:   rr.Colors[j].String(),
					Tooltip: row.Tooltip(r, j),
					Style:   template.CSS(style),
				})
			}
			hr.Columns = append(hr.Columns, col)
		}
		data.Rows = append(data.Rows, hr)
	}

	var buf bytes.Buffer
	if err := comparisonTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHTML renders rep to w.
func WriteHTML(w io.Writer, rep *compare.Report, title string) error {
	html, err := GenerateHTML(rep, title)
	if err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	_, err = io.WriteString(w, html)
	return err
}

var comparisonTemplate = template.Must(template.New("comparison-report").Parse(comparisonTemplateHTML))

const comparisonTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: sans-serif; }
    td {
      text-align: center;
      font-size: 14px;
      transition: padding-top 0.1s;
      padding-top: 5px;
    }
    td:hover { padding-top: 0px; }
    td span { transition: background-color 0.3s; }
    td span:hover { background-color: #EDD861; }
    td.index { background-color: #000000; color: #ffffff; }
    td.legend { color: #9C9C9C; }
    b { font-size: 16px; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <p>Locations selected for inference are highlighted with
    <span style="background-color: {{.SelectedHex}}">&nbsp;&nbsp;&nbsp;</span>.
    Hover a tag to see its features.</p>
{{- range .Rows}}
  <p><table><tr>
    <td class="index">{{.Index}}</td>
    <td class="legend"><b>Words</b><br>Truth{{range $.RunNames}}<br>{{.}}{{end}}</td>
{{- range .Columns}}
    <td><b>{{.Word}}</b><br><span>{{.Truth}}</span>
{{- range .Cells}}<br><span class="{{.Color}}" title="{{.Tooltip}}" style="{{.Style}}">{{.Tag}}</span>{{end}}</td>
{{- end}}
  </tr></table></p>
{{- end}}
</body>
</html>
`
