package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ghodss/yaml"
	"github.com/olekukonko/tablewriter"
)

const (
	outputPlain = "plain"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func parseOutput(s string) (string, error) {
	switch v := strings.ToLower(s); v {
	case "", outputPlain:
		return outputPlain, nil
	case outputJSON, outputYAML:
		return v, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use plain, json or yaml)", s)
	}
}

func defaultTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func borderlessTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	return table
}

func printTable(w io.Writer, columns []string, rows [][]string) {
	table := defaultTable(w)
	table.SetHeader(columns)
	table.AppendBulk(rows)
	table.Render()
}

func printKeyValues(w io.Writer, rows [][]string) {
	table := borderlessTable(w)
	table.AppendBulk(rows)
	table.Render()
}

// printStructured writes v as JSON or YAML.
func printStructured(w io.Writer, format string, v interface{}) error {
	var (
		data []byte
		err  error
	)
	if format == outputYAML {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("ockam:output - failed to encode output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// render prints v structured, or calls plain for the plain format.
func (e *env) render(v interface{}, plain func(w io.Writer)) error {
	if e.output != outputPlain {
		return printStructured(e.stdout, e.output, v)
	}
	plain(e.stdout)
	return nil
}

// success prints a status line unless quiet.
func (e *env) success(format string, args ...interface{}) {
	if e.quiet {
		return
	}
	color.New(color.FgGreen).Fprint(e.stdout, "✔ ")
	fmt.Fprintf(e.stdout, format+"\n", args...)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
