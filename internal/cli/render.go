//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jszwec/csvutil"
)

// Output formats accepted by the query commands.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// render writes rows of csv-tagged structs in format. The header is
// written even when rows is empty.
func render[T any](w io.Writer, format string, rows []T) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatTable:
		var buf bytes.Buffer
		if err := writeCSV(&buf, rows); err != nil {
			return err
		}
		return writeTable(w, &buf)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeCSV[T any](w io.Writer, rows []T) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	var zero T
	if err := enc.EncodeHeader(zero); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// writeTable re-renders CSV as aligned columns with an upper-case header.
func writeTable(w io.Writer, r io.Reader) error {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, rec := range records {
		if i == 0 {
			for j := range rec {
				rec[j] = strings.ToUpper(rec[j])
			}
		}
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	return tw.Flush()
}

// renderValues writes a single-column result. JSON output is a plain
// array of strings.
func renderValues(w io.Writer, format, column string, vs []string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(vs)
	case FormatCSV:
		cw := csv.NewWriter(w)
		_ = cw.Write([]string{column})
		for _, v := range vs {
			_ = cw.Write([]string{v})
		}
		cw.Flush()
		return cw.Error()
	case FormatTable:
		fmt.Fprintln(w, strings.ToUpper(column))
		for _, v := range vs {
			fmt.Fprintln(w, v)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
