package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"

	"github.com/hugr-lab/emsquery/table"
)

func writeTable(w io.Writer, format string, t *table.Table, mem memory.Allocator) error {
	switch format {
	case "table":
		tw := tablewriter.NewWriter(w)
		tw.SetHeader(t.Names())
		tw.SetAutoFormatHeaders(false)
		for i := 0; i < t.NumRows(); i++ {
			tw.Append(rowStrings(t.Row(i)))
		}
		tw.Render()
		return nil
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write(t.Names()); err != nil {
			return err
		}
		for i := 0; i < t.NumRows(); i++ {
			if err := cw.Write(rowStrings(t.Row(i))); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	case "arrow":
		return writeArrow(w, t, mem)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeArrow(w io.Writer, t *table.Table, mem memory.Allocator) error {
	rec, err := t.Record(mem)
	if err != nil {
		return err
	}
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("failed to create IPC writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return fmt.Errorf("failed to write IPC record: %w", err)
	}
	return fw.Close()
}

func rowStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch v := v.(type) {
		case nil:
		case time.Time:
			out[i] = v.Format(time.RFC3339)
		default:
			out[i] = cast.ToString(v)
		}
	}
	return out
}
