package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Output печатает результаты команд: данные в stdout (таблицей или
// JSON, по флагу --json), служебные сообщения в stderr.
type Output struct {
	asJSON bool
	out    io.Writer
	msg    io.Writer
}

// NewOutput создаёт Output.
func NewOutput(asJSON bool) *Output {
	return &Output{
		asJSON: asJSON,
		out:    os.Stdout,
		msg:    os.Stderr,
	}
}

// Print выводит данные в выбранном формате. rows используются для
// табличного вывода, jsonData — для JSON.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.asJSON {
		o.printJSON(jsonData)
		return
	}
	o.printTable(headers, rows)
}

func (o *Output) printTable(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

func (o *Output) printJSON(v any) {
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(o.msg, "Error: "+err.Error())
	}
}

// Success выводит сообщение об успехе в stderr, чтобы не смешивать
// его с данными.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.msg, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.msg, "Error: "+msg)
}
