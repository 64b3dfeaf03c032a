package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/swagent/internal/contract"
	"github.com/huangsam/swagent/schema"
)

// FetchReport describes how one request was answered.
type FetchReport struct {
	URL         string              `json:"url"`
	Method      string              `json:"method"`
	Mode        schema.RequestMode  `json:"mode,omitempty"`
	Destination schema.Destination  `json:"destination,omitempty"`
	Strategy    schema.Strategy     `json:"strategy"`
	Handled     bool                `json:"handled"`
	Status      int                 `json:"status,omitempty"`
	Type        schema.ResponseType `json:"type,omitempty"`
	ContentType string              `json:"content_type,omitempty"`
	BodyBytes   int                 `json:"body_bytes"`
	Error       string              `json:"error,omitempty"`
}

// NewFetchReport summarizes a dispatched fetch event.
func NewFetchReport(req *schema.Request, strategy schema.Strategy, resp *schema.Response, err error) FetchReport {
	report := FetchReport{
		URL:         req.URL,
		Method:      req.Method,
		Mode:        req.Mode,
		Destination: req.Destination,
		Strategy:    strategy,
		Handled:     resp != nil,
	}
	if resp != nil {
		report.Status = resp.Status
		report.Type = resp.Type
		report.ContentType = resp.Header.Get("Content-Type")
		report.BodyBytes = len(resp.Body)
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}

// WriteFetchReport outputs a fetch report, dispatching based on the output format configured.
func WriteFetchReport(report FetchReport, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		header := []string{"url", "method", "strategy", "handled", "status", "type", "body_bytes", "error"}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				return cw.Write([]string{
					report.URL,
					report.Method,
					string(report.Strategy),
					strconv.FormatBool(report.Handled),
					strconv.Itoa(report.Status),
					string(report.Type),
					strconv.Itoa(report.BodyBytes),
					report.Error,
				})
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFetchText(w, report, cfg)
		}, "Wrote text")
	}
}

func writeFetchText(w io.Writer, report FetchReport, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "%s %s -> %s\n", report.Method, report.URL, report.Strategy); err != nil {
		return err
	}
	switch {
	case report.Error != "":
		_, err := fmt.Fprintf(w, "Failed: %s\n", report.Error)
		return err
	case !report.Handled:
		_, err := fmt.Fprintln(w, "Passed through to the network unmodified")
		return err
	}
	label := strconv.Itoa(report.Status) + " " + contract.GetPlainLabel(report.Status)
	if cfg.UseColors {
		label = contract.GetColorLabel(report.Status)
	}
	_, err := fmt.Fprintf(w, "Response: %s (%s, %s, %d bytes)\n", label, report.Type, report.ContentType, report.BodyBytes)
	return err
}
