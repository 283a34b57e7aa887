package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"plp-bookstore/internal/catalog"
	"plp-bookstore/internal/models"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1 // one or more statements failed
	ExitCommandError = 2 // bad flags, bad config, unreachable database
)

type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that carry no code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the envelope written in json mode, one per line.
type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, renderValue(data))
	return err
}

// Result writes one catalog result. In json mode every result is a line of its own.
func (f *OutputFormatter) Result(res catalog.Result) error {
	if f.Format == "json" {
		status := "ok"
		if res.Err != nil {
			status = "error"
		}
		return json.NewEncoder(f.Writer).Encode(struct {
			Status     string  `json:"status"`
			Statement  string  `json:"statement"`
			Section    string  `json:"section"`
			DurationMS float64 `json:"duration_ms"`
			Data       any     `json:"data,omitempty"`
			Error      string  `json:"error,omitempty"`
		}{
			Status:     status,
			Statement:  res.Statement,
			Section:    res.Section,
			DurationMS: float64(res.Duration) / float64(time.Millisecond),
			Data:       res.Value,
			Error:      res.Error,
		})
	}

	fmt.Fprintf(f.Writer, "== [%s] %s (%s)\n", res.Section, res.Statement, res.Duration.Round(time.Microsecond))
	if res.Err != nil {
		_, err := fmt.Fprintf(f.Writer, "   FAILED: %v\n", res.Err)
		return err
	}
	_, err := fmt.Fprintln(f.Writer, indent(renderValue(res.Value), "   "))
	return err
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}

// renderValue turns catalog values into the text shown on a terminal.
func renderValue(v any) string {
	var b strings.Builder
	switch v := v.(type) {
	case nil:
		return "(no result)"
	case []models.Book:
		if len(v) == 0 {
			return "(no books)"
		}
		for i, book := range v {
			if i > 0 {
				b.WriteByte('\n')
			}
			stock := "out of stock"
			if book.InStock {
				stock = "in stock"
			}
			fmt.Fprintf(&b, "%s by %s (%s, %d) %.2f, %s",
				book.Title, book.Author, book.Genre, book.PublishedYear, book.Price, stock)
		}
	case []models.BookSummary:
		if len(v) == 0 {
			return "(no books)"
		}
		for i, s := range v {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%s by %s %.2f", s.Title, s.Author, s.Price)
		}
	case []models.GenreAveragePrice:
		for i, g := range v {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%-12s %.2f", g.Genre, g.AvgPrice)
		}
	case []models.DecadeCount:
		for i, d := range v {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%-6s %d", d.Decade, d.Count)
		}
	case models.AuthorCount:
		fmt.Fprintf(&b, "%s (%d books)", v.Author, v.Count)
	case *mongo.UpdateResult:
		fmt.Fprintf(&b, "matched %d, modified %d", v.MatchedCount, v.ModifiedCount)
	case *mongo.DeleteResult:
		fmt.Fprintf(&b, "deleted %d", v.DeletedCount)
	case models.ExplainSummary:
		fmt.Fprintf(&b, "winning stage %s", v.WinningStage)
		if v.WinningStage == models.StageCollScan {
			b.WriteString(" (full collection scan)")
		}
		if v.UsesIndex {
			fmt.Fprintf(&b, " using index %s", v.IndexName)
		}
		fmt.Fprintf(&b, "\nreturned %d, keys examined %d, docs examined %d, %dms",
			v.NReturned, v.TotalKeysExamined, v.TotalDocsExamined, v.ExecutionTimeMillis)
	case []string:
		return strings.Join(v, "\n")
	case string:
		return v
	default:
		fmt.Fprintf(&b, "%+v", v)
	}
	return b.String()
}
