package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"plp-bookstore/internal/metrics"
	"plp-bookstore/internal/models"
)

const (
	SectionCRUD        = "crud"
	SectionAdvanced    = "advanced"
	SectionAggregation = "aggregation"
	SectionIndexing    = "indexing"
)

// DefaultPageSize is the page size used by the page-1 and page-2 statements.
const DefaultPageSize = 5

type Statement struct {
	Name        string
	Section     string
	Description string
	Exec        func(ctx context.Context, c *Catalog) (any, error)
}

// Statements returns the catalog in script order. Each statement is
// independent of the others.
func Statements() []Statement {
	return []Statement{
		{
			Name: "find-fiction", Section: SectionCRUD,
			Description: `Find all books in genre "Fiction"`,
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.FindByGenre(ctx, "Fiction")
			},
		},
		{
			Name: "find-published-after-1950", Section: SectionCRUD,
			Description: "Find books published after 1950",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.FindPublishedAfter(ctx, 1950)
			},
		},
		{
			Name: "find-by-george-orwell", Section: SectionCRUD,
			Description: `Find books by author "George Orwell"`,
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.FindByAuthor(ctx, "George Orwell")
			},
		},
		{
			Name: "update-alchemist-price", Section: SectionCRUD,
			Description: `Update the price of "The Alchemist" to 12.99`,
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.UpdatePrice(ctx, "The Alchemist", 12.99)
			},
		},
		{
			Name: "delete-moby-dick", Section: SectionCRUD,
			Description: `Delete the book titled "Moby Dick"`,
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.DeleteByTitle(ctx, "Moby Dick")
			},
		},
		{
			Name: "find-in-stock-after-2010", Section: SectionAdvanced,
			Description: "Find books that are in stock and published after 2010",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.FindInStockPublishedAfter(ctx, 2010)
			},
		},
		{
			Name: "project-title-author-price", Section: SectionAdvanced,
			Description: "Only title, author and price",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.Summaries(ctx)
			},
		},
		{
			Name: "sort-price-asc", Section: SectionAdvanced,
			Description: "Sort books by price ascending",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.SortedByPrice(ctx, models.Ascending)
			},
		},
		{
			Name: "sort-price-desc", Section: SectionAdvanced,
			Description: "Sort books by price descending",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.SortedByPrice(ctx, models.Descending)
			},
		},
		{
			Name: "page-1", Section: SectionAdvanced,
			Description: "Pagination, first 5 books",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.Page(ctx, 1, DefaultPageSize)
			},
		},
		{
			Name: "page-2", Section: SectionAdvanced,
			Description: "Pagination, next 5 books",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.Page(ctx, 2, DefaultPageSize)
			},
		},
		{
			Name: "avg-price-by-genre", Section: SectionAggregation,
			Description: "Average price by genre",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.AveragePriceByGenre(ctx)
			},
		},
		{
			Name: "top-author", Section: SectionAggregation,
			Description: "Author with the most books",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				top, ok, err := c.TopAuthor(ctx)
				if err != nil || !ok {
					return nil, err
				}
				return top, nil
			},
		},
		{
			Name: "count-by-decade", Section: SectionAggregation,
			Description: "Group books by publication decade and count",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.CountByDecade(ctx)
			},
		},
		{
			Name: "create-title-index", Section: SectionIndexing,
			Description: "Create an index on title",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.CreateTitleIndex(ctx)
			},
		},
		{
			Name: "create-author-year-index", Section: SectionIndexing,
			Description: "Create compound index on author and published_year",
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				return c.CreateAuthorYearIndex(ctx)
			},
		},
		{
			Name: "explain-the-hobbit", Section: SectionIndexing,
			Description: `Explain find({title: "The Hobbit"}) with executionStats`,
			Exec: func(ctx context.Context, c *Catalog) (any, error) {
				_, summary, err := c.ExplainFindByTitle(ctx, "The Hobbit", VerbosityExecutionStats)
				return summary, err
			},
		},
	}
}

// Select keeps the statements whose name or section is listed, in catalog
// order. An empty list keeps everything.
func Select(statements []Statement, only []string) ([]Statement, error) {
	if len(only) == 0 {
		return statements, nil
	}

	wanted := make(map[string]bool, len(only))
	for _, o := range only {
		wanted[o] = false
	}

	var selected []Statement
	for _, s := range statements {
		_, byName := wanted[s.Name]
		_, bySection := wanted[s.Section]
		if byName || bySection {
			selected = append(selected, s)
			if byName {
				wanted[s.Name] = true
			}
			if bySection {
				wanted[s.Section] = true
			}
		}
	}

	for name, matched := range wanted {
		if !matched {
			return nil, fmt.Errorf("unknown statement or section %q", name)
		}
	}
	return selected, nil
}

type Result struct {
	Statement string        `json:"statement"`
	Section   string        `json:"section"`
	Value     any           `json:"value,omitempty"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
}

type Runner struct {
	Catalog *Catalog
	// Timeout bounds each statement; zero means no per-statement limit.
	Timeout time.Duration
}

// Run executes the statements one after another and passes every result to
// sink. A failing statement does not stop the run; the returned error joins
// all failures.
func (r *Runner) Run(ctx context.Context, statements []Statement, sink func(Result)) error {
	var errs []error
	for _, s := range statements {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		res := r.exec(ctx, s)
		if res.Err != nil {
			zap.S().Warnf("Statement %s failed: %v", s.Name, res.Err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, res.Err))
		} else {
			zap.S().Debugf("Statement %s done in %s", s.Name, res.Duration)
		}
		if sink != nil {
			sink(res)
		}
	}
	return errors.Join(errs...)
}

func (r *Runner) exec(ctx context.Context, s Statement) Result {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	start := time.Now()
	value, err := s.Exec(ctx, r.Catalog)
	took := time.Since(start)
	metrics.ObserveStatement(s.Name, took, err)

	res := Result{
		Statement: s.Name,
		Section:   s.Section,
		Value:     value,
		Err:       err,
		Duration:  took,
	}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
