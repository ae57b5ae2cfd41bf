package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/engine"
)

func renderRecords(w io.Writer, title string, records core.Collection) error {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len(title)))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Name\tCategory\tPrice\tRating")
	for _, r := range records {
		if r == nil {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t$%v\t%v stars\n", r.Name, r.Category, r.Price, r.Rating)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "(no products)")
	}
	return nil
}

// renderResult 按阶段依次输出表格。
func renderResult(w io.Writer, res *engine.Result) error {
	if res.Query.Term == "" {
		if err := renderRecords(w, "All Products", res.All); err != nil {
			return err
		}
		fmt.Fprintln(w, "\nSearch for a product to view results.")
		return nil
	}

	if res.FellBack() {
		fmt.Fprintf(w, "\nNo products found for '%s'. Trying by category...\n", res.Query.Term)
	}
	if res.Empty() {
		fmt.Fprintf(w, "\nNo products found for '%s'.\n", res.Query.Term)
		return nil
	}

	for _, st := range res.Stages {
		if err := renderRecords(w, stageTitle(res, st), st.Records); err != nil {
			return err
		}
	}
	return nil
}

func stageTitle(res *engine.Result, st engine.Stage) string {
	label := func(key string) string { return res.Labels[key].Value }
	switch st.Node {
	case "search.fallback":
		return fmt.Sprintf("Results for '%s'", res.Query.Term)
	case "rank.heap":
		key := label("sort_key")
		if key == "" {
			return "Sorted"
		}
		return "Sort by " + strings.ToUpper(key[:1]) + key[1:]
	case "filter.price_range":
		lo, hi := label("price_lo"), label("price_hi")
		if lo == "" || hi == "" {
			return "Filtered by Price"
		}
		return fmt.Sprintf("Filtered by Price: $%s - $%s", lo, hi)
	case "filter.min_rating":
		return fmt.Sprintf("Filtered by Rating: ≥ %s stars", label("min_rating"))
	default:
		return fmt.Sprintf("%s (%s)", st.Node, st.Kind)
	}
}
