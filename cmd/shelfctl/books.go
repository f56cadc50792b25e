package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/forgo/shelf/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newBooksCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Manage the catalog",
	}
	cmd.AddCommand(newBooksImportCmd(e), newBooksListCmd(e))
	return cmd
}

func newBooksImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Create books from a JSON array, skipping existing ISBNs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			reqs, err := decodeBooks(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			result, err := e.catalog.ImportBooks(cmd.Context(), reqs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created %d, skipped %d, failed %d\n",
				result.Created, result.Skipped, len(result.Failed))

			keys := make([]string, 0, len(result.Failed))
			for k := range result.Failed {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %s: %v\n", k, result.Failed[k])
			}
			return nil
		},
	}
}

func newBooksListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			books, err := e.catalog.ListBooks(cmd.Context())
			if err != nil {
				return err
			}
			return printBooks(cmd.OutOrStdout(), books)
		},
	}
}

// decodeBooks reads a JSON array of book create requests
func decodeBooks(r io.Reader) ([]model.CreateBookRequest, error) {
	var reqs []model.CreateBookRequest
	if err := json.NewDecoder(r).Decode(&reqs); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return reqs, nil
}

func printBooks(w io.Writer, books []*model.Book) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ISBN\tNAME\tCATEGORY\tPRICE\tAVAILABLE")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d/%d\n",
			b.ISBN, b.Name, b.Category, b.Price, b.AvailableQuantity(), b.Quantity)
	}
	return tw.Flush()
}
