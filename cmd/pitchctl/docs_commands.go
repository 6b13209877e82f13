package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pitchctl/internal/pitch"
	"pitchctl/internal/services"
)

func newDocsCommand(ctx *commandContext) *cobra.Command {
	docsCmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "Manage reference documents attached to the pitch",
	}
	docsCmd.AddCommand(newDocsListCommand(ctx))
	docsCmd.AddCommand(newDocsAddCommand(ctx))
	docsCmd.AddCommand(newDocsRemoveCommand(ctx))
	return docsCmd
}

func newDocsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Refresh and list reference documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, true, func(rt *sessionRuntime) error {
				docs, err := rt.session.ListDocuments(rt.ctx)
				stale := false
				if err != nil {
					var noData *pitch.NoDataError
					if !errors.As(err, &noData) {
						return err
					}
					stale = true
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s; showing cached documents\n", noData.Message)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"docs": documentRecords(docs), "stale": stale})
				}
				if len(docs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No reference documents")
					return nil
				}
				rows := make([][]string, 0, len(docs))
				for _, doc := range docs {
					rows = append(rows, []string{doc.ID, doc.Filename})
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"ID", "Filename"}, rows, nil))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
}

type documentRecord struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

func documentRecords(docs []pitch.ReferenceDocument) []documentRecord {
	out := make([]documentRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentRecord{ID: doc.ID, Filename: doc.Filename})
	}
	return out
}

func newDocsAddCommand(ctx *commandContext) *cobra.Command {
	var keywords []string

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Upload a reference document",
		Long: "Upload a reference document.\n\n" +
			"The local document list is not changed; run `pitchctl docs list` to refresh it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, file, err := openUpload(args[0], keywords)
			if err != nil {
				return err
			}
			defer file.Close()

			return ctx.withSession(cmd, false, func(rt *sessionRuntime) error {
				doc, err := rt.session.UploadDocument(rt.ctx, upload)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, documentRecord{ID: doc.ID, Filename: doc.Filename})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as document %s\n", doc.Filename, doc.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&keywords, "keyword", "k", nil, "Keyword metadata to attach (repeatable)")
	return cmd
}

func newDocsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a reference document",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, true, func(rt *sessionRuntime) error {
				if err := rt.session.RemoveDocument(rt.ctx, args[0]); err != nil {
					if errors.Is(err, services.ErrNoData) {
						return fmt.Errorf("document %s was not removed: %w", args[0], err)
					}
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"id": args[0], "removed": true})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed document %s\n", args[0])
				return nil
			})
		},
	}
}
