package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/affigen/internal/assembly"
	"github.com/dgallion1/affigen/internal/casefile"
	"github.com/dgallion1/affigen/internal/doctree"
	"github.com/dgallion1/affigen/internal/parser"
	"github.com/dgallion1/affigen/internal/placeholder"
	"github.com/dgallion1/affigen/internal/registry"
	"github.com/dgallion1/affigen/internal/render"
)

// readDocument imports any supported file as a document.
func readDocument(path string) (doctree.Document, error) {
	p, err := parser.ForFile(path, parser.Options{PDFFallbackPdftotext: true})
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// writeDocument renders doc to out, or to w when out is empty. The format
// defaults to out's extension, then json.
func writeDocument(w io.Writer, doc doctree.Document, out, format string) error {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(out), ".")
	}
	if format == "" {
		format = "json"
	}
	rd, err := render.ForFormat(format)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := rd.Render(&buf, doc); err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if out == "" {
		_, err = w.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(out, buf.Bytes(), 0o644)
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json>...",
		Short: "Check documents against the block/run shape",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err == nil {
					_, err = doctree.Decode(data)
				}
				if err != nil {
					failed++
					failColor.Fprint(out, "FAIL ")
					fmt.Fprintf(out, "%s: %v\n", path, err)
					continue
				}
				okColor.Fprint(out, "OK   ")
				fmt.Fprintln(out, path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents invalid", failed, len(args))
			}
			return nil
		},
	}
}

func fillCmd() *cobra.Command {
	var (
		templateArg string
		casePath    string
		out         string
		format      string
		date        string
		dbPath      string
	)

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill a template from a case record",
		Long: `Fill a template's {{KEY}} placeholders from a case record.

The template is a built-in name (` + strings.Join(assembly.TemplateNames(), ", ") + `),
a template saved in the registry, or a document file.

Example:
  affigen fill --template arresting-officer --case case.json --out affidavit.docx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(casePath)
			if err != nil {
				return err
			}
			c, err := casefile.Decode(f)
			f.Close()
			if err != nil {
				return err
			}

			now := time.Now()
			if date != "" {
				if now, err = casefile.ParseDate(date); err != nil {
					return err
				}
			}

			tmpl, err := loadTemplate(cmd.Context(), templateArg, dbPath)
			if err != nil {
				return err
			}
			lookup, err := assembly.Lookup(c, now)
			if err != nil {
				return err
			}
			if missing := placeholder.Missing(tmpl, lookup); len(missing) > 0 {
				dimColor.Fprintf(cmd.ErrOrStderr(), "unknown placeholders left blank: %s\n", strings.Join(missing, ", "))
			}
			return writeDocument(cmd.OutOrStdout(), placeholder.Substitute(tmpl, lookup), out, format)
		},
	}

	cmd.Flags().StringVarP(&templateArg, "template", "t", assembly.TemplateArrestingOfficer, "Template name or document file")
	cmd.Flags().StringVarP(&casePath, "case", "c", "", "Case record JSON file")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: "+strings.Join(render.Formats, "|"))
	cmd.Flags().StringVar(&date, "date", "", "Date used when the case has no report date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dbPath, "db", "", "Registry database for saved templates")
	_ = cmd.MarkFlagRequired("case")
	return cmd
}

// loadTemplate resolves a built-in name, an existing file, then a saved
// registry template.
func loadTemplate(ctx context.Context, arg, dbPath string) (doctree.Document, error) {
	doc, err := assembly.Template(arg)
	if err == nil || !errors.Is(err, assembly.ErrUnknownTemplate) {
		return doc, err
	}
	if _, statErr := os.Stat(arg); statErr == nil {
		return readDocument(arg)
	}
	if dbPath == "" {
		return nil, err
	}
	reg, err := registry.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer reg.Close()
	stored, err := reg.GetTemplate(ctx, arg)
	if err != nil {
		return nil, err
	}
	return stored.Document, nil
}

func convertCmd() *cobra.Command {
	var (
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "convert <in>",
		Short: "Convert a document between formats",
		Long: `Convert any importable document (json, md, html, txt, docx, pdf) to an
export format (` + strings.Join(render.Formats, ", ") + `).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if err := writeDocument(cmd.OutOrStdout(), doc, out, format); err != nil {
				return err
			}
			if out != "" {
				okColor.Fprint(cmd.ErrOrStderr(), "wrote ")
				fmt.Fprintf(cmd.ErrOrStderr(), "%s (%d blocks)\n", out, len(doc))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (default from --out extension, else json)")
	return cmd
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List built-in templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range assembly.TemplateNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
