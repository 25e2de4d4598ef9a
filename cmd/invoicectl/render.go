package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/accountill/internal/artifact"
	"github.com/MrJamesThe3rd/accountill/internal/compose"
	"github.com/MrJamesThe3rd/accountill/internal/encoding"
	"github.com/MrJamesThe3rd/accountill/internal/invoice"
	"github.com/MrJamesThe3rd/accountill/internal/render"
)

func renderCmd() *cobra.Command {
	var (
		output    string
		format    string
		landscape bool
	)

	cmd := &cobra.Command{
		Use:   "render [payload.json]",
		Short: "Write the invoice PDF for a JSON payload",
		Long: `Render reads an invoice payload (the body accepted by POST /create-pdf)
from a file, or stdin when the path is "-", and writes the PDF.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeIn()

			a, err := renderPDF(cmd.Context(), in, compose.LayoutOptions{PageFormat: format, Landscape: landscape})
			if err != nil {
				return err
			}

			if err := os.WriteFile(output, a.Content, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d bytes)\n", output, a.PageFormat, a.Size())

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", artifact.DefaultFilename, "Output file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Page format (A3, A4, A5, Letter, Legal, Tabloid); defaults to the payload's pageFormat")
	cmd.Flags().BoolVar(&landscape, "landscape", false, "Landscape orientation")

	return cmd
}

func renderPDF(ctx context.Context, in io.Reader, layout compose.LayoutOptions) (*artifact.Artifact, error) {
	p, inv, err := readInvoice(in)
	if err != nil {
		return nil, err
	}

	if layout.PageFormat == "" {
		layout.PageFormat = p.PageFormat
	}

	doc, err := render.Document(inv)
	if err != nil {
		return nil, err
	}

	return compose.New().Compose(ctx, doc, layout)
}

func readInvoice(in io.Reader) (*invoice.Payload, *invoice.Invoice, error) {
	body, err := encoding.NewUTF8Reader(in)
	if err != nil {
		return nil, nil, fmt.Errorf("reading payload: %w", err)
	}

	p, err := invoice.DecodePayload(body)
	if err != nil {
		return nil, nil, err
	}

	inv, err := p.Invoice()
	if err != nil {
		return nil, nil, err
	}

	return p, inv, nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening payload: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}
