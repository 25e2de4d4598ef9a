package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/accountill/internal/notify"
	"github.com/MrJamesThe3rd/accountill/internal/render"
)

func previewCmd() *cobra.Command {
	var text bool

	cmd := &cobra.Command{
		Use:   "preview [payload.json]",
		Short: "Print the email a client would receive for a payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer closeIn()

			return preview(cmd.OutOrStdout(), in, text)
		},
	}

	cmd.Flags().BoolVar(&text, "text", false, "Print the plain-text body instead of HTML")

	return cmd
}

func preview(out io.Writer, in io.Reader, text bool) error {
	_, inv, err := readInvoice(in)
	if err != nil {
		return err
	}

	msg, err := render.Notification(inv)
	if err != nil {
		return err
	}

	body := msg.HTML
	if text {
		body = msg.Text
	}

	_, err = fmt.Fprintf(out, "From: %s\nTo: %s\nReply-To: %s\nSubject: %s\n\n%s\n",
		notify.DefaultSender, inv.RecipientEmail, inv.Company.Email, msg.Subject, body)

	return err
}
