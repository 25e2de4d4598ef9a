package render

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"golang.org/x/text/currency"

	"github.com/MrJamesThe3rd/accountill/internal/invoice"
)

// Message is the rendered email for an invoice.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

type notificationData struct {
	Sender      string
	SenderEmail string
	ClientName  string
	Label       string
	Article     string
	Number      string
	Total       string
	BalanceDue  string
	DueDate     string
	PaymentLink string
	Notes       htmltemplate.HTML
	RawNotes    string
}

var (
	subjectTmpl *texttemplate.Template
	htmlTmpl    *htmltemplate.Template
	textTmpl    *texttemplate.Template

	markdown  = goldmark.New()
	sanitizer = bluemonday.UGCPolicy()
)

func init() {
	content, err := templateFS.ReadFile("templates/notification.html")
	if err != nil {
		panic(err)
	}

	fm, body, err := splitFrontMatter(content)
	if err != nil {
		panic(err)
	}

	subjectTmpl = texttemplate.Must(texttemplate.New("subject").Parse(fm.Subject))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(string(body)))
	textTmpl = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/notification.txt"))
}

// Notification renders the subject and bodies of the email that carries an invoice.
func Notification(inv *invoice.Invoice) (*Message, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	notes, err := notesHTML(inv.Notes)
	if err != nil {
		return nil, err
	}

	m := newMoney(inv.CurrencyCode(), currency.Symbol)
	totals := inv.Totals()

	data := notificationData{
		Sender:      inv.Company.DisplayName(),
		SenderEmail: inv.Company.Email,
		ClientName:  greetingName(inv.Client.Name),
		Label:       strings.ToLower(inv.Label()),
		Article:     article(inv.Label()),
		Number:      inv.Number,
		Total:       m.format(totals.Total),
		PaymentLink: inv.PaymentLink,
		Notes:       notes,
		RawNotes:    strings.TrimSpace(inv.Notes),
	}

	if !totals.AmountPaid.IsZero() {
		data.BalanceDue = m.format(totals.BalanceDue)
	}

	if inv.DueDate != nil {
		data.DueDate = inv.DueDate.Format(dateLayout)
	}

	var subject, html, text bytes.Buffer

	if err := subjectTmpl.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("rendering subject: %w", err)
	}

	if err := htmlTmpl.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("rendering html body: %w", err)
	}

	if err := textTmpl.ExecuteTemplate(&text, "notification.txt", data); err != nil {
		return nil, fmt.Errorf("rendering text body: %w", err)
	}

	return &Message{
		Subject: strings.TrimSpace(subject.String()),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// notesHTML converts Markdown notes to sanitized HTML.
func notesHTML(notes string) (htmltemplate.HTML, error) {
	if strings.TrimSpace(notes) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(notes), &buf); err != nil {
		return "", fmt.Errorf("converting notes: %w", err)
	}

	return htmltemplate.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

func greetingName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}

	return "there"
}

func article(label string) string {
	if label == "" {
		return "a"
	}

	switch strings.ToLower(label[:1]) {
	case "a", "e", "i", "o", "u":
		return "an"
	}

	return "a"
}
