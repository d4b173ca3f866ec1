// Package notify delivers receipt emails to students and canteen
// administrators over SMTP.
package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/lacanteen/canteen-system/internal/core/ports"
)

// Config captures the SMTP settings and recipients for receipt delivery.
type Config struct {
	Host            string
	Port            int
	Username        string
	Password        string
	From            string
	AdminRecipients []string
}

// Mailer renders and sends receipt emails. It is synchronous; callers
// that must not block wrap it in the queue dispatcher.
type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
	log    zerolog.Logger
}

func NewMailer(cfg Config, log zerolog.Logger) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		log:    log,
	}
}

// SendPurchase emails a purchase receipt to the student and a copy to the
// admin recipients. A student without an email on file only triggers the
// admin copy.
func (m *Mailer) SendPurchase(studentEmail, studentName string, items []ports.PurchasedItem, total, newBalance float64) error {
	data := receiptData{
		StudentName: studentName,
		Items:       items,
		Total:       total,
		NewBalance:  newBalance,
	}

	var messages []*gomail.Message
	if studentEmail != "" {
		body, err := render(purchaseStudentTmpl, data)
		if err != nil {
			return err
		}
		messages = append(messages, m.message([]string{studentEmail}, "Purchase Confirmation - LACanteen", body))
	}
	if len(m.cfg.AdminRecipients) > 0 {
		body, err := render(purchaseAdminTmpl, data)
		if err != nil {
			return err
		}
		messages = append(messages, m.message(m.cfg.AdminRecipients, fmt.Sprintf("New Purchase - %s", studentName), body))
	}

	return m.send(messages)
}

// SendBalanceUpdate emails a top-up confirmation to the student and a
// copy to the admin recipients.
func (m *Mailer) SendBalanceUpdate(studentEmail, studentName string, amount, newBalance float64) error {
	data := receiptData{
		StudentName: studentName,
		Amount:      amount,
		NewBalance:  newBalance,
	}

	var messages []*gomail.Message
	if studentEmail != "" {
		body, err := render(balanceStudentTmpl, data)
		if err != nil {
			return err
		}
		messages = append(messages, m.message([]string{studentEmail}, "Balance Updated - LACanteen", body))
	}
	if len(m.cfg.AdminRecipients) > 0 {
		body, err := render(balanceAdminTmpl, data)
		if err != nil {
			return err
		}
		messages = append(messages, m.message(m.cfg.AdminRecipients, fmt.Sprintf("Balance Update - %s", studentName), body))
	}

	return m.send(messages)
}

func (m *Mailer) message(to []string, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return msg
}

func (m *Mailer) send(messages []*gomail.Message) error {
	if len(messages) == 0 {
		return nil
	}
	if err := m.dialer.DialAndSend(messages...); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

type receiptData struct {
	StudentName string
	Items       []ports.PurchasedItem
	Amount      float64
	Total       float64
	NewBalance  float64
}

func render(tmpl *template.Template, data receiptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	return buf.String(), nil
}

// lineTotal is exposed to the templates for per-row amounts.
func lineTotal(i ports.PurchasedItem) float64 {
	return i.Price * float64(i.Quantity)
}

var tmplFuncs = template.FuncMap{
	"lineTotal": lineTotal,
	"points":    func(v float64) string { return fmt.Sprintf("%.2f Points", v) },
}

const itemsTable = `<table style="width:100%;border-collapse:collapse;margin:10px 0;">
  <tr style="background-color:#f3f4f6;">
    <th style="padding:8px;text-align:left;border:1px solid #e5e7eb;">Item</th>
    <th style="padding:8px;text-align:right;border:1px solid #e5e7eb;">Quantity</th>
    <th style="padding:8px;text-align:right;border:1px solid #e5e7eb;">Price</th>
  </tr>
  {{range .Items}}<tr>
    <td style="padding:8px;border:1px solid #e5e7eb;">{{.Name}}</td>
    <td style="padding:8px;text-align:right;border:1px solid #e5e7eb;">{{.Quantity}}</td>
    <td style="padding:8px;text-align:right;border:1px solid #e5e7eb;">{{points (lineTotal .)}}</td>
  </tr>{{end}}
  <tr style="font-weight:bold;">
    <td colspan="2" style="padding:8px;text-align:right;border:1px solid #e5e7eb;">Total:</td>
    <td style="padding:8px;text-align:right;border:1px solid #e5e7eb;">{{points .Total}}</td>
  </tr>
</table>`

var purchaseStudentTmpl = template.Must(template.New("purchase_student").Funcs(tmplFuncs).Parse(`<h2>Purchase Confirmation</h2>
<p>Dear {{.StudentName}},</p>
<p>Your recent purchase has been processed:</p>
` + itemsTable + `
<p>Remaining Balance: {{points .NewBalance}}</p>
<p>Best regards,<br>LACanteen Team</p>`))

var purchaseAdminTmpl = template.Must(template.New("purchase_admin").Funcs(tmplFuncs).Parse(`<h2>Purchase Notification</h2>
<p>A new purchase has been made:</p>
<ul>
  <li>Student: {{.StudentName}}</li>
  <li>Total Amount: {{points .Total}}</li>
  <li>New Balance: {{points .NewBalance}}</li>
</ul>
<h3>Items Purchased:</h3>
` + itemsTable))

var balanceStudentTmpl = template.Must(template.New("balance_student").Funcs(tmplFuncs).Parse(`<h2>Balance Update Notification</h2>
<p>Dear {{.StudentName}},</p>
<p>Your canteen balance has been updated:</p>
<ul>
  <li>Amount Added: {{points .Amount}}</li>
  <li>New Balance: {{points .NewBalance}}</li>
</ul>
<p>Best regards,<br>LACanteen Team</p>`))

var balanceAdminTmpl = template.Must(template.New("balance_admin").Funcs(tmplFuncs).Parse(`<h2>Student Balance Update</h2>
<p>A balance update has been processed:</p>
<ul>
  <li>Student: {{.StudentName}}</li>
  <li>Amount Added: {{points .Amount}}</li>
  <li>New Balance: {{points .NewBalance}}</li>
</ul>`))
