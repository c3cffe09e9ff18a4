package notify

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"time"

	"github.com/mailersend/mailersend-go"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/core/ports"
	"github.com/srgjo27/feria_ticket/internal/platform/logger"
)

const sendTimeout = 10 * time.Second

type MailerSend struct {
	client    *mailersend.Mailersend
	fromEmail string
	fromName  string
	log       *logrus.Entry
}

func NewMailerSend(apiKey, fromEmail, fromName string, log *logrus.Entry) *MailerSend {
	return &MailerSend{
		client:    mailersend.NewMailersend(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		log:       log,
	}
}

func (m *MailerSend) SendTicket(ctx context.Context, mail ports.TicketMail) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	res, err := m.client.Email.Send(ctx, m.message(mail))
	if err != nil {
		return fmt.Errorf("send ticket email: %w", err)
	}

	m.log.WithFields(logrus.Fields{
		"to":         logger.RedactEmail(mail.To),
		"code":       mail.Code,
		"message_id": res.Header.Get("X-Message-Id"),
	}).Info("ticket email sent")
	return nil
}

func (m *MailerSend) message(mail ports.TicketMail) *mailersend.Message {
	msg := m.client.Email.NewMessage()
	msg.SetFrom(mailersend.From{Name: m.fromName, Email: m.fromEmail})
	msg.SetRecipients([]mailersend.Recipient{{Name: mail.Name, Email: mail.To}})
	msg.SetSubject(fmt.Sprintf("Tu entrada para %s", mail.EventName))
	msg.SetText(ticketText(mail))
	msg.SetHTML(ticketHTML(mail))
	if len(mail.Image) > 0 {
		msg.AddAttachment(mailersend.Attachment{
			Content:     base64.StdEncoding.EncodeToString(mail.Image),
			Filename:    "entrada-" + mail.Code + ".png",
			Disposition: "attachment",
		})
	}
	return msg
}

func ticketText(mail ports.TicketMail) string {
	s := fmt.Sprintf("Hola %s,\n\nTu pago fue aprobado. Codigo de entrada: %s\n", mail.Name, mail.Code)
	if mail.Seat != "" {
		s += "Asiento: " + mail.Seat + "\n"
	}
	return s + "\nPresenta el QR adjunto en la puerta.\n"
}

func ticketHTML(mail ports.TicketMail) string {
	seat := ""
	if mail.Seat != "" {
		seat = "<p>Asiento: <b>" + html.EscapeString(mail.Seat) + "</b></p>"
	}
	return fmt.Sprintf(
		"<p>Hola %s,</p><p>Tu pago para <b>%s</b> fue aprobado.</p><p>Codigo: <b>%s</b></p>%s<p>Presenta el QR adjunto en la puerta.</p>",
		html.EscapeString(mail.Name), html.EscapeString(mail.EventName), html.EscapeString(mail.Code), seat,
	)
}

// LogNotifier stands in when no mail provider is configured.
type LogNotifier struct {
	log *logrus.Entry
}

func NewLogNotifier(log *logrus.Entry) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendTicket(_ context.Context, mail ports.TicketMail) error {
	n.log.WithFields(logrus.Fields{
		"to":   logger.RedactEmail(mail.To),
		"code": mail.Code,
	}).Info("email delivery disabled, ticket not sent")
	return nil
}
