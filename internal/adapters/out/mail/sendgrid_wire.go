package mail

import (
	"log"
	"strings"
)

// NewMailerWithSendGrid builds a Mailer on top of SendGrid.
// An empty apiKey still returns a mailer; every send then fails and callers treat mail as best-effort.
func NewMailerWithSendGrid(apiKey, fromAddr, appBaseURL string) *Mailer {
	if strings.TrimSpace(apiKey) == "" {
		log.Printf("[mail] WARN: SendGrid API key is empty. Mailer will fail to send mail.")
	}
	if strings.TrimSpace(fromAddr) == "" {
		log.Printf("[mail] WARN: SENDGRID_FROM is empty. Mailer will fail to send mail.")
	}

	mailer := NewMailer(NewSendGridClient(apiKey, "Storefront"), fromAddr, appBaseURL)

	log.Printf("[mail] MailerWithSendGrid initialized. from=%s baseURL=%s", fromAddr, appBaseURL)
	return mailer
}
