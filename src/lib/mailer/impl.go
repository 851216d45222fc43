package mailer

import (
	"fmt"
	"hbs/src/lib"
	"hbs/src/types"
	"hbs/src/utils"
	"os"
)

// NewMailerMessage queues an outbound email on the broker. A background
// consumer drains the queue and hands messages to the SMTP client, so
// request handlers never block on mail delivery.
func NewMailerMessage(input *lib.SendMailInput) error {
	emailQueue := os.Getenv("EMAIL_QUEUE")
	emailBody := &types.JSONB{
		"from":      input.From,
		"from-name": input.FromName,
		"to":        input.To,
		"cc":        input.Cc,
		"bcc":       input.Bcc,
		"reply-to":  input.ReplyTo,
		"body":      input.Body,
		"html":      input.Html,
		"subject":   input.Subject,
	}
	if err := lib.KafkaProduceMessage("emails", utils.WithSuffix(emailQueue), emailBody); err != nil {
		return fmt.Errorf("error sending message to queue: %s", err.Error())
	}
	return nil
}
