package common

import (
	"hbs/src/lib"
	"hbs/src/utils"
	"log"
	"os"

	"github.com/tidwall/gjson"
)

// EmailsToSendConsumer drains the outbound mail queue and hands each
// message to the SMTP client.
func EmailsToSendConsumer() {
	qname := utils.WithSuffix(os.Getenv("EMAIL_QUEUE"))
	RunKafkaConsumer("hbs-emails", qname, KafkaEmailsToSendConsumer)
}

func KafkaEmailsToSendConsumer(spayload string) {
	if !gjson.Valid(spayload) {
		log.Println("Received invalid json body. Aborting")
		return
	}
	from := gjson.Get(spayload, "from").String()
	fromName := gjson.Get(spayload, "from-name").String()
	subject := gjson.Get(spayload, "subject").String()
	log.Printf("from [%s] with subject: %s\n", from, subject)

	toArr := gjson.Get(spayload, "to").Array()
	to := make([]string, 0)
	for _, item := range toArr {
		to = append(to, item.String())
	}
	ccArr := gjson.Get(spayload, "cc").Array()
	cc := make([]string, 0)
	for _, item := range ccArr {
		cc = append(cc, item.String())
	}
	bccArr := gjson.Get(spayload, "bcc").Array()
	bcc := make([]string, 0)
	for _, item := range bccArr {
		bcc = append(bcc, item.String())
	}
	replyTo := gjson.Get(spayload, "reply-to").String()

	input := &lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       to,
		Cc:       cc,
		Bcc:      bcc,
		ReplyTo:  replyTo,
		Subject:  subject,
		Body:     gjson.Get(spayload, "body").String(),
		Html:     gjson.Get(spayload, "html").Bool(),
	}
	go func() {
		if err := lib.SendMail(input); err != nil {
			log.Printf("[MAILER] error sending email: %s\n", err.Error())
			return
		}
		log.Printf("[MAILER]: an email has been sent to %s\n", to)
	}()
}
