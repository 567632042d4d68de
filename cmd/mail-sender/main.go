// mail-sender is a long-running Kafka consumer that reads match-result
// notifications from the "match-outbox" topic and delivers them through the
// configured transactional mail API.
//
// Configuration is done entirely via environment variables so the binary
// runs identically in Docker, on bare metal, or in any CI environment:
//
//	KAFKA_BROKERS       comma-separated broker list, e.g. "kafka:9092"
//	MAIL_CLIENT_ID      mail API OAuth client id
//	MAIL_CLIENT_SECRET  mail API OAuth client secret
//	MAIL_TEMPLATE_ID    transactional template id for match emails
//	MAIL_FROM_EMAIL     sender address shown to participants
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/santasdraw/server/config"
	"github.com/santasdraw/server/internal/notify"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("mail-sender: required environment variable KAFKA_BROKERS is not set")
	}
	// Misconfiguration should be loud at startup rather than surfacing as
	// an auth failure mid-delivery.
	if cfg.Mail.ClientID == "" {
		log.Fatal("mail-sender: required environment variable MAIL_CLIENT_ID is not set")
	}
	if cfg.Mail.ClientSecret == "" {
		log.Fatal("mail-sender: required environment variable MAIL_CLIENT_SECRET is not set")
	}

	sender := notify.NewMailSender(notify.MailConfig{
		APIURL:       cfg.Mail.APIURL,
		TokenURL:     cfg.Mail.TokenURL,
		ClientID:     cfg.Mail.ClientID,
		ClientSecret: cfg.Mail.ClientSecret,
		TemplateID:   cfg.Mail.TemplateID,
		FromName:     cfg.Mail.FromName,
		FromEmail:    cfg.Mail.FromEmail,
	})

	consumer := notify.NewConsumer(cfg.Kafka.Brokers, sender)
	defer func() {
		if err := consumer.Close(); err != nil {
			log.Printf("mail-sender: error closing consumer: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("mail-sender: starting (brokers=%v)", cfg.Kafka.Brokers)
	if err := consumer.Run(ctx); err != nil {
		log.Fatalf("mail-sender: fatal error: %v", err)
	}
	log.Println("mail-sender: shutdown complete")
}
