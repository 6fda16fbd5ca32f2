package email

import (
	"log"

	"github.com/redis/go-redis/v9"

	"pawmart/api/internal/config"
)

// NewSenderFromConfig builds the process email sender. MockServices routes mail into Redis
// (falling back to SMTP/logging when Redis is off), and LogEmailsPath adds a file copy of every email.
func NewSenderFromConfig(cfg *config.Config, rdb *redis.Client) Sender {
	var primary Sender
	if cfg.MockServices && rdb != nil {
		log.Println("MOCK_SERVICES enabled: Using Redis email sender.")
		primary = NewRedisSender(rdb, cfg.SmtpFromAddress)
	} else {
		if cfg.MockServices {
			log.Println("WARNING: MOCK_SERVICES set but Redis is not configured; falling back to SMTP/Logging email sender.")
		}
		primary = NewSMTPSender(cfg)
	}

	composite := NewCompositeEmailSender(primary)
	if cfg.LogEmailsPath != "" {
		fileSender, err := NewFileEmailSender(cfg.LogEmailsPath)
		if err != nil {
			log.Printf("WARNING: Failed to initialize file email sender (LOG_EMAILS='%s'): %v. Proceeding without file logging.", cfg.LogEmailsPath, err)
		} else {
			composite.AddSender(fileSender)
			log.Printf("LOG_EMAILS set to '%s', file email logger added.", cfg.LogEmailsPath)
		}
	}
	return composite
}
