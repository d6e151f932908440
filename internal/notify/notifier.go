package notify

import (
	"sync"

	"github.com/oszuidwest/hotelsite/internal/config"
	"github.com/oszuidwest/hotelsite/internal/util"
)

// SignupNotifier fans a newsletter signup out to every configured channel.
// Each channel is sent in its own goroutine; failures are logged.
type SignupNotifier struct {
	cfg   *config.Config
	hotel func() string

	wg sync.WaitGroup
}

// NewSignupNotifier returns a SignupNotifier. hotel supplies the name used
// in the confirmation mail.
func NewSignupNotifier(cfg *config.Config, hotel func() string) *SignupNotifier {
	return &SignupNotifier{cfg: cfg, hotel: hotel}
}

// Notify sends the signup notifications for address.
func (n *SignupNotifier) Notify(address string) {
	cfg := n.cfg.Snapshot()

	if cfg.HasWebhook() {
		n.spawn(func() {
			util.LogNotifyResult(
				func() error { return SendSignupWebhook(cfg.WebhookURL, address) },
				"Signup webhook",
			)
		})
	}

	if cfg.HasEmail() {
		emailCfg := EmailConfigFromSnapshot(cfg)
		n.spawn(func() {
			util.LogNotifyResult(
				func() error { return SendSignupConfirmation(emailCfg, n.hotel(), address) },
				"Signup confirmation",
			)
		})
		n.spawn(func() {
			util.LogNotifyResult(
				func() error { return SendSignupStaffNotice(emailCfg, address) },
				"Signup staff notice",
			)
		})
	}
}

// Wait blocks until all notifications in flight have finished.
func (n *SignupNotifier) Wait() {
	n.wg.Wait()
}

func (n *SignupNotifier) spawn(fn func()) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		fn()
	}()
}

// EmailConfigFromSnapshot builds the SMTP settings from a configuration snapshot.
func EmailConfigFromSnapshot(cfg config.Snapshot) *EmailConfig {
	return EmailConfigFromValues(
		cfg.EmailSMTPHost,
		cfg.EmailSMTPPort,
		cfg.EmailFromName,
		cfg.EmailUsername,
		cfg.EmailPassword,
		cfg.EmailRecipients,
	)
}
