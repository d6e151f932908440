// Package notify delivers newsletter signup notifications by email and webhook.
package notify

import (
	"fmt"
	"strings"

	"github.com/oszuidwest/hotelsite/internal/util"
	"github.com/wneessen/go-mail"
)

// EmailConfig contains SMTP server settings for outgoing mail.
type EmailConfig struct {
	Host       string
	Port       int
	FromName   string
	Username   string
	Password   string
	Recipients string
}

// EmailConfigFromValues constructs an EmailConfig from individual values.
func EmailConfigFromValues(host string, port int, fromName, username, password, recipients string) *EmailConfig {
	return &EmailConfig{
		Host:       host,
		Port:       port,
		FromName:   fromName,
		Username:   username,
		Password:   password,
		Recipients: recipients,
	}
}

// SendSignupConfirmation thanks a new subscriber.
func SendSignupConfirmation(cfg *EmailConfig, hotel, address string) error {
	if !util.IsConfigured(cfg.Host, cfg.Username) {
		return nil // Silently skip if not configured
	}

	subject := fmt.Sprintf("Welcome to the %s newsletter", hotel)
	body := fmt.Sprintf(
		"Thank you for subscribing to news and offers from %s.\n\n"+
			"You will hear from us about seasonal rates, events in Manchester\n"+
			"and everything new at the hotel.\n\n"+
			"If you did not sign up, you can ignore this message.",
		hotel,
	)

	return sendEmail(cfg, []string{address}, subject, body)
}

// SendSignupStaffNotice tells the configured recipients about a new subscriber.
func SendSignupStaffNotice(cfg *EmailConfig, address string) error {
	if !util.IsConfigured(cfg.Host, cfg.Username, cfg.Recipients) {
		return nil // Silently skip if not configured
	}

	subject := "[Newsletter] New subscriber"
	body := fmt.Sprintf(
		"A visitor subscribed to the newsletter.\n\n"+
			"Address: %s\n"+
			"Time:    %s",
		address, util.HumanTime(),
	)

	return sendEmail(cfg, splitRecipients(cfg.Recipients), subject, body)
}

// SendTestEmail sends a test email to verify SMTP configuration.
func SendTestEmail(cfg *EmailConfig) error {
	if cfg.Host == "" {
		return fmt.Errorf("SMTP host not configured")
	}
	if cfg.Username == "" {
		return fmt.Errorf("email username not configured")
	}
	if cfg.Recipients == "" {
		return fmt.Errorf("email recipients not configured")
	}

	subject := "[TEST] Hotel site"
	body := fmt.Sprintf(
		"Test email from the hotel site.\n\n"+
			"Time: %s\n\n"+
			"SMTP configuration is working correctly.",
		util.HumanTime(),
	)

	return sendEmail(cfg, splitRecipients(cfg.Recipients), subject, body)
}

func splitRecipients(list string) []string {
	var recipients []string
	for _, r := range strings.Split(list, ",") {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	return recipients
}

// sendEmail delivers a plain text message.
func sendEmail(cfg *EmailConfig, to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no valid recipients")
	}

	m := mail.NewMsg()
	if cfg.FromName != "" {
		if err := m.FromFormat(cfg.FromName, cfg.Username); err != nil {
			return util.WrapError("set from address", err)
		}
	} else {
		if err := m.From(cfg.Username); err != nil {
			return util.WrapError("set from address", err)
		}
	}
	if err := m.To(to...); err != nil {
		return util.WrapError("set recipient address", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthAutoDiscover),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}

	switch cfg.Port {
	case 465: // SMTPS - implicit TLS
		opts = append(opts, mail.WithSSL())
	case 587: // Submission - STARTTLS required
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return util.WrapError("create SMTP client", err)
	}

	if err := c.DialAndSend(m); err != nil {
		return util.WrapError("send email", err)
	}

	return nil
}
