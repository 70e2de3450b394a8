package app

import "github.com/bannerworks/alertbanner/pkg/mail"

// SMTPSettings converts the configuration into the shape expected by the mail package.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}
