// Package mailer delivers notification emails over SMTP.
package mailer

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/imagify/imagify-server/internal/model"
)

var _ model.Mailer = (*SMTP)(nil)

// SMTP sends templated HTML emails through a gomail dialer.
type SMTP struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTP(host string, port int, username, password, from, fromName string) *SMTP {
	return &SMTP{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}
}

// Send renders the template for the email kind and delivers it. Retries are
// the notifier's job; a single attempt either lands or errors.
func (s *SMTP) Send(_ context.Context, email model.Email) error {
	subject, body, err := render(email)
	if err != nil {
		return err
	}

	message := gomail.NewMessage()
	message.SetAddressHeader("From", s.from, s.fromName)
	message.SetHeader("To", email.To)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func render(email model.Email) (subject, body string, err error) {
	switch email.Kind {
	case model.EmailVerificationCode:
		return "Verify your AI-Wallpaper account",
			codeBody("Welcome to AI-Wallpaper!", "Your verification code is:", email.Code),
			nil
	case model.EmailResetCode:
		return "Reset your AI-Wallpaper password",
			codeBody("Password Reset Request", "Your password reset code is:", email.Code),
			nil
	case model.EmailPasswordChanged:
		return "Your AI-Wallpaper password was changed",
			noticeBody("Password Changed", "Your password was just changed. If this wasn't you, reset it immediately."),
			nil
	case model.EmailAccountDeleted:
		return "Your AI-Wallpaper account was deleted",
			noticeBody("Account Deleted", "Your account and its data have been removed. We're sorry to see you go."),
			nil
	case model.EmailLoginAlert:
		return "New login to your AI-Wallpaper account",
			noticeBody("New Login", fmt.Sprintf("A login just happened from IP %s on %s.", email.IP, email.Device)),
			nil
	case model.EmailNewDevice:
		return "New device on your AI-Wallpaper account",
			noticeBody("New Device", fmt.Sprintf("A new device (%s, IP %s) accessed your account.", email.Device, email.IP)),
			nil
	default:
		return "", "", fmt.Errorf("unknown email kind %q", email.Kind)
	}
}

func codeBody(title, message string, code int) string {
	return fmt.Sprintf(`
	<html>
	  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<h2 style="color: #6A0DAD;">%s</h2>
		<p>Hello,</p>
		<p>%s</p>
		<p style="text-align: center; font-size: 24px; font-weight: bold; color: #6A0DAD;">%06d</p>
		<p>This code will expire in 15 minutes.</p>
		<p>If this wasn't you, you can safely ignore this email.</p>
		<br>
		<p>Thanks,<br>AI-Wallpaper Team</p>
	  </body>
	</html>
	`, title, message, code)
}

func noticeBody(title, message string) string {
	return fmt.Sprintf(`
	<html>
	  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
		<h2 style="color: #6A0DAD;">%s</h2>
		<p>Hello,</p>
		<p>%s</p>
		<br>
		<p>Thanks,<br>AI-Wallpaper Team</p>
	  </body>
	</html>
	`, title, message)
}
