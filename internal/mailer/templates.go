package mailer

import (
	"fmt"
	"html"
)

// VerificationMessage builds the "verify your email" mail.
func VerificationMessage(to, appURL, token string) Message {
	link := fmt.Sprintf("%s/verify-email/%s", appURL, token)
	return Message{
		To:        to,
		Subject:   "Verify your email",
		PlainText: "Please verify your email by opening this link: " + link,
		HTML: fmt.Sprintf(`<h1>Email Verification</h1>
<p>Please verify your email by clicking the link below:</p>
<a href="%s">Verify Email</a>`, link),
	}
}

// PasswordResetMessage builds the password reset mail. The link expires after one hour.
func PasswordResetMessage(to, appURL, token string) Message {
	link := fmt.Sprintf("%s/reset-password?token=%s", appURL, token)
	return Message{
		To:        to,
		Subject:   "Reset Your Password",
		PlainText: "You requested to reset your password. Open this link within one hour: " + link,
		HTML: fmt.Sprintf(`<h1>Password Reset Request</h1>
<p>You requested to reset your password. Click the link below to set a new password:</p>
<a href="%s" style="display: inline-block; background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin: 16px 0;">Reset Password</a>
<p>This link will expire in 1 hour.</p>
<p>If you didn't request this password reset, you can safely ignore this email.</p>`, link),
	}
}

// ContactMessage forwards a contact-form submission to the support inbox.
func ContactMessage(supportEmail, from, subject, body string) Message {
	return Message{
		To:        supportEmail,
		ReplyTo:   from,
		Subject:   "Contact Us: " + subject,
		PlainText: fmt.Sprintf("From: %s\n\nMessage:\n%s", from, body),
		HTML: fmt.Sprintf("<p>From: %s</p><p>Message:</p><pre>%s</pre>",
			html.EscapeString(from), html.EscapeString(body)),
	}
}
