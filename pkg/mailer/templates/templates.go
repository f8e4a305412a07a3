package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

const VerifyEmail = "verify_email"

var verifyEmailHTML = template.Must(template.New(VerifyEmail).Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #333;">
    <h2>Verify your email address</h2>
    <p>Thanks for signing up. Click the link below to verify your email.</p>
    <p><a href="{{.Link}}">Verify email</a></p>
    <p>This link expires in {{.ExpiresIn}}. If you did not create an account,
    you can ignore this message.</p>
  </body>
</html>`))

// Render returns subject, plain-text and HTML bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case VerifyEmail:
		var buf bytes.Buffer
		if err := verifyEmailHTML.Execute(&buf, data); err != nil {
			return "", "", "", err
		}
		text = fmt.Sprintf("Verify your email address: %v (expires in %v)", data["Link"], data["ExpiresIn"])
		return "Verify your email address", text, buf.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
}
