package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

const DefaultProductName = "Landing"

var waitlistConfirmationHTML = template.Must(template.New("waitlist_confirmation").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #111;">
    <h2>You're on the {{.Product}} waitlist</h2>
    <p>Thanks for signing up. You are <strong>#{{.Position}}</strong> in line.</p>
    <p>We'll email {{.Email}} as soon as your invite is ready.</p>
  </body>
</html>
`))

type waitlistConfirmationData struct {
	Product  string
	Email    string
	Position int
}

// WaitlistConfirmation builds the "you are #N" email sent after a join.
func WaitlistConfirmation(product, email string, position int) (Message, error) {
	if product == "" {
		product = DefaultProductName
	}

	var html bytes.Buffer
	data := waitlistConfirmationData{Product: product, Email: email, Position: position}
	if err := waitlistConfirmationHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render waitlist confirmation: %w", err)
	}

	return Message{
		To:      email,
		Subject: fmt.Sprintf("You're #%d on the %s waitlist", position, product),
		Text: fmt.Sprintf("Thanks for signing up. You are #%d in line.\nWe'll email %s as soon as your invite is ready.\n",
			position, email),
		HTML: html.String(),
	}, nil
}
