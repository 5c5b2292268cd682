// Package email renders and sends transactional mail for order
// events. Rendering and transport are separate so templates can be
// tested without an SMTP server.
package email

import "context"

// Email is one rendered message ready for transport.
type Email struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered email.
type Sender interface {
	Send(ctx context.Context, email Email) error
}
