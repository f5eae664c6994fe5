package notification

import (
	"context"
)

// Email is a transactional message. Body is HTML.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Sender defines the interface for delivering transactional email. Sends are
// never load-bearing: callers log failures and move on.
type Sender interface {
	Name() string
	Send(ctx context.Context, email *Email) error
}
