package connectors

import "rfpdesk/internal"

type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}

// MailSender dispatches an RFP email and returns the provider message id.
type MailSender interface {
	Send(to, subject, body string) (string, error)
}
