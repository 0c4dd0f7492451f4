// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// MailQueueName is the durable queue mail requests travel on.
const MailQueueName = "mail.send"

// MailRequested is published whenever the platform needs to send an email
// (one-time codes, notifications). The actual SMTP delivery happens in a
// downstream consumer so a broker or mail outage never blocks the request
// path.
type MailRequested struct {
	To          string `json:"to"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	RequestedAt string `json:"requested_at"`
}
