// Package mail sends notification emails over SMTP using go-mail.
//
// When mail.host is not configured New returns a NopSender that only logs,
// so local development works without an SMTP server.
package mail
