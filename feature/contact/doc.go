// Package contact stores contact form submissions and emails the site owner
// about each one through a mail.Sender.
package contact
