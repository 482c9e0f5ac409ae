// Package mail defines the contracts for sending email messages.
//
// Callers work with the Mail interface and the Message payload so the
// delivery mechanism stays swappable; the SMTP implementation lives in this
// package.
package mail
