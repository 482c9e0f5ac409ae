// Package otp wraps TOTP generation and validation for authenticator apps.
//
// It produces the shared seed and the otpauth:// provisioning URI that QR
// codes and configuration bundles are built from, and can validate codes
// against a seed.
package otp
