// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Use cases depend on the Validator interface so validation stays shared and
// testable; the go-playground/validator v10 implementation lives here, along
// with the custom account-name rule.
package validator
