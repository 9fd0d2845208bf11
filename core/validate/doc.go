// Package validate wraps go-playground/validator with the tags the API needs
// (including a lenient "phone" tag) and reports failures keyed by JSON field.
package validate
