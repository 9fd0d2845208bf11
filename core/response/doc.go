// Package response writes the {success, message, data} JSON envelope shared by
// all API endpoints.
package response
