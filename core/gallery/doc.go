// Package gallery holds the HTTP and persistence glue shared by the features
// whose rows carry an image list: reading multipart uploads, loading the
// stored list leniently and mapping reconciliation errors to responses.
package gallery
