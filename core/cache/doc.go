// Package cache provides a small keyed TTL cache for read-mostly data such as
// the chatbot configuration.
//
// Loads go through a singleflight group so that a burst of requests hitting an
// expired entry triggers a single database query.
package cache
