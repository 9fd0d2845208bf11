// Package utils provides common utility functions for the portfolio API.
// It includes helpers for type conversion and for reading loosely typed form
// values sent by the admin frontend.
package utils
