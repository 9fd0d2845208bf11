// Package admin exposes login, logout, refresh and token inspection for
// administrators on top of core/auth.
package admin
