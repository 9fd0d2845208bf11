// Package chatbot implements a keyword-driven chat assistant.
//
// Each visitor message is stored with its session id, matched against the
// keywords of the active BotConfig and answered with the first matching
// canned reply. Keywords are tried in sorted order so the same message always
// gets the same answer. The active config is cached for cache.Config.TTLSeconds
// and invalidated on update.
//
// Routes:
//
//	POST /chatbot/message
//	GET  /chatbot/history/:session_id?limit=50
//	GET  /chatbot/config
//	PUT  /chatbot/config/:id   (admin)
package chatbot
