// Package logging provides structured logging for Vidyank Core.
//
// It wraps log/slog so every component logs the same way: JSON in
// production, text in development, with service and version attached to
// every entry.
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Never log passwords, password hashes or session tokens. Log account IDs
// and roles instead.
package logging
