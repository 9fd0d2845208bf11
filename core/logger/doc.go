// Package logger builds the zap logger used across the service.
//
// Level "debug" selects zap's development preset, anything else the production
// preset; Format chooses between json and console encoding. WithRayID tags a
// logger with the request id set by the rayid middleware so every line of a
// request can be correlated:
//
//	l := logger.WithRayID(log, c)
//	l.Error("Project update failed", zap.Error(err))
package logger
