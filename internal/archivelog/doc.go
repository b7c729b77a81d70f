// Package archivelog provides the archival engine's structured logging,
// built on log/slog. RedactHandler wraps any slog.Handler to mask cookie,
// credential, and token values so host-override secrets from
// archiveconfig never reach a log sink in cleartext, and New/NewJSON wire
// that handler up with terminal-aware colorization for interactive runs.
package archivelog
