// Package logging provides structured logging for linefilter.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// persistent context attributes. File output is rotated by lumberjack.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers
// created via With* methods share the underlying writer.
//
// # Basic Usage
//
//	logger, err := logging.New(logging.Options{
//	    Level:      "INFO",
//	    File:       "/path/to/linefilter.log",
//	    MaxSizeMB:  10,
//	    MaxBackups: 3,
//	    Compress:   true,
//	})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithComponent("engine").WithDocument("/notes/todo.md").
//	    Debug("visibility recomputed", "hidden", 12)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"visibility recomputed","component":"engine","document_id":"/notes/todo.md","hidden":12}
//
// # Reading Logs Back
//
// [ReadLogs], [FilterLogs] and [ExportLogEntries] back the "logs" command:
//
//	entries, err := logging.ReadLogs(path)
//	warnings := logging.FilterLogs(entries, logging.LogFilter{Level: "WARN"})
//	logging.ExportLogEntries(os.Stdout, warnings, "text")
//
// # Testing
//
// Use [NopLogger] to discard all output, or [NewWithWriter] with a
// bytes.Buffer to assert on entries.
package logging
