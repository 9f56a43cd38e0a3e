package logger

import (
	"go.uber.org/zap/zapcore"
)

// DBCore is a Zap core that forwards entries to the async Mongo writer
// before handing them to the wrapped core.
type DBCore struct {
	zapcore.Core
	writer *DBLogWriter
	fields []zapcore.Field
}

func NewDBCore(baseCore zapcore.Core, writer *DBLogWriter) zapcore.Core {
	return &DBCore{
		Core:   baseCore,
		writer: writer,
	}
}

// With keeps fields attached through logger.With so they reach the DB record too.
func (c *DBCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &DBCore{
		Core:   c.Core.With(fields),
		writer: c.writer,
		fields: merged,
	}
}

func (c *DBCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	record := LogEntry{
		Level:   entry.Level,
		Message: entry.Message,
		Caller:  entry.Caller.Function,
	}

	all := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)
	for _, f := range all {
		if f.Type != zapcore.StringType {
			continue
		}
		switch f.Key {
		case "ip":
			record.IpAddress = f.String
		case "organizationId":
			record.OrganizationID = f.String
		case "userId":
			record.UserID = f.String
		}
	}

	c.writer.AddLog(record)

	return c.Core.Write(entry, fields)
}

func (c *DBCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}
