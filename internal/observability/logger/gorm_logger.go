package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	applog "github.com/smallbiznis/freelanceflow/internal/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// GormLoggerConfig configures the GORM zap logger.
type GormLoggerConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
	// LogRecordNotFound reports lookups that miss. Invoice and client
	// lookups by id miss routinely and are answered with 404s, so this is
	// off by default.
	LogRecordNotFound bool
}

func DefaultGormLoggerConfig() GormLoggerConfig {
	return GormLoggerConfig{
		Level:         gormlogger.Warn,
		SlowThreshold: 100 * time.Millisecond,
	}
}

// GormLogger routes GORM output through zap with per-statement fields.
type GormLogger struct {
	base *zap.Logger
	cfg  GormLoggerConfig
}

func NewGormLogger(base *zap.Logger, cfg GormLoggerConfig) *GormLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &GormLogger{base: base.Named("gorm"), cfg: cfg}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.cfg.Level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.message(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) message(ctx context.Context, min gormlogger.LogLevel, level zapcore.Level, msg string, data []interface{}) {
	if l.cfg.Level < min {
		return
	}
	if ce := l.from(ctx).Check(level, msg); ce != nil {
		if len(data) > 0 {
			ce.Write(zap.Any("data", data))
			return
		}
		ce.Write()
	}
}

// Trace logs failed statements at error, slow ones at warn and the rest
// at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	notFound := errors.Is(err, gormlogger.ErrRecordNotFound)

	var level zapcore.Level
	switch {
	case err != nil && (!notFound || l.cfg.LogRecordNotFound):
		if l.cfg.Level < gormlogger.Error {
			return
		}
		level = zapcore.ErrorLevel
	case l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold:
		if l.cfg.Level < gormlogger.Warn {
			return
		}
		level = zapcore.WarnLevel
	case l.cfg.Level >= gormlogger.Info:
		level = zapcore.DebugLevel
	default:
		return
	}

	ce := l.from(ctx).Check(level, "query")
	if ce == nil {
		return
	}

	sql, rows := fc()
	kind, table := describeStatement(sql)
	fields := []zap.Field{
		zap.String("statement", kind),
		zap.String("table", table),
		zap.Duration("elapsed", elapsed),
		zap.String("sql", strings.TrimSpace(sql)),
	}
	if rows >= 0 {
		fields = append(fields, zap.Int64("rows", rows))
	}
	if level == zapcore.WarnLevel {
		fields = append(fields, zap.Duration("slow_threshold", l.cfg.SlowThreshold))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	ce.Write(fields...)
}

// ParamsFilter drops bound values; client emails and notes stay out of logs.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *GormLogger) from(ctx context.Context) *zap.Logger {
	return applog.WithContext(ctx, l.base)
}

// describeStatement returns the statement verb and the first table it
// touches, e.g. ("INSERT", "work_items").
func describeStatement(sql string) (string, string) {
	tokens := strings.Fields(strings.TrimSpace(sql))
	kind := "UNKNOWN"
	for i, raw := range tokens {
		token := strings.ToUpper(strings.Trim(raw, "();"))
		switch token {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			if kind == "UNKNOWN" {
				kind = token
			}
			if token == "UPDATE" {
				return kind, tableName(tokens, i+1)
			}
		case "FROM", "INTO":
			if kind != "UNKNOWN" {
				return kind, tableName(tokens, i+1)
			}
		}
	}
	return kind, ""
}

func tableName(tokens []string, i int) string {
	if i >= len(tokens) {
		return ""
	}
	return strings.Trim(tokens[i], "`\"();")
}

var _ gormlogger.Interface = (*GormLogger)(nil)
