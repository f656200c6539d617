package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format represents logger output format.
type Format string

const (
	// FormatJSON outputs structured logs for log aggregation systems.
	FormatJSON Format = "json"
	// FormatText outputs human-readable logs for local development.
	FormatText Format = "text"
)

// Deployment environment names recorded on the "env" attribute.
const (
	envDevelopment = "development"
	envStaging     = "staging"
	envProduction  = "production"
)

type config struct {
	level          slog.Level
	format         Format
	output         io.Writer
	attrs          []slog.Attr
	handlerOptions *slog.HandlerOptions
	extractors     []ContextExtractor
}

func defaultConfig() *config {
	return &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
}

// Option configures logger creation.
type Option func(*config)

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat sets the output format. Invalid formats panic so a
// misconfigured service fails at startup instead of logging garbage.
func WithFormat(f Format) Option {
	return func(c *config) {
		switch f {
		case FormatJSON, FormatText:
			c.format = f
		default:
			panic(fmt.Errorf("invalid log format %q: must be %q or %q", f, FormatJSON, FormatText))
		}
	}
}

func WithTextFormatter() Option {
	return func(c *config) { c.format = FormatText }
}

func WithJSONFormatter() Option {
	return func(c *config) { c.format = FormatJSON }
}

// WithOutput sets a custom output destination. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithHandlerOptions overrides the slog.HandlerOptions used by the handler.
// Note that this replaces the level configured via WithLevel.
func WithHandlerOptions(opts *slog.HandlerOptions) Option {
	return func(c *config) {
		if opts != nil {
			c.handlerOptions = opts
		}
	}
}

// WithAttr adds static attributes to every log record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		c.attrs = append(c.attrs, attrs...)
	}
}

// WithContextExtractors registers functions that inject attributes from the
// logging context. Nil extractors are skipped.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		for _, ex := range extractors {
			if ex != nil {
				c.extractors = append(c.extractors, ex)
			}
		}
	}
}

// WithContextValue records the context value stored under key as a log
// attribute named name on every record whose context carries it.
func WithContextValue(name string, key any) Option {
	return func(c *config) {
		if name == "" || key == nil {
			return
		}
		c.extractors = append(c.extractors, func(ctx context.Context) (slog.Attr, bool) {
			if v := ctx.Value(key); v != nil {
				return slog.Any(name, v), true
			}
			return slog.Attr{}, false
		})
	}
}

func environmentPreset(c *config, service, env string, level slog.Level, format Format) {
	if service == "" {
		return
	}
	c.level = level
	c.format = format
	if c.output == nil {
		c.output = os.Stdout
	}
	c.attrs = append(c.attrs,
		slog.String("service", service),
		slog.String("env", env),
	)
}

// WithDevelopment configures text output at debug level with service and env
// attributes attached to every record.
func WithDevelopment(service string) Option {
	return func(c *config) {
		environmentPreset(c, service, envDevelopment, slog.LevelDebug, FormatText)
	}
}

// WithProduction configures JSON output at info level with service and env
// attributes attached to every record.
func WithProduction(service string) Option {
	return func(c *config) {
		environmentPreset(c, service, envProduction, slog.LevelInfo, FormatJSON)
	}
}

func WithStaging(service string) Option {
	return func(c *config) {
		environmentPreset(c, service, envStaging, slog.LevelInfo, FormatJSON)
	}
}

// WithEnvironment picks the preset matching the deployment environment name.
// Unrecognised names fall back to the development preset.
func WithEnvironment(env string, service string) Option {
	return func(c *config) {
		switch env {
		case envProduction, "prod":
			WithProduction(service)(c)
		case envStaging, "stage":
			WithStaging(service)(c)
		default:
			WithDevelopment(service)(c)
		}
	}
}

func SetAsDefault(l *slog.Logger) {
	slog.SetDefault(l)
}

// New builds a slog.Logger from the options. The handler is wrapped so that
// registered context extractors run on every log call.
func New(opts ...Option) *slog.Logger {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := cfg.handlerOptions
	if handlerOpts == nil {
		handlerOpts = &slog.HandlerOptions{Level: cfg.level}
	}

	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}

	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}

	return slog.New(newContextHandler(handler, cfg.extractors))
}
