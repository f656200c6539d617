// Package config loads typed application configuration from environment
// variables, backed by github.com/caarlos0/env/v11 for parsing and
// github.com/joho/godotenv for optional .env files.
//
// Each configuration struct is parsed at most once per process: Load caches
// the parsed value by type, so every component asking for the same config
// gets the cached copy. MustLoad and MustLoadEnv panic on failure for
// configuration the service cannot start without.
//
// # Usage
//
// Describe the configuration as a struct with env tags:
//
//	type PostmarkConfig struct {
//	    ServerToken string `env:"POSTMARK_SERVER_TOKEN,required"`
//	    SenderEmail string `env:"POSTMARK_SENDER_EMAIL,required"`
//	    ReplyTo     string `env:"POSTMARK_REPLY_TO"`
//	}
//
// Optionally load .env files, then parse:
//
//	import "github.com/dmitrymomot/notifykit/pkg/config"
//
//	func main() {
//	    if err := config.LoadEnv("./config/.env"); err != nil {
//	        log.Fatalf("loading env: %v", err)
//	    }
//
//	    var pm PostmarkConfig
//	    if err := config.Load(&pm); err != nil {
//	        log.Fatalf("parsing env: %v", err)
//	    }
//
//	    // pm is now populated and cached for future calls.
//	}
//
// Values already present in the process environment always win over .env
// files, and when the same key appears in several files the first file wins.
//
// # Errors
//
// Failures are wrapped with sentinel errors for errors.Is checks:
// ErrParsingConfig when the environment cannot be parsed into the struct,
// ErrNilPointer when a nil pointer is passed, and ErrConfigNotLoaded when a
// cached value cannot be returned.
//
// # Testing
//
// ResetCache clears the cache between tests; ForceReloadConfig re-parses one
// struct type after the environment changed.
package config
