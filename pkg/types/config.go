package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Scheme backend
	BackendURL        string `envconfig:"BACKEND_URL" default:"http://localhost:8000"`
	BackendTimeoutSec uint   `envconfig:"BACKEND_TIMEOUT_SEC" default:"30"`
	SearchTopK        int    `envconfig:"SEARCH_TOP_K" default:"0"` // 0 lets the backend decide

	// Sessions
	CookieName              string `envconfig:"SESSION_COOKIE_NAME" default:"schemebot_session"`
	SessionMaxAgeSec        int    `envconfig:"SESSION_MAX_AGE_SEC" default:"3600"`
	SessionSweepIntervalSec int    `envconfig:"SESSION_SWEEP_INTERVAL_SEC" default:"60"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
