package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load(".env")
}

func Get(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetBool(key, defaultVal string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		v = defaultVal
	}
	return v == "1" || v == "true" || v == "yes"
}

var (
	// WASMPath points at an optional WASI fit engine (see internal/wasmfit).
	WASMPath = Get("TRENDLINE_WASM")

	// DBPath is the sqlite crossing-history database. Empty disables history.
	DBPath = Get("TRENDLINE_DB")

	// TraceEnabled turns on stdout span export.
	TraceEnabled = GetBool("TRENDLINE_TRACE", "false")

	AdminAPIKey = Get("ADMIN_API_KEY")
)
