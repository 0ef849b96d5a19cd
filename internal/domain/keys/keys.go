// Package keys holds the configuration key names bound through viper.
package keys

const (
	Port              = "port"
	OutputDir         = "output-dir"
	BinDir            = "bin-dir"
	PublicDir         = "public-dir"
	CookieFile        = "cookie-file"
	CookieSource      = "cookies-from-browser"
	Proxy             = "proxy"
	DebugLevel        = "debug"
	UnplayablePhrases = "unplayable-phrases"
	Execute           = "execute"
)

// Environment variable names honored for parity with existing deployments.
const (
	EnvPort    = "PORT"
	EnvProxy   = "YTDLP_PROXY"
	EnvCookies = "YTDLP_COOKIES"
)
