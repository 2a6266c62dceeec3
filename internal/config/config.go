package config

// Config holds server configuration values.
type Config struct {
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	AuditLog    string `mapstructure:"audit_log" yaml:"audit_log"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	MaxSessions int    `mapstructure:"max_sessions" yaml:"max_sessions"`
}

// Default returns configuration matching the historical wire defaults:
// chat on 9090, metrics on 9100, audit records in server.log.
func Default() Config {
	return Config{
		ListenAddr:  ":9090",
		MetricsAddr: ":9100",
		AuditLog:    "server.log",
		LogLevel:    "info",
		MaxSessions: 128,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.ListenAddr != "" {
		c.ListenAddr = other.ListenAddr
	}
	if other.MetricsAddr != "" {
		c.MetricsAddr = other.MetricsAddr
	}
	if other.AuditLog != "" {
		c.AuditLog = other.AuditLog
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.MaxSessions != 0 {
		c.MaxSessions = other.MaxSessions
	}
}
