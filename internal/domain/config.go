package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	Tools        ToolsConfig        `mapstructure:"tools"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	Dir          string        `mapstructure:"dir"`           // default destination directory
	DatabasePath string        `mapstructure:"database_path"` // job history database
	KillGrace    time.Duration `mapstructure:"kill_grace"`    // graceful-terminate window before SIGKILL
}

// ToolsConfig optionally pins explicit paths for the external executables.
// Empty values fall back to the bundled-tools/PATH lookup.
type ToolsConfig struct {
	Downloader string `mapstructure:"downloader"` // yt-dlp binary
	Processor  string `mapstructure:"processor"`  // ffmpeg binary
	BundleDir  string `mapstructure:"bundle_dir"` // directory holding bundled tools
}

// NotificationConfig contains desktop notification configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8093,
		},
		Download: DownloadConfig{
			Dir:          "$HOME/Downloads",
			DatabasePath: "$HOME/.downly/history.db",
			KillGrace:    3 * time.Second,
		},
		Tools: ToolsConfig{
			Downloader: "",
			Processor:  "",
			BundleDir:  "",
		},
		Notification: NotificationConfig{
			Enabled: true,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
