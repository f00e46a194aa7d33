package config

const (
	defaultDataDir            = "~/.local/share/speakd"
	defaultIdleTimeoutSeconds = 300
	defaultEngineCommand      = "speakd-engine"
	defaultVoice              = "bf_lily"
	defaultLangCode           = "b"
	defaultSpeed              = 1.0
	defaultWarmupText         = "."
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogMaxMiB          = 32
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Daemon: Daemon{
			IdleTimeoutSeconds: defaultIdleTimeoutSeconds,
		},
		Engine: Engine{
			Command:    defaultEngineCommand,
			Voice:      defaultVoice,
			LangCode:   defaultLangCode,
			Speed:      defaultSpeed,
			WarmupText: defaultWarmupText,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			MaxMiB: defaultLogMaxMiB,
		},
	}
}
