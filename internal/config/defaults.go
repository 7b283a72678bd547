package config

const (
	defaultConfigPath  = "~/.config/audiovert/config.toml"
	projectConfigName  = "audiovert.toml"
	defaultFFmpeg      = "ffmpeg"
	defaultFFprobe     = "ffprobe"
	defaultPartExt     = "part"
	defaultMetaBackend = MetaBackendTag
	defaultLogFormat   = "console"
	defaultLogLevel    = "warn"
	defaultColor       = "auto"
)

// Tag reader backends.
const (
	MetaBackendTag     = "tag"
	MetaBackendFFprobe = "ffprobe"
)

// Default returns a Config populated with repository defaults. The trash
// directory is resolved during normalization.
func Default() Config {
	return Config{
		Encoder: Encoder{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
			PartExt: defaultPartExt,
		},
		Convert: Convert{
			MetaBackend: defaultMetaBackend,
		},
		Paths: Paths{
			Lock: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Output: Output{
			Color: defaultColor,
		},
	}
}
