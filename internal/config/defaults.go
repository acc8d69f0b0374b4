package config

const (
	defaultDataDir          = "~/.local/share/orrery"
	defaultFPS              = 30
	defaultHoldSeconds      = 2.0
	defaultTransitionFrames = 15
	defaultFFmpegBinary     = "ffmpeg"
	defaultEncodeTimeout    = 600
	defaultRenderWorkers    = 4
	defaultFrameWidth       = 1080
	defaultFrameHeight      = 1080
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Video: Video{
			FPS:              defaultFPS,
			HoldSeconds:      defaultHoldSeconds,
			TransitionFrames: defaultTransitionFrames,
			FFmpegBinary:     defaultFFmpegBinary,
			EncodeTimeout:    defaultEncodeTimeout,
			RenderWorkers:    defaultRenderWorkers,
		},
		Render: Render{
			Width:  defaultFrameWidth,
			Height: defaultFrameHeight,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
