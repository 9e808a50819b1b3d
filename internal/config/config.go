// Package config gathers flags, the env file and secrets into one Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	log "log/slog"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"voxassist/internal/ipc"
	"voxassist/internal/notify"
	"voxassist/internal/reminder"
)

var (
	ErrMissingToken     = errors.New("RESEND_API_KEY not set")
	ErrMissingOpenAIKey = errors.New("OPENAI_API_KEY not set")
)

var LogLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

type Config struct {
	LogLevel log.Level
	Listen   string
	Proxy    string
	Socket   string

	STT           string // whisper | openai
	WhisperModel  string
	Language      string
	ListenTimeout time.Duration
	Duck          int // percent, 0 disables
	Refine        bool

	TTS      string // openai | espeak
	Voice    string
	TTSModel string
	Play     bool
	Cue      string

	Lead         time.Duration
	Sender       string
	EmailTimeout time.Duration

	ResendToken string
	OpenAIKey   string
}

// NeedsOpenAI reports whether any configured backend talks to OpenAI.
func (c Config) NeedsOpenAI() bool {
	return c.STT == "openai" || c.TTS == "openai" || c.Refine
}

// Load parses args (without the program name). Secrets are read through
// getenv first and then from the env file named by --env.
func Load(args []string, getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	fs := cli.NewFlagSet("voxassist", cli.ContinueOnError)
	envFile := fs.StringP("env", "e", ".env", "Env file path")
	logLevel := fs.StringP("log", "l", "info", "Log level (debug|info|warn|error)")
	listen := fs.String("listen", "127.0.0.1:8501", "Web page listen address")
	proxyAddr := fs.StringP("proxy", "p", "", "Socks proxy address, empty for direct")
	socket := fs.String("socket", ipc.SocketPath, "Control socket path")

	sttBackend := fs.String("stt", "whisper", "Speech-to-text backend (whisper|openai)")
	whisperModel := fs.StringP("whisper-model", "m", "third_party/whisper.cpp/models/ggml-medium.bin", "Whisper model path")
	language := fs.String("language", "en", "Spoken language, auto to detect")
	listenTimeout := fs.Duration("listen-timeout", 15*time.Second, "Give up listening after this long")
	duck := fs.Int("duck", 0, "Lower other apps to this volume percent while listening, 0 disables")
	refine := fs.Bool("refine", false, "Clean up search queries with a chat model")

	ttsBackend := fs.String("tts", "openai", "Text-to-speech backend (openai|espeak)")
	voice := fs.String("voice", "alloy", "OpenAI TTS voice")
	ttsModel := fs.String("tts-model", "gpt-4o-mini-tts", "OpenAI TTS model")
	play := fs.Bool("play", true, "Play speech on the local speaker")
	cue := fs.String("cue", "", "Listening cue mp3, empty for none")

	lead := fs.Duration("lead", reminder.DefaultLead, "Notify this long before the event")
	sender := fs.String("sender", notify.DefaultSender, "Email sender")
	emailTimeout := fs.Duration("email-timeout", 15*time.Second, "Email API timeout")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	level, ok := LogLevelMap[*logLevel]
	if !ok {
		return Config{}, fmt.Errorf("unknown log level %q", *logLevel)
	}
	if !slices.Contains([]string{"whisper", "openai"}, *sttBackend) {
		return Config{}, fmt.Errorf("unknown stt backend %q", *sttBackend)
	}
	if !slices.Contains([]string{"openai", "espeak"}, *ttsBackend) {
		return Config{}, fmt.Errorf("unknown tts backend %q", *ttsBackend)
	}
	if *lead <= 0 {
		return Config{}, fmt.Errorf("lead must be positive, got %s", *lead)
	}
	if *duck < 0 || *duck > 100 {
		return Config{}, fmt.Errorf("duck must be within 0..100, got %d", *duck)
	}

	fileEnv, err := godotenv.Read(*envFile)
	if err != nil && fs.Changed("env") {
		return Config{}, fmt.Errorf("read env file: %w", err)
	}
	secret := func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fileEnv[key]
	}

	cfg := Config{
		LogLevel:      level,
		Listen:        *listen,
		Proxy:         *proxyAddr,
		Socket:        *socket,
		STT:           *sttBackend,
		WhisperModel:  *whisperModel,
		Language:      *language,
		ListenTimeout: *listenTimeout,
		Duck:          *duck,
		Refine:        *refine,
		TTS:           *ttsBackend,
		Voice:         *voice,
		TTSModel:      *ttsModel,
		Play:          *play,
		Cue:           *cue,
		Lead:          *lead,
		Sender:        *sender,
		EmailTimeout:  *emailTimeout,
		ResendToken:   secret("RESEND_API_KEY"),
		OpenAIKey:     secret("OPENAI_API_KEY"),
	}

	if cfg.ResendToken == "" {
		return cfg, ErrMissingToken
	}
	if cfg.NeedsOpenAI() && cfg.OpenAIKey == "" {
		return cfg, ErrMissingOpenAIKey
	}
	return cfg, nil
}
