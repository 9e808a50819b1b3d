package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	cli "github.com/spf13/pflag"

	"voxassist/internal/audio"
	"voxassist/internal/config"
	"voxassist/internal/espeak"
	"voxassist/internal/ipc"
	"voxassist/internal/nlu"
	"voxassist/internal/notify"
	"voxassist/internal/player"
	"voxassist/internal/proxy"
	"voxassist/internal/reminder"
	"voxassist/internal/search"
	"voxassist/internal/speech"
	"voxassist/internal/tts"
	"voxassist/internal/ui"
	"voxassist/pkg/stt"
	"voxassist/pkg/whisper"
)

const appName = "voxassist"

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if errors.Is(err, cli.ErrHelp) {
		os.Exit(0)
	}

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: cfg.LogLevel,
	})))

	if err != nil {
		log.Error("Bad configuration", "err", err)
		os.Exit(1)
	}

	log.Info("Booting up")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient, err := proxy.NewHTTPClient(cfg.Proxy, 0)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", cfg.Proxy, "err", err)
		os.Exit(1)
	}

	log.Debug("Loaded http client", "proxy", cfg.Proxy)

	var client openai.Client
	if cfg.NeedsOpenAI() {
		client = openai.NewClient(
			option.WithAPIKey(cfg.OpenAIKey),
			option.WithHTTPClient(httpClient),
		)
	}

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	log.Debug("Loaded recorder")

	var transcriber stt.Transcriber
	switch cfg.STT {
	case "whisper":
		transcriber, err = whisper.New(cfg.WhisperModel, whisper.Options{Language: cfg.Language})
		if err != nil {
			log.Error("Failed to init whisper", "model", cfg.WhisperModel, "err", err)
			os.Exit(1)
		}
	case "openai":
		transcriber = stt.NewOpenAI(client, "", cfg.Language)
	}
	defer transcriber.Close()

	log.Debug("Loaded transcriber", "backend", cfg.STT)

	var synth tts.Synthesizer
	switch cfg.TTS {
	case "openai":
		synth = tts.NewOpenAI(client, cfg.TTSModel, cfg.Voice)
	case "espeak":
		synth = espeak.New(cfg.Language)
	}

	feed := ui.NewFeed()
	out := player.New(cfg.Cue)

	speakerCfg := speech.SpeakerConfig{Synthesizer: synth, Status: feed}
	if cfg.Play {
		speakerCfg.Player = out
	}
	speaker := speech.NewSpeaker(speakerCfg)

	captureCfg := speech.CaptureConfig{
		Recorder:    rec,
		Transcriber: transcriber,
		Status:      feed,
		Cue:         out,
		Timeout:     cfg.ListenTimeout,
	}
	if cfg.Duck > 0 {
		captureCfg.Ducker = audio.NewDucker([]string{appName}, cfg.Duck)
	}
	capturer := speech.NewCapturer(captureCfg)

	mailer := notify.NewMailer(notify.MailerConfig{
		Token:   cfg.ResendToken,
		Sender:  cfg.Sender,
		Client:  httpClient,
		Timeout: cfg.EmailTimeout,
	})

	sched := reminder.NewScheduler(nil)
	if err := sched.Start(ctx); err != nil {
		log.Error("Failed to start scheduler", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	reminders := reminder.NewService(reminder.ServiceConfig{
		Scheduler: sched,
		Mailer:    mailer,
		Desktop:   notify.NewDesktop(appName),
		Voice:     speaker,
		Lead:      cfg.Lead,
	})

	shellCfg := ui.ShellConfig{
		Capturer:  capturer,
		Searcher:  search.New(speaker, nil),
		Scheduler: reminders,
	}
	if cfg.Refine {
		shellCfg.Refiner = nlu.NewRefiner(client, "")
	}
	shell := ui.NewShell(shellCfg)

	ctl, err := ipc.StartServer(cfg.Socket, func(msg ipc.ControlMessage) ipc.Reply {
		return handleControl(ctx, msg, shell, sched)
	})
	if err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}
	defer ctl.Close()

	log.Info("Boot up - successful")

	srv := ui.NewServer(ui.ServerConfig{
		Shell:   shell,
		Feed:    feed,
		Clips:   speaker,
		Pending: sched,
	})
	if err := srv.Serve(ctx, cfg.Listen); err != nil {
		log.Error("HTTP server failed", "addr", cfg.Listen, "err", err)
		os.Exit(1)
	}

	log.Info("Shutting down")
}

func handleControl(ctx context.Context, msg ipc.ControlMessage, shell *ui.Shell, sched *reminder.Scheduler) ipc.Reply {
	switch msg.Cmd {
	case "search":
		flashes, err := shell.VoiceSearch(ctx)
		texts := make([]string, len(flashes))
		for i, f := range flashes {
			texts[i] = f.Text
		}
		return ipc.Reply{OK: err == nil, Message: strings.Join(texts, "\n")}

	case "list":
		pending := sched.Pending()
		if len(pending) == 0 {
			return ipc.Reply{OK: true, Message: "No pending reminders."}
		}
		var b strings.Builder
		for _, r := range pending {
			fmt.Fprintf(&b, "%s  %s  (%s)\n", reminder.FormatWhen(r.FireAt), r.Event, r.Recipient)
		}
		return ipc.Reply{OK: true, Message: strings.TrimRight(b.String(), "\n")}
	}

	log.Warn("Unknown command", "cmd", msg.Cmd)
	return ipc.Reply{Message: "unknown command: " + msg.Cmd}
}
