package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	log "log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"voxassist/internal/clip"
	"voxassist/internal/metrics"
	"voxassist/internal/reminder"
)

const maxUpload = 32 << 20

type ClipSource interface {
	Clip(id string) (clip.Clip, bool)
}

type PendingSource interface {
	Pending() []reminder.Reminder
}

type ServerConfig struct {
	Shell   *Shell
	Feed    *Feed
	Clips   ClipSource
	Pending PendingSource // optional
}

type Server struct {
	shell   *Shell
	feed    *Feed
	clips   ClipSource
	pending PendingSource
	router  *chi.Mux
}

func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		shell:   cfg.Shell,
		feed:    cfg.Feed,
		clips:   cfg.Clips,
		pending: cfg.Pending,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Post("/search", s.handleSearch)
	r.Post("/search/upload", s.handleUpload)
	r.Post("/reminders", s.handleReminder)
	r.Get("/clips/{id}", s.handleClip)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	if s.feed != nil {
		r.Handle("/ws", s.feed)
	}

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve listens on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(sctx)
	}()

	log.Info("http", "url", fmt.Sprintf("http://%s", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) render(w http.ResponseWriter, data pageData) {
	data.Entries = s.shell.Session().Entries()
	if s.pending != nil {
		data.Pending = s.pending.Pending()
	}
	if data.Form.Date == "" {
		data.Form.Date = time.Now().Format(time.DateOnly)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Execute(w, data); err != nil {
		log.Error("Failed to render page", "err", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, pageData{})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, clips := clip.WithCollector(r.Context())
	flashes, err := s.shell.VoiceSearch(ctx)
	if err != nil {
		log.Warn("Voice search failed", "err", err)
	}
	s.render(w, pageData{SearchFlashes: flashes, SearchClips: clips.URLs()})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, header, err := r.FormFile("audio")
	if err != nil {
		s.render(w, pageData{SearchFlashes: []Flash{{FlashError, "Please choose a recording to upload."}}})
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "voxassist-upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		http.Error(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, file)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		s.render(w, pageData{SearchFlashes: []Flash{{FlashError, "Failed to read the upload."}}})
		return
	}

	ctx, clips := clip.WithCollector(r.Context())
	flashes, err := s.shell.UploadSearch(ctx, tmp.Name())
	if err != nil {
		log.Warn("Upload search failed", "file", header.Filename, "err", err)
	}
	s.render(w, pageData{SearchFlashes: flashes, SearchClips: clips.URLs()})
}

func (s *Server) handleReminder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad form", http.StatusBadRequest)
		return
	}
	form := Form{
		Event:     r.PostForm.Get("event"),
		Date:      r.PostForm.Get("date"),
		Time:      r.PostForm.Get("time"),
		Recipient: r.PostForm.Get("email"),
		Location:  r.PostForm.Get("location"),
	}

	flashes, err := s.shell.SetReminder(r.Context(), form)
	if err != nil {
		log.Warn("Reminder not set", "event", form.Event, "err", err)
	} else {
		form = Form{}
	}
	s.render(w, pageData{ReminderFlashes: flashes, Form: form})
}

func (s *Server) handleClip(w http.ResponseWriter, r *http.Request) {
	c, ok := s.clips.Clip(chi.URLParam(r, "id"))
	if !ok || c.Path == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, c.Path)
}
