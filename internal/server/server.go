// Package server exposes a Session over HTTP so songs can be imported and
// exported from a browser or scripts.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	msq "github.com/cbegin/msq-go"
	"github.com/cbegin/msq-go/internal/format"
	"github.com/cbegin/msq-go/internal/midiout"
)

const maxBody = 4 << 20

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClient sets the client used for ?url= imports.
func WithClient(c *http.Client) Option {
	return func(s *Server) {
		s.client = c
	}
}

// WithAllowedOrigins restricts CORS. The default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// Server serialises access to one session; a front end sharing the session
// must take the lock through Do.
type Server struct {
	mu      sync.Mutex
	session *msq.Session
	client  *http.Client
	log     *slog.Logger
	origins []string
}

func New(session *msq.Session, opts ...Option) *Server {
	s := &Server{
		session: session,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Do runs fn with the session locked.
func (s *Server) Do(fn func(*msq.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.session)
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/score", s.handleScore).Methods(http.MethodGet)
	router.HandleFunc("/score.json", s.handleScore).Methods(http.MethodGet)
	router.HandleFunc("/score.yaml", s.handleYAML).Methods(http.MethodGet)
	router.HandleFunc("/score.msq", s.handleCompact).Methods(http.MethodGet)
	router.HandleFunc("/score.mid", s.handleMIDI).Methods(http.MethodGet)
	router.HandleFunc("/import", s.handleImport).Methods(http.MethodPost)
	router.HandleFunc("/query", s.handleQuery).Methods(http.MethodGet)
	router.HandleFunc("/presets", s.handlePresets).Methods(http.MethodGet)
	router.HandleFunc("/presets/{name}", s.handleLoadPreset).Methods(http.MethodPost)
	router.HandleFunc("/clear", s.handleClear).Methods(http.MethodPost)
	router.HandleFunc("/undo", s.handleUndo).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})
	return c.Handler(router)
}

// status maps session errors to HTTP codes.
func status(err error) int {
	var fe *format.FormatError
	var de *format.DecodeError
	switch {
	case errors.Is(err, msq.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, msq.ErrUnknownPreset):
		return http.StatusNotFound
	case errors.Is(err, format.ErrMissingParams), errors.As(err, &fe), errors.As(err, &de):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := status(err)
	s.log.Info("request failed", "method", r.Method, "path", r.URL.Path, "status", code, "err", err)
	http.Error(w, err.Error(), code)
}

// writeScore answers with the current score as JSON. Callers hold the lock.
func (s *Server) writeScore(w http.ResponseWriter, r *http.Request) {
	data, err := s.session.Export()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeScore(w, r)
}

func (s *Server) handleYAML(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, err := s.session.ExportYAML()
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(data)
}

func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	text, err := s.session.ExportCompact()
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, text)
}

func (s *Server) handleMIDI(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	s.mu.Lock()
	err := midiout.WriteSMF(&buf, s.session.Score())
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", `attachment; filename="score.mid"`)
	w.Write(buf.Bytes())
}

// handleImport reads one song from the body; ?name= picks the decoder the
// same way a file name would.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.json"
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Import([]format.File{{Name: name, Data: data}}); err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("imported", "name", name, "end", s.session.Score().End)
	s.writeScore(w, r)
}

// handleQuery imports a song spelled out in the query string, or fetched from
// ?url=.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if u := q.Get("url"); u != "" && !format.HasScoreQuery(q) {
		kind, text, err := format.Fetch(r.Context(), s.client, u)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.session.ImportText(kind, text); err != nil {
			s.fail(w, r, err)
			return
		}
		s.writeScore(w, r)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.ImportQuery(q); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeScore(w, r)
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	names := s.session.Presets()
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(names)
}

func (s *Server) handleLoadPreset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.LoadPreset(name); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeScore(w, r)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Clear(); err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeScore(w, r)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ok, err := s.session.Undo()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeScore(w, r)
}
