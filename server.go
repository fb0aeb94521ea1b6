package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bodul/wordsearch/search"
)

const (
	maxUploadSize = 10 << 20 // 10 Mo
	maxTextSize   = 1 << 20
	maxWordLen    = 256
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// rateLimiter is a simple per-IP token bucket rate limiter.
type rateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*bucket
	rate      int           // tokens per interval
	interval  time.Duration // refill interval
	lastSweep time.Time
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	return &rateLimiter{
		visitors:  make(map[string]*bucket),
		rate:      rate,
		interval:  interval,
		lastSweep: time.Now(),
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > time.Minute {
		for k, b := range rl.visitors {
			if now.Sub(b.lastSeen) > 5*time.Minute {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: now}
		return true
	}

	// Refill tokens based on elapsed time.
	refill := int(now.Sub(b.lastSeen) / rl.interval)
	if refill > 0 {
		b.tokens = min(b.tokens+refill*rl.rate, rl.rate)
		b.lastSeen = now
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Server is the main HTTP server.
type Server struct {
	mux      *http.ServeMux
	store    Store
	gemini   imageTranscriber
	sse      *Broadcaster
	cfg      SearchConfig
	ragged   search.RaggedPolicy
	logger   *zap.Logger
	uploadRL *rateLimiter
	searchRL *rateLimiter
}

// NewServer creates a configured HTTP server. gemini may be nil, which
// disables image uploads.
func NewServer(cfg Config, store Store, gemini imageTranscriber, logger *zap.Logger) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		store:    store,
		gemini:   gemini,
		sse:      NewBroadcaster(logger.Named("sse")),
		cfg:      cfg.Search,
		ragged:   cfg.RaggedPolicy(),
		logger:   logger,
		uploadRL: newRateLimiter(cfg.Server.UploadRate, time.Minute),
		searchRL: newRateLimiter(cfg.Server.SearchRate, time.Second),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Puzzle API
	s.mux.HandleFunc("POST /api/puzzles", s.handleCreatePuzzle)
	s.mux.HandleFunc("GET /api/puzzles", s.handleListPuzzles)
	s.mux.HandleFunc("GET /api/puzzles/{id}", s.handleGetPuzzle)

	// Search API
	s.mux.HandleFunc("POST /api/puzzles/{id}/words", s.handleWordSearch)
	s.mux.HandleFunc("POST /api/puzzles/{id}/motifs", s.handleMotifSearch)
	s.mux.HandleFunc("GET /api/puzzles/{id}/runs", s.handleListRuns)
	s.mux.HandleFunc("GET /api/puzzles/{id}/events", s.handlePuzzleEvents)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; connect-src 'self'")
	s.mux.ServeHTTP(w, r)
}

// --- Puzzle handlers ---

// POST /api/puzzles: create a puzzle from JSON lines, plain text or an image.
func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	if !s.uploadRL.allow(r.RemoteAddr) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		grid   *search.Grid
		source = "text"
		err    error
	)
	switch mediaType {
	case "multipart/form-data":
		source = "image"
		grid, err = s.gridFromImage(w, r)
	case "application/json":
		grid, err = s.gridFromJSON(w, r)
	default:
		r.Body = http.MaxBytesReader(w, r.Body, maxTextSize)
		grid, err = search.LoadGrid(r.Body, s.ragged)
	}
	if err != nil {
		var he *httpError
		if errors.As(err, &he) {
			jsonError(w, he.msg, he.code)
			return
		}
		var mErr *search.MalformedGridError
		if errors.As(err, &mErr) {
			jsonError(w, "Grille irrégulière : "+mErr.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Warn("read puzzle failed", zap.Error(err))
		jsonError(w, "Grille illisible", http.StatusBadRequest)
		return
	}
	if grid.Rows() == 0 || grid.Cols() == 0 {
		jsonError(w, "Grille vide", http.StatusBadRequest)
		return
	}

	p, err := s.store.SavePuzzle(r.Context(), newPuzzle(grid, source))
	if err != nil {
		s.logger.Error("save puzzle failed", zap.Error(err))
		jsonError(w, "Erreur d'enregistrement", http.StatusInternalServerError)
		return
	}
	s.logger.Info("puzzle created",
		zap.String("puzzle", p.ID), zap.String("source", source),
		zap.Int("rows", p.Rows), zap.Int("cols", p.Cols))

	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) gridFromJSON(w http.ResponseWriter, r *http.Request) (*search.Grid, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTextSize)
	var req struct {
		Lines []string `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Lines) == 0 {
		return nil, &httpError{"Champ 'lines' requis", http.StatusBadRequest}
	}
	return search.GridFromLines(req.Lines, s.ragged)
}

func (s *Server) gridFromImage(w http.ResponseWriter, r *http.Request) (*search.Grid, error) {
	if s.gemini == nil {
		return nil, &httpError{"Analyse d'image non configurée", http.StatusServiceUnavailable}
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, &httpError{"Image trop volumineuse (max 10 Mo)", http.StatusRequestEntityTooLarge}
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, &httpError{"Champ 'image' requis", http.StatusBadRequest}
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !allowedMIME[mimeType] {
		return nil, &httpError{"Format accepté : JPEG ou PNG", http.StatusBadRequest}
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, &httpError{"Erreur de lecture de l'image", http.StatusInternalServerError}
	}

	lines, err := s.gemini.TranscribeImage(r.Context(), buf.Bytes(), mimeType)
	if err != nil {
		s.logger.Error("gemini transcription failed", zap.Error(err))
		return nil, &httpError{"Erreur lors de l'analyse de la grille", http.StatusInternalServerError}
	}
	return search.GridFromLines(lines, s.ragged)
}

// GET /api/puzzles: list all puzzles.
func (s *Server) handleListPuzzles(w http.ResponseWriter, r *http.Request) {
	puzzles, err := s.store.ListPuzzles(r.Context())
	if err != nil {
		s.logger.Error("list puzzles failed", zap.Error(err))
		jsonError(w, "Erreur de lecture", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, puzzles)
}

// GET /api/puzzles/{id}: get a single puzzle.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	p := s.lookupPuzzle(w, r)
	if p == nil {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// --- Search handlers ---

// POST /api/puzzles/{id}/words: find a word in all 8 directions.
func (s *Server) handleWordSearch(w http.ResponseWriter, r *http.Request) {
	if !s.searchRL.allow(r.RemoteAddr) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}
	p, grid := s.lookupGrid(w, r)
	if grid == nil {
		return
	}

	var req struct {
		Word string `json:"word"`
	}
	if err := decodeOptional(r, &req); err != nil {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return
	}
	word := strings.TrimSpace(req.Word)
	if word == "" {
		word = s.cfg.Word
	}
	if len([]rune(word)) > maxWordLen {
		jsonError(w, "Mot trop long", http.StatusBadRequest)
		return
	}

	matches, err := search.FindOccurrencesParallel(r.Context(), grid, word, s.cfg.Workers)
	if err != nil {
		s.searchError(w, err)
		return
	}
	run, err := newWordRun(p.ID, word, matches)
	if err != nil {
		s.searchError(w, err)
		return
	}
	s.recordRun(w, r, run)
}

// POST /api/puzzles/{id}/motifs: find X-shaped diagonal motifs.
func (s *Server) handleMotifSearch(w http.ResponseWriter, r *http.Request) {
	if !s.searchRL.allow(r.RemoteAddr) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}
	p, grid := s.lookupGrid(w, r)
	if grid == nil {
		return
	}

	var req struct {
		Motif  string `json:"motif"`
		Center string `json:"center"`
		Pair   string `json:"pair"`
	}
	if err := decodeOptional(r, &req); err != nil {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	motif := req.Motif
	if motif == "" && req.Center != "" {
		pr := []rune(req.Pair)
		if len([]rune(req.Center)) != 1 || len(pr) != 2 {
			jsonError(w, "Motif invalide : 'center' une lettre, 'pair' deux lettres", http.StatusBadRequest)
			return
		}
		motif = string([]rune{pr[0], []rune(req.Center)[0], pr[1]})
	}
	if motif == "" {
		motif = s.cfg.Motif
	}

	center, pair, err := search.ParseMotif(motif)
	if err != nil {
		s.searchError(w, err)
		return
	}
	centers, err := search.FindMotifCentersParallel(r.Context(), grid, center, pair, s.cfg.Workers)
	if err != nil {
		s.searchError(w, err)
		return
	}
	run, err := newMotifRun(p.ID, motif, centers)
	if err != nil {
		s.searchError(w, err)
		return
	}
	s.recordRun(w, r, run)
}

// GET /api/puzzles/{id}/runs: search history.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.ListRuns(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("list runs failed", zap.Error(err))
		jsonError(w, "Erreur de lecture", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GET /api/puzzles/{id}/events: SSE stream of search runs.
func (s *Server) handlePuzzleEvents(w http.ResponseWriter, r *http.Request) {
	p := s.lookupPuzzle(w, r)
	if p == nil {
		return
	}

	s.sse.ServeSSE(w, r, p.ID, func(c *client) {
		evt, _ := json.Marshal(map[string]any{
			"type": "puzzle",
			"id":   p.ID,
			"rows": p.Rows,
			"cols": p.Cols,
		})
		c.ch <- string(evt)
	})
}

// --- Helpers ---

func (s *Server) lookupPuzzle(w http.ResponseWriter, r *http.Request) *Puzzle {
	p, err := s.store.GetPuzzle(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		jsonError(w, "Grille introuvable", http.StatusNotFound)
		return nil
	}
	if err != nil {
		s.logger.Error("get puzzle failed", zap.Error(err))
		jsonError(w, "Erreur de lecture", http.StatusInternalServerError)
		return nil
	}
	return p
}

func (s *Server) lookupGrid(w http.ResponseWriter, r *http.Request) (*Puzzle, *search.Grid) {
	p := s.lookupPuzzle(w, r)
	if p == nil {
		return nil, nil
	}
	g, err := p.Grid()
	if err != nil {
		s.logger.Error("stored puzzle is malformed", zap.String("puzzle", p.ID), zap.Error(err))
		jsonError(w, "Grille corrompue", http.StatusInternalServerError)
		return nil, nil
	}
	return p, g
}

func (s *Server) recordRun(w http.ResponseWriter, r *http.Request, run *Run) {
	run, err := s.store.AddRun(r.Context(), run)
	if err != nil {
		s.logger.Error("record run failed", zap.Error(err))
		jsonError(w, "Erreur d'enregistrement", http.StatusInternalServerError)
		return
	}
	s.logger.Info("search run",
		zap.String("puzzle", run.PuzzleID), zap.String("kind", string(run.Kind)),
		zap.String("pattern", run.Pattern), zap.Int("count", run.Count))

	evt, _ := json.Marshal(map[string]any{
		"type":    "run",
		"id":      run.ID,
		"kind":    run.Kind,
		"pattern": run.Pattern,
		"count":   run.Count,
	})
	s.sse.Broadcast(run.PuzzleID, string(evt))

	writeJSON(w, http.StatusOK, run)
}

func (s *Server) searchError(w http.ResponseWriter, err error) {
	var pErr *search.InvalidPatternError
	if errors.As(err, &pErr) {
		jsonError(w, "Motif invalide : "+pErr.Reason, http.StatusBadRequest)
		return
	}
	s.logger.Warn("search failed", zap.Error(err))
	jsonError(w, "Recherche interrompue", http.StatusInternalServerError)
}

// decodeOptional decodes a JSON body; an empty body leaves v untouched.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxTextSize)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

type httpError struct {
	msg  string
	code int
}

func (e *httpError) Error() string { return e.msg }

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
