package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/kernprep/constants"
	"github.com/jsphweid/kernprep/logger"
	"github.com/jsphweid/kernprep/midi"
	"github.com/jsphweid/kernprep/model"
	"github.com/jsphweid/kernprep/pipeline"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
)

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", "", "listen address")
	flags.Int64("max-upload-bytes", 0, "largest accepted MIDI body")
	flags.StringSlice("durations", nil, "allowed quarter lengths, e.g. 0.25,0.5,3/2")
	flags.String("key-strategy", "", "where explicit keys come from: scan, position or catalog")
	flags.Int("key-index", 0, "element index of the key for the position strategy")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves score analysis over HTTP",
	Long:  `Accepts MIDI files on POST /analyze and reports what preprocessing would do with them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		log := cfg.Logger()
		normalizer, err := cfg.Normalizer(log)
		if err != nil {
			return err
		}
		s := &Server{
			Processor:      &pipeline.Processor{Whitelist: cfg.Durations, Normalizer: normalizer},
			Log:            log,
			MaxUploadBytes: cfg.MaxUpload,
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return s.ListenAndServe(ctx, cfg.Addr)
	},
}

type Server struct {
	Processor *pipeline.Processor
	Log       logger.Logger
	// MaxUploadBytes of 0 means constants.DefaultMaxUploadBytes.
	MaxUploadBytes int64
}

func (s *Server) Router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/analyze", s.HandleAnalyze).Methods("POST")
	router.HandleFunc("/healthz", handleHealth).Methods("GET")
	return cors.Default().Handler(router)
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.Log.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server failed")
	}
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// HandleAnalyze takes a raw MIDI file as the request body. The optional
// "name" query parameter is used as the score's source.
func (s *Server) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = constants.DefaultMaxUploadBytes
	}
	dat, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: "could not read request body: " + err.Error()})
		return
	}
	if len(dat) == 0 {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "empty request body"})
		return
	}
	source := r.URL.Query().Get("name")
	if source == "" {
		source = "upload.mid"
	}

	score, err := midi.ParseScore(dat, source)
	if err != nil {
		s.Log.Warn("could not parse upload", "source", source, "err", err)
		writeJSON(w, http.StatusBadRequest, analyzeResponse(pipeline.Outcome{
			Path:   source,
			Status: pipeline.StatusLoadFailed,
			Err:    err,
		}))
		return
	}
	o := s.Processor.Process(r.Context(), source, score)
	s.Log.Debug("analyzed", "source", source, "status", o.Status)
	writeJSON(w, http.StatusOK, analyzeResponse(o))
}

func analyzeResponse(o pipeline.Outcome) model.AnalyzeResponse {
	res := model.AnalyzeResponse{
		Source:     o.Path,
		Status:     string(o.Status),
		Acceptable: o.Status != pipeline.StatusUnacceptableDuration && o.Status != pipeline.StatusLoadFailed,
		NumEvents:  o.NumEvents,
	}
	if o.Key.Tonic.Step != 0 {
		res.Key = o.Key.String()
		res.KeySource = string(o.KeySource)
	}
	if o.Status == pipeline.StatusNormalized {
		res.Interval = o.Interval.Name()
		res.Semitones = o.Interval.Semitones
	}
	if o.Err != nil {
		res.Error = o.Err.Error()
	}
	return res
}
