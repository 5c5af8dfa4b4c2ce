package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablewave/reserve-server/internal/api"
	"github.com/tablewave/reserve-server/internal/call"
	"github.com/tablewave/reserve-server/internal/config"
	"github.com/tablewave/reserve-server/internal/extract"
	"github.com/tablewave/reserve-server/internal/task"
	"github.com/tablewave/reserve-server/pkg/anthropic"
	"github.com/tablewave/reserve-server/pkg/elevenlabs"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reservation API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		backends, closeBackends, err := buildBackends(cmd, cfg)
		if err != nil {
			return err
		}
		if closeBackends != nil {
			defer closeBackends()
		}

		agent := elevenlabs.NewClient(cfg.ElevenLabs.Key,
			elevenlabs.WithBaseURL(cfg.ElevenLabs.BaseURL),
			elevenlabs.WithTimeout(time.Duration(cfg.ElevenLabs.TimeoutSecs)*time.Second),
			elevenlabs.WithCallsPerMinute(cfg.ElevenLabs.CallsPerMinute),
		)

		registry := task.NewRegistry()
		orchestrator := call.NewOrchestrator(registry, st, agent,
			cfg.ElevenLabs.AgentID, cfg.ElevenLabs.PhoneNumberID)

		resolver := extract.NewResolver(time.Duration(cfg.Extract.ResolveTimeoutSecs) * time.Second)
		pipeline := extract.NewPipeline(resolver, backends)

		server := api.NewServer(st, registry, orchestrator, pipeline)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: server.Router(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.String("store", cfg.Store.Driver),
			zap.Int("backends", len(backends)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// buildBackends assembles the extraction chain: configured Gemini models in
// order, then Claude as the terminal fallback.
func buildBackends(cmd *cobra.Command, cfg *config.Config) ([]extract.Backend, func() error, error) {
	var backends []extract.Backend
	var closeFn func() error

	if cfg.Gemini.Key != "" {
		gemini, cleanup, err := extract.NewGeminiBackends(cmd.Context(), cfg.Gemini.Key, cfg.Gemini.Models)
		if err != nil {
			return nil, nil, err
		}
		backends = append(backends, gemini...)
		closeFn = cleanup
	}

	if cfg.Anthropic.Key != "" {
		claude := anthropic.NewClient(cfg.Anthropic.Key)
		backends = append(backends, extract.NewClaudeBackend(claude, cfg.Anthropic.Model))
	}

	return backends, closeFn, nil
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
