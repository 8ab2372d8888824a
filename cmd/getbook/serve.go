package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mrjoshuak/getbook/internal/api"
	"github.com/mrjoshuak/getbook/types"
)

// Run executes the serve command. It returns when the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	ext, err := c.newExtractor(deps.Log)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         c.Addr,
		Handler:      api.NewServer(ext, deps.Log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: c.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-deps.Ctx.Done()
		deps.Log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	deps.Log.Info().Str("addr", c.Addr).Str("version", types.Version).Msg("starting getbook")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Run executes the version command.
func (c *VersionCmd) Run(deps *Dependencies) error {
	info := types.GetBuildInfo()
	fmt.Fprintf(deps.Stdout, "%s %s (%s)\n", info.Name, info.Version, info.GoVersion)
	return nil
}
