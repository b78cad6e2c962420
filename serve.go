package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"

	"stackcalc/logger"
	"stackcalc/service/auth"
	"stackcalc/service/calculator"
	"stackcalc/service/sessions"
	"stackcalc/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web calculator",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from CALC_ADDR)")
	serveCmd.Flags().Bool("no-browser", false, "Do not open the browser")
}

func runServe(cmd *cobra.Command) error {
	addr := cfg.Addr
	if flag, _ := cmd.Flags().GetString("addr"); flag != "" {
		addr = flag
	}
	openBrowser := cfg.OpenBrowser
	if noBrowser, _ := cmd.Flags().GetBool("no-browser"); noBrowser {
		openBrowser = false
	}

	store, closeStore, err := openStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	manager := sessions.NewManager(store)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	web := ui.NewWebInterface(calculator.NewCalculator(manager), issuer, cfg.AllowedOrigins)
	srv := web.Server(addr)

	calcURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		calcURL = "http://" + addr
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("calculator server starting", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	if openBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			if err := open.Run(calcURL); err != nil {
				logger.Warn("failed to open browser", "url", calcURL, "err", err)
			}
		}()
	}
	logger.Info("calculator is available in the browser", "url", calcURL)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		web.Hub().Close()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("graceful shutdown did not complete", "err", err)
			if err := srv.Close(); err != nil {
				return err
			}
		}
		logger.Info("calculator server stopped")
	}
	return nil
}
