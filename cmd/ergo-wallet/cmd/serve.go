package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AlexZinkM/ergo-wallet/internal/address"
	"github.com/AlexZinkM/ergo-wallet/internal/api"
	"github.com/AlexZinkM/ergo-wallet/internal/authflow"
	"github.com/AlexZinkM/ergo-wallet/internal/client"
	"github.com/AlexZinkM/ergo-wallet/internal/config"
	"github.com/AlexZinkM/ergo-wallet/internal/crypto"
	"github.com/AlexZinkM/ergo-wallet/internal/handler"
	"github.com/AlexZinkM/ergo-wallet/internal/logger"
	"github.com/AlexZinkM/ergo-wallet/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local session API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	if err := config.Init(); err != nil {
		return err
	}
	cfg := config.Get()

	log, err := logger.New(cfg.LogEnv)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync(log)

	network, err := address.ParseNetwork(cfg.Network)
	if err != nil {
		return err
	}

	if err := config.PromptForPassword(); err != nil {
		return err
	}
	keystore := crypto.NewKeystore(cfg.WalletFilePath)
	if err := checkPassword(keystore); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	flowMetrics := metrics.NewFlow(reg)

	remote := client.New(client.NewHTTPClient(cfg.HTTPTimeout), log.Named("client"))
	explorer := client.NewExplorer(cfg.ExplorerURL, remote)

	var broadcaster authflow.Broadcaster
	if cfg.NodeURL != "" {
		node, err := client.NewNode(cfg.NodeURL, remote)
		if err != nil {
			return err
		}
		broadcaster = node
	}

	machineLog := log.Named("authflow")
	sessions, err := handler.NewSessionHandler(handler.Options{
		Keystore: keystore,
		Network:  network,
		Password: config.GetPasswordBytes,
		NewMachine: func() *authflow.Machine {
			return authflow.New(authflow.Options{
				Client:        remote,
				Broadcaster:   broadcaster,
				Boxes:         explorer,
				FetchTimeout:  cfg.HTTPTimeout,
				SubmitTimeout: cfg.HTTPTimeout,
				FragmentSize:  cfg.FragmentSize,
				Metrics:       flowMetrics,
				Log:           machineLog,
			})
		},
		QRSize: cfg.QRImageSize,
		Log:    log.Named("handler"),
	})
	if err != nil {
		return err
	}
	defer sessions.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.SetupRouter(sessions, reg, metrics.NewHTTP(reg), log.Named("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", zap.String("addr", srv.Addr), zap.String("network", cfg.Network))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// checkPassword unlocks the keystore once so a wrong password fails at startup
func checkPassword(keystore *crypto.Keystore) error {
	password, err := config.GetPasswordBytes()
	if err != nil {
		return err
	}
	defer clear(password)

	secret, err := keystore.Unlock(password)
	if err != nil {
		return fmt.Errorf("failed to unlock %s: %w", keystore.Path(), err)
	}
	secret.Wipe()
	return nil
}
