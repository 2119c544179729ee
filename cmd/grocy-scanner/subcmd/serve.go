package subcmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grocyscan/grocy-scanner/kernel/api"
	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func init() {
	RootCmd.AddCommand(NewServeCommand())
}

func NewServeCommand() *cobra.Command {
	serveCmd := &ServeCommand{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the scanner web front end and http api",
		RunE:  serveCmd.run,
	}

	cmd.Flags().StringVar(&serveCmd.Listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&serveCmd.OptionsPath, "options", "", "path to the add-on options file (overrides config)")
	cmd.Flags().BoolVar(&serveCmd.UseMemoryStore, "memory", false, "keep options in memory instead of the options file")
	cmd.Flags().BoolVar(&serveCmd.SkipReconcile, "skip-reconcile", false, "do not locate and test grocy at startup")

	return cmd
}

type ServeCommand struct {
	Listen         string
	OptionsPath    string
	UseMemoryStore bool
	SkipReconcile  bool
}

func (s *ServeCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if s.Listen != "" {
		cfg.Listen = s.Listen
	}
	if s.OptionsPath != "" {
		cfg.OptionsPath = s.OptionsPath
	}

	rt, err := newRuntime(cfg, s.UseMemoryStore)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !s.SkipReconcile {
		go initialReconcile(ctx, rt)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewServer(rt.scanner, rt.reconciler, rt.staticAssets()).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		logrus.Infof("grocy scanner listening on [%s]", cfg.Listen)
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initialReconcile(ctx context.Context, rt *scannerRuntime) {
	logrus.Info("initializing grocy item scanner")
	result, err := rt.reconciler.Reconcile(ctx, "")
	switch {
	case errors.Is(err, model.ErrMissingCredential):
		logrus.Info("no grocy api key configured yet, waiting for setup")
	case err != nil:
		logrus.Errorf("error during initialization: %v", err)
	case !result.Result.OK():
		logrus.Errorf("failed to connect to grocy at [%s]: %s", result.BaseURL, result.Result.Message)
	default:
		logrus.Infof("successfully connected to grocy at [%s]", result.BaseURL)
	}
}
