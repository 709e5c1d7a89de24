package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "reliance-backend/cmd/api"
	authUsecase "reliance-backend/internal/auth/usecase"
	"reliance-backend/internal/task/scheduler"
	taskUsecase "reliance-backend/internal/task/usecase"
	zoneUsecase "reliance-backend/internal/valuezone/usecase"
	"reliance-backend/pkg/config"
	"reliance-backend/pkg/lock"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API server.

The store is selected with STORE_DRIVER (postgres, mongo or memory). When
REDIS_ADDR is set, subtask link locks and rate limits are shared through Redis.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		migrate, _ := cmd.Flags().GetBool("migrate")
		noSweeper, _ := cmd.Flags().GetBool("no-sweeper")

		if err := runServer(config.Load(), migrate, !noSweeper); err != nil {
			exitWithError(err)
		}
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", true, "Apply pending Postgres migrations before serving")
	serveCmd.Flags().Bool("no-sweeper", false, "Disable the overdue task sweeper")
	rootCmd.AddCommand(serveCmd)
}

func runServer(cfg *config.Config, migrate, sweeper bool) error {
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, migrate)
	if err != nil {
		return err
	}
	defer st.close()

	redisClient, err := openRedis(ctx, cfg)
	if err != nil {
		return err
	}

	var locker lock.Locker = lock.NewLocalLocker()
	if redisClient != nil {
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, cfg.ServiceName, 10*time.Second)
		st.checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	authUc := authUsecase.NewAuthUsecase(st.users, cfg)
	taskUc := taskUsecase.NewTaskUsecase(st.tasks, locker)
	zoneUc := zoneUsecase.NewValueZoneUsecase(st.zones)

	if sweeper {
		overdue := scheduler.NewOverdueScheduler(st.tasks, cfg.OverdueSweepInterval)
		overdue.Start()
		defer overdue.Stop()
	}

	handler := api.NewHandler(cfg, authUc, taskUc, zoneUc, redisClient, st.checks)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Serve] Server starting on port %s (store: %s)", cfg.Port, cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("[Serve] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("[Serve] Server stopped")
	return nil
}
