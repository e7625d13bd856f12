package cmd

import (
	"context"
	"os/signal"
	"syscall"

	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/files-manager/internal/thumbnail"
	fileDao "github.com/Laisky/files-manager/internal/web/file/dao"
	"github.com/Laisky/files-manager/library/log"
)

var workerCMD = &cobra.Command{
	Use:   "worker",
	Short: "worker",
	Long:  `thumbnail generation worker`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		runWorker()
	},
}

func init() {
	rootCMD.AddCommand(workerCMD)
}

func runWorker() {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.Logger.Named("worker")

	mongoDB := setupMongo(ctx)
	defer mongoDB.Close(context.Background())
	redisDB := setupRedis(ctx)
	blobs := setupBlobStore()

	worker := thumbnail.NewWorker(logger,
		thumbnail.NewQueue(logger, redisDB),
		fileDao.New(logger, mongoDB),
		blobs)
	if err := worker.Run(ctx); err != nil {
		logger.Panic("worker exit", zap.Error(err))
	}
}
