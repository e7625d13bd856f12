package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/files-manager/internal/thumbnail"
	"github.com/Laisky/files-manager/internal/web"
	appCtl "github.com/Laisky/files-manager/internal/web/app/controller"
	fileCtl "github.com/Laisky/files-manager/internal/web/file/controller"
	fileDao "github.com/Laisky/files-manager/internal/web/file/dao"
	fileSvc "github.com/Laisky/files-manager/internal/web/file/service"
	userCtl "github.com/Laisky/files-manager/internal/web/user/controller"
	userDao "github.com/Laisky/files-manager/internal/web/user/dao"
	userSvc "github.com/Laisky/files-manager/internal/web/user/service"
	"github.com/Laisky/files-manager/library/auth"
	"github.com/Laisky/files-manager/library/log"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `file storage HTTP API`,
	Args:  gcmd.NoExtraArgs,
	PreRun: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := initialize(ctx, cmd); err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		runAPI(context.Background())
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}

func runAPI(ctx context.Context) {
	logger := log.Logger.Named("api")

	mongoDB := setupMongo(ctx)
	redisDB := setupRedis(ctx)
	blobs := setupBlobStore()
	tokens := auth.NewTokenStore(redisDB)

	users := userDao.New(logger, mongoDB)
	if err := users.EnsureIndexes(ctx); err != nil {
		logger.Panic("ensure user indexes", zap.Error(err))
	}
	files := fileDao.New(logger, mongoDB)
	queue := thumbnail.NewQueue(logger, redisDB)

	ctls := &web.Controllers{
		App:   appCtl.New(logger, mongoDB, redisDB, users, files),
		Users: userCtl.New(logger, userSvc.New(logger, users), tokens),
		Files: fileCtl.New(logger, fileSvc.New(logger, files, blobs, queue), tokens),
	}

	web.RunServer(gconfig.Shared.GetString("listen"), ctls)
}
