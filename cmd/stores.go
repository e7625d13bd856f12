package cmd

import (
	"context"

	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	redisLib "github.com/redis/go-redis/v9"

	"github.com/Laisky/files-manager/library/blob"
	"github.com/Laisky/files-manager/library/db/mongo"
	rdb "github.com/Laisky/files-manager/library/db/redis"
	"github.com/Laisky/files-manager/library/log"
)

const defaultStoragePath = "/tmp/files_manager"

func setupMongo(ctx context.Context) mongo.DB {
	defer log.Logger.Info("connected mongodb")

	db, err := mongo.NewDB(ctx, mongo.DialInfo{
		Addr:   gconfig.Shared.GetString("settings.db.addr"),
		DBName: gconfig.Shared.GetString("settings.db.db"),
		User:   gconfig.Shared.GetString("settings.db.user"),
		Pwd:    gconfig.Shared.GetString("settings.db.pwd"),
	})
	if err != nil {
		log.Logger.Panic("connect to mongodb", zap.Error(err))
	}

	return db
}

func setupRedis(ctx context.Context) *rdb.DB {
	db := rdb.NewDB(&redisLib.Options{
		Addr: gconfig.Shared.GetString("settings.redis.addr"),
		DB:   gconfig.Shared.GetInt("settings.redis.db"),
	})
	if err := db.Ping(ctx); err != nil {
		log.Logger.Panic("connect to redis", zap.Error(err))
	}

	log.Logger.Info("connected redis")
	return db
}

func setupBlobStore() *blob.Store {
	path := gconfig.Shared.GetString("settings.storage.path")
	if path == "" {
		path = defaultStoragePath
	}

	store, err := blob.NewStore(path)
	if err != nil {
		log.Logger.Panic("open blob store", zap.Error(err))
	}

	log.Logger.Info("opened blob store", zap.String("path", path))
	return store
}
