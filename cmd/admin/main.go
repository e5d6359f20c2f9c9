// 一次性初始化命令：给新部署种一个 admin 账号。
// 用法：ADMIN_EMAIL=... ADMIN_USERNAME=... ADMIN_PASSWORD=... go run ./cmd/admin
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"sweetshop-api/internal/core/auth"
	"sweetshop-api/internal/core/config"
	"sweetshop-api/internal/core/database"
	"sweetshop-api/internal/core/logger"
	"sweetshop-api/internal/domain"
	"sweetshop-api/internal/repo"
	"sweetshop-api/internal/service"
)

func main() {
	_ = godotenv.Load() // 先于 flag 默认值求值

	var (
		email    = flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
		username = flag.String("username", os.Getenv("ADMIN_USERNAME"), "admin username")
		password = flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	)
	flag.Parse()

	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}
	authSvc := service.NewAuthService(repo.NewUserRepo(db), jwter)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	u, err := authSvc.Register(ctx, *username, *email, *password, domain.RoleAdmin)
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		// 幂等：重复执行不算失败
		log.Info("admin already exists", zap.String("email", *email))
	case err != nil:
		log.Fatal("seed admin failed", zap.Error(err))
	default:
		log.Info("admin created", zap.String("id", u.ID), zap.String("email", u.Email))
	}
}
