// useradd 创建收银员账号(系统不开放注册接口)
//
// 用法:
//
//	go run ./cmd/useradd -login caisse1 -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	appuser "github.com/iruzen-dono/RestaurantApp/internal/application/user"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/user"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/config"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/logger"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	login := flag.String("login", "", "登录名")
	password := flag.String("password", "", "密码(明文,入库前做bcrypt)")
	flag.Parse()

	if *login == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, *login, *password); err != nil {
		fmt.Fprintf(os.Stderr, "❌ 创建用户失败: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, login, password string) error {
	var (
		cfg *config.Config
		err error
	)
	if configPath == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFile(configPath)
	}
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = mysql.Close(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uc := appuser.NewCreateUserUseCase(user.NewService(mysql.NewUserRepository(db)))
	info, err := uc.Execute(ctx, appuser.CreateUserRequest{Login: login, Password: password})
	if err != nil {
		return err
	}
	fmt.Printf("✓ 用户已创建: id=%d login=%s\n", info.ID, info.Login)
	return nil
}
