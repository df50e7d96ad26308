package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"

	"social-go/internal/config"
	"social-go/internal/feedtypes"
	"social-go/internal/handlers/apiserver"
	appKafka "social-go/internal/kafka"
	"social-go/internal/middleware"
	appRedis "social-go/internal/redis"
	"social-go/internal/services"
	"social-go/internal/storage"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	log.Println("API 服务器配置加载成功。")

	// 2. 初始化数据库连接
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}
	log.Println("API 服务器数据库连接成功。")

	// (可选) 表结构迁移
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Printf("警告：API 服务器数据库表迁移可能失败: %v", err)
	} else {
		log.Println("API 服务器数据库表迁移成功 (如果执行)。")
	}

	// 3. 初始化 Redis Client (未读计数缓存)
	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		log.Fatalf("无法连接到 Redis: %v", err)
	}
	log.Println("成功连接到 Redis")

	unreadCache := appRedis.NewRedisUnreadCache(redisClient)

	// 4. 初始化 Repositories
	userRepo := storage.NewGormUserRepository(db)
	postRepo := storage.NewGormPostRepository(db)
	commentRepo := storage.NewGormCommentRepository(db)
	notifRepo := storage.NewGormNotificationRepository(db)
	friendshipRepo := storage.NewGormFriendshipRepository(db)

	// 5. 初始化 Kafka Producer (通知事件推送)
	kfkProducer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka)
	if err != nil {
		log.Fatalf("无法创建 Kafka 生产者: %v", err)
	}
	defer kfkProducer.Close()
	log.Println("Kafka 生产者初始化成功 (API Server)。")

	// 6. 初始化存储服务
	var storageService feedtypes.StorageService
	storageBaseURL := "/uploads" // 上传文件的访问前缀
	if cfg.Storage.Type == "local" {
		storageService, err = storage.NewLocalStorageService(cfg.Storage, storageBaseURL)
		if err != nil {
			log.Fatalf("无法初始化本地存储服务: %v", err)
		}
		log.Println("本地存储服务初始化成功。")
	} else if cfg.Storage.Type == "s3" {
		// TODO: S3 存储服务尚未实现
		log.Fatalf("S3 存储服务尚未实现")
	} else {
		log.Fatalf("不支持的存储类型: %s", cfg.Storage.Type)
	}

	// 7. 初始化 Services
	notificationService := services.NewNotificationService(
		notifRepo, userRepo, unreadCache, kfkProducer, cfg.Kafka, cfg.Redis.UnreadCountTTL)
	feedService := services.NewFeedService(postRepo, userRepo, commentRepo, storageService, notificationService)
	commentService := services.NewCommentService(commentRepo, postRepo, userRepo, notificationService)
	friendService := services.NewFriendService(userRepo, friendshipRepo, notificationService)
	searchService := services.NewSearchService(userRepo, postRepo)
	userService := services.NewUserService(userRepo)

	// 8. 初始化 Handlers
	postHandler := apiserver.NewPostHandler(feedService)
	commentHandler := apiserver.NewCommentHandler(commentService)
	friendHandler := apiserver.NewFriendHandler(friendService)
	notificationHandler := apiserver.NewNotificationHandler(notificationService)
	searchHandler := apiserver.NewSearchHandler(searchService)
	uploadHandler := apiserver.NewUploadHandler(storageService, cfg.Storage)
	userHandler := apiserver.NewUserHandler(userService)

	// 9. 设置 HTTP 路由
	r := mux.NewRouter()

	authMW := middleware.AuthMiddleware(cfg.Auth.JWTSecretKey)

	// 9.1 API 子路由 (需要认证)
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)

	// 动态流路由
	apiRouter.HandleFunc("/posts", postHandler.CreatePost).Methods(http.MethodPost)
	apiRouter.HandleFunc("/posts", postHandler.GetFeed).Methods(http.MethodGet)
	apiRouter.HandleFunc("/posts/user/{userID:[0-9]+}", postHandler.GetUserPosts).Methods(http.MethodGet)
	apiRouter.HandleFunc("/posts/{postID:[0-9]+}/like", postHandler.LikePost).Methods(http.MethodPatch)
	apiRouter.HandleFunc("/posts/{postID:[0-9]+}", postHandler.DeletePost).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/posts/liked/{userID:[0-9]+}", postHandler.GetLikedPosts).Methods(http.MethodGet)
	apiRouter.HandleFunc("/posts/commented/{userID:[0-9]+}", postHandler.GetCommentedPosts).Methods(http.MethodGet)

	// 评论路由
	apiRouter.HandleFunc("/comments", commentHandler.AddComment).Methods(http.MethodPost)
	apiRouter.HandleFunc("/comments/post/{postID:[0-9]+}", commentHandler.GetPostComments).Methods(http.MethodGet)
	apiRouter.HandleFunc("/comments/{commentID:[0-9]+}", commentHandler.DeleteComment).Methods(http.MethodDelete)

	// 好友路由
	apiRouter.HandleFunc("/users/{friendID:[0-9]+}/friend", friendHandler.ToggleFriend).Methods(http.MethodPatch)
	apiRouter.HandleFunc("/users/{userID:[0-9]+}/friends", friendHandler.ListFriends).Methods(http.MethodGet)

	// 通知路由
	apiRouter.HandleFunc("/notifications", notificationHandler.ListNotifications).Methods(http.MethodGet)
	apiRouter.HandleFunc("/notifications/unread-count", notificationHandler.UnreadCount).Methods(http.MethodGet)
	apiRouter.HandleFunc("/notifications/mark-read", notificationHandler.MarkAllRead).Methods(http.MethodPost)

	// 搜索路由
	apiRouter.HandleFunc("/search", searchHandler.Search).Methods(http.MethodGet)

	// 用户资料路由
	apiRouter.HandleFunc("/users/me", userHandler.GetMe).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/me", userHandler.UpdateMe).Methods(http.MethodPut)

	// 文件上传路由
	apiRouter.HandleFunc("/upload", uploadHandler.UploadFileHandler).Methods(http.MethodPost)

	// 9.2 公开路由 (不需要认证)
	r.HandleFunc("/users/{userID:[0-9]+}", userHandler.GetUser).Methods(http.MethodGet)

	// 9.3 静态文件服务路由 - 用于访问上传的媒体文件
	if cfg.Storage.Type == "local" {
		staticPath := strings.TrimSuffix(storageBaseURL, "/") + "/"
		localDir := http.Dir(cfg.Storage.LocalPath)
		r.PathPrefix(staticPath).Handler(http.StripPrefix(staticPath, http.FileServer(localDir)))
		log.Printf("提供静态文件服务于 %s -> %s", staticPath, cfg.Storage.LocalPath)
	}

	// 10. 启动 HTTP 服务器并实现优雅关闭
	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)

	// 定义 CORS 选项，从配置中读取
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	corsHandler := handlers.CORS(corsOptions...)(r)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      corsHandler,
		ReadTimeout:  cfg.APIServer.ReadTimeout,
		WriteTimeout: cfg.APIServer.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	}

	go func() {
		log.Printf("API 服务器启动于 %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API 服务器启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到关闭信号，正在关闭 API 服务器...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("API 服务器强制关闭: %v", err)
	}

	log.Println("API 服务器已成功关闭")
}
