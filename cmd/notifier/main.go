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

	"social-go/internal/auth"
	"social-go/internal/config"
	appKafka "social-go/internal/kafka"
	kafkaHandlers "social-go/internal/kafka/handlers"
	"social-go/internal/websocket"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	log.Println("通知推送服务器配置加载成功。")

	// 2. 初始化 WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()
	log.Println("WebSocket Hub 已启动。")

	// 3. 初始化 Kafka 消费者 (消费 API 服务器发布的通知事件)
	notifConsumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka)
	if err != nil {
		log.Fatalf("无法创建通知 Kafka 消费者: %v", err)
	}
	defer notifConsumer.Close()

	consumerHandler := kafkaHandlers.NewNotificationConsumerHandler(hub)

	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	defer cancelConsumers()

	go func() {
		topics := []string{cfg.Kafka.NotificationsTopic}
		log.Printf("Kafka 通知消费者启动，监听 topic: %s, GroupID: %s", cfg.Kafka.NotificationsTopic, cfg.Kafka.ConsumerGroup)
		err := notifConsumer.Consume(consumerCtx, topics, cfg.Kafka.ConsumerGroup, consumerHandler.Handle)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Kafka 通知消费者错误: %v", err)
		}
		log.Println("Kafka 通知消费者 goroutine 已停止。")
	}()

	// 4. 配置 HTTP 路由，WebSocket 握手前先校验 Token
	serveMux := http.NewServeMux()
	serveMux.HandleFunc(cfg.Notifier.WebSocketPath, func(w http.ResponseWriter, r *http.Request) {
		// 浏览器的 WebSocket API 不支持自定义头，Token 也可以放在查询参数里
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}
		if tokenString == "" {
			http.Error(w, "缺少认证 Token", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ValidateToken(tokenString, cfg.Auth.JWTSecretKey)
		if err != nil {
			http.Error(w, "无效的认证 Token", http.StatusUnauthorized)
			return
		}

		websocket.ServeClient(hub, w, r, claims.UserID, cfg.WebSocket)
	})

	// 5. 启动 HTTP 服务器
	serverAddr := fmt.Sprintf("%s:%s", cfg.Notifier.Host, cfg.Notifier.Port)
	httpServer := &http.Server{Addr: serverAddr, Handler: serveMux}

	go func() {
		log.Printf("通知推送服务器启动于 %s, WebSocket 路径: %s", serverAddr, cfg.Notifier.WebSocketPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("通知推送服务器启动失败: %v", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("通知推送服务器准备关闭...")

	cancelConsumers()
	log.Println("正在等待 Kafka 消费者停止...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("通知推送服务器关闭失败: %v", err)
	}
	log.Println("通知推送服务器已优雅关闭。")
}
