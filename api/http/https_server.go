package http

import (
	"context"
	"fmt"

	"StorePilot/internal/config"
	"StorePilot/internal/initial"
	jwtMiddleware "StorePilot/internal/middleware/jwt"
	adminUserService "StorePilot/internal/modules/adminuser/application/service"
	adminUserPersistence "StorePilot/internal/modules/adminuser/infrastructure/persistence"
	adminUserHandler "StorePilot/internal/modules/adminuser/interface/http"
	"StorePilot/internal/modules/agent/application/service"
	"StorePilot/internal/modules/agent/domain/repository"
	"StorePilot/internal/modules/agent/infrastructure/commerce"
	embeddingProvider "StorePilot/internal/modules/agent/infrastructure/embedding"
	llmProvider "StorePilot/internal/modules/agent/infrastructure/llm"
	"StorePilot/internal/modules/agent/infrastructure/mq"
	"StorePilot/internal/modules/agent/infrastructure/mq/kafka"
	"StorePilot/internal/modules/agent/infrastructure/notify"
	"StorePilot/internal/modules/agent/infrastructure/persistence"
	"StorePilot/internal/modules/agent/infrastructure/vectordb"
	agentHandler "StorePilot/internal/modules/agent/interface/http"
	"StorePilot/internal/modules/agent/interface/scheduler"
	"StorePilot/pkg/ssl"
	"StorePilot/pkg/ws"
	"StorePilot/pkg/zlog"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	GE *gin.Engine

	// Sweeper 超期动作清扫器，由 main 启停
	Sweeper *scheduler.SweeperManager

	// KafkaPublisher 审计事件生产者，可能为 nil，main 退出时负责关闭
	KafkaPublisher mq.Publisher
)

func init() {
	conf := config.GetConfig()

	GE = gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	GE.Use(cors.New(corsConfig))
	GE.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))

	wsHub := ws.NewHub()

	exampleRepo := persistence.NewToolExampleRepository(initial.GormDB)
	sessionRepo := persistence.NewChatSessionRepository(initial.GormDB)
	messageRepo := persistence.NewChatMessageRepository(initial.GormDB)
	metricsRepo := persistence.NewChatMetricsRepository(initial.GormDB)
	actionRepo := persistence.NewPendingActionRepository(initial.GormDB)

	var exampleIndex repository.ExampleIndex
	if initial.MilvusClient != nil {
		exampleIndex = vectordb.NewMilvusExampleIndex(
			initial.MilvusClient,
			conf.MilvusConfig.CollectionName,
			conf.AgentConfig.EmbeddingDimensions,
		)
	}

	ctx := context.Background()
	embedder, embMeta, err := embeddingProvider.NewEmbedderFromConfig(ctx, conf)
	if err != nil {
		zlog.Fatal("embedding provider init failed: " + err.Error())
		return
	}
	zlog.Info(fmt.Sprintf("embedding provider ready: %s/%s dim=%d", embMeta.Provider, embMeta.Model, embMeta.Dim))

	chatModel, llmMeta, err := llmProvider.NewChatModelFromConfig(ctx, conf)
	if err != nil {
		zlog.Fatal("chat model init failed: " + err.Error())
		return
	}
	zlog.Info(fmt.Sprintf("chat model ready: %s/%s", llmMeta.Provider, llmMeta.Model))

	executor := commerce.NewToolExecutor(commerce.NewClient(conf))

	var notifier notify.Notifier = notify.NoopNotifier{}
	if conf.NotifyConfig.Enabled && conf.NotifyConfig.BotToken != "" {
		notifier = notify.NewSlackNotifier(conf)
	}

	var audit *mq.AuditEmitter
	if len(conf.KafkaConfig.Brokers) > 0 {
		pub, err := kafka.NewSaramaPublisher(kafka.PublisherConfig{
			Brokers:  conf.KafkaConfig.Brokers,
			ClientID: conf.KafkaConfig.ClientID,
		})
		if err != nil {
			zlog.Fatal("kafka publisher init failed: " + err.Error())
			return
		}
		KafkaPublisher = pub
		audit = mq.NewAuditEmitter(pub, conf.KafkaConfig.AuditTopic)
	}

	routerSvc := service.NewToolRouterService(exampleRepo, exampleIndex, embedder, conf)
	queueSvc := service.NewActionQueueService(actionRepo, executor, audit, conf)
	gatewaySvc := service.NewApprovalGatewayService(queueSvc, notifier, wsHub)
	chatSvc := service.NewChatService(
		sessionRepo, messageRepo, metricsRepo,
		routerSvc, queueSvc, gatewaySvc,
		executor, chatModel, conf,
	)
	gatewaySvc.BindResumer(chatSvc)
	seederSvc := service.NewSeederService(exampleRepo, exampleIndex, embedder, conf)

	adminUserRepo := adminUserPersistence.NewAdminUserRepository(initial.GormDB)
	adminUserSvc := adminUserService.NewAdminUserService(adminUserRepo)

	userH := adminUserHandler.NewAdminUserHandler(adminUserSvc)
	chatH := agentHandler.NewChatHandler(chatSvc)
	actionH := agentHandler.NewActionHandler(queueSvc, gatewaySvc, chatSvc, sessionRepo)
	callbackH := agentHandler.NewCallbackHandler(gatewaySvc, chatSvc, conf)
	adminH := agentHandler.NewAdminHandler(seederSvc)
	wsH := agentHandler.NewWsHandler(wsHub)

	Sweeper = scheduler.NewSweeperManager(gatewaySvc, conf.AgentConfig.SweepIntervalMinutes)

	GE.POST("/login", userH.Login)
	GE.POST("/register", userH.Register)

	// 渠道回调靠签名校验，不走JWT
	GE.POST("/agent/callbacks/slack", callbackH.Interact)

	authed := GE.Group("/")
	authed.Use(jwtMiddleware.Auth())
	authed.GET("/auth/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"uuid":     c.GetString("uuid"),
			"username": c.GetString("username"),
		})
	})
	authed.POST("/agent/chat/send", chatH.Send)
	authed.GET("/agent/chat/sessions", chatH.ListSessions)
	authed.GET("/agent/chat/sessions/:sessionUuid/messages", chatH.ListMessages)
	authed.GET("/agent/chat/sessions/:sessionUuid/metrics", chatH.GetMetrics)
	authed.DELETE("/agent/chat/sessions/:sessionUuid", chatH.DeleteSession)
	authed.GET("/agent/actions", actionH.List)
	authed.GET("/agent/actions/:actionUuid", actionH.Get)
	authed.POST("/agent/actions/:actionUuid/decide", actionH.Decide)
	authed.POST("/agent/admin/seed", adminH.Seed)
	authed.GET("/agent/admin/examples/stats", adminH.ExampleStats)
	authed.GET("/agent/ws", wsH.Connect)
}
