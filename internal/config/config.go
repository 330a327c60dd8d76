package config

import (
	"log"
	"time"

	"github.com/BurntSushi/toml"
)

type MainConfig struct {
	AppName string `toml:"appName"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
}

type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

type LogConfig struct {
	LogPath string `toml:"logPath"`
}

type JwtConfig struct {
	Key         string `toml:"key"`
	ExpireHours int    `toml:"expireHours"`
	Issuer      string `toml:"issuer"`
}

type MilvusConfig struct {
	Address        string `toml:"address"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	DBName         string `toml:"dbName"`
	CollectionName string `toml:"collectionName"`
	VectorDim      int    `toml:"vectorDim"`
	MetricType     string `toml:"metricType"`
}

type KafkaConfig struct {
	Brokers     []string `toml:"brokers"`
	ClientID    string   `toml:"clientID"`
	AuditTopic  string   `toml:"auditTopic"`
	Partitions  int32    `toml:"partitions"`
	Replication int16    `toml:"replication"`
}

type AIEmbeddingConfig struct {
	Provider        string `toml:"provider"`
	APIKey          string `toml:"apiKey"`
	AccessKey       string `toml:"accessKey"`
	SecretKey       string `toml:"secretKey"`
	BaseURL         string `toml:"baseURL"`
	Region          string `toml:"region"`
	Model           string `toml:"model"`
	Dimensions      int    `toml:"dimensions"`
	TimeoutSeconds  int    `toml:"timeoutSeconds"`
	RetryTimes      int    `toml:"retryTimes"`
	User            string `toml:"user"`
	ByAzure         bool   `toml:"byAzure"`
	AzureAPIVersion string `toml:"azureApiVersion"`
}

type AIChatModelConfig struct {
	Provider        string `toml:"provider"`
	APIKey          string `toml:"apiKey"`
	AccessKey       string `toml:"accessKey"`
	SecretKey       string `toml:"secretKey"`
	BaseURL         string `toml:"baseURL"`
	Region          string `toml:"region"`
	Model           string `toml:"model"`
	TimeoutSeconds  int    `toml:"timeoutSeconds"`
	RetryTimes      int    `toml:"retryTimes"`
	ByAzure         bool   `toml:"byAzure"`
	AzureAPIVersion string `toml:"azureApiVersion"`
}

type AIConfig struct {
	Embedding AIEmbeddingConfig `toml:"embedding"`
	ChatModel AIChatModelConfig `toml:"chatModel"`
}

// AgentConfig 智能体路由与审批相关参数
type AgentConfig struct {
	SimilarityThreshold  float64 `toml:"similarityThreshold"`
	AmbiguityMargin      float64 `toml:"ambiguityMargin"`
	TopK                 int     `toml:"topK"`
	MaxToolIterations    int     `toml:"maxToolIterations"`
	ActionTTLMinutes     int     `toml:"actionTTLMinutes"`
	SweepIntervalMinutes int     `toml:"sweepIntervalMinutes"`
	EmbeddingDimensions  int     `toml:"embeddingDimensions"`
	SeedFile             string  `toml:"seedFile"`
}

// ActionTTL 动作审批有效期
func (a AgentConfig) ActionTTL() time.Duration {
	return time.Duration(a.ActionTTLMinutes) * time.Minute
}

// NotifyConfig 审批通知渠道（Slack 风格 Webhook）配置
type NotifyConfig struct {
	Enabled        bool   `toml:"enabled"`
	BotToken       string `toml:"botToken"`
	Channel        string `toml:"channel"`
	APIBaseURL     string `toml:"apiBaseURL"`
	SigningSecret  string `toml:"signingSecret"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
}

// CommerceConfig 商城后端 API 配置，变更类工具最终落到这里执行
type CommerceConfig struct {
	BaseURL        string `toml:"baseURL"`
	APIToken       string `toml:"apiToken"`
	TimeoutSeconds int    `toml:"timeoutSeconds"`
}

type RedisConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Password     string `toml:"password"`
	DB           int    `toml:"db"`
	PoolSize     int    `toml:"poolSize"`
	MinIdleConns int    `toml:"minIdleConns"`
}

type Config struct {
	MainConfig     `toml:"mainConfig"`
	MysqlConfig    `toml:"mysqlConfig"`
	JwtConfig      `toml:"jwtConfig"`
	MilvusConfig   `toml:"milvusConfig"`
	KafkaConfig    `toml:"kafkaConfig"`
	AIConfig       `toml:"aiConfig"`
	AgentConfig    `toml:"agentConfig"`
	NotifyConfig   `toml:"notifyConfig"`
	CommerceConfig `toml:"commerceConfig"`
	LogConfig      `toml:"logConfig"`
	RedisConfig    `toml:"redisConfig"`
}

var config *Config

func LoadConfig() error {

	configPath := "configs/config_local.toml"
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		log.Printf("加载配置文件失败: %v, 尝试使用默认设置", err)
		applyAgentDefaults(&config.AgentConfig)
		return err
	}
	applyAgentDefaults(&config.AgentConfig)
	return nil
}

// applyAgentDefaults 未配置项回落到默认值
func applyAgentDefaults(a *AgentConfig) {
	if a.SimilarityThreshold == 0 {
		a.SimilarityThreshold = 0.80
	}
	if a.AmbiguityMargin == 0 {
		a.AmbiguityMargin = 0.05
	}
	if a.TopK == 0 {
		a.TopK = 5
	}
	if a.MaxToolIterations == 0 {
		a.MaxToolIterations = 10
	}
	if a.ActionTTLMinutes == 0 {
		a.ActionTTLMinutes = 60
	}
	if a.SweepIntervalMinutes == 0 {
		a.SweepIntervalMinutes = 5
	}
	if a.EmbeddingDimensions == 0 {
		a.EmbeddingDimensions = 1536
	}
}

func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig()
	}
	return config
}
