package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrDimensionMismatch 向量维度与配置不一致
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Vector 嵌入向量，以 JSON 数组形式存储在 MySQL 中
type Vector []float32

func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (v *Vector) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	default:
		return fmt.Errorf("unsupported vector column type %T", value)
	}
}

// ToolExample 工具路由示例：一条查询文本与其指向的工具
type ToolExample struct {
	Id         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ToolName   string    `gorm:"column:tool_name;type:varchar(100);not null;index:idx_tool_example_tool"`
	Domain     string    `gorm:"column:domain;type:varchar(50);not null;index:idx_tool_example_domain"`
	QueryText  string    `gorm:"column:query_text;type:text;not null"`
	Embedding  Vector    `gorm:"column:embedding;type:json;not null"`
	IsLearned  bool      `gorm:"column:is_learned;type:tinyint(1);not null;default:0"`
	UsageCount int       `gorm:"column:usage_count;type:int;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (ToolExample) TableName() string { return "agent_tool_example" }
