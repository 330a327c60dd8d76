package http

import (
	"StorePilot/internal/config"
	"StorePilot/internal/modules/agent/application/service"
	"StorePilot/pkg/back"
	"StorePilot/pkg/xerr"

	"github.com/gin-gonic/gin"
)

// AdminHandler 路由示例数据的运维入口
type AdminHandler struct {
	seeder service.SeederService
}

// NewAdminHandler 创建AdminHandler
func NewAdminHandler(seeder service.SeederService) *AdminHandler {
	return &AdminHandler{seeder: seeder}
}

// Seed 重播预置路由示例
//
// 路由: POST /agent/admin/seed
func (h *AdminHandler) Seed(c *gin.Context) {
	path := config.GetConfig().AgentConfig.SeedFile
	if path == "" {
		back.Error(c, xerr.BadRequest, "未配置示例文件路径")
		return
	}

	count, err := h.seeder.SeedFromFile(c.Request.Context(), path)
	if err != nil {
		back.Result(c, nil, err)
		return
	}

	back.Result(c, gin.H{"seeded": count}, nil)
}

// ExampleStats 各业务域的路由示例数量
//
// 路由: GET /agent/admin/examples/stats
func (h *AdminHandler) ExampleStats(c *gin.Context) {
	stats, err := h.seeder.Stats(c.Request.Context())
	if err != nil {
		back.Result(c, nil, err)
		return
	}

	back.Result(c, gin.H{"domains": stats}, nil)
}
