package http

import (
	"StorePilot/internal/modules/adminuser/application/dto/request"
	"StorePilot/internal/modules/adminuser/application/service"
	"StorePilot/pkg/back"
	"StorePilot/pkg/xerr"
	"StorePilot/pkg/zlog"

	"github.com/gin-gonic/gin"
)

type AdminUserHandler struct {
	svc service.AdminUserService
}

func NewAdminUserHandler(svc service.AdminUserService) *AdminUserHandler {
	return &AdminUserHandler{svc: svc}
}

// Login 登录
//
// 路由: POST /login
func (h *AdminUserHandler) Login(c *gin.Context) {
	var loginReq request.LoginRequest
	if err := c.BindJSON(&loginReq); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Login(c.Request.Context(), loginReq)
	back.Result(c, data, err)
}

// Register 注册
//
// 路由: POST /register
func (h *AdminUserHandler) Register(c *gin.Context) {
	var registerReq request.RegisterRequest
	if err := c.BindJSON(&registerReq); err != nil {
		zlog.Error(err.Error())
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Register(c.Request.Context(), registerReq)
	back.Result(c, data, err)
}
