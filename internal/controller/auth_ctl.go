package controller

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tevis-trtr/Deadpool-store/internal/middleware"
)

// AuthController 运维接口登录
type AuthController struct {
	password string // 运维口令，来自配置
}

func NewAuthController(password string) *AuthController {
	return &AuthController{password: password}
}

type loginRequest struct {
	Operator string `json:"operator" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 口令换 Token
func (ctrl *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 operator 或 password"})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(ctrl.password)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "口令错误"})
		return
	}

	token, err := middleware.GenerateToken(req.Operator)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "签发 Token 失败", "detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "登录成功",
		"token":   token,
	})
}
