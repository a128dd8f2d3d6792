package router

import (
	"net/http"

	"github.com/blogstory/internal/handler"
	"github.com/blogstory/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Options 控制路由中与部署相关的部分。
type Options struct {
	AllowedOrigins []string
	AccessLog      bool
}

// SetupRouter 配置 Gin 引擎和 /api 下的路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())
	if opts.AccessLog {
		r.Use(middleware.Logger())
	}
	r.Use(middleware.CORS(opts.AllowedOrigins))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	auth := middleware.AuthRequired(api.Tokens())

	group := r.Group("/api")
	{
		group.GET("/posts", api.ListPosts)
		group.GET("/posts/:id", api.GetPost)
		group.POST("/auth/login", api.Login)
		group.POST("/auth/register", api.Register)

		// 需要认证的路由
		protected := group.Group("")
		protected.Use(auth)
		{
			protected.GET("/posts/user/my-posts", api.ListMyPosts)
			protected.POST("/posts", api.CreatePost)
			protected.PUT("/posts/:id", api.UpdatePost)
			protected.DELETE("/posts/:id", api.DeletePost)
			protected.GET("/auth/me", api.Me)
			protected.PUT("/auth/profile", api.UpdateProfile)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return r
}
