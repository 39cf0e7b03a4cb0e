// Пакет stub — локальный бэкенд портфолио в памяти. Реализует тот же
// REST-контракт, что и боевой сервер, плюс живой канал /ws; на нём
// работают тесты клиента (через httptest) и локальная разработка
// фронтенда (portfolioclient serve-stub).
package stub

import (
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Server — стаб бэкенда.
type Server struct {
	mem    *memory
	hub    *hub
	engine *gin.Engine

	// failStatus имитирует сбой: ненулевой статус возвращается на любой
	// запрос к API (инструмент тестов)
	failStatus atomic.Int32
}

// New создаёт стаб с засеянными данными.
func New() *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		mem: newMemory(),
		hub: newHub(),
	}
	s.seed()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLog())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(s.failureInjector())

	api := r.Group("/api")
	{
		api.POST("/auth/login", s.login)
		api.POST("/auth/register", s.register)
		api.POST("/contact", s.authOptional(), s.sendContact)
		api.GET("/reviews", s.listReviews)
		api.GET("/reviews/:id", s.getReview)

		authorized := api.Group("/")
		authorized.Use(authRequired())
		{
			authorized.GET("/auth/profile", s.profile)
			authorized.PUT("/auth/profile", s.updateProfile)
			authorized.PUT("/auth/password", s.changePassword)
			authorized.POST("/auth/profile/avatar", s.uploadAvatar)
			authorized.DELETE("/auth/profile/avatar", s.deleteAvatar)
			authorized.POST("/auth/logout", s.logout)

			authorized.GET("/projects", s.listMyProjects)
			authorized.POST("/projects", s.createProject)
			authorized.GET("/projects/:id", s.getProject)
			authorized.PATCH("/projects/:id/status", roleRequired("admin", "moderator"), s.updateProjectStatus)
			authorized.POST("/projects/:id/history", roleRequired("admin", "moderator"), s.addProjectHistory)

			authorized.POST("/reviews", s.createReview)
			authorized.DELETE("/reviews/:id", roleRequired("admin"), s.deleteReview)

			admin := authorized.Group("/admin")
			{
				admin.GET("/users", roleRequired("admin"), s.listUsers)
				admin.PATCH("/users/:id", roleRequired("admin"), s.updateUser)
				admin.GET("/projects", roleRequired("admin", "moderator"), s.listAllProjects)
				admin.PUT("/projects/:id/links", roleRequired("admin"), s.updateProjectLinks)
			}

			contact := authorized.Group("/contact/requests")
			contact.Use(roleRequired("admin"))
			{
				contact.GET("", s.listContactRequests)
				contact.GET("/stats", s.contactStats)
				contact.PATCH("/:id/status", s.updateContactStatus)
			}

			authorized.GET("/notifications", s.listNotifications)
			authorized.PATCH("/notifications/:id/read", s.markNotificationRead)

			authorized.GET("/messages/admins", s.listAdmins)
			authorized.GET("/messages/conversations", s.listConversations)
			authorized.GET("/messages/:userId", s.listMessages)
			authorized.POST("/messages", s.sendMessage)
		}
	}

	r.GET("/ws", authRequired(), s.serveWS)

	s.engine = r
	return s
}

// Handler отдаёт http.Handler для httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Run запускает стаб на указанном адресе.
func (s *Server) Run(addr string) error {
	log.Printf("[stub] бэкенд-стаб запущен на %s", addr)
	return s.engine.Run(addr)
}

// ForceFailure включает имитацию сбоя: каждый запрос к API получает
// указанный статус. Ноль выключает имитацию.
func (s *Server) ForceFailure(status int) {
	s.failStatus.Store(int32(status))
}

func (s *Server) failureInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		if status := int(s.failStatus.Load()); status != 0 {
			c.JSON(status, gin.H{"error": "имитация сбоя"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// requestLog логирует запросы в духе боевого сервера; идентификатор
// запроса берётся из X-Request-ID или генерируется.
func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Next()

		log.Printf("[stub] %3d | %13v | %-7s %s | %s",
			c.Writer.Status(),
			time.Since(start),
			c.Request.Method,
			c.Request.RequestURI,
			requestID,
		)
	}
}

// authOptional пытается авторизовать запрос, но не требует этого
// (публичная форма контактов привязывает заявку к пользователю,
// если он вошёл).
func (s *Server) authOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if cl, err := validateToken(tokenString); err == nil {
				c.Set("userID", cl.UserID)
				c.Set("role", cl.Role)
			}
		}
		c.Next()
	}
}
