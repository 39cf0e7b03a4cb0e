package stub

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/egor/portfolioclient/models"
)

// permissionsFor — права, которые боевой бэкенд выдаёт по роли.
func permissionsFor(role string) []string {
	switch role {
	case models.RoleAdmin:
		return []string{"manage_users", "manage_projects", "manage_reviews", "manage_contacts"}
	case models.RoleModerator:
		return []string{"manage_projects"}
	default:
		return []string{}
	}
}

func (s *Server) authPayload(acc *account, token string) gin.H {
	user := publicUser(acc)
	payload := gin.H{
		"user":        user,
		"permissions": permissionsFor(acc.Role),
	}
	if token != "" {
		payload["token"] = token
	}
	return payload
}

// ─────────────────────────── аутентификация

func (s *Server) login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mem.mu.Lock()
	acc := s.mem.accountByEmail(credentials.Email)
	s.mem.mu.Unlock()

	if acc == nil || bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(credentials.Password)) != nil {
		log.Printf("[stub] неудачная попытка входа: %s", credentials.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "неверные учетные данные"})
		return
	}

	token, err := issueToken(acc.ID, acc.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось выписать токен"})
		return
	}
	c.JSON(http.StatusOK, s.authPayload(acc, token))
}

func (s *Server) register(c *gin.Context) {
	var data models.RegisterData
	if err := c.ShouldBindJSON(&data); err != nil || data.Email == "" || data.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email и пароль обязательны"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось захешировать пароль"})
		return
	}

	s.mem.mu.Lock()
	if s.mem.accountByEmail(data.Email) != nil {
		s.mem.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"message": "Email уже занят"})
		return
	}
	now := time.Now()
	acc := account{
		User: models.User{
			ID:        s.mem.id("users"),
			Email:     data.Email,
			FirstName: data.FirstName,
			LastName:  data.LastName,
			Telegram:  data.Telegram,
			Role:      models.RoleUser,
			CreatedAt: &now,
		},
		PasswordHash: string(hash),
	}
	s.mem.accounts = append(s.mem.accounts, acc)
	s.mem.mu.Unlock()

	token, err := issueToken(acc.ID, acc.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось выписать токен"})
		return
	}
	c.JSON(http.StatusCreated, s.authPayload(&acc, token))
}

func (s *Server) profile(c *gin.Context) {
	s.mem.mu.Lock()
	acc := s.mem.accountByID(c.GetInt("userID"))
	s.mem.mu.Unlock()

	if acc == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "пользователь не найден"})
		return
	}
	c.JSON(http.StatusOK, s.authPayload(acc, ""))
}

func (s *Server) updateProfile(c *gin.Context) {
	var upd models.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mem.mu.Lock()
	acc := s.mem.accountByID(c.GetInt("userID"))
	if acc != nil {
		acc.FirstName = upd.FirstName
		acc.LastName = upd.LastName
		acc.Telegram = upd.Telegram
		now := time.Now()
		acc.UpdatedAt = &now
	}
	s.mem.mu.Unlock()

	if acc == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "пользователь не найден"})
		return
	}
	c.JSON(http.StatusOK, s.authPayload(acc, ""))
}

func (s *Server) changePassword(c *gin.Context) {
	var body struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	acc := s.mem.accountByID(c.GetInt("userID"))
	if acc == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "пользователь не найден"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(body.CurrentPassword)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Неверный текущий пароль"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "не удалось захешировать пароль"})
		return
	}
	acc.PasswordHash = string(hash)
	c.JSON(http.StatusOK, gin.H{"message": "Пароль изменён"})
}

func (s *Server) uploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Файл не передан"})
		return
	}

	s.mem.mu.Lock()
	acc := s.mem.accountByID(c.GetInt("userID"))
	if acc != nil {
		url := fmt.Sprintf("/uploads/avatars/%d_%s", acc.ID, file.Filename)
		acc.AvatarURL = &url
	}
	s.mem.mu.Unlock()

	if acc == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "пользователь не найден"})
		return
	}
	c.JSON(http.StatusOK, s.authPayload(acc, ""))
}

func (s *Server) deleteAvatar(c *gin.Context) {
	s.mem.mu.Lock()
	acc := s.mem.accountByID(c.GetInt("userID"))
	if acc != nil {
		acc.AvatarURL = nil
	}
	s.mem.mu.Unlock()

	if acc == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "пользователь не найден"})
		return
	}
	c.JSON(http.StatusOK, s.authPayload(acc, ""))
}

func (s *Server) logout(c *gin.Context) {
	// состояние сессии живёт в токене, на сервере гасить нечего
	c.JSON(http.StatusOK, gin.H{"message": "Выход выполнен"})
}

// ─────────────────────────── проекты

func (s *Server) listMyProjects(c *gin.Context) {
	userID := c.GetInt("userID")

	s.mem.mu.Lock()
	var out []models.Project
	for _, p := range s.mem.projects {
		if p.User != nil && p.User.ID == userID {
			out = append(out, p)
		}
	}
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) createProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mem.mu.Lock()
	acc := s.mem.accountByID(c.GetInt("userID"))
	if acc == nil {
		s.mem.mu.Unlock()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "пользователь не найден"})
		return
	}
	owner := publicUser(acc)
	project := models.Project{
		ID:          s.mem.id("projects"),
		ClientName:  req.Name,
		Telegram:    req.Telegram,
		Type:        req.Type,
		Description: req.Description,
		Status:      models.StatusPending,
		User:        &owner,
		History: []models.ProjectHistory{{
			ID:          s.mem.id("history"),
			Description: "Заявка создана",
			CreatedAt:   time.Now(),
		}},
		CreatedAt: time.Now(),
	}
	s.mem.projects = append(s.mem.projects, project)
	s.mem.mu.Unlock()

	c.JSON(http.StatusCreated, project)
}

func (s *Server) getProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	project := s.mem.projectByID(id)
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "проект не найден"})
		return
	}
	role := c.GetString("role")
	isStaff := role == models.RoleAdmin || role == models.RoleModerator
	if !isStaff && (project.User == nil || project.User.ID != c.GetInt("userID")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "недостаточно прав"})
		return
	}
	c.JSON(http.StatusOK, *project)
}

var validStatuses = map[string]bool{
	models.StatusPending:    true,
	models.StatusInProgress: true,
	models.StatusCompleted:  true,
	models.StatusCancelled:  true,
}

func (s *Server) updateProjectStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !validStatuses[body.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный статус"})
		return
	}

	s.mem.mu.Lock()
	project := s.mem.projectByID(id)
	if project == nil {
		s.mem.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "проект не найден"})
		return
	}
	project.Status = body.Status
	now := time.Now()
	project.UpdatedAt = &now
	project.History = append(project.History, models.ProjectHistory{
		ID:          s.mem.id("history"),
		Description: fmt.Sprintf("Статус изменён на «%s»", body.Status),
		CreatedAt:   now,
	})
	if project.User != nil {
		s.mem.notify(project.User.ID,
			fmt.Sprintf("Статус вашего проекта «%s» изменён на «%s»", project.ClientName, body.Status))
	}
	updated := *project
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, updated)
}

func (s *Server) addProjectHistory(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}
	var body struct {
		Description string `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mem.mu.Lock()
	project := s.mem.projectByID(id)
	if project == nil {
		s.mem.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "проект не найден"})
		return
	}
	project.History = append(project.History, models.ProjectHistory{
		ID:          s.mem.id("history"),
		Description: body.Description,
		CreatedAt:   time.Now(),
	})
	s.mem.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"message": "Запись добавлена"})
}

// ─────────────────────────── отзывы

func (s *Server) listReviews(c *gin.Context) {
	s.mem.mu.Lock()
	out := append([]models.Review(nil), s.mem.reviews...)
	s.mem.mu.Unlock()

	// свежие первыми
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) getReview(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	for _, r := range s.mem.reviews {
		if r.ID == id {
			c.JSON(http.StatusOK, r)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "отзыв не найден"})
}

func (s *Server) createReview(c *gin.Context) {
	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "оценка должна быть от 1 до 5"})
		return
	}

	s.mem.mu.Lock()
	acc := s.mem.accountByID(c.GetInt("userID"))
	if acc == nil {
		s.mem.mu.Unlock()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "пользователь не найден"})
		return
	}
	author := publicUser(acc)
	review := models.Review{
		ID:             s.mem.id("reviews"),
		Body:           req.Body,
		ProjectLink:    req.ProjectLink,
		Rating:         req.Rating,
		ServiceQuality: req.ServiceQuality,
		User:           &author,
		Username:       author.Name,
		CreatedAt:      time.Now(),
	}
	s.mem.reviews = append(s.mem.reviews, review)
	s.mem.mu.Unlock()

	c.JSON(http.StatusCreated, review)
}

func (s *Server) deleteReview(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	kept := s.mem.reviews[:0]
	found := false
	for _, r := range s.mem.reviews {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	s.mem.reviews = kept

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "отзыв не найден"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Отзыв удалён"})
}

// ─────────────────────────── админка

func (s *Server) listUsers(c *gin.Context) {
	s.mem.mu.Lock()
	out := make([]models.User, 0, len(s.mem.accounts))
	for i := range s.mem.accounts {
		out = append(out, publicUser(&s.mem.accounts[i]))
	}
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

var validRoles = map[string]bool{
	models.RoleAdmin:     true,
	models.RoleModerator: true,
	models.RoleUser:      true,
}

func (s *Server) updateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}
	var body struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !validRoles[body.Role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректная роль"})
		return
	}

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	acc := s.mem.accountByID(id)
	if acc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "пользователь не найден"})
		return
	}
	acc.Role = body.Role
	c.JSON(http.StatusOK, publicUser(acc))
}

func (s *Server) listAllProjects(c *gin.Context) {
	s.mem.mu.Lock()
	out := append([]models.Project(nil), s.mem.projects...)
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) updateProjectLinks(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}
	var links models.ProjectLinks
	if err := c.ShouldBindJSON(&links); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mem.mu.Lock()
	project := s.mem.projectByID(id)
	if project == nil {
		s.mem.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "проект не найден"})
		return
	}
	project.GithubRepoLink = links.GithubRepoLink
	project.SpecLink = links.SpecLink
	updated := *project
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, updated)
}

// ─────────────────────────── заявки на связь

func (s *Server) sendContact(c *gin.Context) {
	var form models.ContactForm
	if err := c.ShouldBindJSON(&form); err != nil || form.Name == "" || form.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Заполните имя и сообщение"})
		return
	}

	s.mem.mu.Lock()
	request := models.ContactRequest{
		ID:        s.mem.id("requests"),
		Name:      form.Name,
		Telegram:  form.Telegram,
		Message:   form.Message,
		Status:    models.ContactPending,
		CreatedAt: time.Now(),
	}
	if userID := c.GetInt("userID"); userID != 0 {
		if acc := s.mem.accountByID(userID); acc != nil {
			u := publicUser(acc)
			request.User = &u
		}
	}
	s.mem.requests = append(s.mem.requests, request)
	s.mem.mu.Unlock()

	c.JSON(http.StatusCreated, request)
}

func (s *Server) listContactRequests(c *gin.Context) {
	s.mem.mu.Lock()
	out := append([]models.ContactRequest(nil), s.mem.requests...)
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) contactStats(c *gin.Context) {
	s.mem.mu.Lock()
	stats := models.ContactStats{Total: len(s.mem.requests)}
	for _, r := range s.mem.requests {
		switch r.Status {
		case models.ContactPending:
			stats.Pending++
		case models.ContactContacted:
			stats.Contacted++
		case models.ContactClosed:
			stats.Closed++
		}
	}
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, stats)
}

var validContactStatuses = map[string]bool{
	models.ContactPending:   true,
	models.ContactContacted: true,
	models.ContactClosed:    true,
}

func (s *Server) updateContactStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}
	var body struct {
		Status     string `json:"status" binding:"required"`
		AdminNotes string `json:"adminNotes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || !validContactStatuses[body.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный статус"})
		return
	}

	s.mem.mu.Lock()
	request := s.mem.requestByID(id)
	if request == nil {
		s.mem.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "заявка не найдена"})
		return
	}
	request.Status = body.Status
	if body.AdminNotes != "" {
		request.AdminNotes = body.AdminNotes
	}
	if acc := s.mem.accountByID(c.GetInt("userID")); acc != nil {
		u := publicUser(acc)
		request.HandledBy = &u
	}
	updated := *request
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, updated)
}

// ─────────────────────────── уведомления

func (s *Server) listNotifications(c *gin.Context) {
	userID := c.GetInt("userID")

	s.mem.mu.Lock()
	out := append([]models.Notification(nil), s.mem.notifications[userID]...)
	s.mem.mu.Unlock()

	// свежие первыми
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	c.JSON(http.StatusOK, out)
}

func (s *Server) markNotificationRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}
	userID := c.GetInt("userID")

	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	list := s.mem.notifications[userID]
	for i := range list {
		if list[i].ID == id {
			list[i].IsRead = true
			c.JSON(http.StatusOK, list[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "уведомление не найдено"})
}

// ─────────────────────────── сообщения

func (s *Server) listAdmins(c *gin.Context) {
	s.mem.mu.Lock()
	var out []models.User
	for i := range s.mem.accounts {
		acc := &s.mem.accounts[i]
		if acc.Role == models.RoleAdmin || acc.Role == models.RoleModerator {
			out = append(out, publicUser(acc))
		}
	}
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) listConversations(c *gin.Context) {
	s.mem.mu.Lock()
	out := s.mem.conversationsFor(c.GetInt("userID"))
	s.mem.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

func (s *Server) listMessages(c *gin.Context) {
	peerID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	s.mem.mu.Lock()
	out := s.mem.historyBetween(c.GetInt("userID"), peerID)
	s.mem.mu.Unlock()

	if out == nil {
		out = []models.ChatMessage{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) sendMessage(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "пустое сообщение"})
		return
	}
	senderID := c.GetInt("userID")

	s.mem.mu.Lock()
	sender := s.mem.accountByID(senderID)
	receiver := s.mem.accountByID(req.ReceiverID)
	if sender == nil || receiver == nil {
		s.mem.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"error": "получатель не найден"})
		return
	}
	from := publicUser(sender)
	message := models.ChatMessage{
		ID:         s.mem.id("messages"),
		Content:    req.Content,
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		Sender:     &from,
		CreatedAt:  time.Now(),
	}
	s.mem.messages = append(s.mem.messages, message)
	s.mem.mu.Unlock()

	// живой канал получателя
	s.hub.Push(req.ReceiverID, "new_message", message)

	c.JSON(http.StatusCreated, message)
}
