package stub

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/egor/portfolioclient/models"
)

// seed наполняет стаб стартовыми данными: администратор, модератор,
// клиент, пара проектов и отзыв. Пароли одинаковые для удобства
// локальной разработки.
func (s *Server) seed() {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("[stub] не удалось захешировать пароль: %v", err)
	}

	now := time.Now()
	m := s.mem

	add := func(email, first, last, role string) models.User {
		acc := account{
			User: models.User{
				ID:        m.id("users"),
				Email:     email,
				FirstName: first,
				LastName:  last,
				Role:      role,
				CreatedAt: &now,
			},
			PasswordHash: string(hash),
		}
		m.accounts = append(m.accounts, acc)
		return publicUser(&acc)
	}

	add("admin@portfolio.local", "Игорь", "Подымов", models.RoleAdmin)
	add("moderator@portfolio.local", "Мария", "Соколова", models.RoleModerator)
	client := add("client@portfolio.local", "Пётр", "Иванов", models.RoleUser)

	m.projects = append(m.projects,
		models.Project{
			ID:          m.id("projects"),
			ClientName:  "Пётр Иванов",
			Telegram:    "@pivanov",
			Type:        models.TypeLanding,
			Description: "Лендинг для кофейни",
			Status:      models.StatusInProgress,
			User:        &client,
			History: []models.ProjectHistory{
				{ID: m.id("history"), Description: "Заявка создана", CreatedAt: now.Add(-72 * time.Hour)},
				{ID: m.id("history"), Description: "Свёрстан первый экран (a1b2c3d)", CreatedAt: now.Add(-24 * time.Hour)},
			},
			CreatedAt: now.Add(-72 * time.Hour),
		},
		models.Project{
			ID:          m.id("projects"),
			ClientName:  "Пётр Иванов",
			Telegram:    "@pivanov",
			Type:        models.TypeBot,
			Description: "Телеграм-бот записи на стрижку",
			Status:      models.StatusPending,
			User:        &client,
			History: []models.ProjectHistory{
				{ID: m.id("history"), Description: "Заявка создана", CreatedAt: now.Add(-2 * time.Hour)},
			},
			CreatedAt: now.Add(-2 * time.Hour),
		},
	)

	m.reviews = append(m.reviews, models.Review{
		ID:             m.id("reviews"),
		Body:           "Сайт сделан быстро и аккуратно, рекомендую.",
		Rating:         5,
		ServiceQuality: models.QualityExcellent,
		User:           &client,
		Username:       client.Name,
		CreatedAt:      now.Add(-48 * time.Hour),
	})

	m.notify(client.ID, "Добро пожаловать в личный кабинет!")
}
