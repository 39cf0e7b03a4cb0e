package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/egor/portfolioclient/api"
	"github.com/egor/portfolioclient/config"
	"github.com/egor/portfolioclient/live"
	"github.com/egor/portfolioclient/models"
	"github.com/egor/portfolioclient/storage"
	"github.com/egor/portfolioclient/stores"
	"github.com/egor/portfolioclient/stub"
)

// app — собранное приложение: конфигурация, клиент API и реестр сторов.
type app struct {
	cfg    *config.Config
	keeper *storage.File
	stores *stores.Registry
}

func newApp() *app {
	cfg := config.Load()
	keeper := storage.NewFile(cfg.TokenFile)
	client := api.NewClient(cfg.APIBaseURL, cfg.Timeout, keeper)
	return &app{
		cfg:    cfg,
		keeper: keeper,
		stores: stores.New(client, keeper),
	}
}

// requireAuth восстанавливает сессию из сохранённого токена.
func (a *app) requireAuth(ctx context.Context) error {
	a.stores.Session.CheckAuth(ctx)
	if !a.stores.Session.IsAuthenticated() {
		return errors.New("требуется вход: portfolioclient login <email> <пароль>")
	}
	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "portfolioclient",
		Short:         "Клиент бэкенда портфолио",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newProjectsCmd(),
		newReviewsCmd(),
		newMessagesCmd(),
		newNotificationsCmd(),
		newAdminCmd(),
		newContactCmd(),
		newServeStubCmd(),
	)
	return root
}

// ─────────────────────────── сессия

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <пароль>",
		Short: "Вход в аккаунт",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if !a.stores.Session.Login(cmd.Context(), models.Credentials{Email: args[0], Password: args[1]}) {
				return errors.New(a.stores.Session.Err())
			}
			user := a.stores.Session.User()
			fmt.Printf("Вы вошли как %s (%s)\n", user.Email, user.Role)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выход из аккаунта",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			a.stores.Session.Logout(cmd.Context())
			fmt.Println("Вы вышли из аккаунта")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Текущий пользователь",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			user := a.stores.Session.User()
			fmt.Printf("%s %s <%s>, роль: %s\n", user.FirstName, user.LastName, user.Email, user.Role)
			return nil
		},
	}
}

// ─────────────────────────── проекты

func newProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Мои проекты",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Список моих проектов",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			a.stores.Projects.LoadMyProjects(cmd.Context())
			if msg := a.stores.Projects.Err(); msg != "" {
				return errors.New(msg)
			}
			for _, p := range a.stores.Projects.Projects() {
				fmt.Printf("#%d  %-12s %-12s %s\n", p.ID, p.Type, p.Status, p.Description)
			}
			return nil
		},
	}

	create := &cobra.Command{
		Use:   "create <тип> <описание>",
		Short: "Подать заявку на проект",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			user := a.stores.Session.User()
			ok := a.stores.Projects.CreateProject(cmd.Context(), models.CreateProjectRequest{
				Name:        user.FirstName + " " + user.LastName,
				Telegram:    user.Telegram,
				Type:        args[0],
				Description: args[1],
			})
			if !ok {
				return errors.New(a.stores.Projects.Err())
			}
			fmt.Println("Заявка создана")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status <id> <статус>",
		Short: "Сменить статус проекта (модератор)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("некорректный идентификатор %q", args[0])
			}
			if !a.stores.Projects.UpdateStatus(cmd.Context(), id, args[1]) {
				return errors.New(a.stores.Projects.Err())
			}
			fmt.Println("Статус обновлён")
			return nil
		},
	}

	cmd.AddCommand(list, create, status)
	return cmd
}

// ─────────────────────────── отзывы

func newReviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Отзывы",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Все отзывы",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			a.stores.Reviews.LoadReviews(cmd.Context())
			if msg := a.stores.Reviews.Err(); msg != "" {
				return errors.New(msg)
			}
			for _, r := range a.stores.Reviews.Reviews() {
				fmt.Printf("#%d  %d/5  %-10s %s — %s\n", r.ID, r.Rating, r.ServiceQuality, r.Username, r.Body)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <оценка 1-5> <текст>",
		Short: "Оставить отзыв",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			rating, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("некорректная оценка %q", args[0])
			}
			ok := a.stores.Reviews.CreateReview(cmd.Context(), models.CreateReviewRequest{
				Body:           args[1],
				Rating:         rating,
				ServiceQuality: models.QualityGood,
			})
			if !ok {
				return errors.New(a.stores.Reviews.Err())
			}
			fmt.Println("Отзыв отправлен")
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить отзыв (админ)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("некорректный идентификатор %q", args[0])
			}
			if !a.stores.Reviews.DeleteReview(cmd.Context(), id) {
				return errors.New(a.stores.Reviews.Err())
			}
			fmt.Println("Отзыв удалён")
			return nil
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

// ─────────────────────────── сообщения

func newMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Личные сообщения",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Список переписок",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			a.stores.Messages.LoadConversations(cmd.Context())
			if msg := a.stores.Messages.Err(); msg != "" {
				return errors.New(msg)
			}
			for _, conv := range a.stores.Messages.Conversations() {
				last := ""
				if conv.LastMessage != nil {
					last = conv.LastMessage.Content
				}
				fmt.Printf("#%d  %-20s непрочитано: %d  %s\n", conv.User.ID, conv.User.Name, conv.UnreadCount, last)
			}
			fmt.Printf("Всего непрочитано: %d\n", a.stores.Messages.UnreadTotal())
			return nil
		},
	}

	var listen bool
	open := &cobra.Command{
		Use:   "open <id собеседника>",
		Short: "Открыть переписку",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			peerID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("некорректный идентификатор %q", args[0])
			}

			a.stores.Messages.LoadConversations(cmd.Context())
			a.stores.Messages.OpenConversation(cmd.Context(), &models.User{ID: peerID})
			if msg := a.stores.Messages.Err(); msg != "" {
				return errors.New(msg)
			}
			printMessages(a.stores.Messages.CurrentMessages(), a.stores.Session.User().ID)

			if !listen {
				return nil
			}

			// живой режим: печатаем входящие до Ctrl+C
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			unsubscribe := a.stores.Messages.Subscribe(func() {
				msgs := a.stores.Messages.CurrentMessages()
				if len(msgs) > 0 {
					last := msgs[len(msgs)-1]
					fmt.Printf("  > %s\n", last.Content)
				}
			})
			defer unsubscribe()
			if err := live.Listen(ctx, a.cfg.WSBaseURL, a.keeper, a.stores.Messages); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	open.Flags().BoolVar(&listen, "listen", false, "слушать новые сообщения")

	send := &cobra.Command{
		Use:   "send <id получателя> <текст>",
		Short: "Отправить сообщение",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			receiverID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("некорректный идентификатор %q", args[0])
			}
			if !a.stores.Messages.Send(cmd.Context(), receiverID, args[1]) {
				return errors.New(a.stores.Messages.Err())
			}
			fmt.Println("Отправлено")
			return nil
		},
	}

	cmd.AddCommand(list, open, send)
	return cmd
}

func printMessages(msgs []models.ChatMessage, viewerID int) {
	for _, m := range msgs {
		prefix := "<"
		if m.SenderID == viewerID {
			prefix = ">"
		}
		fmt.Printf("%s %s  %s\n", prefix, m.CreatedAt.Format("02.01 15:04"), m.Content)
	}
}

// ─────────────────────────── уведомления

func newNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Уведомления",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Список уведомлений",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			a.stores.Notifications.Load(cmd.Context())
			if msg := a.stores.Notifications.Err(); msg != "" {
				return errors.New(msg)
			}
			for _, n := range a.stores.Notifications.Notifications() {
				mark := " "
				if !n.IsRead {
					mark = "*"
				}
				fmt.Printf("%s #%d  %s\n", mark, n.ID, n.Message)
			}
			return nil
		},
	}

	var all bool
	read := &cobra.Command{
		Use:   "read [id]",
		Short: "Отметить уведомление прочитанным",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			a.stores.Notifications.Load(cmd.Context())
			if all {
				if !a.stores.Notifications.MarkAllRead(cmd.Context()) {
					return errors.New(a.stores.Notifications.Err())
				}
				fmt.Println("Все уведомления прочитаны")
				return nil
			}
			if len(args) == 0 {
				return errors.New("укажите id уведомления или флаг --all")
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("некорректный идентификатор %q", args[0])
			}
			if !a.stores.Notifications.MarkRead(cmd.Context(), id) {
				return errors.New(a.stores.Notifications.Err())
			}
			fmt.Println("Готово")
			return nil
		},
	}
	read.Flags().BoolVar(&all, "all", false, "отметить все")

	cmd.AddCommand(list, read)
	return cmd
}

// ─────────────────────────── админка и контакты

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Панель администратора",
	}

	dashboard := &cobra.Command{
		Use:   "dashboard",
		Short: "Сводка",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			if err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}
			if !a.stores.Session.IsAdmin() {
				return errors.New("команда доступна только администратору")
			}
			a.stores.Admin.LoadDashboard(cmd.Context())
			if msg := a.stores.Admin.Err(); msg != "" {
				return errors.New(msg)
			}
			st := a.stores.Admin.Stats()
			fmt.Printf("Пользователей: %d\nПроектов: %d (ожидают %d, в работе %d, готово %d)\nОтзывов: %d\n",
				st.TotalUsers, st.TotalProjects, st.PendingProjects, st.InProgressProjects, st.CompletedProjects, st.TotalReviews)
			return nil
		},
	}

	cmd.AddCommand(dashboard)
	return cmd
}

func newContactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Форма обратной связи",
	}

	send := &cobra.Command{
		Use:   "send <имя> <telegram> <сообщение>",
		Short: "Отправить заявку на связь",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp()
			form := models.ContactForm{Name: args[0], Telegram: args[1], Message: args[2]}
			if !a.stores.Contact.Send(cmd.Context(), form) {
				return errors.New(a.stores.Contact.Err())
			}
			fmt.Println("Заявка отправлена")
			return nil
		},
	}

	cmd.AddCommand(send)
	return cmd
}

// ─────────────────────────── стаб

func newServeStubCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve-stub",
		Short: "Запустить локальный стаб бэкенда",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log.Printf("Учётные записи стаба: admin@portfolio.local / password")
			return stub.New().Run(cfg.StubAddr)
		},
	}
}
