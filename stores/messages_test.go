package stores_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/egor/portfolioclient/models"
)

func TestLoadAdmins(t *testing.T) {
	e := newEnv(t)
	client := e.loginAs(clientEmail)

	client.Messages.LoadAdmins(context.Background())

	admins := client.Messages.Admins()
	require.NotEmpty(t, admins)
	for _, a := range admins {
		require.Contains(t, []string{models.RoleAdmin, models.RoleModerator}, a.Role)
	}
}

func TestSendFirstMessageRefetchesConversations(t *testing.T) {
	e := newEnv(t)
	client := e.loginAs(clientEmail)
	ctx := context.Background()

	client.Messages.LoadConversations(ctx)
	require.Empty(t, client.Messages.Conversations())

	client.Messages.LoadAdmins(ctx)
	admin := client.Messages.Admins()[0]

	require.True(t, client.Messages.Send(ctx, admin.ID, "Здравствуйте! Вопрос по заявке."))

	convs := client.Messages.Conversations()
	require.Len(t, convs, 1, "первое сообщение создаёт переписку через перечитывание списка")
	require.Equal(t, admin.ID, convs[0].User.ID)
	require.NotNil(t, convs[0].LastMessage)
	require.Equal(t, "Здравствуйте! Вопрос по заявке.", convs[0].LastMessage.Content)
}

func TestOpenConversationZeroesOnlyThatCounter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.loginAs(adminEmail)
	moderator := e.loginAs(moderatorEmail)
	client := e.loginAs(clientEmail)

	clientID := client.Session.User().ID
	require.True(t, admin.Messages.Send(ctx, clientID, "от админа"))
	require.True(t, moderator.Messages.Send(ctx, clientID, "от модератора"))

	client.Messages.LoadConversations(ctx)
	require.Len(t, client.Messages.Conversations(), 2)
	require.Equal(t, 2, client.Messages.UnreadTotal())

	adminUser := admin.Session.User()
	client.Messages.OpenConversation(ctx, adminUser)

	require.Equal(t, 1, client.Messages.UnreadTotal(), "обнуляется только открытая переписка")
	for _, c := range client.Messages.Conversations() {
		if c.User.ID == adminUser.ID {
			require.Zero(t, c.UnreadCount)
		} else {
			require.Equal(t, 1, c.UnreadCount)
		}
	}
	require.Len(t, client.Messages.CurrentMessages(), 1)
}

func TestOpenConversationNilClearsBuffer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.loginAs(adminEmail)
	client := e.loginAs(clientEmail)
	require.True(t, admin.Messages.Send(ctx, client.Session.User().ID, "привет"))

	client.Messages.LoadConversations(ctx)
	client.Messages.OpenConversation(ctx, admin.Session.User())
	require.NotEmpty(t, client.Messages.CurrentMessages())

	client.Messages.OpenConversation(ctx, nil)
	require.Nil(t, client.Messages.CurrentChatUser())
	require.Empty(t, client.Messages.CurrentMessages())
}

func TestSendAppendsToOpenConversation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.loginAs(adminEmail)
	client := e.loginAs(clientEmail)
	clientID := client.Session.User().ID
	require.True(t, admin.Messages.Send(ctx, clientID, "первое"))

	client.Messages.LoadConversations(ctx)
	client.Messages.OpenConversation(ctx, admin.Session.User())
	before := len(client.Messages.CurrentMessages())

	require.True(t, client.Messages.Send(ctx, admin.Session.User().ID, "ответ"))

	msgs := client.Messages.CurrentMessages()
	require.Len(t, msgs, before+1)
	require.Equal(t, "ответ", msgs[len(msgs)-1].Content)

	for _, c := range client.Messages.Conversations() {
		if c.User.ID == admin.Session.User().ID {
			require.Equal(t, "ответ", c.LastMessage.Content)
		}
	}
}

func TestApplyIncomingFromOpenPeer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.loginAs(adminEmail)
	client := e.loginAs(clientEmail)
	adminUser := admin.Session.User()
	require.True(t, admin.Messages.Send(ctx, client.Session.User().ID, "начало"))

	client.Messages.LoadConversations(ctx)
	client.Messages.OpenConversation(ctx, adminUser)

	client.Messages.ApplyIncoming(models.ChatMessage{
		ID: 9001, Content: "живое сообщение", SenderID: adminUser.ID,
		ReceiverID: client.Session.User().ID,
	})

	msgs := client.Messages.CurrentMessages()
	require.Equal(t, "живое сообщение", msgs[len(msgs)-1].Content)
	require.True(t, msgs[len(msgs)-1].IsRead, "сообщение в открытой переписке сразу прочитано")
	require.Zero(t, client.Messages.UnreadTotal())
}

func TestApplyIncomingFromKnownPeerBumpsCounter(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.loginAs(adminEmail)
	client := e.loginAs(clientEmail)
	adminUser := admin.Session.User()
	require.True(t, admin.Messages.Send(ctx, client.Session.User().ID, "начало"))

	client.Messages.LoadConversations(ctx)
	client.Messages.OpenConversation(ctx, adminUser)
	client.Messages.OpenConversation(ctx, nil) // переписка закрыта

	client.Messages.ApplyIncoming(models.ChatMessage{
		ID: 9002, Content: "пока вы отошли", SenderID: adminUser.ID,
		ReceiverID: client.Session.User().ID,
	})

	require.Equal(t, 1, client.Messages.UnreadTotal())
	require.Empty(t, client.Messages.CurrentMessages(), "закрытый буфер не пополняется")
	for _, c := range client.Messages.Conversations() {
		if c.User.ID == adminUser.ID {
			require.Equal(t, "пока вы отошли", c.LastMessage.Content)
		}
	}
}

func TestApplyIncomingFromStrangerSetsNeedsRefresh(t *testing.T) {
	e := newEnv(t)
	client := e.loginAs(clientEmail)
	ctx := context.Background()

	client.Messages.LoadConversations(ctx)
	require.False(t, client.Messages.NeedsRefresh())

	client.Messages.ApplyIncoming(models.ChatMessage{
		ID: 9003, Content: "кто это?", SenderID: 777,
		ReceiverID: client.Session.User().ID,
	})

	require.True(t, client.Messages.NeedsRefresh())

	// перечитывание списка сбрасывает флаг
	client.Messages.LoadConversations(ctx)
	require.False(t, client.Messages.NeedsRefresh())
}

func TestSendFailureLeavesBufferUntouched(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin := e.loginAs(adminEmail)
	client := e.loginAs(clientEmail)
	require.True(t, admin.Messages.Send(ctx, client.Session.User().ID, "начало"))

	client.Messages.LoadConversations(ctx)
	client.Messages.OpenConversation(ctx, admin.Session.User())
	before := client.Messages.CurrentMessages()

	e.stub.ForceFailure(500)
	defer e.stub.ForceFailure(0)

	require.False(t, client.Messages.Send(ctx, admin.Session.User().ID, "не дойдёт"))
	require.Equal(t, "Не удалось отправить сообщение", client.Messages.Err())
	require.Equal(t, before, client.Messages.CurrentMessages())
}
