package telegram

import (
	"context"
	"errors"
	"testing"

	"Cadence/commands"
	"Cadence/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	err       error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: 77}, f.err
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: f.err == nil}, f.err
}

func TestRender(t *testing.T) {
	assert.Equal(t, "<b>Search Results for:</b> <code>a &lt;b&gt; &amp; c</code>",
		render("**Search Results for:** `a <b> & c`"))
	assert.Equal(t, "plain * text", render("plain * text"))
	assert.Equal(t, "<code>a**b \\_</code> <b>c</b>", render("`a**b \\_` **c**"))
}

func TestRender_EscapedTitles(t *testing.T) {
	assert.Equal(t,
		"1. <b>Don`t Stop</b>\n   📺 A\n\n2. <b>Rock`n *Roll*</b>\n",
		render("1. **Don\\`t Stop**\n   📺 A\n\n2. **Rock\\`n \\*Roll\\***\n"))
	assert.Equal(t, "a \\ b", render("a \\ b"))
}

func TestRender_AlwaysNests(t *testing.T) {
	out := render("1. **Don`t Stop**\n   📺 A\n\n2. **Rock`n Roll**\n")
	assert.Equal(t, "1. <b>Don<code>t Stop**\n   📺 A\n\n2. **Rock</code>n Roll</b>\n", out)

	assert.Equal(t, "<b>open <code>tick</code></b>", render("**open `tick"))
}

func TestReply(t *testing.T) {
	api := &fakeAPI{}
	m := NewMessenger(api)

	ref, err := m.Reply(context.Background(), "-1001", "12", "**hi**", commands.Keyboard{
		{{Text: "Audio", Data: "download_audio_x"}},
		{{Text: "Support", URL: "https://t.me/support"}},
	})
	require.NoError(t, err)
	assert.Equal(t, commands.MessageRef{ChatID: "-1001", MessageID: "77"}, ref)

	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(-1001), msg.ChatID)
	assert.Equal(t, 12, msg.ReplyToMessageID)
	assert.Equal(t, "<b>hi</b>", msg.Text)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)

	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	require.NotNil(t, markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "download_audio_x", *markup.InlineKeyboard[0][0].CallbackData)
	require.NotNil(t, markup.InlineKeyboard[1][0].URL)
	assert.Equal(t, "https://t.me/support", *markup.InlineKeyboard[1][0].URL)
}

func TestReply_InvalidChat(t *testing.T) {
	m := NewMessenger(&fakeAPI{})
	_, err := m.Reply(context.Background(), "general", "", "hi", nil)
	assert.Error(t, err)
}

func TestEditDeleteAnswer(t *testing.T) {
	api := &fakeAPI{}
	m := NewMessenger(api)
	ref := commands.MessageRef{ChatID: "5", MessageID: "9"}

	require.NoError(t, m.Edit(context.Background(), ref, "📤 **Uploading audio...**", nil))
	edit, ok := api.sent[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 9, edit.MessageID)
	assert.Equal(t, "📤 <b>Uploading audio...</b>", edit.Text)
	assert.Nil(t, edit.ReplyMarkup)

	require.NoError(t, m.Delete(context.Background(), ref))
	del, ok := api.requested[0].(tgbotapi.DeleteMessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(5), del.ChatID)
	assert.Equal(t, 9, del.MessageID)

	require.NoError(t, m.AnswerCallback(context.Background(), "cb1", "Downloading..."))
	answer, ok := api.requested[1].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb1", answer.CallbackQueryID)
	assert.Equal(t, "Downloading...", answer.Text)
}

func TestSendMedia(t *testing.T) {
	api := &fakeAPI{}
	m := NewMessenger(api)
	media := commands.Media{Path: "cache/abc.m4a", Title: "Song", Caption: "🎵 **Song**", Duration: 213}

	require.NoError(t, m.SendAudio(context.Background(), "5", "3", media))
	audio, ok := api.sent[0].(tgbotapi.AudioConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.FilePath("cache/abc.m4a"), audio.File)
	assert.Equal(t, "Song", audio.Title)
	assert.Equal(t, 213, audio.Duration)
	assert.Equal(t, "🎵 <b>Song</b>", audio.Caption)
	assert.Equal(t, 3, audio.ReplyToMessageID)

	require.NoError(t, m.SendVideo(context.Background(), "5", "3", media))
	video, ok := api.sent[1].(tgbotapi.VideoConfig)
	require.True(t, ok)
	assert.True(t, video.SupportsStreaming)
	assert.Equal(t, 213, video.Duration)
}

func TestSendErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	m := NewMessenger(&fakeAPI{err: boom})
	assert.ErrorIs(t, m.SendAudio(context.Background(), "5", "", commands.Media{Path: "x"}), boom)
	assert.ErrorIs(t, m.Delete(context.Background(), commands.MessageRef{ChatID: "5", MessageID: "1"}), boom)
}

func TestCallbackLimit(t *testing.T) {
	assert.Equal(t, 64, NewMessenger(&fakeAPI{}).CallbackLimit())
}

func TestTranslate_Message(t *testing.T) {
	ev, ok := translate(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 10,
		Chat:      &tgbotapi.Chat{ID: -42},
		From:      &tgbotapi.User{ID: 7, FirstName: "Ada"},
		Text:      "/play",
		ReplyToMessage: &tgbotapi.Message{
			Caption: "never gonna",
		},
	}})
	require.True(t, ok)
	assert.Equal(t, commands.Event{
		ChatID:    "-42",
		MessageID: "10",
		UserID:    "7",
		UserName:  "Ada",
		Text:      "/play",
		ReplyText: "never gonna",
	}, ev)
}

func TestTranslate_Callback(t *testing.T) {
	ev, ok := translate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 7, FirstName: "Ada"},
		Message: &tgbotapi.Message{MessageID: 3, Chat: &tgbotapi.Chat{ID: 1}},
		Data:    "download_audio_x",
	}})
	require.True(t, ok)
	assert.True(t, ev.IsCallback())
	assert.Equal(t, "3", ev.MessageID)
	assert.Equal(t, "download_audio_x", ev.CallbackData)
}

func TestTranslate_Skips(t *testing.T) {
	_, ok := translate(tgbotapi.Update{})
	assert.False(t, ok)

	_, ok = translate(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 1},
		From: &tgbotapi.User{ID: 2, IsBot: true},
		Text: "/play",
	}})
	assert.False(t, ok)

	_, ok = translate(tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 1},
		From: &tgbotapi.User{ID: 2},
	}})
	assert.False(t, ok)
}

func TestBotToken(t *testing.T) {
	token, err := BotToken(config.AuthBot, "123:abc", "123:abc")
	require.NoError(t, err)
	assert.Equal(t, "123:abc", token)

	token, err = BotToken(config.AuthSession, "session", "123:abc")
	require.NoError(t, err)
	assert.Equal(t, "123:abc", token)

	_, err = BotToken(config.AuthSession, "session", "")
	assert.ErrorIs(t, err, ErrSessionUnsupported)

	_, err = BotToken(config.AuthNone, "", "")
	assert.ErrorIs(t, err, ErrNoCredentials)
}
