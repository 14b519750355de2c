package discord

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"Cadence/commands"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	sent      []*discordgo.MessageSend
	edits     []*discordgo.MessageEdit
	deleted   []string
	responses []*discordgo.InteractionResponse
	fileBody  string
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.sent = append(f.sent, data)
	if len(data.Files) > 0 {
		body := make([]byte, 16)
		n, _ := data.Files[0].Reader.Read(body)
		f.fileBody = string(body[:n])
	}
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID}, nil
}

func (f *fakeSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.deleted = append(f.deleted, channelID+"/"+messageID)
	return nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return nil
}

func TestReply(t *testing.T) {
	s := &fakeSession{}
	m := NewMessenger(s)

	ref, err := m.Reply(context.Background(), "c1", "u1", "**hi**", commands.Keyboard{
		{{Text: "Audio", Data: "download_audio_x"}, {Text: "Support", URL: "https://example.com"}},
	})
	require.NoError(t, err)
	assert.Equal(t, commands.MessageRef{ChatID: "c1", MessageID: "m1"}, ref)

	require.Len(t, s.sent, 1)
	send := s.sent[0]
	assert.Equal(t, "**hi**", send.Content)
	assert.Equal(t, &discordgo.MessageReference{ChannelID: "c1", MessageID: "u1"}, send.Reference)

	require.Len(t, send.Components, 1)
	row, ok := send.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 2)
	assert.Equal(t, discordgo.Button{Label: "Audio", Style: discordgo.PrimaryButton, CustomID: "download_audio_x"}, row.Components[0])
	assert.Equal(t, discordgo.Button{Label: "Support", Style: discordgo.LinkButton, URL: "https://example.com"}, row.Components[1])
}

func TestEditClearsButtons(t *testing.T) {
	s := &fakeSession{}
	m := NewMessenger(s)

	require.NoError(t, m.Edit(context.Background(), commands.MessageRef{ChatID: "c1", MessageID: "m9"}, "done", nil))
	require.Len(t, s.edits, 1)
	edit := s.edits[0]
	assert.Equal(t, "c1", edit.Channel)
	assert.Equal(t, "m9", edit.ID)
	require.NotNil(t, edit.Content)
	assert.Equal(t, "done", *edit.Content)
	require.NotNil(t, edit.Components)
	assert.Empty(t, *edit.Components)
}

func TestDelete(t *testing.T) {
	s := &fakeSession{}
	require.NoError(t, NewMessenger(s).Delete(context.Background(), commands.MessageRef{ChatID: "c1", MessageID: "m9"}))
	assert.Equal(t, []string{"c1/m9"}, s.deleted)
}

func TestAnswerCallback(t *testing.T) {
	s := &fakeSession{}
	m := NewMessenger(s)
	m.track(&discordgo.Interaction{ID: "i1"})

	require.NoError(t, m.AnswerCallback(context.Background(), "i1", "Downloading..."))
	require.Len(t, s.responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, s.responses[0].Type)

	assert.Error(t, m.AnswerCallback(context.Background(), "i1", ""))
}

func TestSendAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc.m4a")
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o644))

	s := &fakeSession{}
	m := NewMessenger(s)
	require.NoError(t, m.SendAudio(context.Background(), "c1", "", commands.Media{Path: path, Caption: "🎵 **Song**"}))

	require.Len(t, s.sent, 1)
	assert.Nil(t, s.sent[0].Reference)
	assert.Equal(t, "🎵 **Song**", s.sent[0].Content)
	require.Len(t, s.sent[0].Files, 1)
	assert.Equal(t, "abc.m4a", s.sent[0].Files[0].Name)
	assert.Equal(t, "audio", s.fileBody)

	assert.Error(t, m.SendVideo(context.Background(), "c1", "", commands.Media{Path: filepath.Join(t.TempDir(), "missing.mp4")}))
}

func TestCallbackLimit(t *testing.T) {
	assert.Equal(t, 100, NewMessenger(&fakeSession{}).CallbackLimit())
}

func newMessage(authorID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: "ada"},
	}}
}

func TestMessageEvent(t *testing.T) {
	ev, hint := messageEvent("bot", "!", newMessage("u1", "!play never gonna"))
	assert.False(t, hint)
	assert.Equal(t, commands.Event{ChatID: "c1", MessageID: "m1", UserID: "u1", UserName: "ada", Text: "/play never gonna"}, ev)

	ev, _ = messageEvent("bot", "!", newMessage("u1", "https://youtu.be/dQw4w9WgXcQ"))
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", ev.Text)

	_, hint = messageEvent("bot", "!", newMessage("u1", "! what"))
	assert.True(t, hint)

	ev, hint = messageEvent("bot", "!", newMessage("bot", "!play"))
	assert.False(t, hint)
	assert.Empty(t, ev.Text)
}

func TestMessageEvent_ReplyText(t *testing.T) {
	m := newMessage("u1", "/play")
	m.ReferencedMessage = &discordgo.Message{Content: "never gonna"}
	m.Author.GlobalName = "Ada L"

	ev, _ := messageEvent("bot", "/", m)
	assert.Equal(t, "/play", ev.Text)
	assert.Equal(t, "never gonna", ev.ReplyText)
	assert.Equal(t, "Ada L", ev.UserName)
}

func TestComponentEvent(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "i1",
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "c1",
		Message:   &discordgo.Message{ID: "m5"},
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "ada"}},
		Data:      discordgo.MessageComponentInteractionData{CustomID: "download_video_x"},
	}}

	ev, ok := componentEvent(i)
	require.True(t, ok)
	assert.Equal(t, commands.Event{
		ChatID:       "c1",
		MessageID:    "m5",
		UserID:       "u1",
		UserName:     "ada",
		CallbackID:   "i1",
		CallbackData: "download_video_x",
	}, ev)

	i.Message = nil
	_, ok = componentEvent(i)
	assert.False(t, ok)
}
