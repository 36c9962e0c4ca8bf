package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Responder provides an abstraction for responding to Discord interactions.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Respond sends a response to an interaction. After Defer, the response
	// replaces the deferred "thinking" message instead.
	Respond(response *discordgo.InteractionResponse) error

	// Defer acknowledges the interaction so that a slow handler can respond
	// after Discord's three second deadline.
	Defer(ephemeral bool) error
}

// DiscordResponder implements Responder using a live Discord session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu       sync.Mutex
	deferred bool
}

// NewDiscordResponder creates a new DiscordResponder.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Respond sends a response to the interaction via Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	r.mu.Lock()
	deferred := r.deferred
	r.mu.Unlock()

	if !deferred {
		return r.session.InteractionRespond(r.interaction, response)
	}

	_, err := r.session.InteractionResponseEdit(r.interaction, webhookEdit(response.Data))
	return err
}

// Defer sends a deferred response of the type matching the interaction.
func (r *DiscordResponder) Defer(ephemeral bool) error {
	responseType := discordgo.InteractionResponseDeferredChannelMessageWithSource
	if r.interaction.Type == discordgo.InteractionMessageComponent {
		responseType = discordgo.InteractionResponseDeferredMessageUpdate
	}

	var data *discordgo.InteractionResponseData
	if ephemeral {
		data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}

	if err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: responseType,
		Data: data,
	}); err != nil {
		return err
	}

	r.mu.Lock()
	r.deferred = true
	r.mu.Unlock()
	return nil
}

// webhookEdit converts response data into an edit of the original response.
func webhookEdit(data *discordgo.InteractionResponseData) *discordgo.WebhookEdit {
	edit := &discordgo.WebhookEdit{}
	if data == nil {
		return edit
	}

	content := data.Content
	embeds := data.Embeds
	components := data.Components
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	if components == nil {
		components = []discordgo.MessageComponent{}
	}

	edit.Content = &content
	edit.Embeds = &embeds
	edit.Components = &components
	return edit
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	Responses    []*discordgo.InteractionResponse
	Deferred     bool
	Ephemeral    bool
	Err          error
}

// Respond records the response for testing.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	m.Responses = append(m.Responses, response)
	return m.Err
}

// Defer records that the interaction was deferred.
func (m *MockResponder) Defer(ephemeral bool) error {
	m.Deferred = true
	m.Ephemeral = ephemeral
	return m.Err
}
