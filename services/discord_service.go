package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"forge/logging"
	"forge/models"
)

const (
	colorRed   = 15158332
	colorGreen = 3066993
)

type DiscordBotService struct {
	session   *discordgo.Session
	channelID string
	botID     string
	enabled   bool
	log       *zerolog.Logger

	rates func(context.Context) *models.ExchangeRates
}

// NewDiscordBotService returns a disabled service when token or channel is
// missing, so callers never need a nil check.
func NewDiscordBotService(token string, channelID string) (*DiscordBotService, error) {
	logger := logging.GetSubsystemLogger("discord")

	if token == "" || channelID == "" {
		logger.Info().Msg("Discord token or channel not provided, notifications disabled")
		return &DiscordBotService{enabled: false, log: logger}, nil
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	user, err := session.User("@me")
	if err != nil {
		return nil, fmt.Errorf("failed to get bot user: %w", err)
	}

	botService := &DiscordBotService{
		session:   session,
		channelID: channelID,
		botID:     user.ID,
		enabled:   true,
		log:       logger,
	}

	session.AddHandler(botService.messageHandler)

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open Discord connection: %w", err)
	}

	logger.Info().Str("bot_id", user.ID).Str("channel", channelID).Msg("Discord bot connected")
	return botService, nil
}

// SetRatesProvider wires the !forge rates command.
func (d *DiscordBotService) SetRatesProvider(provider func(context.Context) *models.ExchangeRates) {
	d.rates = provider
}

func (d *DiscordBotService) Enabled() bool {
	return d != nil && d.enabled
}

func (d *DiscordBotService) Close() {
	if d.Enabled() && d.session != nil {
		d.log.Info().Msg("closing Discord bot connection")
		d.session.Close()
	}
}

func (d *DiscordBotService) messageHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == d.botID || m.ChannelID != d.channelID {
		return
	}

	reply := d.handleCommand(m.Content)
	if reply == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		d.log.Warn().Err(err).Msg("failed to reply to command")
	}
}

// handleCommand returns the reply to a "!forge" command, or "" when the
// message is not one.
func (d *DiscordBotService) handleCommand(content string) string {
	args := strings.Fields(content)
	if len(args) < 2 || args[0] != "!forge" {
		return ""
	}

	switch args[1] {
	case "ping":
		return "🏓 Pong! Forge API bot is online!"
	case "help":
		return "**Forge API Bot Commands:**\n" +
			"`!forge ping` - Check if bot is online\n" +
			"`!forge help` - Show this help message\n" +
			"`!forge rates` - Show current exchange rates"
	case "rates":
		if d.rates == nil {
			return "Exchange rates are not available from this bot."
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return formatRates(d.rates(ctx))
	default:
		return fmt.Sprintf("Unknown command: `%s`. Try `!forge help`", args[1])
	}
}

func formatRates(rates *models.ExchangeRates) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Exchange rates** (base %s, source `%s`)\n", rates.Base, rates.Source)
	for _, c := range TrackedCurrencies() {
		if r, ok := rates.Rates[c]; ok {
			fmt.Fprintf(&sb, "`%s` %.4f\n", c, r)
		}
	}
	if !rates.Success {
		sb.WriteString("⚠️ Serving static fallback rates")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// SendRatesFallbackAlert implements RatesAlerter.
func (d *DiscordBotService) SendRatesFallbackAlert(reason error) error {
	return d.sendEmbed(ratesFallbackEmbed(reason, time.Now()))
}

// SendRatesRecoveredAlert implements RatesAlerter.
func (d *DiscordBotService) SendRatesRecoveredAlert(rates *models.ExchangeRates) error {
	return d.sendEmbed(ratesRecoveredEmbed(rates, time.Now()))
}

func (d *DiscordBotService) sendEmbed(embed *discordgo.MessageEmbed) error {
	if !d.Enabled() {
		return ErrDiscordDisabled
	}

	if _, err := d.session.ChannelMessageSendEmbed(d.channelID, embed); err != nil {
		return fmt.Errorf("failed to send Discord message: %w", err)
	}

	d.log.Info().Str("title", embed.Title).Msg("alert sent to Discord")
	return nil
}

func ratesFallbackEmbed(reason error, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🚨 Exchange rates: serving fallback",
		Description: "The upstream exchange-rate API failed. Static fallback rates are being served until it recovers.",
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Reason",
				Value:  reason.Error(),
				Inline: false,
			},
			{
				Name:   "Triggered At",
				Value:  now.Format("2006-01-02 15:04:05 MST"),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: SourceFallback,
		},
		Timestamp: now.Format(time.RFC3339),
	}
}

func ratesRecoveredEmbed(rates *models.ExchangeRates, now time.Time) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(rates.Rates))
	for _, c := range TrackedCurrencies() {
		if r, ok := rates.Rates[c]; ok && c != rates.Base {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:   string(c),
				Value:  fmt.Sprintf("%.4f", r),
				Inline: true,
			})
		}
	}

	return &discordgo.MessageEmbed{
		Title:       "✅ Exchange rates recovered",
		Description: fmt.Sprintf("Live rates from %s are being served again.", rates.Source),
		Color:       colorGreen,
		Fields:      fields,
		Timestamp:   now.Format(time.RFC3339),
	}
}

// SendMessage sends a plain text message to the channel
func (d *DiscordBotService) SendMessage(message string) error {
	if !d.Enabled() {
		return ErrDiscordDisabled
	}

	if _, err := d.session.ChannelMessageSend(d.channelID, message); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
