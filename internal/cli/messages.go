package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raphaelgruber/estatehub/internal/metrics"
	"github.com/raphaelgruber/estatehub/internal/models"
	"github.com/spf13/cobra"
)

var messagesCmd = &cobra.Command{
	Use:     "messages",
	Aliases: []string{"msg"},
	Short:   "Conversations with buyers and listing owners",
	Long: `Read and send direct messages about listings.

Subcommands:
  conversations  List your conversations (default)
  show           Show a conversation and mark it read
  send           Send a message

Examples:
  estatehub messages
  estatehub messages show prop1_user2
  estatehub messages send prop3 "Is the garden south-facing?"
  estatehub messages send prop1_user2 "Saturday works for me"`,
	Args: cobra.NoArgs,
	RunE: runConversations,
}

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List your conversations",
	Args:  cobra.NoArgs,
	RunE:  runConversations,
}

var messagesShowCmd = &cobra.Command{
	Use:   "show <chat-id>",
	Short: "Show a conversation and mark it read",
	Args:  cobra.ExactArgs(1),
	RunE:  runMessagesShow,
}

var messagesSendCmd = &cobra.Command{
	Use:   "send <property-id|chat-id> <text>",
	Short: "Send a message",
	Long: `Send a message. Pass a property id to contact its owner, or a chat id
to reply in an existing conversation.`,
	Args: cobra.ExactArgs(2),
	RunE: runMessagesSend,
}

func init() {
	messagesCmd.AddCommand(conversationsCmd)
	messagesCmd.AddCommand(messagesShowCmd)
	messagesCmd.AddCommand(messagesSendCmd)
}

func runConversations(cmd *cobra.Command, args []string) error {
	user, err := requireSession()
	if err != nil {
		return err
	}

	var convs []models.Conversation
	err = withProgress(cmd.Context(), "Loading conversations", svc.Latency().Delay(metrics.OpListConversations), func(ctx context.Context) error {
		var err error
		convs, err = svc.ListConversations(ctx, user.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}

	renderConversations(cmd.OutOrStdout(), convs, time.Now())
	return nil
}

func runMessagesShow(cmd *cobra.Command, args []string) error {
	user, err := requireSession()
	if err != nil {
		return err
	}
	chatID := args[0]

	var msgs []models.Message
	err = withProgress(cmd.Context(), "Loading messages", svc.Latency().Delay(metrics.OpListMessages), func(ctx context.Context) error {
		var err error
		msgs, err = svc.ListMessages(ctx, chatID)
		return err
	})
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	for _, m := range msgs {
		appState.AddMessage(chatID, m)
	}

	shown := appState.Messages(chatID)
	renderMessages(cmd.OutOrStdout(), shown, user.ID, time.Now())

	if len(msgs) > 0 && len(shown) > 0 {
		lastShown := shown[len(shown)-1].ID
		if err := svc.MarkConversationRead(cmd.Context(), user.ID, chatID, lastShown); err != nil {
			logger.Warn("failed to mark conversation read", "chat_id", chatID, "error", err)
		}
	}
	return nil
}

func runMessagesSend(cmd *cobra.Command, args []string) error {
	user, err := requireSession()
	if err != nil {
		return err
	}
	target, text := args[0], args[1]

	chatID := target
	if !strings.Contains(target, "_") {
		chatID = models.ChatID(target, user.ID)
	}
	receiverID, err := chatPartner(cmd.Context(), chatID, user.ID)
	if err != nil {
		return err
	}
	if receiverID == user.ID {
		return fmt.Errorf("you cannot message yourself about your own listing")
	}

	var msg *models.Message
	err = withProgress(cmd.Context(), "Sending", svc.Latency().Delay(metrics.OpSendMessage), func(ctx context.Context) error {
		var err error
		msg, err = svc.SendMessage(ctx, chatID, text, user.ID, user.Name, receiverID)
		return err
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	appState.AddMessage(chatID, *msg)
	msgs := appState.Messages(chatID)
	renderMessages(cmd.OutOrStdout(), msgs[len(msgs)-1:], user.ID, time.Now())
	fmt.Fprintln(cmd.OutOrStdout(), defaultTheme.hintStyle().Render("chat "+chatID))
	return nil
}

// chatPartner works out who receives a message from senderID in chatID. A
// chat id names the property and the user who opened the conversation; the
// other side is the property owner.
func chatPartner(ctx context.Context, chatID, senderID string) (string, error) {
	propertyID, ok := models.PropertyIDFromChatID(chatID)
	if !ok {
		return "", fmt.Errorf("invalid chat id %q", chatID)
	}
	_, openerID, _ := strings.Cut(chatID, "_")
	if openerID != senderID {
		return openerID, nil
	}

	property, err := svc.GetProperty(ctx, propertyID)
	if err != nil {
		return "", fmt.Errorf("resolve listing owner: %w", err)
	}
	return property.OwnerID, nil
}
