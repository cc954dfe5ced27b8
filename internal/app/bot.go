package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agalitsyn/team-tasks-bot/internal/intake"
	"github.com/agalitsyn/team-tasks-bot/internal/model"
	"github.com/agalitsyn/team-tasks-bot/internal/notify"
	"github.com/agalitsyn/team-tasks-bot/version"
)

const (
	rolePrefix   = "role_"
	menuPrefix   = "menu_"
	donePrefix   = "done_"
	deletePrefix = "delete_"
)

// Conversation states for multi-step flows. A state is set by a menu action
// and consumed by the next text message from the same user.
type conversationState string

const (
	stateAwaitingTaskText conversationState = "adding_task"
	stateAwaitingMemberID conversationState = "adding_member"
)

type BotConfig struct {
	UpdateTimeout int
	MinIDDigits   int
}

type Bot struct {
	api *tgbotapi.BotAPI

	cfg      BotConfig
	parser   *intake.Parser
	tasks    model.TaskRepository
	roles    model.RoleRepository
	notifier *notify.Dispatcher

	mu     sync.Mutex
	states map[int64]conversationState
}

func NewBot(
	cfg BotConfig,
	token string,
	logger tgbotapi.BotLogger,
	tasks model.TaskRepository,
	roles model.RoleRepository,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	tgbotapi.SetLogger(logger)
	return &Bot{
		api:      bot,
		cfg:      cfg,
		parser:   intake.NewParser(cfg.MinIDDigits),
		tasks:    tasks,
		roles:    roles,
		notifier: notify.NewDispatcher(roles),
		states:   make(map[int64]conversationState),
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case update := <-updates:
			if update.CallbackQuery != nil {
				if err := b.handleCallbackQuery(ctx, update); err != nil {
					log.Printf("ERROR handling callback query: %s", err)
				}
				continue
			}

			if update.Message == nil { // ignore any non-Message updates
				continue
			}

			if update.Message.IsCommand() {
				if err := b.handleCommand(ctx, update); err != nil {
					log.Printf("ERROR handling command: %s", err)
				}
				continue
			}

			if err := b.handleText(ctx, update); err != nil {
				log.Printf("ERROR handling message: %s", err)
			}

		case <-ctx.Done():
			log.Printf("DEBUG stopped: %s", ctx.Err())
			return
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, update tgbotapi.Update) error {
	switch update.Message.Command() {
	case "start":
		return b.startCommand(update)
	case "menu":
		return b.sendMainMenu(ctx, update.Message.From.ID)
	case "status":
		return b.statusCommand(update)
	case "help":
		return b.startCommand(update)
	default:
		msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Unknown command. Use /start.")
		_, err := b.api.Send(msg)
		return err
	}
}

func (b *Bot) startCommand(update tgbotapi.Update) error {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Welcome! Please select your role:")
	msg.ReplyMarkup = roleKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) statusCommand(update tgbotapi.Update) error {
	statusText := fmt.Sprintf("🤖 *Bot status*\n\n✅ Running\n📊 Version: %s", version.String())
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, statusText)
	msg.ParseMode = "Markdown"
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleCallbackQuery(ctx context.Context, update tgbotapi.Update) error {
	callback := tgbotapi.NewCallback(update.CallbackQuery.ID, "")
	if _, err := b.api.Request(callback); err != nil {
		log.Printf("ERROR answering callback query: %s", err)
	}

	data := update.CallbackQuery.Data
	switch {
	case strings.HasPrefix(data, rolePrefix):
		return b.handleRoleCallback(ctx, update)
	case strings.HasPrefix(data, menuPrefix):
		return b.handleMenuCallback(ctx, update)
	case strings.HasPrefix(data, donePrefix):
		return b.handleDoneCallback(ctx, update)
	case strings.HasPrefix(data, deletePrefix):
		return b.handleDeleteCallback(ctx, update)
	default:
		return nil
	}
}

func (b *Bot) handleRoleCallback(ctx context.Context, update tgbotapi.Update) error {
	userID := update.CallbackQuery.From.ID
	role := model.UserRole(strings.TrimPrefix(update.CallbackQuery.Data, rolePrefix))
	if !role.Known() {
		return fmt.Errorf("unexpected role callback %q", update.CallbackQuery.Data)
	}

	if err := b.roles.SetRole(ctx, userID, role); err != nil {
		return fmt.Errorf("could not set role: %w", err)
	}
	log.Printf("DEBUG user id=%d picked role '%s'", userID, role)

	text := fmt.Sprintf("✅ Your role as %s has been saved.", cases.Title(language.English).String(string(role)))
	if err := b.editText(update.CallbackQuery.Message.Chat.ID, update.CallbackQuery.Message.MessageID, text); err != nil {
		return err
	}
	return b.sendMainMenu(ctx, userID)
}

func (b *Bot) sendMainMenu(ctx context.Context, userID int64) error {
	role, err := b.roles.RoleOf(ctx, userID)
	if err != nil {
		return fmt.Errorf("could not fetch role: %w", err)
	}
	if !role.Known() {
		msg := tgbotapi.NewMessage(userID, "Please use /start and select a role first.")
		_, err := b.api.Send(msg)
		return err
	}

	msg := tgbotapi.NewMessage(userID, "📋 Main Menu:")
	msg.ReplyMarkup = mainMenuKeyboard(role)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleMenuCallback(ctx context.Context, update tgbotapi.Update) error {
	userID := update.CallbackQuery.From.ID
	chatID := update.CallbackQuery.Message.Chat.ID

	action := strings.TrimPrefix(update.CallbackQuery.Data, menuPrefix)
	switch action {
	case "add_task":
		if !b.isAdmin(ctx, userID) {
			return b.sendPermissionDenied(chatID)
		}
		b.setState(userID, stateAwaitingTaskText)
		text := "Please enter the task details. The bot will extract the user ID and deadline.\n\n" +
			"Examples:\n- New project for 123456789 by 15/12/2025: finish the report.\n" +
			"- Prepare the presentation for 987654321 by tomorrow."
		msg := tgbotapi.NewMessage(chatID, text)
		_, err := b.api.Send(msg)
		return err

	case "add_member":
		if !b.isAdmin(ctx, userID) {
			return b.sendPermissionDenied(chatID)
		}
		b.setState(userID, stateAwaitingMemberID)
		msg := tgbotapi.NewMessage(chatID, "Please enter the numeric ID of the new member:")
		_, err := b.api.Send(msg)
		return err

	case "report":
		if !b.isAdmin(ctx, userID) {
			return b.sendPermissionDenied(chatID)
		}
		tasks, err := b.tasks.FetchAllTasks(ctx)
		if err != nil {
			return fmt.Errorf("could not fetch tasks: %w", err)
		}
		if len(tasks) == 0 {
			msg := tgbotapi.NewMessage(chatID, "📭 No tasks have been created yet.")
			_, err := b.api.Send(msg)
			return err
		}
		msg := tgbotapi.NewMessage(chatID, formatTaskReport(tasks, time.Now()))
		_, err = b.api.Send(msg)
		return err

	case "delete_task":
		if !b.isAdmin(ctx, userID) {
			return b.sendPermissionDenied(chatID)
		}
		tasks, err := b.tasks.FetchAllTasks(ctx)
		if err != nil {
			return fmt.Errorf("could not fetch tasks: %w", err)
		}
		if len(tasks) == 0 {
			msg := tgbotapi.NewMessage(chatID, "📭 There are no tasks to delete.")
			_, err := b.api.Send(msg)
			return err
		}
		msg := tgbotapi.NewMessage(chatID, "Which task would you like to delete?")
		msg.ReplyMarkup = deleteTaskKeyboard(tasks)
		_, err = b.api.Send(msg)
		return err

	case "my_tasks":
		tasks, err := b.tasks.FetchTasksByAssignee(ctx, userID)
		if err != nil {
			return fmt.Errorf("could not fetch tasks: %w", err)
		}
		if len(tasks) == 0 {
			msg := tgbotapi.NewMessage(chatID, "You have no assigned tasks.")
			_, err := b.api.Send(msg)
			return err
		}
		msg := tgbotapi.NewMessage(chatID, formatTaskReport(tasks, time.Now()))
		_, err = b.api.Send(msg)
		return err

	default:
		return nil
	}
}

func (b *Bot) handleText(ctx context.Context, update tgbotapi.Update) error {
	userID := update.Message.From.ID
	state := b.takeState(userID)

	var err error
	switch state {
	case stateAwaitingTaskText:
		err = b.handleAddTaskText(ctx, update)
	case stateAwaitingMemberID:
		err = b.handleAddMemberText(ctx, update)
	default:
		reply, ok := smallTalkResponse(strings.TrimSpace(update.Message.Text))
		if !ok {
			reply = "I'm not sure how to respond to that. Please use /start or the main menu."
		}
		msg := tgbotapi.NewMessage(update.Message.Chat.ID, reply)
		_, err = b.api.Send(msg)
		return err
	}

	// After a stateful flow show the menu again, even when the flow failed:
	// the user retries from there.
	if menuErr := b.sendMainMenu(ctx, userID); menuErr != nil {
		log.Printf("ERROR sending main menu: %s", menuErr)
	}
	return err
}

func (b *Bot) handleAddTaskText(ctx context.Context, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	creatorID := update.Message.From.ID

	if !b.isAdmin(ctx, creatorID) {
		return b.sendPermissionDenied(chatID)
	}

	draft, err := b.parser.Parse(update.Message.Text, time.Now())
	if err != nil {
		var guidance string
		switch {
		case errors.Is(err, intake.ErrNoAssignee):
			guidance = "❌ User ID not found. Please include the numeric ID in your message."
		case errors.Is(err, intake.ErrEmptyDescription):
			guidance = "❌ Please provide the task description."
		default:
			return fmt.Errorf("could not parse task: %w", err)
		}
		msg := tgbotapi.NewMessage(chatID, guidance)
		_, err := b.api.Send(msg)
		return err
	}

	assigneeRole, err := b.roles.RoleOf(ctx, draft.AssigneeID)
	if err != nil {
		return fmt.Errorf("could not fetch assignee role: %w", err)
	}
	if !assigneeRole.Known() {
		text := fmt.Sprintf("❌ User %d is not registered. Please add them first via the 'Add Member' menu.", draft.AssigneeID)
		msg := tgbotapi.NewMessage(chatID, text)
		_, err := b.api.Send(msg)
		return err
	}

	task := model.NewTask(draft.AssigneeID, draft.Description, draft.Deadline, creatorID)
	if err := b.tasks.CreateTask(ctx, task); err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}
	log.Printf("DEBUG created task id=%d assignee=%d", task.ID, task.AssigneeID)

	delivered := b.deliver(ctx, *task, notify.EventTaskCreated)

	var text string
	if delivered {
		text = fmt.Sprintf("✅ Task #%d created and sent to user %d.", task.ID, task.AssigneeID)
	} else {
		text = fmt.Sprintf("✅ Task #%d created, but the notification could not be delivered. The user may have blocked the bot.", task.ID)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleAddMemberText(ctx context.Context, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID

	if !b.isAdmin(ctx, update.Message.From.ID) {
		return b.sendPermissionDenied(chatID)
	}

	newUserID, err := strconv.ParseInt(strings.TrimSpace(update.Message.Text), 10, 64)
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "❌ The ID must be a numeric value.")
		_, err := b.api.Send(msg)
		return err
	}

	role, err := b.roles.RoleOf(ctx, newUserID)
	if err != nil {
		return fmt.Errorf("could not fetch role: %w", err)
	}
	if role.Known() {
		msg := tgbotapi.NewMessage(chatID, "❌ This user has already been added.")
		_, err := b.api.Send(msg)
		return err
	}

	if err := b.roles.SetRole(ctx, newUserID, model.UserRoleMember); err != nil {
		return fmt.Errorf("could not set role: %w", err)
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ User %d has been added as a member.", newUserID))
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) handleDoneCallback(ctx context.Context, update tgbotapi.Update) error {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID
	senderID := update.CallbackQuery.From.ID

	taskID, err := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, donePrefix))
	if err != nil {
		return fmt.Errorf("bad task id in callback %q: %w", update.CallbackQuery.Data, err)
	}

	task, err := b.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			return b.editText(chatID, messageID, "❌ Could not find the task to mark as complete.")
		}
		return fmt.Errorf("could not get task: %w", err)
	}
	// Completion belongs to the assignee alone.
	if task.AssigneeID != senderID {
		msg := tgbotapi.NewMessage(chatID, "⛔️ Only the assignee can complete this task.")
		_, err := b.api.Send(msg)
		return err
	}

	completed, err := b.tasks.CompleteTask(ctx, taskID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTaskNotFound):
			return b.editText(chatID, messageID, "❌ Could not find the task to mark as complete.")
		case errors.Is(err, model.ErrTaskAlreadyDone):
			return b.editText(chatID, messageID, "❌ This task is already completed.")
		}
		return fmt.Errorf("could not complete task: %w", err)
	}
	log.Printf("DEBUG completed task id=%d", completed.ID)

	if err := b.editText(chatID, messageID, fmt.Sprintf("✅ Task completed:\n%s", completed.Description)); err != nil {
		return err
	}

	b.deliver(ctx, *completed, notify.EventTaskCompleted)
	return nil
}

func (b *Bot) handleDeleteCallback(ctx context.Context, update tgbotapi.Update) error {
	chatID := update.CallbackQuery.Message.Chat.ID
	messageID := update.CallbackQuery.Message.MessageID

	if !b.isAdmin(ctx, update.CallbackQuery.From.ID) {
		return b.sendPermissionDenied(chatID)
	}

	taskID, err := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, deletePrefix))
	if err != nil {
		return fmt.Errorf("bad task id in callback %q: %w", update.CallbackQuery.Data, err)
	}

	if err := b.tasks.RemoveTask(ctx, taskID); err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			return b.editText(chatID, messageID, "❌ Could not find the task to delete.")
		}
		return fmt.Errorf("could not remove task: %w", err)
	}
	log.Printf("DEBUG removed task id=%d", taskID)

	return b.editText(chatID, messageID, "🗑️ Task has been successfully deleted.")
}

// deliver sends the computed notifications for a transition. Sends are best
// effort: failures are logged and reported via the return value, the task
// state stays as committed.
func (b *Bot) deliver(ctx context.Context, task model.Task, kind notify.EventKind) bool {
	notifications, err := b.notifier.Dispatch(ctx, task, kind)
	if err != nil {
		log.Printf("ERROR computing notifications for task id=%d: %s", task.ID, err)
		return false
	}

	allSent := true
	for _, n := range notifications {
		msg := tgbotapi.NewMessage(n.RecipientID, n.Text)
		if kind == notify.EventTaskCreated && n.TaskID != 0 {
			msg.ReplyMarkup = markDoneKeyboard(n.TaskID)
		}
		if _, err := b.api.Send(msg); err != nil {
			log.Printf("ERROR notifying user id=%d about task id=%d: %s", n.RecipientID, task.ID, err)
			allSent = false
		}
	}
	return allSent
}

func (b *Bot) isAdmin(ctx context.Context, userID int64) bool {
	role, err := b.roles.RoleOf(ctx, userID)
	if err != nil {
		log.Printf("ERROR fetching role for user id=%d: %s", userID, err)
		return false
	}
	return role == model.UserRoleAdmin
}

func (b *Bot) sendPermissionDenied(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "⛔️ You do not have the necessary permissions for this action.")
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) editText(chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	_, err := b.api.Send(edit)
	return err
}

func (b *Bot) setState(userID int64, state conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states[userID] = state
}

// takeState returns and clears the user's conversation state.
func (b *Bot) takeState(userID int64) conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.states[userID]
	delete(b.states, userID)
	return state
}

func (b *Bot) SetDebug(debug bool) {
	b.api.Debug = debug
}

func (b *Bot) GetSelf() tgbotapi.User {
	return b.api.Self
}
