package infrastructure

import (
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/downlyapp/downly/internal/domain"
)

// NotificationService sends desktop notifications for terminal download states
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		logger: logger,
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		return nil
	}

	switch n.config.Method {
	case "osascript":
		return n.run("osascript", "-e",
			fmt.Sprintf(`display notification %q with title %q`, message, title))
	case "notify-send":
		return n.run("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}
}

func (n *NotificationService) run(bin string, args ...string) error {
	if err := exec.Command(bin, args...).Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}
	return nil
}

// NotifyResult sends the notification matching a job's terminal result
func (n *NotificationService) NotifyResult(url string, result domain.TerminalResult) {
	short := truncateString(url, 40)
	switch result.State {
	case domain.TerminalCompleted:
		n.Send("Download Completed", fmt.Sprintf("Success: %s", short))
	case domain.TerminalCancelled:
		n.Send("Download Cancelled", fmt.Sprintf("Cancelled: %s", short))
	case domain.TerminalFailed:
		n.Send("Download Failed", fmt.Sprintf("Failed: %s", short))
	}
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
