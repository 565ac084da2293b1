package push

import (
	"errors"
	"fmt"
	"log/slog"

	"starboard/internal/model"
	"starboard/internal/store"
)

// Notifier fans task events out to the right devices: parents hear about
// completed work awaiting review, children hear when stars land.
type Notifier struct {
	service *Service
	push    *store.PushStore
	logger  *slog.Logger
}

func NewNotifier(service *Service, pushStore *store.PushStore, logger *slog.Logger) *Notifier {
	return &Notifier{
		service: service,
		push:    pushStore,
		logger:  logger.With("component", "push"),
	}
}

// TaskCompleted notifies every parent device that a task is waiting for review.
func (n *Notifier) TaskCompleted(task *model.Task, memberName string) {
	subs, err := n.push.ListByRole(model.RoleParent)
	if err != nil {
		n.logger.Error("list parent subscriptions", "error", err)
		return
	}

	n.sendAll(subs, Payload{
		Title: "Task completed",
		Body:  fmt.Sprintf("%s finished %q", memberName, task.Title),
		URL:   "/review",
		Tag:   fmt.Sprintf("task-done-%d", task.ID),
	})
}

// TaskAccepted notifies the child's devices that their work earned stars.
func (n *Notifier) TaskAccepted(task *model.Task, stars int) {
	subs, err := n.push.ListByMember(task.MemberID)
	if err != nil {
		n.logger.Error("list member subscriptions", "error", err)
		return
	}

	body := fmt.Sprintf("%q accepted, you earned %d stars!", task.Title, stars)
	if stars == 1 {
		body = fmt.Sprintf("%q accepted, you earned a star!", task.Title)
	}
	n.sendAll(subs, Payload{
		Title: "Stars earned",
		Body:  body,
		URL:   "/",
		Tag:   fmt.Sprintf("task-accepted-%d", task.ID),
	})
}

func (n *Notifier) sendAll(subs []model.PushSubscription, payload Payload) {
	for _, sub := range subs {
		if err := n.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				// Endpoint is gone for good; drop the registration
				if derr := n.push.DeleteByEndpoint(sub.Endpoint); derr != nil {
					n.logger.Error("delete expired subscription", "error", derr)
				}
				continue
			}
			n.logger.Warn("send notification", "endpoint", sub.Endpoint, "error", err)
		}
	}
}
