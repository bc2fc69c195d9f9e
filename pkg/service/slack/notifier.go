package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
)

// Notifier posts model definition change events to one channel
type Notifier struct {
	svc       Service
	channelID string
	baseURL   string
}

var _ interfaces.Notifier = &Notifier{}

// NewNotifier creates a Notifier. baseURL, when set, links model names to the admin UI.
func NewNotifier(svc Service, channelID, baseURL string) (*Notifier, error) {
	if svc == nil {
		return nil, goerr.New("Slack service is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}
	return &Notifier{
		svc:       svc,
		channelID: channelID,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}, nil
}

func (n *Notifier) Notify(ctx context.Context, ev *model.ChangeEvent) error {
	blocks, text := BuildChangeMessage(ev, n.baseURL)
	if _, err := n.svc.PostMessage(ctx, n.channelID, blocks, text); err != nil {
		return goerr.Wrap(err, "failed to notify change",
			goerr.V("model_id", ev.ModelID), goerr.V("kind", ev.Kind))
	}
	return nil
}

// BuildChangeMessage renders the Block Kit message and its plain text fallback
func BuildChangeMessage(ev *model.ChangeEvent, baseURL string) ([]slack.Block, string) {
	name := "*" + escape(ev.ModelName) + "*"
	if baseURL != "" {
		name = fmt.Sprintf("*<%s/models/%s|%s>*", baseURL, ev.ModelID, escape(ev.ModelName))
	}

	var headline string
	switch ev.Kind {
	case model.ChangeSaved:
		headline = fmt.Sprintf(":floppy_disk: %s saved as version %d", name, ev.Version)
	case model.ChangeValidated:
		headline = fmt.Sprintf(":white_check_mark: %s passed validation (version %d)", name, ev.Version)
	case model.ChangeValidationFailed:
		headline = fmt.Sprintf(":x: %s failed validation (version %d)", name, ev.Version)
	case model.ChangeLocked:
		headline = fmt.Sprintf(":lock: %s locked", name)
	case model.ChangeUnlocked:
		headline = fmt.Sprintf(":unlock: %s unlocked", name)
	case model.ChangeDeleted:
		headline = fmt.Sprintf(":wastebasket: %s deleted", name)
	case model.ChangeUploadFailed:
		headline = fmt.Sprintf(":warning: a data upload for %s failed validation", name)
	default:
		headline = fmt.Sprintf("%s: %s", name, ev.Kind)
	}

	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, headline, false, false), nil, nil),
	}
	if ev.Detail != "" {
		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "```"+strings.ReplaceAll(ev.Detail, "```", "'''")+"```", false, false),
			nil, nil,
		))
	}

	actor := ev.Actor
	if actor == "" {
		actor = "system"
	}
	meta := fmt.Sprintf("by %s | %s | %s", escape(actor), ev.ModelID, ev.At.Format("2006-01-02 15:04 MST"))
	blocks = append(blocks, slack.NewContextBlock("",
		slack.NewTextBlockObject(slack.MarkdownType, meta, false, false),
	))

	text := fmt.Sprintf("%s: %s", ev.ModelName, ev.Kind)
	return blocks, text
}

// escape applies the three control character escapes Slack mrkdwn requires
func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
