package slack_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	slackapi "github.com/slack-go/slack"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/service/slack"
)

type fakeService struct {
	channelID string
	blocks    []slackapi.Block
	text      string
	err       error
}

func (f *fakeService) PostMessage(ctx context.Context, channelID string, blocks []slackapi.Block, text string) (string, error) {
	f.channelID = channelID
	f.blocks = blocks
	f.text = text
	return "1.0", f.err
}

func (f *fakeService) GetChannelName(ctx context.Context, channelID string) (string, error) {
	return "ifrs-changes", nil
}

func sectionText(t *testing.T, b slackapi.Block) string {
	t.Helper()
	section, ok := b.(*slackapi.SectionBlock)
	gt.Bool(t, ok).True()
	return section.Text.Text
}

func testEvent(kind model.ChangeKind) *model.ChangeEvent {
	return &model.ChangeEvent{
		Kind:      kind,
		ModelID:   "md-abc123",
		ModelName: "Term Life <2026>",
		Version:   4,
		Actor:     "actuary-1",
		At:        time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestNewNotifier(t *testing.T) {
	_, err := slack.NewNotifier(nil, "C1", "")
	gt.Error(t, err)

	_, err = slack.NewNotifier(&fakeService{}, "", "")
	gt.Error(t, err)
}

func TestNotifier_Notify(t *testing.T) {
	svc := &fakeService{}
	n, err := slack.NewNotifier(svc, "C123", "https://ifrs.example.com/")
	gt.NoError(t, err).Required()

	gt.NoError(t, n.Notify(context.Background(), testEvent(model.ChangeSaved))).Required()
	gt.Value(t, svc.channelID).Equal("C123")
	gt.Value(t, svc.text).Equal("Term Life <2026>: saved")
	gt.A(t, svc.blocks).Length(2)

	headline := sectionText(t, svc.blocks[0])
	gt.String(t, headline).Contains("<https://ifrs.example.com/models/md-abc123|Term Life &lt;2026&gt;>")
	gt.String(t, headline).Contains("saved as version 4")

	ctxBlock, ok := svc.blocks[1].(*slackapi.ContextBlock)
	gt.Bool(t, ok).True()
	meta := ctxBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject).Text
	gt.String(t, meta).Contains("by actuary-1")
	gt.String(t, meta).Contains("2026-03-01 09:30 UTC")
}

func TestNotifier_PostFailure(t *testing.T) {
	n, err := slack.NewNotifier(&fakeService{err: errors.New("rate limited")}, "C123", "")
	gt.NoError(t, err).Required()
	gt.Error(t, n.Notify(context.Background(), testEvent(model.ChangeLocked)))
}

func TestBuildChangeMessage(t *testing.T) {
	tests := []struct {
		kind model.ChangeKind
		want string
	}{
		{model.ChangeSaved, "saved as version 4"},
		{model.ChangeValidated, "passed validation"},
		{model.ChangeValidationFailed, "failed validation"},
		{model.ChangeLocked, ":lock:"},
		{model.ChangeUnlocked, ":unlock:"},
		{model.ChangeDeleted, "deleted"},
		{model.ChangeUploadFailed, "data upload"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			blocks, _ := slack.BuildChangeMessage(testEvent(tt.kind), "")
			gt.String(t, sectionText(t, blocks[0])).Contains(tt.want)
			gt.String(t, sectionText(t, blocks[0])).Contains("*Term Life &lt;2026&gt;*")
		})
	}

	t.Run("detail is rendered as a code block", func(t *testing.T) {
		ev := testEvent(model.ChangeValidationFailed)
		ev.Detail = "discount_rates.x: unknown field"
		blocks, _ := slack.BuildChangeMessage(ev, "")
		gt.A(t, blocks).Length(3)
		gt.Value(t, sectionText(t, blocks[1])).Equal("```discount_rates.x: unknown field```")
	})

	t.Run("missing actor is system", func(t *testing.T) {
		ev := testEvent(model.ChangeSaved)
		ev.Actor = ""
		blocks, _ := slack.BuildChangeMessage(ev, "")
		ctxBlock := blocks[len(blocks)-1].(*slackapi.ContextBlock)
		gt.String(t, ctxBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject).Text).Contains("by system")
	})
}
