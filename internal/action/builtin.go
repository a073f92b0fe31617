package action

import (
	"context"
	"fmt"

	"github.com/wareflow/ruleengine/internal/engine"
	"github.com/wareflow/ruleengine/internal/notify"
)

// Built-in warehouse action type names.
const (
	TypeSendNotification = "send_notification"
	TypeUpdateField      = "update_field"
	TypeSetField         = "set_field"
	TypeAddTag           = "add_tag"
)

// RegisterBuiltins registers the warehouse action types on reg. sender backs
// send_notification; the field and tag actions mutate the evaluation context
// so later actions in the same list observe the change.
func RegisterBuiltins(reg *Registry, sender *notify.Sender) error {
	defs := []Definition{
		{
			Type: TypeSendNotification,
			Parameters: map[string]ParamSpec{
				"url":     {Required: true, Kind: KindString},
				"event":   {Required: true, Kind: KindString},
				"message": {Required: false, Kind: KindString},
			},
			Handler: sendNotificationHandler(sender),
		},
		{
			Type: TypeUpdateField,
			Parameters: map[string]ParamSpec{
				"field": {Required: true, Kind: KindString},
				"value": {Required: true},
			},
			Handler: setFieldHandler,
		},
		{
			Type: TypeSetField,
			Parameters: map[string]ParamSpec{
				"field": {Required: true, Kind: KindString},
				"value": {Required: true},
			},
			Handler: setFieldHandler,
		},
		{
			Type: TypeAddTag,
			Parameters: map[string]ParamSpec{
				"tag": {Required: true, Kind: KindString},
			},
			Handler: addTagHandler,
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func sendNotificationHandler(sender *notify.Sender) HandlerFunc {
	return func(ctx context.Context, act Action, evalCtx engine.MapContext) error {
		url, _ := act.Parameters["url"].(string)
		event, _ := act.Parameters["event"].(string)
		message, _ := act.Parameters["message"].(string)

		n := notify.Notification{
			ActionID: act.ID,
			Event:    event,
			Message:  message,
			Context:  evalCtx,
		}
		if ruleID, ok := evalCtx.Resolve("rule.id"); ok {
			n.RuleID, _ = ruleID.(string)
		}
		return sender.Send(ctx, url, n)
	}
}

// setFieldHandler writes a literal value at a dotted context path. Shared by
// set_field and update_field: the warehouse UI exposes both names for the
// same write.
func setFieldHandler(_ context.Context, act Action, evalCtx engine.MapContext) error {
	field, _ := act.Parameters["field"].(string)
	if evalCtx == nil {
		return fmt.Errorf("no evaluation context to update")
	}
	evalCtx.Set(field, act.Parameters["value"])
	return nil
}

// addTagHandler appends a tag to the context's tag list, once.
func addTagHandler(_ context.Context, act Action, evalCtx engine.MapContext) error {
	tag, _ := act.Parameters["tag"].(string)
	if evalCtx == nil {
		return fmt.Errorf("no evaluation context to tag")
	}

	existing, _ := evalCtx["tags"].([]any)
	for _, t := range existing {
		if s, ok := t.(string); ok && s == tag {
			return nil
		}
	}
	evalCtx["tags"] = append(existing, tag)
	return nil
}
