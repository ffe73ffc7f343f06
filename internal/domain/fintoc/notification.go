package fintoc

import (
	"fmt"
	"strconv"
	"strings"
)

// Notification is the normalized shape of a Fintoc webhook event.
type Notification struct {
	EventID           string
	EventType         string
	Resource          map[string]any
	OdooTxReference   string
	Reference         string
	CheckoutSessionID string
	PaymentIntentID   string
	RefundID          string
	Reason            string
}

// TxReference returns the caller-assigned reference carried by the notification.
func (n Notification) TxReference() string {
	if n.OdooTxReference != "" {
		return n.OdooTxReference
	}
	return n.Reference
}

// ResourceID returns the id of the event's resource object.
func (n Notification) ResourceID() string {
	return stringField(n.Resource, "id")
}

// Normalize maps a raw Fintoc event payload to a Notification.
func Normalize(payload map[string]any) Notification {
	eventType := stringField(payload, "type")
	resource := mapField(payload, "data")
	if resource == nil {
		resource = map[string]any{}
	}
	metadata := mapField(resource, "metadata")

	n := Notification{
		EventID:         stringField(payload, "id"),
		EventType:       eventType,
		Resource:        resource,
		OdooTxReference: stringField(metadata, "odoo_tx_reference"),
		Reference:       stringField(payload, "reference"),
	}

	switch {
	case eventType == EventCheckoutSessionFinished:
		n.CheckoutSessionID = firstString(resource, "id", "checkout_session_id")
		n.PaymentIntentID = stringField(resource, "payment_intent_id")
	case strings.HasPrefix(eventType, "payment_intent."):
		n.PaymentIntentID = firstString(resource, "id", "payment_intent_id")
		n.CheckoutSessionID = stringField(resource, "checkout_session_id")
		n.Reason = firstString(resource, "failure_reason", "reason")
	case strings.HasPrefix(eventType, "refund."):
		n.RefundID = firstString(resource, "id", "refund_id")
		n.PaymentIntentID = firstString(resource, "resource_id", "payment_intent_id")
		n.Reason = firstString(resource, "failure_reason", "reason")
	}

	return n
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringField(m, key); v != "" {
			return v
		}
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool, map[string]any, []any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func mapField(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}
