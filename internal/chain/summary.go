package chain

import (
	"fmt"
	"strconv"
	"strings"
)

var eventLabels = map[string]string{
	EventRegistration:  "Registration",
	EventPurchase:      "Purchase",
	EventLogin:         "Login",
	EventBirthday:      "Birthday",
	EventAbandonedCart: "Abandoned cart",
	EventReferral:      "Referral",
	EventSiteActivity:  "Site activity",
	EventReview:        "Review/Rating",
	EventSeasonal:      "Seasonal/Promo",
}

// Summary renders a one-line description of a block's configuration for
// display next to the node.
func Summary(b Block) string {
	switch c := b.Config.(type) {
	case *TriggerConfig:
		return "Event: " + triggerSummary(c)
	case *ConditionConfig:
		if !c.Composite {
			return simpleSummary(c.SimpleCondition)
		}
		return fmt.Sprintf("(%s %s %s)",
			simpleSummary(c.Subconditions[0]), c.LogicOperator, simpleSummary(c.Subconditions[1]))
	case *ActionConfig:
		return actionSummary(c)
	case *CommunicationConfig:
		return fmt.Sprintf("Communication: %s, Subject: %s, Message: %s", c.Channel, c.Subject, c.Message)
	}
	return ""
}

func triggerSummary(c *TriggerConfig) string {
	switch c.Event {
	case EventTimeBased:
		return fmt.Sprintf("Time: %s %s", strings.Join(c.DaysOfWeek, ", "), c.Time)
	case EventNthDay:
		return fmt.Sprintf("Day %d reached", c.Day)
	case EventStatusUpdate:
		return "Status update: " + c.Status
	}
	if l, ok := eventLabels[c.Event]; ok {
		return l
	}
	return c.Event
}

func simpleSummary(c SimpleCondition) string {
	switch c.ConditionType {
	case CondPurchaseAmount:
		return fmt.Sprintf("Purchase amount %s %s", c.Operator, num(c.Value))
	case CondPurchaseCount:
		return fmt.Sprintf("Purchase count %s %s", c.Operator, num(c.Count))
	case CondPurchaseFrequency:
		return fmt.Sprintf("Purchase frequency %s %s", c.Operator, num(c.Frequency))
	case CondCategory:
		return fmt.Sprintf("Category %s: %s", c.Operator, c.Category)
	case CondProduct:
		return fmt.Sprintf("Product %s: %s", c.Operator, c.Product)
	case CondPointOfSale:
		return fmt.Sprintf("Point of sale %s: %s", c.Operator, c.PointOfSale)
	case CondRegion:
		return fmt.Sprintf("Region %s: %s", c.Operator, c.Region)
	case CondVIPStatus:
		if c.VIP {
			return "VIP status: VIP"
		}
		return "VIP status: not VIP"
	}
	return ""
}

func actionSummary(c *ActionConfig) string {
	switch c.Action {
	case ActionBonus:
		return "Bonus: " + num(c.BonusAmount)
	case ActionCoupon:
		return "Coupon: " + c.CouponCode
	case ActionDiscount:
		if c.DiscountType == "fixed" {
			return "Discount: " + num(c.DiscountValue)
		}
		return "Discount: " + num(c.DiscountValue) + "%"
	case ActionNotification:
		return "Notification: " + c.NotificationTemplate
	case ActionStatusChange:
		return "Status change: " + c.NewStatus
	case ActionExternalAPI:
		return "API call: " + c.APIURL
	case ActionSetTag:
		return "Set tag: " + c.TagName
	}
	return ""
}

// num formats a number without a trailing ".0" for whole values.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
