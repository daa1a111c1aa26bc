package chain

import "slices"

// Config is the per-type block configuration. Exactly one concrete type
// exists for each BlockType.
type Config interface {
	BlockType() BlockType
	clone() Config
}

// Trigger event kinds known to the editor.
const (
	EventRegistration  = "registration"
	EventPurchase      = "purchase"
	EventLogin         = "login"
	EventBirthday      = "birthday"
	EventAbandonedCart = "abandoned_cart"
	EventReferral      = "referral"
	EventSiteActivity  = "site_activity"
	EventReview        = "review"
	EventSeasonal      = "seasonal"
	EventTimeBased     = "time_based"
	EventNthDay        = "nth_day"
	EventStatusUpdate  = "status_update"
)

// TriggerConfig starts a chain when a matching event occurs.
type TriggerConfig struct {
	Event      string   `json:"event" yaml:"event"`
	Status     string   `json:"status" yaml:"status"`
	DaysOfWeek []string `json:"dayOfWeek" yaml:"dayOfWeek"`
	Time       string   `json:"time" yaml:"time"`
	Day        int      `json:"day,omitempty" yaml:"day,omitempty"`
}

func (*TriggerConfig) BlockType() BlockType { return TypeTrigger }

func (c *TriggerConfig) clone() Config {
	cp := *c
	cp.DaysOfWeek = slices.Clone(c.DaysOfWeek)
	return &cp
}

// Condition kinds.
const (
	CondPurchaseAmount    = "purchase_amount"
	CondPurchaseCount     = "purchase_count"
	CondPurchaseFrequency = "purchase_frequency"
	CondCategory          = "category"
	CondProduct           = "product"
	CondPointOfSale       = "point_of_sale"
	CondRegion            = "region"
	CondVIPStatus         = "vip_status"
)

// LogicOperator joins the two halves of a composite condition.
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

// SimpleCondition is a single comparison against one event field.
// Which operand is read depends on ConditionType.
type SimpleCondition struct {
	ConditionType string  `json:"conditionType" yaml:"conditionType"`
	Operator      string  `json:"operator" yaml:"operator"`
	Value         float64 `json:"value" yaml:"value"`
	Count         float64 `json:"count" yaml:"count"`
	Frequency     float64 `json:"frequency" yaml:"frequency"`
	Category      string  `json:"category" yaml:"category"`
	Product       string  `json:"product" yaml:"product"`
	PointOfSale   string  `json:"pointOfSale" yaml:"pointOfSale"`
	Region        string  `json:"region" yaml:"region"`
	VIP           bool    `json:"vip" yaml:"vip"`
}

// ConditionConfig is either a simple condition (the inline fields) or, when
// Composite is set, exactly two simple conditions joined by LogicOperator.
type ConditionConfig struct {
	SimpleCondition `yaml:",inline"`
	Composite       bool               `json:"composite" yaml:"composite"`
	LogicOperator   LogicOperator      `json:"logicOperator" yaml:"logicOperator"`
	Subconditions   [2]SimpleCondition `json:"subconditions" yaml:"subconditions"`
}

func (*ConditionConfig) BlockType() BlockType { return TypeCondition }

func (c *ConditionConfig) clone() Config {
	cp := *c
	return &cp
}

// Action kinds.
const (
	ActionBonus        = "bonus"
	ActionCoupon       = "coupon"
	ActionDiscount     = "discount"
	ActionNotification = "notification"
	ActionStatusChange = "status_change"
	ActionExternalAPI  = "external_api"
	ActionSetTag       = "set_tag"
)

// ActionConfig describes a loyalty action. Only the fields relevant to
// Action are meaningful.
type ActionConfig struct {
	Action               string  `json:"action" yaml:"action"`
	BonusAmount          float64 `json:"bonusAmount" yaml:"bonusAmount"`
	DiscountValue        float64 `json:"discountValue" yaml:"discountValue"`
	DiscountType         string  `json:"discountType" yaml:"discountType"`
	CouponCode           string  `json:"couponCode" yaml:"couponCode"`
	NotificationTemplate string  `json:"notificationTemplate" yaml:"notificationTemplate"`
	NewStatus            string  `json:"newStatus" yaml:"newStatus"`
	APIURL               string  `json:"apiUrl" yaml:"apiUrl"`
	ValidityPeriod       int     `json:"validityPeriod" yaml:"validityPeriod"`
	Delay                int     `json:"delay" yaml:"delay"`
	Repeat               bool    `json:"repeat" yaml:"repeat"`
	RepeatInterval       int     `json:"repeatInterval" yaml:"repeatInterval"`
	RepeatCount          int     `json:"repeatCount" yaml:"repeatCount"`
	TagName              string  `json:"tagName" yaml:"tagName"`
}

func (*ActionConfig) BlockType() BlockType { return TypeAction }

func (c *ActionConfig) clone() Config {
	cp := *c
	return &cp
}

// CommunicationConfig sends a message over a channel (email, sms, push).
type CommunicationConfig struct {
	Channel string `json:"channel" yaml:"channel"`
	Subject string `json:"subject" yaml:"subject"`
	Message string `json:"message" yaml:"message"`
}

func (*CommunicationConfig) BlockType() BlockType { return TypeCommunication }

func (c *CommunicationConfig) clone() Config {
	cp := *c
	return &cp
}

func defaultSimpleCondition() SimpleCondition {
	return SimpleCondition{
		ConditionType: CondPurchaseAmount,
		Operator:      ">",
		Value:         1000,
		Count:         1,
	}
}

// DefaultConfig returns the configuration a freshly placed block of type t
// starts with. It returns nil for unknown types.
func DefaultConfig(t BlockType) Config {
	switch t {
	case TypeTrigger:
		return &TriggerConfig{Event: EventRegistration, DaysOfWeek: []string{}}
	case TypeCondition:
		return &ConditionConfig{
			SimpleCondition: defaultSimpleCondition(),
			LogicOperator:   LogicAnd,
			Subconditions:   [2]SimpleCondition{defaultSimpleCondition(), defaultSimpleCondition()},
		}
	case TypeAction:
		return &ActionConfig{
			Action:        ActionBonus,
			BonusAmount:   100,
			DiscountValue: 10,
			DiscountType:  "fixed",
		}
	case TypeCommunication:
		return &CommunicationConfig{Channel: "email"}
	}
	return nil
}

// newConfig returns an empty configuration of the concrete type for t.
func newConfig(t BlockType) Config {
	switch t {
	case TypeTrigger:
		return &TriggerConfig{}
	case TypeCondition:
		return &ConditionConfig{}
	case TypeAction:
		return &ActionConfig{}
	case TypeCommunication:
		return &CommunicationConfig{}
	}
	return nil
}
