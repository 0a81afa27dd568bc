package model

import "strconv"

const (
	DefaultGoodStatus        = "completed"
	DefaultRefusedStatus     = "cancelled"
	DefaultRatingTolerance   = 35
	DefaultRejectionMessage  = "Unfortunately, we cannot offer Cash on Delivery for this order."
	DefaultNotificationEmail = "info@codguard.com"
)

// Settings holds shop level CodGuard configuration.
type Settings struct {
	ShopID            string   `json:"shop_id" yaml:"shop_id" validate:"required,numeric"`
	PublicKey         string   `json:"public_key" yaml:"public_key" validate:"required,min=10"`
	PrivateKey        string   `json:"private_key" yaml:"private_key" validate:"required,min=10"`
	GoodStatus        string   `json:"good_status" yaml:"good_status" validate:"required"`
	RefusedStatus     string   `json:"refused_status" yaml:"refused_status" validate:"required"`
	CODMethods        []string `json:"cod_methods" yaml:"cod_methods"`
	RatingTolerance   int      `json:"rating_tolerance" yaml:"rating_tolerance" validate:"min=0,max=100"`
	RejectionMessage  string   `json:"rejection_message" yaml:"rejection_message" validate:"required,max=500"`
	NotificationEmail string   `json:"notification_email" yaml:"notification_email" validate:"omitempty,email"`
	Enabled           bool     `json:"enabled" yaml:"-"`
}

// APIKeys is the credential pair issued by CodGuard for a shop.
type APIKeys struct {
	Public  string
	Private string
}

// DefaultSettings returns settings used before anything is stored.
func DefaultSettings() Settings {
	return Settings{
		GoodStatus:        DefaultGoodStatus,
		RefusedStatus:     DefaultRefusedStatus,
		CODMethods:        []string{},
		RatingTolerance:   DefaultRatingTolerance,
		RejectionMessage:  DefaultRejectionMessage,
		NotificationEmail: DefaultNotificationEmail,
	}
}

// APIKeys returns configured credentials.
func (s Settings) APIKeys() APIKeys {
	return APIKeys{Public: s.PublicKey, Private: s.PrivateKey}
}

// Threshold converts the percent tolerance into a rating threshold.
func (s Settings) Threshold() float64 {
	return float64(s.RatingTolerance) / 100
}

// EshopID returns numeric shop identifier, zero when shop id is not numeric.
func (s Settings) EshopID() int {
	id, err := strconv.Atoi(s.ShopID)
	if err != nil {
		return 0
	}
	return id
}

// IsCODMethod reports whether payment method is configured as cash on delivery.
func (s Settings) IsCODMethod(method string) bool {
	for _, m := range s.CODMethods {
		if m == method {
			return true
		}
	}
	return false
}

// RefreshEnabled derives Enabled from credential presence.
func (s *Settings) RefreshEnabled() {
	s.Enabled = s.ShopID != "" && s.PublicKey != "" && s.PrivateKey != ""
}

// Masked returns a copy with key material hidden.
func (s Settings) Masked() Settings {
	s.PublicKey = maskKey(s.PublicKey)
	s.PrivateKey = maskKey(s.PrivateKey)
	s.CODMethods = append([]string(nil), s.CODMethods...)
	return s
}

func maskKey(key string) string {
	if len(key) <= 4 {
		if key == "" {
			return ""
		}
		return "****"
	}
	return key[:4] + "****"
}

// SettingsUpdate carries a partial settings change. Nil fields are left untouched.
type SettingsUpdate struct {
	ShopID            *string   `json:"shop_id,omitempty" yaml:"shop_id"`
	PublicKey         *string   `json:"public_key,omitempty" yaml:"public_key"`
	PrivateKey        *string   `json:"private_key,omitempty" yaml:"private_key"`
	GoodStatus        *string   `json:"good_status,omitempty" yaml:"good_status"`
	RefusedStatus     *string   `json:"refused_status,omitempty" yaml:"refused_status"`
	CODMethods        *[]string `json:"cod_methods,omitempty" yaml:"cod_methods"`
	RatingTolerance   *int      `json:"rating_tolerance,omitempty" yaml:"rating_tolerance"`
	RejectionMessage  *string   `json:"rejection_message,omitempty" yaml:"rejection_message"`
	NotificationEmail *string   `json:"notification_email,omitempty" yaml:"notification_email"`
}

// Apply merges the update onto current settings.
func (u SettingsUpdate) Apply(current Settings) Settings {
	next := current
	next.CODMethods = append([]string(nil), current.CODMethods...)
	if u.ShopID != nil {
		next.ShopID = *u.ShopID
	}
	if u.PublicKey != nil {
		next.PublicKey = *u.PublicKey
	}
	if u.PrivateKey != nil {
		next.PrivateKey = *u.PrivateKey
	}
	if u.GoodStatus != nil {
		next.GoodStatus = *u.GoodStatus
	}
	if u.RefusedStatus != nil {
		next.RefusedStatus = *u.RefusedStatus
	}
	if u.CODMethods != nil {
		next.CODMethods = append([]string(nil), (*u.CODMethods)...)
	}
	if u.RatingTolerance != nil {
		next.RatingTolerance = *u.RatingTolerance
	}
	if u.RejectionMessage != nil {
		next.RejectionMessage = *u.RejectionMessage
	}
	if u.NotificationEmail != nil {
		next.NotificationEmail = *u.NotificationEmail
	}
	return next
}
