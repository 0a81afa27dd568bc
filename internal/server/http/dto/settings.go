package dto

import "github.com/polkiloo/codguard/internal/domain/model"

// SettingsResponse describes stored settings with key material masked.
type SettingsResponse struct {
	ShopID            string   `json:"shop_id"`
	PublicKey         string   `json:"public_key"`
	PrivateKey        string   `json:"private_key"`
	GoodStatus        string   `json:"good_status"`
	RefusedStatus     string   `json:"refused_status"`
	CODMethods        []string `json:"cod_methods"`
	RatingTolerance   int      `json:"rating_tolerance"`
	RejectionMessage  string   `json:"rejection_message"`
	NotificationEmail string   `json:"notification_email"`
	Enabled           bool     `json:"enabled"`
}

// NewSettingsResponse masks keys and maps settings onto the response.
func NewSettingsResponse(s model.Settings) SettingsResponse {
	m := s.Masked()
	methods := m.CODMethods
	if methods == nil {
		methods = []string{}
	}
	return SettingsResponse{
		ShopID:            m.ShopID,
		PublicKey:         m.PublicKey,
		PrivateKey:        m.PrivateKey,
		GoodStatus:        m.GoodStatus,
		RefusedStatus:     m.RefusedStatus,
		CODMethods:        methods,
		RatingTolerance:   m.RatingTolerance,
		RejectionMessage:  m.RejectionMessage,
		NotificationEmail: m.NotificationEmail,
		Enabled:           m.Enabled,
	}
}

// ValidationErrorResponse lists rejected settings fields.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}
