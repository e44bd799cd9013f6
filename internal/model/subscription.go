// Package model はOdidoアカウントのデータ構造体を提供する。
package model

import "time"

// Agreement は契約情報を表す不変レコード。
// 1つのSubscriptionが排他的に所有する。
type Agreement struct {
	RateplanName               string    `json:"rateplan_name"`
	ProductName                string    `json:"product_name"`
	EndDate                    time.Time `json:"end_date"`
	StartDate                  time.Time `json:"start_date"`
	Status                     string    `json:"status"`
	RateplanType               string    `json:"rateplan_type"`
	RenewalEligibilityDate     time.Time `json:"renewal_eligibility_date"`
	IsPossibleRenewalCandidate bool      `json:"is_possible_renewal_candidate"`
	IsAlreadyRenewed           bool      `json:"is_already_renewed"`
	ProductCode                string    `json:"product_code"`
	SortOrder                  string    `json:"sort_order"`
	ShowOnDashboard            bool      `json:"show_on_dashboard"`
	RateplanCode               string    `json:"rateplan_code"`
}

// Subscription はサブスクリプション情報を表す不変レコード。
// MSISDNがアカウント内で一意の自然キーとなる。リフレッシュごとに
// レコードは丸ごと作り直され、既存インスタンスは変更されない。
type Subscription struct {
	LinkID           string    `json:"link_id"`
	CustomerNumber   int64     `json:"customer_number"`
	IsFavorite       bool      `json:"is_favorite"`
	MSISDN           string    `json:"msisdn"`
	Status           string    `json:"status"`
	Alias            string    `json:"alias"`
	Role             string    `json:"role"`
	SubscriptionURL  string    `json:"subscription_url"`
	ContractType     string    `json:"contract_type"`
	CustomerType     string    `json:"customer_type"`
	SubscriptionType string    `json:"subscription_type"`
	IsAdmin          bool      `json:"is_admin"`
	Agreement        Agreement `json:"agreement"`

	VisitorKeyForExternals string `json:"visitor_key_for_externals"`

	// 省略可能フィールド。ペイロード上で欠落またはnullの場合はnilになる。
	FixedSubscriptionURL   *string `json:"fixed_subscription_url"`
	Order                  *string `json:"order"`
	DisconnectionDateTime  *string `json:"disconnection_date_time"`
	ExternalSubscriptionID *string `json:"external_subscription_id"`
	OrderStatus            *string `json:"order_status"`

	IsSmallBusiness         bool `json:"is_small_business"`
	IsChildActivated        bool `json:"is_child_activated"`
	IsChildToken            bool `json:"is_child_token"`
	IsEndUserAvailable      bool `json:"is_end_user_available"`
	IsEligibleForChildToken bool `json:"is_eligible_for_child_token"`
}

// DisplayName はデバイス表示名を返す。Aliasが空の場合はMSISDNを使う。
func (s *Subscription) DisplayName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.MSISDN
}
