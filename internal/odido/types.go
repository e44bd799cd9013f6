package odido

import "encoding/json"

// resourceListJSON はGET /account/current?resourcelabel=... のレスポンス。
type resourceListJSON struct {
	Resources []resourceJSON `json:"Resources"`
}

// resourceJSON はリンク済みリソースへの参照。
type resourceJSON struct {
	URL string `json:"Url"`
}

// subscriptionListJSON はリンク済みサブスクリプション一覧のレスポンス。
type subscriptionListJSON struct {
	Subscriptions []json.RawMessage `json:"subscriptions"`
}

// subscriptionJSON はサブスクリプション1件の生ペイロード。
// 必須判定のためすべてポインタで受ける。
type subscriptionJSON struct {
	LinkID                  *string          `json:"LinkId"`
	CustomerNumber          *int64           `json:"CustomerNumber"`
	IsFavorite              *bool            `json:"IsFavorite"`
	MSISDN                  *string          `json:"MSISDN"`
	Status                  *string          `json:"Status"`
	Alias                   *string          `json:"Alias"`
	Role                    *string          `json:"Role"`
	SubscriptionURL         *string          `json:"SubscriptionURL"`
	ContractType            *string          `json:"ContractType"`
	CustomerType            *string          `json:"CustomerType"`
	SubscriptionType        *string          `json:"SubscriptionType"`
	IsAdmin                 *bool            `json:"IsAdmin"`
	Agreement               *json.RawMessage `json:"Agreement"`
	VisitorKeyForExternals  *string          `json:"VisitorKeyForExternals"`
	FixedSubscriptionURL    *string          `json:"FixedSubscriptionURL"`
	Order                   *string          `json:"Order"`
	DisconnectionDateTime   *string          `json:"DisconnectionDateTime"`
	IsSmallBusiness         *bool            `json:"IsSmallBusiness"`
	IsChildActivated        *bool            `json:"IsChildActivated"`
	ExternalSubscriptionID  *string          `json:"ExternalSubscriptionId"`
	IsChildToken            *bool            `json:"IsChildToken"`
	OrderStatus             *string          `json:"OrderStatus"`
	IsEndUserAvailable      *bool            `json:"isEndUserAvailable"`
	IsEligibleForChildToken *bool            `json:"isEligibleForChildToken"`
}

// agreementJSON は契約情報の生ペイロード。
type agreementJSON struct {
	RateplanName               *string `json:"RateplanName"`
	ProductName                *string `json:"ProductName"`
	EndDate                    *string `json:"EndDate"`
	StartDate                  *string `json:"StartDate"`
	Status                     *string `json:"Status"`
	RateplanType               *string `json:"RateplanType"`
	RenewalEligibilityDate     *string `json:"RenewalEligibilityDate"`
	IsPossibleRenewalCandidate *bool   `json:"IsPossibleRenewalCandidate"`
	IsAlreadyRenewed           *bool   `json:"IsAlreadyRenewed"`
	ProductCode                *string `json:"ProductCode"`
	SortOrder                  *string `json:"SortOrder"`
	ShowOnDashboard            *bool   `json:"ShowOnDashboard"`
	RateplanCode               *string `json:"RateplanCode"`
}

// RoamingBundles はroamingbundlesリソースのレスポンス。
type RoamingBundles struct {
	Bundles []RoamingBundle `json:"Bundles"`
}

// RoamingBundle はローミングバンドル1件を表す。
// RemainingとUsedの値はキロバイト単位。
type RoamingBundle struct {
	Zones     []string     `json:"Zones"`
	Remaining BundleAmount `json:"Remaining"`
	Used      BundleAmount `json:"Used"`
}

// BundleAmount はバンドルの数量を表す。
type BundleAmount struct {
	Value int64 `json:"Value"`
}

// purchaseRequestJSON はバンドル購入リクエストのボディ。
type purchaseRequestJSON struct {
	Bundles []purchaseBundleJSON `json:"Bundles"`
}

// purchaseBundleJSON は購入対象バンドルの指定。
type purchaseBundleJSON struct {
	BuyingCode string `json:"BuyingCode"`
}
