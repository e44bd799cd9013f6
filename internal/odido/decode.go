package odido

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oyaguma3/odido-bridge/internal/model"
)

// DecodeSubscription は生JSONをSubscriptionレコードにデコードする。
// 必須フィールドが欠落している場合はDecodeErrorを返し、既定値の捏造はしない。
func DecodeSubscription(data json.RawMessage) (model.Subscription, error) {
	var raw subscriptionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Subscription{}, NewDecodeError("subscription", err)
	}

	linkID, err := requireString("LinkId", raw.LinkID)
	if err != nil {
		return model.Subscription{}, err
	}
	customerNumber, err := requireInt64("CustomerNumber", raw.CustomerNumber)
	if err != nil {
		return model.Subscription{}, err
	}
	msisdn, err := requireString("MSISDN", raw.MSISDN)
	if err != nil {
		return model.Subscription{}, err
	}
	status, err := requireString("Status", raw.Status)
	if err != nil {
		return model.Subscription{}, err
	}
	alias, err := requireString("Alias", raw.Alias)
	if err != nil {
		return model.Subscription{}, err
	}
	role, err := requireString("Role", raw.Role)
	if err != nil {
		return model.Subscription{}, err
	}
	subscriptionURL, err := requireString("SubscriptionURL", raw.SubscriptionURL)
	if err != nil {
		return model.Subscription{}, err
	}
	contractType, err := requireString("ContractType", raw.ContractType)
	if err != nil {
		return model.Subscription{}, err
	}
	customerType, err := requireString("CustomerType", raw.CustomerType)
	if err != nil {
		return model.Subscription{}, err
	}
	subscriptionType, err := requireString("SubscriptionType", raw.SubscriptionType)
	if err != nil {
		return model.Subscription{}, err
	}
	visitorKey, err := requireString("VisitorKeyForExternals", raw.VisitorKeyForExternals)
	if err != nil {
		return model.Subscription{}, err
	}

	if raw.Agreement == nil {
		return model.Subscription{}, NewDecodeError("Agreement", nil)
	}
	agreement, err := DecodeAgreement(*raw.Agreement)
	if err != nil {
		return model.Subscription{}, err
	}

	isFavorite, err := requireBool("IsFavorite", raw.IsFavorite)
	if err != nil {
		return model.Subscription{}, err
	}
	isAdmin, err := requireBool("IsAdmin", raw.IsAdmin)
	if err != nil {
		return model.Subscription{}, err
	}
	isSmallBusiness, err := requireBool("IsSmallBusiness", raw.IsSmallBusiness)
	if err != nil {
		return model.Subscription{}, err
	}
	isChildActivated, err := requireBool("IsChildActivated", raw.IsChildActivated)
	if err != nil {
		return model.Subscription{}, err
	}
	isChildToken, err := requireBool("IsChildToken", raw.IsChildToken)
	if err != nil {
		return model.Subscription{}, err
	}
	isEndUserAvailable, err := requireBool("isEndUserAvailable", raw.IsEndUserAvailable)
	if err != nil {
		return model.Subscription{}, err
	}
	isEligible, err := requireBool("isEligibleForChildToken", raw.IsEligibleForChildToken)
	if err != nil {
		return model.Subscription{}, err
	}

	return model.Subscription{
		LinkID:                  linkID,
		CustomerNumber:          customerNumber,
		IsFavorite:              isFavorite,
		MSISDN:                  msisdn,
		Status:                  status,
		Alias:                   alias,
		Role:                    role,
		SubscriptionURL:         subscriptionURL,
		ContractType:            contractType,
		CustomerType:            customerType,
		SubscriptionType:        subscriptionType,
		IsAdmin:                 isAdmin,
		Agreement:               agreement,
		VisitorKeyForExternals:  visitorKey,
		FixedSubscriptionURL:    raw.FixedSubscriptionURL,
		Order:                   raw.Order,
		DisconnectionDateTime:   raw.DisconnectionDateTime,
		ExternalSubscriptionID:  raw.ExternalSubscriptionID,
		OrderStatus:             raw.OrderStatus,
		IsSmallBusiness:         isSmallBusiness,
		IsChildActivated:        isChildActivated,
		IsChildToken:            isChildToken,
		IsEndUserAvailable:      isEndUserAvailable,
		IsEligibleForChildToken: isEligible,
	}, nil
}

// DecodeAgreement は生JSONをAgreementレコードにデコードする。
func DecodeAgreement(data json.RawMessage) (model.Agreement, error) {
	var raw agreementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.Agreement{}, NewDecodeError("Agreement", err)
	}

	rateplanName, err := requireString("Agreement.RateplanName", raw.RateplanName)
	if err != nil {
		return model.Agreement{}, err
	}
	productName, err := requireString("Agreement.ProductName", raw.ProductName)
	if err != nil {
		return model.Agreement{}, err
	}
	status, err := requireString("Agreement.Status", raw.Status)
	if err != nil {
		return model.Agreement{}, err
	}
	rateplanType, err := requireString("Agreement.RateplanType", raw.RateplanType)
	if err != nil {
		return model.Agreement{}, err
	}
	productCode, err := requireString("Agreement.ProductCode", raw.ProductCode)
	if err != nil {
		return model.Agreement{}, err
	}
	sortOrder, err := requireString("Agreement.SortOrder", raw.SortOrder)
	if err != nil {
		return model.Agreement{}, err
	}
	rateplanCode, err := requireString("Agreement.RateplanCode", raw.RateplanCode)
	if err != nil {
		return model.Agreement{}, err
	}

	endDate, err := requireDate("Agreement.EndDate", raw.EndDate)
	if err != nil {
		return model.Agreement{}, err
	}
	startDate, err := requireDate("Agreement.StartDate", raw.StartDate)
	if err != nil {
		return model.Agreement{}, err
	}
	renewalDate, err := requireDate("Agreement.RenewalEligibilityDate", raw.RenewalEligibilityDate)
	if err != nil {
		return model.Agreement{}, err
	}

	isRenewalCandidate, err := requireBool("Agreement.IsPossibleRenewalCandidate", raw.IsPossibleRenewalCandidate)
	if err != nil {
		return model.Agreement{}, err
	}
	isAlreadyRenewed, err := requireBool("Agreement.IsAlreadyRenewed", raw.IsAlreadyRenewed)
	if err != nil {
		return model.Agreement{}, err
	}
	showOnDashboard, err := requireBool("Agreement.ShowOnDashboard", raw.ShowOnDashboard)
	if err != nil {
		return model.Agreement{}, err
	}

	return model.Agreement{
		RateplanName:               rateplanName,
		ProductName:                productName,
		EndDate:                    endDate,
		StartDate:                  startDate,
		Status:                     status,
		RateplanType:               rateplanType,
		RenewalEligibilityDate:     renewalDate,
		IsPossibleRenewalCandidate: isRenewalCandidate,
		IsAlreadyRenewed:           isAlreadyRenewed,
		ProductCode:                productCode,
		SortOrder:                  sortOrder,
		ShowOnDashboard:            showOnDashboard,
		RateplanCode:               rateplanCode,
	}, nil
}

// DecodeRoamingBundles はroamingbundlesレスポンスをデコードする。
func DecodeRoamingBundles(data json.RawMessage) (*RoamingBundles, error) {
	var bundles RoamingBundles
	if err := json.Unmarshal(data, &bundles); err != nil {
		return nil, NewDecodeError("Bundles", err)
	}
	return &bundles, nil
}

// ParseWrappedDate はベンダー独自の日付形式をパースする。
// 形式: /Date(エポックミリ秒)/ 。タイムゾーンオフセット付き（例: +0100）の
// 場合はオフセットを無視し、ミリ秒値をUTCとして解釈する。
func ParseWrappedDate(s string) (time.Time, error) {
	inner, ok := strings.CutPrefix(s, "/Date(")
	if !ok {
		return time.Time{}, fmt.Errorf("unexpected date format: %q", s)
	}
	inner, ok = strings.CutSuffix(inner, ")/")
	if !ok || inner == "" {
		return time.Time{}, fmt.Errorf("unexpected date format: %q", s)
	}

	// 先頭以降の符号はタイムゾーンオフセットなので切り捨てる
	if i := strings.IndexAny(inner[1:], "+-"); i >= 0 {
		inner = inner[:i+1]
	}

	ms, err := strconv.ParseInt(inner, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unexpected date format: %q", s)
	}

	return time.UnixMilli(ms).UTC(), nil
}

// requireString は必須文字列フィールドを検証する。
func requireString(field string, v *string) (string, error) {
	if v == nil {
		return "", NewDecodeError(field, nil)
	}
	return *v, nil
}

// requireInt64 は必須整数フィールドを検証する。
func requireInt64(field string, v *int64) (int64, error) {
	if v == nil {
		return 0, NewDecodeError(field, nil)
	}
	return *v, nil
}

// requireBool は必須真偽値フィールドを検証する。
func requireBool(field string, v *bool) (bool, error) {
	if v == nil {
		return false, NewDecodeError(field, nil)
	}
	return *v, nil
}

// requireDate は必須日付フィールドを検証してパースする。
func requireDate(field string, v *string) (time.Time, error) {
	if v == nil {
		return time.Time{}, NewDecodeError(field, nil)
	}
	t, err := ParseWrappedDate(*v)
	if err != nil {
		return time.Time{}, NewDecodeError(field, err)
	}
	return t, nil
}
