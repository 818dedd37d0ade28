package common

const (
	KeyStockUniverse    = "stock_universe"
	KeyUserTracking     = "user_tracking:%s"
	KeyLogHookSendAlert = "send_alert"
)

const (
	TierFree    = "free"
	TierPremium = "premium"
)
