package main

const (
	homeFlag         = "home"
	forceFlag        = "force"
	accountFlag      = "account"
	callerFlag       = "caller"
	amountFlag       = "amount"
	rewardRateFlag   = "reward-rate"
	minStakeFlag     = "min-stake"
	lockPeriodFlag   = "lock-period"
	newAdminFlag     = "new-admin"
	afterFlag        = "after"
	limitFlag        = "limit"
	defaultEventsLim = uint64(100)
)
