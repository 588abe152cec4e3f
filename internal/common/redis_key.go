package common

import "fmt"

func RedisKeyLotteryState(currency string) string {
	return fmt.Sprintf("lotterystate:%s", currency)
}

func RedisKeyKeeperLock(pool string) string {
	return fmt.Sprintf("keeperlock:%s", pool)
}
