package util

import "strings"

// NormalizeWallet 钱包地址统一转小写，作为用户档案主键
func NormalizeWallet(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
