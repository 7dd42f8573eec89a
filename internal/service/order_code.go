package service

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// 去掉容易混淆的 0/O、1/I
const orderCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const orderCodeSuffixLen = 6

// OrderCodeGenerator 產生顧客看得到的訂單代碼
type OrderCodeGenerator func(now time.Time) (string, error)

// NewOrderCode 毫秒時間戳 base36 + "-" + 6 碼隨機字元，例如 M3K9Q2ZB-7HXKQ2
func NewOrderCode(now time.Time) (string, error) {
	var sb strings.Builder
	sb.WriteString(strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)))
	sb.WriteByte('-')

	max := big.NewInt(int64(len(orderCodeAlphabet)))
	for i := 0; i < orderCodeSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(orderCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
