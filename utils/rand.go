package utils

import (
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
)

// Intn 返回 [0, n) 区间内的随机数（并发安全）
func Intn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}

// Shuffle 并发安全地打乱 n 个元素
func Shuffle(n int, swap func(i, j int)) {
	rngMu.Lock()
	defer rngMu.Unlock()
	rng.Shuffle(n, swap)
}
